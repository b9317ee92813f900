// Package loader builds models.Value trees from YAML documents. JSON input is
// accepted as the YAML subset it is. Mapping order is taken from the document.
package loader

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonemit/internal/errors"
	"github.com/mcncl/jsonemit/internal/models"
)

// maxAliasNodes caps how many nodes may be produced by expanding aliases, so a
// small document of nested anchors cannot blow up into an enormous tree.
const maxAliasNodes = 1 << 20

// KeyRewriter decides how mapping keys end up in the tree. *config.Config
// implements it.
type KeyRewriter interface {
	KeyName(key string) string
	ShouldSkipKey(key string) bool
}

type identityKeys struct{}

func (identityKeys) KeyName(key string) string { return key }
func (identityKeys) ShouldSkipKey(string) bool { return false }

// Parse decodes exactly one document from reader into a Value tree. A nil keys
// leaves keys untouched.
func Parse(reader io.Reader, keys KeyRewriter) (models.Value, error) {
	if keys == nil {
		keys = identityKeys{}
	}

	decoder := yaml.NewDecoder(reader)

	var doc yaml.Node
	if err := decoder.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return nil, errors.NewParsingError(fmt.Sprintf("failed to parse document: %v", err), errors.ErrInvalidYAML)
	}

	// Anything after the first document is either a second document or garbage.
	var trailing yaml.Node
	if err := decoder.Decode(&trailing); err == nil {
		return nil, errors.NewParsingError("multiple documents found in input", errors.ErrMultipleDocuments)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewParsingError(fmt.Sprintf("invalid trailing data after first document: %v", err), errors.ErrInvalidYAML)
	}

	b := &builder{keys: keys}
	return b.build(&doc, false)
}

// ParseString parses a document from a string
func ParseString(input string, keys KeyRewriter) (models.Value, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(input), keys)
}

// ParseFile parses a document from a file path
func ParseFile(filePath string, keys KeyRewriter) (models.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("file '%s' not found", filePath), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to open file '%s'", filePath), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to get file stats for '%s'", filePath), err)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(fmt.Sprintf("input file '%s' is empty", filePath), errors.ErrFileEmpty)
	}

	return Parse(file, keys)
}

type builder struct {
	keys       KeyRewriter
	aliasNodes int
}

// build converts node and its children. viaAlias is set while expanding an alias.
func (b *builder) build(node *yaml.Node, viaAlias bool) (models.Value, error) {
	if viaAlias {
		b.aliasNodes++
		if b.aliasNodes > maxAliasNodes {
			return nil, errors.NewConversionError("alias expansion produces too many nodes", errors.ErrUnsupportedNode)
		}
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return models.NullValue, nil
		}
		return b.build(node.Content[0], viaAlias)

	case yaml.AliasNode:
		return b.build(node.Alias, true)

	case yaml.SequenceNode:
		arr := make(models.Array, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := b.build(item, viaAlias)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case yaml.MappingNode:
		return b.buildMapping(node, viaAlias)

	case yaml.ScalarNode:
		return scalar(node)

	default:
		return nil, errors.NewConversionError(fmt.Sprintf("unexpected node kind %d at line %d", node.Kind, node.Line), errors.ErrUnsupportedNode)
	}
}

func (b *builder) buildMapping(node *yaml.Node, viaAlias bool) (models.Value, error) {
	explicit := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := resolveAlias(node.Content[i]); key.Kind == yaml.ScalarNode && key.ShortTag() != "!!merge" {
			explicit[b.keys.KeyName(key.Value)] = struct{}{}
		}
	}

	obj := make(models.Object, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := resolveAlias(node.Content[i])
		valueNode := node.Content[i+1]

		if keyNode.Kind != yaml.ScalarNode {
			return nil, errors.NewConversionError(fmt.Sprintf("mapping key at line %d must be a scalar", keyNode.Line), errors.ErrUnsupportedNode)
		}

		if keyNode.ShortTag() == "!!merge" {
			merged, err := b.mergeSources(valueNode, explicit, viaAlias)
			if err != nil {
				return nil, err
			}
			obj = append(obj, merged...)
			continue
		}

		if b.keys.ShouldSkipKey(keyNode.Value) {
			continue
		}
		v, err := b.build(valueNode, viaAlias)
		if err != nil {
			return nil, err
		}
		obj = obj.Set(b.keys.KeyName(keyNode.Value), v)
	}
	return obj, nil
}

// mergeSources handles a "<<" key. Its value is a mapping or a sequence of mappings;
// keys written explicitly in the target mapping take precedence over merged ones.
func (b *builder) mergeSources(node *yaml.Node, explicit map[string]struct{}, viaAlias bool) (models.Object, error) {
	isAlias := viaAlias || node.Kind == yaml.AliasNode
	node = resolveAlias(node)

	var sources []*yaml.Node
	switch node.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{node}
	case yaml.SequenceNode:
		sources = node.Content
	default:
		return nil, errors.NewConversionError(fmt.Sprintf("merge value at line %d must be a mapping", node.Line), errors.ErrUnsupportedNode)
	}

	var out models.Object
	for _, source := range sources {
		sourceIsAlias := isAlias || source.Kind == yaml.AliasNode
		source = resolveAlias(source)
		if source.Kind != yaml.MappingNode {
			return nil, errors.NewConversionError(fmt.Sprintf("merge source at line %d must be a mapping", source.Line), errors.ErrUnsupportedNode)
		}

		v, err := b.buildMapping(source, sourceIsAlias)
		if err != nil {
			return nil, err
		}
		for _, m := range v.(models.Object) {
			if _, ok := explicit[m.Key]; ok {
				continue
			}
			if _, ok := out.Get(m.Key); ok {
				continue
			}
			out = out.Set(m.Key, m.Value)
		}
	}
	return out, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// scalar maps a scalar node to a value by its resolved tag. Tags without a JSON
// counterpart (timestamps, binary, custom tags) keep their text.
func scalar(node *yaml.Node) (models.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return models.NullValue, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, errors.NewConversionError(fmt.Sprintf("invalid boolean %q at line %d", node.Value, node.Line), err)
		}
		return models.Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, errors.NewConversionError(fmt.Sprintf("invalid number %q at line %d", node.Value, node.Line), err)
		}
		return models.Number(f), nil
	default:
		return models.String(node.Value), nil
	}
}
