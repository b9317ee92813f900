package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mcncl/jsonemit/internal/config"
	"github.com/mcncl/jsonemit/internal/emitter"
	"github.com/mcncl/jsonemit/internal/errors"
	"github.com/mcncl/jsonemit/internal/loader"
	"github.com/mcncl/jsonemit/internal/models"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input YAML or JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output JSON file. If not specified, writes to stdout." short:"o" type:"path"`
	Compact     bool   `help:"Write compact JSON without newlines or indentation." short:"c"`
	KeyCase     string `help:"Rewrite object keys: snake, screaming_snake, kebab, camel or lower_camel." short:"k" name:"key-case"`
	Config      string `help:"Path to config file. If not specified, .jsonemit.yml is searched upwards from the working directory." type:"path"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsonemit"),
		kong.Description("Render YAML or JSON documents as pretty or compact JSON"),
		kong.UsageOnError(),
	)

	// No arguments at all means interactive mode
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	_, err := parser.Parse(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("jsonemit version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	err = run(&Context{Debug: cfg.Dev.Debug, Config: cfg})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonemit --help\n")
		os.Exit(1)
	}
}

// loadConfig merges the config file (explicit or discovered) with CLI flags.
// Flags only override when they differ from their defaults.
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	var overrides config.Overrides
	if CLI.Compact {
		overrides.Compact = &CLI.Compact
	}
	if CLI.KeyCase != "" {
		overrides.KeyCase = &CLI.KeyCase
	}
	if CLI.Debug {
		overrides.Debug = &CLI.Debug
	}

	cfg, err := config.LoadConfigWithCLI(path, overrides)
	if err != nil {
		return nil, err
	}
	if path != "" && cfg.Dev.Debug {
		fmt.Fprintf(os.Stderr, "[debug] loaded config from %s\n", path)
	}
	return cfg, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	if ctx.Config == nil {
		ctx.Config = config.NewConfig()
	}

	// 1. Build the value tree
	value, err := parseInput(ctx)
	if err != nil {
		return err
	}
	ctx.debugf("built %s value", models.KindOf(value))

	// 2. Render it
	text := emitter.Render(value, emitter.Options{Compact: ctx.Config.Output.Compact})
	ctx.debugf("rendered %d bytes (compact=%t)", len(text), ctx.Config.Output.Compact)

	if ctx.Config.Output.TrailingNewline {
		text += "\n"
	}

	// 3. Output the result
	return writeOutput(text)
}

func (ctx *Context) debugf(format string, args ...any) {
	if ctx.Debug {
		fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", args...)
	}
}

// parseInput reads a document from file or stdin
func parseInput(ctx *Context) (models.Value, error) {
	if CLI.Input != "" {
		ctx.debugf("reading %s", CLI.Input)
		return loader.ParseFile(CLI.Input, ctx.Config)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput(ctx)
		}
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}

	if len(data) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	ctx.debugf("read %d bytes from stdin", len(data))
	return loader.ParseString(string(data), ctx.Config)
}

// writeOutput writes text to file or stdout
func writeOutput(text string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(text), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "JSON written to %s\n", CLI.Output)
		return nil
	}

	_, err := io.WriteString(os.Stdout, text)
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste a document and finish with Ctrl+D (EOF)
func readInteractiveInput(ctx *Context) (models.Value, error) {
	fmt.Fprintln(os.Stderr, "jsonemit Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste YAML or JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return nil, errors.NewInputError("error reading input", err)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing input...")
	return loader.ParseString(string(data), ctx.Config)
}
