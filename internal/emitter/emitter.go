// Package emitter renders a models.Value tree as JSON text, either pretty-printed
// with four spaces per object level or compact with no insignificant whitespace.
//
// Arrays are always written inline, even in pretty mode; only objects break lines.
package emitter

import (
	"strings"
	"unicode/utf8"

	"github.com/mcncl/jsonemit/internal/models"
)

const indentUnit = "    "

// Options configures an Emitter
type Options struct {
	// Compact drops newlines and indentation and uses "," and ":" separators.
	Compact bool
}

// Emitter owns the output buffer and indentation depth for a single render.
// It is not safe for concurrent use; give each goroutine its own Emitter.
type Emitter struct {
	compact  bool
	buf      strings.Builder
	depth    int
	consumed bool
}

// New creates an Emitter with an empty buffer and depth 0
func New(opts Options) *Emitter {
	return &Emitter{compact: opts.Compact}
}

// Render renders v to JSON text using opts
func Render(v models.Value, opts Options) string {
	e := New(opts)
	e.Render(v)
	return e.Consume()
}

// Pretty renders v with newlines and indentation
func Pretty(v models.Value) string {
	return Render(v, Options{})
}

// Compact renders v without any insignificant whitespace
func Compact(v models.Value) string {
	return Render(v, Options{Compact: true})
}

// frame is a pending unit of work on the traversal stack: a node and the index of
// the next child to emit.
type frame struct {
	value   models.Value
	next    int
	started bool
}

// Render appends the text of v to the buffer. The walk keeps its own stack on the
// heap, so nesting depth is limited by memory rather than the goroutine stack.
func (e *Emitter) Render(v models.Value) {
	e.mustBeLive()

	stack := []frame{{value: v}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		switch node := top.value.(type) {
		case models.Array:
			if !top.started {
				top.started = true
				e.writeByte('[')
			}
			if top.next == len(node) {
				e.writeByte(']')
				stack = stack[:len(stack)-1]
				continue
			}
			if top.next > 0 {
				e.writeMin(", ", ",")
			}
			child := node[top.next]
			top.next++
			stack = append(stack, frame{value: child})

		case models.Object:
			if !top.started {
				top.started = true
				e.writeByte('{')
				if len(node) == 0 {
					e.writeByte('}')
					stack = stack[:len(stack)-1]
					continue
				}
				e.indent()
			}
			if top.next == len(node) {
				e.dedent()
				e.newLine()
				e.writeByte('}')
				stack = stack[:len(stack)-1]
				continue
			}
			if top.next > 0 {
				e.writeByte(',')
			}
			e.newLine()
			member := node[top.next]
			top.next++
			e.writeString(member.Key)
			e.writeMin(": ", ":")
			stack = append(stack, frame{value: member.Value})

		default:
			e.writeScalar(node)
			stack = stack[:len(stack)-1]
		}
	}
}

// writeScalar handles every non-container variant. A nil Value is written as null.
func (e *Emitter) writeScalar(v models.Value) {
	switch t := v.(type) {
	case models.String:
		e.writeString(string(t))
	case models.Number:
		e.write(t.String())
	case models.Bool:
		if t {
			e.write("true")
		} else {
			e.write("false")
		}
	default:
		e.write("null")
	}
}

// writeString writes s as a quoted JSON string. Only the characters listed below are
// escaped; everything else, including other control characters, is copied as is.
func (e *Emitter) writeString(s string) {
	e.writeByte('"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			// multi-byte sequences never need escaping
			i++
			continue
		}

		var esc string
		switch c {
		case '\\':
			esc = `\\`
		case '/':
			esc = `\/`
		case '"':
			esc = `\"`
		case '\n':
			esc = `\n`
		case '\r':
			esc = `\r`
		case '\t':
			esc = `\t`
		case '\f':
			esc = `\f`
		case '\b':
			esc = `\b`
		}
		if esc == "" {
			i++
			continue
		}

		e.write(s[start:i])
		e.write(esc)
		i++
		start = i
	}
	e.write(s[start:])
	e.writeByte('"')
}

// newLine starts a new indented line in pretty mode. It is a no-op in compact mode.
func (e *Emitter) newLine() {
	if e.compact {
		return
	}
	e.writeByte('\n')
	for i := 0; i < e.depth; i++ {
		e.write(indentUnit)
	}
}

func (e *Emitter) indent() {
	e.depth++
}

func (e *Emitter) dedent() {
	if e.depth == 0 {
		panic("emitter: indentation depth below zero")
	}
	e.depth--
}

func (e *Emitter) write(s string) {
	e.buf.WriteString(s)
}

func (e *Emitter) writeByte(c byte) {
	e.buf.WriteByte(c)
}

// writeMin writes pretty in pretty mode and compact otherwise
func (e *Emitter) writeMin(pretty, compact string) {
	if e.compact {
		e.write(compact)
	} else {
		e.write(pretty)
	}
}

// Depth returns the current indentation depth. It is 0 between renders.
func (e *Emitter) Depth() int {
	return e.depth
}

// Compact reports whether the Emitter was created in compact mode
func (e *Emitter) Compact() bool {
	return e.compact
}

// Consume returns the rendered text. The Emitter must not be used afterwards.
func (e *Emitter) Consume() string {
	e.mustBeLive()
	e.consumed = true
	out := e.buf.String()
	e.buf = strings.Builder{}
	return out
}

func (e *Emitter) mustBeLive() {
	if e.consumed {
		panic("emitter: use after Consume")
	}
}
