// Package parser turns raw input into the items a validator sees.
//
// A parser receives either text (string or []byte) or an already structured value.
// Structured values pass through unchanged as a single item. Text is parsed and a
// failure is reported as an *Error carrying the position of the problem when the
// underlying decoder exposes one.
package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/andyballingall/validation-service/internal/position"
)

// Parser converts one input into zero or more items.
type Parser interface {
	Parse(input any) ([]any, error)
}

// LineParser is implemented by parsers whose input is a sequence of independent lines.
// Such input can be validated while it is still being read.
type LineParser interface {
	Parser
	ParseLine(text string, line int) ([]any, error)
}

// Record is one line of line oriented input. Line is 1-based.
type Record struct {
	Line int
	Text string
}

// Error is a parse failure.
type Error struct {
	Message  string
	Position position.Position
}

func (e *Error) Error() string {
	if e.Position.IsZero() {
		return e.Message
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Position)
}

var builtin = map[string]Parser{
	"json":     JSON{},
	"ndjson":   NDJSON{},
	"yaml":     YAML{},
	"xml":      XML{},
	"turtle":   Turtle(),
	"ntriples": NTriples(),
}

// Lookup returns the builtin parser registered under name.
func Lookup(name string) (Parser, bool) {
	p, ok := builtin[name]
	return p, ok
}

// Names lists the builtin parser names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func text(input any) (string, bool) {
	switch v := input.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

// TrimLineBreak drops the line break, "\n" or "\r\n", that ends a file written by an
// editor. Only one is removed.
func TrimLineBreak(s string) string {
	if t, ok := strings.CutSuffix(s, "\n"); ok {
		return strings.TrimSuffix(t, "\r")
	}
	return s
}
