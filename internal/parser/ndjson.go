package parser

import (
	"fmt"
	"strings"

	"github.com/andyballingall/validation-service/internal/position"
)

// NDJSON parses newline delimited JSON. Every non-blank line is one item.
type NDJSON struct{}

func (p NDJSON) Parse(input any) ([]any, error) {
	s, ok := text(input)
	if !ok {
		return []any{input}, nil
	}
	var items []any
	for i, line := range strings.Split(s, "\n") {
		v, err := p.ParseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		items = append(items, v...)
	}
	return items, nil
}

// ParseLine parses one line. A blank line yields no items.
func (NDJSON) ParseLine(text string, line int) ([]any, error) {
	text = strings.TrimSuffix(text, "\r")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	v, err := decodeJSON(text)
	if err != nil {
		return nil, &Error{
			Message:  fmt.Sprintf("Line %d is no valid JSON", line),
			Position: position.Line(line),
		}
	}
	return []any{v}, nil
}
