package parser

import (
	stdjson "encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/andyballingall/validation-service/internal/position"
)

const unexpectedEnd = "Unexpected end of JSON input"

// JSON parses a single JSON text. An array is one item, not a list of items.
type JSON struct{}

func (JSON) Parse(input any) ([]any, error) {
	s, ok := text(input)
	if !ok {
		return []any{input}, nil
	}
	v, err := decodeJSON(s)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

func decodeJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, jsonError(s, err)
	}
	return v, nil
}

// jsonError maps a decoder failure onto a character offset into s. goccy reports the
// position of its decoder, which for a bad object key or trailing data is not the
// offending character; the scanner of encoding/json counts the bytes up to and
// including it.
func jsonError(s string, err error) *Error {
	var se *stdjson.SyntaxError
	if !errors.As(stdjson.Unmarshal([]byte(s), new(stdjson.RawMessage)), &se) {
		return &Error{Message: capitalize(err.Error()), Position: position.Char(0)}
	}
	if strings.HasPrefix(se.Error(), "unexpected end of JSON input") || se.Offset <= 0 {
		return &Error{Message: unexpectedEnd, Position: position.Char(utf8.RuneCountInString(s))}
	}
	at := int(se.Offset) - 1
	for at > 0 && !utf8.RuneStart(s[at]) {
		at--
	}
	pos := utf8.RuneCountInString(s[:at])
	return &Error{
		Message:  fmt.Sprintf("Unexpected %s in JSON at position %d", unexpectedToken(s[at:]), pos),
		Position: position.Char(pos),
	}
}

// unexpectedToken names the token starting rest.
func unexpectedToken(rest string) string {
	r, _ := utf8.DecodeRuneInString(rest)
	switch {
	case r == '"':
		return "string"
	case r == '-' || (r >= '0' && r <= '9'):
		return "number"
	case strings.ContainsRune(" \t\r\n", r):
		return "white space"
	}
	return "token " + string(r)
}

func capitalize(msg string) string {
	msg = strings.TrimPrefix(msg, "json: ")
	if msg == "" {
		return msg
	}
	r, n := utf8.DecodeRuneInString(msg)
	return strings.ToUpper(string(r)) + msg[n:]
}
