package parser

import (
	"encoding/xml"
	"errors"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/andyballingall/validation-service/internal/position"
)

// XML parses a well-formed XML document. The item is the *xmlquery.Node of the document.
type XML struct{}

func (XML) Parse(input any) ([]any, error) {
	s, ok := text(input)
	if !ok {
		return []any{input}, nil
	}
	doc, err := xmlquery.ParseWithOptions(strings.NewReader(s), xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{Strict: true},
	})
	if err != nil {
		return nil, xmlError(err)
	}
	return []any{doc}, nil
}

func xmlError(err error) *Error {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &Error{Message: capitalize(se.Msg), Position: position.Line(se.Line)}
	}
	return &Error{Message: capitalize(strings.TrimPrefix(err.Error(), "xmlquery: "))}
}
