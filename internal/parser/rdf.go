package parser

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/knakk/rdf"

	"github.com/andyballingall/validation-service/internal/position"
)

var rdfLineCol = regexp.MustCompile(`(\d+):(\d+)`)

// RDF parses an RDF graph serialization into its triples. The item is the []rdf.Triple.
type RDF struct {
	format rdf.Format
}

// Turtle returns a parser for RDF 1.1 Turtle.
func Turtle() RDF {
	return RDF{format: rdf.Turtle}
}

// NTriples returns a parser for RDF 1.1 N-Triples.
func NTriples() RDF {
	return RDF{format: rdf.NTriples}
}

func (p RDF) Parse(input any) ([]any, error) {
	s, ok := text(input)
	if !ok {
		return []any{input}, nil
	}
	dec := rdf.NewTripleDecoder(strings.NewReader(s), p.format)
	var triples []rdf.Triple
	for {
		tr, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rdfError(err)
		}
		triples = append(triples, tr)
	}
	return []any{triples}, nil
}

func rdfError(err error) *Error {
	msg := err.Error()
	e := &Error{Message: capitalize(msg)}
	if m := rdfLineCol.FindStringSubmatch(msg); m != nil {
		line, lErr := strconv.Atoi(m[1])
		col, cErr := strconv.Atoi(m[2])
		if lErr == nil && cErr == nil && line > 0 && col > 0 {
			e.Position = position.LineColumn(line, col)
		}
	}
	return e
}
