package format

import (
	"embed"
	"sync"

	"github.com/goccy/go-json"

	"github.com/andyballingall/validation-service/internal/parser"
	"github.com/andyballingall/validation-service/internal/validator"
)

//go:embed metaschemas/*.json
var metaschemaFS embed.FS

var drafts = []struct {
	version string
	draft   validator.Draft
}{
	{"draft-04", validator.Draft4},
	{"draft-06", validator.Draft6},
	{"draft-07", validator.Draft7},
}

var loadMetaschemas = sync.OnceValues(func() (map[string]any, error) {
	docs := make(map[string]any, len(drafts))
	for _, d := range drafts {
		b, err := metaschemaFS.ReadFile("metaschemas/" + d.version + ".json")
		if err != nil {
			return nil, err
		}
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
		docs[d.version] = doc
	}
	return docs, nil
})

// Builtins returns the declarations of the formats that need no configuration.
func Builtins() ([]Declaration, error) {
	metaschemas, err := loadMetaschemas()
	if err != nil {
		return nil, err
	}

	jsonSchema := Declaration{
		ID:             "json-schema",
		Title:          "JSON Schema",
		Short:          "JSON Schema",
		Description:    "Vocabulary to annotate and validate JSON documents",
		URL:            "https://json-schema.org/",
		DefaultVersion: "draft-07",
		Parser:         "json",
		builtin:        make(map[string]func(validator.Compiler) validator.Constructor),
	}
	for _, d := range drafts {
		doc := metaschemas[d.version]
		jsonSchema.Versions = append(jsonSchema.Versions, Schema{
			Version: d.version,
			Type:    "json-schema",
			Value:   doc,
		})
		jsonSchema.builtin[d.version] = func(c validator.Compiler) validator.Constructor {
			return validator.NewMetaSchema(c, d.draft, doc)
		}
	}

	return []Declaration{
		{
			ID:          "json",
			Title:       "JSON",
			Short:       "JSON",
			Description: "JavaScript Object Notation",
			URL:         "https://www.rfc-editor.org/rfc/rfc8259",
			Parser:      "json",
		},
		{
			ID:          "ndjson",
			Title:       "Newline Delimited JSON",
			Short:       "NDJSON",
			Description: "One JSON value per line",
			URL:         "https://github.com/ndjson/ndjson-spec",
			Parser:      "ndjson",
		},
		{
			ID:          "yaml",
			Title:       "YAML",
			Short:       "YAML",
			Description: "YAML Ain't Markup Language",
			URL:         "https://yaml.org/spec/1.2.2/",
			Parser:      "yaml",
		},
		{
			ID:          "xml",
			Title:       "Extensible Markup Language",
			Short:       "XML",
			Description: "Well-formed XML 1.0 documents",
			URL:         "https://www.w3.org/TR/xml/",
			Parser:      "xml",
		},
		{
			ID:          "turtle",
			Title:       "RDF Turtle",
			Short:       "Turtle",
			Description: "Terse RDF Triple Language",
			URL:         "https://www.w3.org/TR/turtle/",
			Parser:      "turtle",
		},
		{
			ID:          "ntriples",
			Title:       "RDF N-Triples",
			Short:       "N-Triples",
			Description: "Line-based RDF serialization",
			URL:         "https://www.w3.org/TR/n-triples/",
			Parser:      "ntriples",
		},
		{
			ID:          "isbn",
			Title:       "International Standard Book Number",
			Short:       "ISBN",
			Description: "ISBN-10 or ISBN-13 with valid check digit",
			URL:         "https://www.isbn-international.org/",
			Check:       parser.CheckISBN,
		},
		{
			ID:          "regexp",
			Title:       "Regular expression",
			Short:       "RegExp",
			Description: "RE2 regular expression syntax",
			URL:         "https://github.com/google/re2/wiki/Syntax",
			Check:       validator.CheckRegexp,
		},
		{
			ID:          "ebnf",
			Title:       "Extended Backus-Naur Form",
			Short:       "EBNF",
			Description: "Grammar in the W3C notation (Name ::= ...) or the notation of golang.org/x/exp/ebnf",
			URL:         "https://www.w3.org/TR/xml/#sec-notation",
			Check:       validator.CheckGrammar,
		},
		jsonSchema,
	}, nil
}
