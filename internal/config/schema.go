package config

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"github.com/andyballingall/validation-service/internal/parser"
	"github.com/andyballingall/validation-service/internal/validator"
)

const schemaBaseID = "https://formats.dvs.local"

// Schema returns the JSON Schema of dvs.yml, reflected from Config.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		BaseSchemaID:               schemaBaseID,
		FieldNameTag:               "yaml",
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	s := r.Reflect(&Config{})
	s.Title = "dvs.yml"
	return s
}

var configValidator = sync.OnceValues(func() (validator.Adapter, error) {
	s := Schema()
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return validator.NewSchema(validator.NewSanthoshCompiler(), string(s.ID), doc)(context.Background())
})

// checkSchema validates the raw content of dvs.yml against Schema.
func checkSchema(data []byte) error {
	p, _ := parser.Lookup("yaml")
	items, err := p.Parse(data)
	if err != nil {
		return &InvalidYAMLError{Wrapped: err}
	}
	var doc any = map[string]any{}
	switch len(items) {
	case 0:
	case 1:
		if items[0] != nil {
			doc = items[0]
		}
	default:
		return &InvalidYAMLError{Wrapped: &parser.Error{Message: "Expected a single document"}}
	}

	v, err := configValidator()
	if err != nil {
		return err
	}
	if errs := v.Validate(doc); len(errs) > 0 {
		return &InvalidConfigError{Errors: errs}
	}
	return nil
}
