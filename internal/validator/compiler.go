// Package validator provides the validation error model, the adapter contract that
// every validation mechanism is driven through, and the adapters themselves.
package validator

// Draft represents a JSON Schema draft version.
type Draft string

const (
	// Draft4 represents JSON Schema Draft 4.
	Draft4 Draft = "http://json-schema.org/draft-04/schema#"
	// Draft6 represents JSON Schema Draft 6.
	Draft6 Draft = "http://json-schema.org/draft-06/schema#"
	// Draft7 represents JSON Schema Draft 7.
	Draft7 Draft = "http://json-schema.org/draft-07/schema#"
	// Draft2019_09 represents JSON Schema Draft 2019-09.
	Draft2019_09 Draft = "https://json-schema.org/draft/2019-09/schema"
	// Draft2020_12 represents JSON Schema Draft 2020-12.
	Draft2020_12 Draft = "https://json-schema.org/draft/2020-12/schema"
)

// DefaultDraft is assumed for schemas that do not declare $schema.
const DefaultDraft = Draft7

// A JSONDocument is a parsed JSON value - i.e. the result of json.Unmarshal().
type JSONDocument = any

// A JSONSchema is a parsed JSON value representing a JSON Schema.
// A Compiler must compile the JSONSchema before use, which identifies any schema issues.
type JSONSchema = JSONDocument

// Validator validates JSON documents against one compiled schema.
type Validator interface {
	// Validate returns nil for a valid document. Failures are *jsonschema.ValidationError
	// for the santhosh implementation.
	Validate(v JSONDocument) error
}

// Compiler defines a JSON Schema compiler. Because schemas can reference other
// schemas via $ref, a Compiler first registers all the schemas it needs to compile.
type Compiler interface {
	// AddSchema registers a JSONSchema with the compiler under the given URL.
	AddSchema(url string, data JSONSchema) error

	// Compile creates a Validator from the JSONSchema previously added with the given URL.
	Compile(url string) (Validator, error)

	// SupportedSchemaVersions returns the supported schema drafts.
	SupportedSchemaVersions() []Draft

	// Clear resets the compiler state, removing all registered schemas.
	Clear()
}
