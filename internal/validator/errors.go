package validator

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/andyballingall/validation-service/internal/position"
)

// Error is a single, normalized validation failure. It is immutable once produced.
type Error struct {
	Message  string
	Position position.Position
	// Alternates holds encodings derived from Position by a position.Codec.
	// They are informational and not part of the wire shape.
	Alternates []position.Position
	// Detail carries the native error, if any.
	Detail any
}

func (e Error) Error() string {
	if e.Position.IsZero() {
		return e.Message
	}
	return e.Message + " at " + e.Position.String()
}

type wireError struct {
	Message        string           `json:"message"`
	Position       *string          `json:"position,omitempty"`
	PositionFormat *position.Format `json:"positionFormat,omitempty"`
}

// MarshalJSON emits {message, position?, positionFormat?}. The position pair is
// present whenever a position exists, including the empty JSON Pointer.
func (e Error) MarshalJSON() ([]byte, error) {
	w := wireError{Message: e.Message}
	if !e.Position.IsZero() {
		v, f := e.Position.Value, e.Position.Format
		w.Position, w.PositionFormat = &v, &f
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the wire shape back into an Error.
func (e *Error) UnmarshalJSON(data []byte) error {
	var w wireError
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Error{Message: w.Message}
	if w.PositionFormat != nil {
		e.Position.Format = *w.PositionFormat
		if w.Position != nil {
			e.Position.Value = *w.Position
		}
	}
	return nil
}

// Result is the outcome of validating one item: valid, or a non-empty list of errors.
type Result struct {
	Errors []Error
}

// Valid reports whether the item passed validation.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// MarshalJSON emits true for a valid item, the error list otherwise.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Valid() {
		return []byte("true"), nil
	}
	return json.Marshal(r.Errors)
}

// UnmarshalJSON accepts true or an error list.
func (r *Result) UnmarshalJSON(data []byte) error {
	if string(data) == "true" {
		r.Errors = nil
		return nil
	}
	return json.Unmarshal(data, &r.Errors)
}

// Failed returns a Result holding a single error.
func Failed(e Error) Result {
	return Result{Errors: []Error{e}}
}

// ConfigurationError reports a validator used in a way its configuration does not allow.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Kind returns the error taxonomy name.
func (e *ConfigurationError) Kind() string {
	return "MalformedConfiguration"
}

// Status returns the HTTP-equivalent status code.
func (e *ConfigurationError) Status() int {
	return http.StatusInternalServerError
}

// ErrSelectionUnsupported is returned when a selector is given to an adapter that cannot
// address sub-values.
var ErrSelectionUnsupported = &ConfigurationError{Message: "Validator does not support selection"}
