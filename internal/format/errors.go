package format

import (
	"fmt"
	"net/http"
)

// StatusError is implemented by errors that end a validation call. Kind names the
// failure class and Status is the matching HTTP status code.
type StatusError interface {
	error
	Kind() string
	Status() int
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Kind() string { return "NotFound" }
func (e *NotFoundError) Status() int  { return http.StatusNotFound }

func formatNotFound() *NotFoundError {
	return &NotFoundError{Message: "Format not found"}
}

type MalformedRequestError struct {
	Message string
	Err     error
}

func (e *MalformedRequestError) Error() string {
	return e.Message
}

func (e *MalformedRequestError) Unwrap() error {
	return e.Err
}

func (e *MalformedRequestError) Kind() string { return "MalformedRequest" }
func (e *MalformedRequestError) Status() int  { return http.StatusBadRequest }

// ConfigurationError reports a format that cannot serve requests because of how it
// was declared.
type ConfigurationError struct {
	Format  string
	Version string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Version != "":
		return fmt.Sprintf("format %s version %s is unusable: %v", e.Format, e.Version, e.Err)
	default:
		return fmt.Sprintf("format %s is unusable: %v", e.Format, e.Err)
	}
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) Kind() string { return "MalformedConfiguration" }
func (e *ConfigurationError) Status() int  { return http.StatusInternalServerError }

func noCapability(id string) *ConfigurationError {
	return &ConfigurationError{
		Format:  id,
		Message: fmt.Sprintf("No schema or parser available to validate %s", id),
	}
}

type DuplicateFormatError struct {
	ID string
}

func (e *DuplicateFormatError) Error() string {
	return fmt.Sprintf("format %s is declared more than once", e.ID)
}

type UnknownLanguageError struct {
	Format   string
	Version  string
	Language string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("format %s version %s uses unknown schema language %q", e.Format, e.Version, e.Language)
}

type UnknownParserError struct {
	Format string
	Parser string
}

func (e *UnknownParserError) Error() string {
	return fmt.Sprintf("format %s uses unknown parser %q", e.Format, e.Parser)
}
