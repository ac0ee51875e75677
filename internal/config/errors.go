package config

import (
	"fmt"
	"strings"

	"github.com/andyballingall/validation-service/internal/validator"
)

type MissingConfigError struct {
	Path string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("dvs.yml missing in: %s", e.Path)
}

type InvalidYAMLError struct {
	Wrapped error
}

func (e *InvalidYAMLError) Error() string {
	return fmt.Sprintf("dvs.yml is not a valid yaml document: %v", e.Wrapped)
}

func (e *InvalidYAMLError) Unwrap() error {
	return e.Wrapped
}

// InvalidConfigError lists every violation of the configuration schema.
type InvalidConfigError struct {
	Errors []validator.Error
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		loc := ve.Position.Value
		if loc == "" {
			loc = "/"
		}
		msgs[i] = loc + ": " + ve.Message
	}
	return "dvs.yml does not match the configuration schema:\n  " + strings.Join(msgs, "\n  ")
}

type MissingPropertyError struct {
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("dvs.yml is missing required property: %s", e.Property)
}

type DuplicateFormatError struct {
	ID string
}

func (e *DuplicateFormatError) Error() string {
	return fmt.Sprintf("dvs.yml declares format '%s' more than once", e.ID)
}

type DuplicateVersionError struct {
	Format  string
	Version string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("dvs.yml declares version '%s' of format '%s' more than once", e.Version, e.Format)
}

type UnknownLanguageError struct {
	Property string
	Language string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("dvs.yml property %s has unknown schema language '%s'", e.Property, e.Language)
}

type UnknownParserError struct {
	Property  string
	Parser    string
	Supported []string
}

func (e *UnknownParserError) Error() string {
	return fmt.Sprintf(
		"dvs.yml property %s has unknown parser '%s'. Supported parsers are: %v",
		e.Property,
		e.Parser,
		e.Supported,
	)
}

type UnknownDefaultVersionError struct {
	Format  string
	Version string
}

func (e *UnknownDefaultVersionError) Error() string {
	return fmt.Sprintf("dvs.yml format '%s' has no version '%s' to use as default", e.Format, e.Version)
}

// SchemaFileError reports a schema file that could not be read or decoded.
type SchemaFileError struct {
	Path    string
	Wrapped error
}

func (e *SchemaFileError) Error() string {
	return fmt.Sprintf("schema file %s could not be loaded: %v", e.Path, e.Wrapped)
}

func (e *SchemaFileError) Unwrap() error {
	return e.Wrapped
}
