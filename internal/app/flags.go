package app

import (
	"fmt"

	"github.com/andyballingall/validation-service/internal/format"
)

// outputValue implements pflag.Value to provide a custom type name in help text
// and validation for output formats.
type outputValue string

func (o *outputValue) String() string {
	return string(*o)
}

func (o *outputValue) Set(v string) error {
	if v != "json" && v != "text" {
		return fmt.Errorf("must be 'text' or 'json'")
	}
	*o = outputValue(v)
	return nil
}

func (o *outputValue) Type() string {
	return "<output>"
}

// languageValue only accepts the id of a schema language.
type languageValue string

func (l *languageValue) String() string {
	return string(*l)
}

func (l *languageValue) Set(v string) error {
	if !format.IsLanguage(v) {
		return fmt.Errorf("must be one of %v", format.LanguageIDs())
	}
	*l = languageValue(v)
	return nil
}

func (l *languageValue) Type() string {
	return "<language>"
}

// pathValue implements pflag.Value to provide a custom type name in help text.
type pathValue string

func (p *pathValue) String() string {
	return string(*p)
}

func (p *pathValue) Set(v string) error {
	*p = pathValue(v)
	return nil
}

func (p *pathValue) Type() string {
	return "<path>"
}
