// Package format holds the named formats that inputs are validated against and the
// registry they are looked up in.
package format

import (
	"github.com/andyballingall/validation-service/internal/parser"
	"github.com/andyballingall/validation-service/internal/validator"
)

// DefaultVersion selects the default version of a format.
const DefaultVersion = "default"

// Schema is one declared version of a format. Type is the id of the schema language
// the Value is written in.
type Schema struct {
	Version string `json:"version"`
	Type    string `json:"type"`
	Value   any    `json:"value"`
	Path    string `json:"path,omitempty"`
	Start   string `json:"start,omitempty"`
}

// Version is a Schema together with the adapter built from it.
type Version struct {
	Schema
	adapter validator.Adapter
	err     error
}

// Adapter returns the adapter built for the version, or the reason it could not be built.
func (v *Version) Adapter() (validator.Adapter, error) {
	return v.adapter, v.err
}

// Format is a named kind of data. It is immutable once the registry is built.
type Format struct {
	ID             string
	Title          string
	Short          string
	Description    string
	URL            string
	DefaultVersion string
	ParserName     string

	parser   parser.Parser
	check    validator.Adapter
	versions []*Version
	language bool
}

// Parser returns the parser applied to text input, or nil.
func (f *Format) Parser() parser.Parser {
	return f.parser
}

// Versions returns the versions in declaration order.
func (f *Format) Versions() []*Version {
	return f.versions
}

// IsLanguage reports whether schemas of other formats can be written in f.
func (f *Format) IsLanguage() bool {
	return f.language
}

// Version resolves v. An empty v or "default" selects the declared default version,
// or the first one. A nil Version with a nil error means the format has no versions.
func (f *Format) Version(v string) (*Version, error) {
	if v == "" || v == DefaultVersion {
		if len(f.versions) == 0 {
			return nil, nil
		}
		v = f.DefaultVersion
		if v == "" {
			return f.versions[0], nil
		}
	}
	for _, ver := range f.versions {
		if ver.Version == v {
			return ver, nil
		}
	}
	return nil, formatNotFound()
}

// Schema returns the raw schema of version v.
func (f *Format) Schema(v string) (*Schema, error) {
	if len(f.versions) == 0 {
		return nil, &NotFoundError{Message: "Format " + f.ID + " has no schemas"}
	}
	ver, err := f.Version(v)
	if err != nil {
		return nil, err
	}
	return &ver.Schema, nil
}

// Adapter returns the adapter validating items of version ver. A nil ver selects the
// format's own check.
func (f *Format) Adapter(ver *Version) (validator.Adapter, error) {
	if ver == nil {
		if f.check == nil {
			return nil, noCapability(f.ID)
		}
		return f.check, nil
	}
	a, err := ver.Adapter()
	if err != nil {
		return nil, &ConfigurationError{Format: f.ID, Version: ver.Version, Err: err}
	}
	return a, nil
}

// Summary describes a format for listings.
type Summary struct {
	ID             string   `json:"id"`
	Title          string   `json:"title,omitempty"`
	Short          string   `json:"short,omitempty"`
	Description    string   `json:"description,omitempty"`
	URL            string   `json:"url,omitempty"`
	Versions       []string `json:"versions,omitempty"`
	DefaultVersion string   `json:"defaultVersion,omitempty"`
	Parser         string   `json:"parser,omitempty"`
	Language       bool     `json:"language,omitempty"`
}

func (f *Format) Summary() Summary {
	s := Summary{
		ID:             f.ID,
		Title:          f.Title,
		Short:          f.Short,
		Description:    f.Description,
		URL:            f.URL,
		DefaultVersion: f.DefaultVersion,
		Parser:         f.ParserName,
		Language:       f.language,
	}
	for _, v := range f.versions {
		s.Versions = append(s.Versions, v.Version)
	}
	return s
}
