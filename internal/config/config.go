// Package config loads dvs.yml, the file declaring the formats a registry serves.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/andyballingall/validation-service/internal/format"
	"github.com/andyballingall/validation-service/internal/parser"
)

const ConfigFile = "dvs.yml"

const DefaultConfigContent = `# Data Validation Service Configuration

# WORKERS
#
# The number of items validated at once. Defaults to the number of CPUs.
# workers: 8

# SELECTION CACHE
#
# The number of compiled selection expressions (--select) kept in memory.
# selectionCacheSize: 128

# FORMATS
#
# Every format below is added to the builtin formats (json, ndjson, yaml, xml,
# turtle, ntriples, isbn, regexp, ebnf and json-schema). A version is written in a
# schema language:
# - json-schema: a JSON Schema document (draft-04, draft-06 or draft-07)
# - regexp:      a regular expression the whole input must match
# - ebnf:        a grammar in W3C notation (digits ::= [0-9]+) or Go's EBNF notation.
#                Set start to the start production.
#
# Give the schema inline with value, or in a file (relative to this directory).

formats:
  - id: person
    title: Person
    description: A person record
    defaultVersion: "1"
    versions:
      - version: "1"
        type: json-schema
        value:
          type: object
          required: [name]
          properties:
            name:
              type: string
            age:
              type: integer
              minimum: 0
  - id: postcode
    title: UK Postcode
    versions:
      - version: "1"
        type: regexp
        value: "^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$"
`

// Config is the content of dvs.yml.
type Config struct {
	Workers            int      `yaml:"workers,omitempty" jsonschema:"minimum=1,description=Number of items validated at once"`
	SelectionCacheSize int      `yaml:"selectionCacheSize,omitempty" jsonschema:"minimum=1,description=Number of cached selection expressions"`
	Formats            []Format `yaml:"formats,omitempty" jsonschema:"description=Formats served in addition to the builtin ones"`

	dir string // directory dvs.yml was read from
}

// Format declares one format.
type Format struct {
	ID             string    `yaml:"id" jsonschema:"required,minLength=1"`
	Title          string    `yaml:"title,omitempty"`
	Short          string    `yaml:"short,omitempty"`
	Description    string    `yaml:"description,omitempty"`
	URL            string    `yaml:"url,omitempty" jsonschema:"format=uri"`
	Parser         string    `yaml:"parser,omitempty" jsonschema:"description=Parser applied to text input"`
	DefaultVersion string    `yaml:"defaultVersion,omitempty"`
	Versions       []Version `yaml:"versions,omitempty"`
}

// Version declares one version of a format. Exactly one of File and Value is set.
type Version struct {
	Version string `yaml:"version" jsonschema:"required,minLength=1"`
	Type    string `yaml:"type" jsonschema:"required,description=Schema language: json-schema or regexp or ebnf"`
	File    string `yaml:"file,omitempty" jsonschema:"description=Schema file relative to the configuration directory"`
	Value   any    `yaml:"value,omitempty" jsonschema:"description=Inline schema"`
	Start   string `yaml:"start,omitempty" jsonschema:"description=Start production of an ebnf grammar"`
}

// New reads dir/dvs.yml. The document is checked against the configuration schema
// before it is decoded, then checked for consistency.
func New(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &MissingConfigError{Path: dir}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	if err := checkSchema(data); err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, &InvalidYAMLError{Wrapped: err}
	}
	config.dir = dir

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Empty returns the configuration used when dir has no dvs.yml: builtin formats only.
func Empty(dir string) *Config {
	return &Config{dir: dir}
}

// Dir returns the directory the configuration was read from.
func (c *Config) Dir() string {
	return c.dir
}

// Validate checks what the configuration schema cannot express.
func (c *Config) Validate() error {
	ids := make(map[string]bool, len(c.Formats))
	for i, f := range c.Formats {
		prop := fmt.Sprintf("formats[%d]", i)
		if f.ID == "" {
			return &MissingPropertyError{Property: prop + ".id"}
		}
		if ids[f.ID] {
			return &DuplicateFormatError{ID: f.ID}
		}
		ids[f.ID] = true

		if f.Parser != "" {
			if _, ok := parser.Lookup(f.Parser); !ok {
				return &UnknownParserError{Property: prop + ".parser", Parser: f.Parser, Supported: parser.Names()}
			}
		}

		versions := make(map[string]bool, len(f.Versions))
		for j, v := range f.Versions {
			vprop := fmt.Sprintf("%s.versions[%d]", prop, j)
			if v.Version == "" {
				return &MissingPropertyError{Property: vprop + ".version"}
			}
			if versions[v.Version] {
				return &DuplicateVersionError{Format: f.ID, Version: v.Version}
			}
			versions[v.Version] = true
			if !format.IsLanguage(v.Type) {
				return &UnknownLanguageError{Property: vprop + ".type", Language: v.Type}
			}
			if (v.File == "") == (v.Value == nil) {
				return &MissingPropertyError{Property: vprop + ".file or " + vprop + ".value"}
			}
		}
		if f.DefaultVersion != "" && !versions[f.DefaultVersion] {
			return &UnknownDefaultVersionError{Format: f.ID, Version: f.DefaultVersion}
		}
	}
	return nil
}

// SchemaFiles lists the absolute paths of every schema file the configuration refers to.
func (c *Config) SchemaFiles() []string {
	var paths []string
	for _, f := range c.Formats {
		for _, v := range f.Versions {
			if v.File != "" {
				paths = append(paths, c.resolve(v.File))
			}
		}
	}
	return paths
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	abs, err := filepath.Abs(filepath.Join(c.dir, path))
	if err != nil {
		return filepath.Join(c.dir, path)
	}
	return abs
}

// Declarations loads the schema of every version and returns the formats ready to be
// added to a format.Builder.
func (c *Config) Declarations() ([]format.Declaration, error) {
	decls := make([]format.Declaration, 0, len(c.Formats))
	for _, f := range c.Formats {
		d := format.Declaration{
			ID:             f.ID,
			Title:          f.Title,
			Short:          f.Short,
			Description:    f.Description,
			URL:            f.URL,
			DefaultVersion: f.DefaultVersion,
			Parser:         f.Parser,
		}
		for _, v := range f.Versions {
			s := format.Schema{Version: v.Version, Type: v.Type, Value: parser.NormalizeYAML(v.Value), Start: v.Start}
			if v.File != "" {
				s.Path = c.resolve(v.File)
				value, err := loadSchema(s.Path, v.Type)
				if err != nil {
					return nil, err
				}
				s.Value = value
			}
			d.Versions = append(d.Versions, s)
		}
		decls = append(decls, d)
	}
	return decls, nil
}

// loadSchema reads a schema file. JSON Schema documents are decoded as JSON, or as YAML
// for .yml and .yaml files. Other languages are read as text without the line break
// that ends the file.
func loadSchema(path, language string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SchemaFileError{Path: path, Wrapped: err}
	}
	if language != "json-schema" {
		return parser.TrimLineBreak(string(data)), nil
	}

	name := "json"
	if ext := filepath.Ext(path); ext == ".yml" || ext == ".yaml" {
		name = "yaml"
	}
	p, _ := parser.Lookup(name)
	items, err := p.Parse(data)
	if err != nil {
		return nil, &SchemaFileError{Path: path, Wrapped: err}
	}
	if len(items) != 1 {
		return nil, &SchemaFileError{Path: path, Wrapped: errors.New("expected exactly one document")}
	}
	return items[0], nil
}
