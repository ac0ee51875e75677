package format

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/andyballingall/validation-service/internal/parser"
	"github.com/andyballingall/validation-service/internal/validator"
)

// Declaration describes a format before its adapters are built.
type Declaration struct {
	ID             string
	Title          string
	Short          string
	Description    string
	URL            string
	DefaultVersion string
	Parser         string
	Check          validator.CheckFunc
	Versions       []Schema

	// builtin constructors by version, bypassing the schema language
	builtin map[string]func(validator.Compiler) validator.Constructor
}

type language struct {
	parser   string // parser applied to input of formats written in the language
	register bool   // schema documents are added to the JSON Schema compiler
	compile  func(c validator.Compiler, loc string, s Schema) validator.Constructor
}

var languages = map[string]language{
	"json-schema": {
		parser:   "json",
		register: true,
		compile: func(c validator.Compiler, loc string, s Schema) validator.Constructor {
			return validator.NewRegistered(c, loc, s.Value)
		},
	},
	"regexp": {
		compile: func(_ validator.Compiler, _ string, s Schema) validator.Constructor {
			pattern, ok := s.Value.(string)
			if !ok {
				return failed(errors.New("regular expression must be a string"))
			}
			return validator.NewRegexp(pattern)
		},
	},
	"ebnf": {
		compile: func(_ validator.Compiler, _ string, s Schema) validator.Constructor {
			src, ok := s.Value.(string)
			if !ok {
				return failed(errors.New("grammar must be a string"))
			}
			return validator.NewGrammar(src, s.Start)
		},
	},
}

// IsLanguage reports whether id names a schema language.
func IsLanguage(id string) bool {
	_, ok := languages[id]
	return ok
}

// LanguageIDs returns the ids of the schema languages, sorted.
func LanguageIDs() []string {
	return slices.Sorted(maps.Keys(languages))
}

func failed(err error) validator.Constructor {
	return func(context.Context) (validator.Adapter, error) {
		return nil, err
	}
}

// Builder collects declarations and builds a Registry from them.
type Builder struct {
	logger *slog.Logger
	limit  int
	decls  []Declaration
	ids    map[string]bool
}

// NewBuilder returns a Builder that runs at most limit adapter constructions at once.
// A limit below one means GOMAXPROCS.
func NewBuilder(logger *slog.Logger, limit int) *Builder {
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Builder{logger: logger, limit: limit, ids: make(map[string]bool)}
}

// AddBuiltins adds the formats every registry provides.
func (b *Builder) AddBuiltins() error {
	decls, err := Builtins()
	if err != nil {
		return err
	}
	for _, d := range decls {
		if err := b.Add(d); err != nil {
			return err
		}
	}
	return nil
}

// Add checks a declaration and queues it. Formats are registered in the order added.
func (b *Builder) Add(d Declaration) error {
	if b.ids[d.ID] {
		return &DuplicateFormatError{ID: d.ID}
	}
	if d.Parser != "" {
		if _, ok := parser.Lookup(d.Parser); !ok {
			return &UnknownParserError{Format: d.ID, Parser: d.Parser}
		}
	}
	versions := make(map[string]bool, len(d.Versions))
	for _, s := range d.Versions {
		if versions[s.Version] {
			return &ConfigurationError{
				Format:  d.ID,
				Message: fmt.Sprintf("format %s declares version %s more than once", d.ID, s.Version),
			}
		}
		versions[s.Version] = true
		if _, ok := languages[s.Type]; !ok && d.builtin[s.Version] == nil {
			return &UnknownLanguageError{Format: d.ID, Version: s.Version, Language: s.Type}
		}
	}
	if d.DefaultVersion != "" && !versions[d.DefaultVersion] {
		return &ConfigurationError{
			Format:  d.ID,
			Message: fmt.Sprintf("format %s has no version %s to use as default", d.ID, d.DefaultVersion),
		}
	}
	b.ids[d.ID] = true
	b.decls = append(b.decls, d)
	return nil
}

type construction struct {
	format  string
	version *Version
	ctor    validator.Constructor
}

// Build constructs every adapter concurrently and returns the frozen registry. A version
// whose adapter fails to build is recorded as unusable without failing the build. A
// format with nothing to validate with fails the build.
func (b *Builder) Build(ctx context.Context) (*Registry, error) {
	compiler := validator.NewSanthoshCompiler()
	reg := &Registry{byID: make(map[string]*Format, len(b.decls))}
	added := make(map[string]bool)

	var jobs []construction
	var errs []error
	for _, d := range b.decls {
		f := &Format{
			ID:             d.ID,
			Title:          d.Title,
			Short:          d.Short,
			Description:    d.Description,
			URL:            d.URL,
			DefaultVersion: d.DefaultVersion,
			ParserName:     d.Parser,
		}
		_, f.language = languages[d.ID]

		for _, s := range d.Versions {
			v := &Version{Schema: s}
			f.versions = append(f.versions, v)
			if build := d.builtin[s.Version]; build != nil {
				jobs = append(jobs, construction{d.ID, v, build(compiler)})
				continue
			}
			lang := languages[s.Type]
			loc := schemaURL(d.ID, s)
			if lang.register && !added[loc] {
				if err := compiler.AddSchema(loc, s.Value); err != nil {
					v.err = err
					b.logger.Warn("format version unusable", "format", d.ID, "version", s.Version, "error", err)
					continue
				}
				added[loc] = true
			}
			jobs = append(jobs, construction{d.ID, v, lang.compile(compiler, loc, s)})
		}

		if f.ParserName == "" {
			if def, _ := f.Version(""); def != nil {
				f.ParserName = languages[def.Type].parser
			}
		}
		if f.ParserName != "" {
			f.parser, _ = parser.Lookup(f.ParserName)
		}

		if d.Check != nil {
			f.check, _ = validator.NewCheck(d.Check)(ctx)
		} else if f.parser != nil {
			f.check = validator.Accept()
		}
		if len(f.versions) == 0 && f.check == nil {
			errs = append(errs, noCapability(d.ID))
			continue
		}

		reg.formats = append(reg.formats, f)
		reg.byID[f.ID] = f
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := j.ctor(gctx)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if err != nil {
				j.version.err = err
				b.logger.Warn("format version unusable", "format", j.format, "version", j.version.Version, "error", err)
				return nil
			}
			j.version.adapter = a
			b.logger.Debug("format version ready", "format", j.format, "version", j.version.Version)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.Debug("registry built", "formats", len(reg.formats), "versions", len(jobs))
	return reg, nil
}

// schemaURL is the location a schema is registered under: its own absolute $id, else
// the URL of the file it was read from, else a location derived from format and version.
func schemaURL(id string, s Schema) string {
	if doc, ok := s.Value.(map[string]any); ok {
		for _, key := range []string{"$id", "id"} {
			if v, ok := doc[key].(string); ok {
				if u, err := url.Parse(v); err == nil && u.IsAbs() {
					u.Fragment = ""
					return u.String()
				}
			}
		}
	}
	if s.Path != "" {
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(s.Path)}).String()
	}
	return "https://formats.dvs.local/" + url.PathEscape(id) + "/" + url.PathEscape(s.Version)
}
