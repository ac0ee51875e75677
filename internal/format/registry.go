package format

import (
	"slices"

	"github.com/andyballingall/validation-service/internal/validator"
)

// Registry is the read-only set of formats produced by a Builder. It is safe for
// concurrent use without locking.
type Registry struct {
	formats []*Format
	byID    map[string]*Format
}

// Format returns the format with the given id.
func (r *Registry) Format(id string) (*Format, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, formatNotFound()
	}
	return f, nil
}

// Get resolves a format and one of its versions. The Version is nil when the format has
// no versions and none was requested. A version whose adapter could not be built yields
// a *ConfigurationError.
func (r *Registry) Get(id, version string) (*Format, *Version, error) {
	f, err := r.Format(id)
	if err != nil {
		return nil, nil, err
	}
	v, err := f.Version(version)
	if err != nil {
		return nil, nil, err
	}
	if v != nil && v.err != nil {
		return nil, nil, &ConfigurationError{Format: id, Version: v.Version, Err: v.err}
	}
	return f, v, nil
}

// Resolve returns the format and the adapter for the requested version.
func (r *Registry) Resolve(id, version string) (*Format, validator.Adapter, error) {
	f, v, err := r.Get(id, version)
	if err != nil {
		return nil, nil, err
	}
	a, err := f.Adapter(v)
	if err != nil {
		return nil, nil, err
	}
	return f, a, nil
}

// Filter restricts List. Empty fields match everything.
type Filter struct {
	ID       string
	Language string
}

func (flt Filter) match(f *Format) bool {
	if flt.ID != "" && flt.ID != f.ID {
		return false
	}
	if flt.Language != "" && !slices.ContainsFunc(f.versions, func(v *Version) bool {
		return v.Type == flt.Language
	}) {
		return false
	}
	return true
}

// List returns summaries of the matching formats in registration order.
func (r *Registry) List(flt Filter) []Summary {
	out := make([]Summary, 0)
	for _, f := range r.formats {
		if flt.match(f) {
			out = append(out, f.Summary())
		}
	}
	return out
}

// Languages lists the formats usable as schema languages.
func (r *Registry) Languages() []Summary {
	out := make([]Summary, 0)
	for _, f := range r.formats {
		if f.language {
			out = append(out, f.Summary())
		}
	}
	return out
}
