package validator

import (
	"context"
)

// Adapter drives one native validation mechanism through a uniform contract.
// Implementations must be safe for concurrent use and hold no per-call state.
type Adapter interface {
	// Validate validates one item. A nil or empty slice means the item is valid.
	Validate(item any) []Error

	// SupportsSelection reports whether sub-values of an item can be validated on their own.
	SupportsSelection() bool
}

// Constructor builds an Adapter. Constructors that have nothing to wait for return
// immediately; the registry awaits all of them before it is ready.
type Constructor func(ctx context.Context) (Adapter, error)

// Ready wraps an already constructed Adapter in a Constructor.
func Ready(a Adapter) Constructor {
	return func(context.Context) (Adapter, error) {
		return a, nil
	}
}

// Selector extracts sub-values from a structured item.
type Selector interface {
	Select(item any) ([]any, error)
}

// ValidateAll validates item, or each value sel extracts from it, returning one Result
// per validated value. A selector that matches nothing yields no results.
func ValidateAll(a Adapter, item any, sel Selector) ([]Result, error) {
	if sel == nil {
		return []Result{{Errors: a.Validate(item)}}, nil
	}
	if !a.SupportsSelection() {
		return nil, ErrSelectionUnsupported
	}
	values, err := sel.Select(item)
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(values))
	for i, v := range values {
		results[i] = Result{Errors: a.Validate(v)}
	}
	return results, nil
}

type acceptAdapter struct{}

func (acceptAdapter) Validate(any) []Error   { return nil }
func (acceptAdapter) SupportsSelection() bool { return false }

// Accept returns an Adapter that accepts every item. It backs formats whose only
// check is that their parser succeeds.
func Accept() Adapter {
	return acceptAdapter{}
}

// Text returns item as a string if it is textual.
func Text(item any) (string, bool) {
	switch v := item.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

func notText() []Error {
	return []Error{{Message: "Value must be a string"}}
}
