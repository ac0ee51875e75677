package validator

import "context"

// CheckFunc tries to build a canonical value from s. A non-nil error rejects s and its
// message becomes the validation message.
type CheckFunc func(s string) error

type checkAdapter struct {
	check CheckFunc
}

// NewCheck returns a Constructor for a parser-defined adapter: an item is valid iff
// check accepts it. Errors carry no position.
func NewCheck(check CheckFunc) Constructor {
	return func(context.Context) (Adapter, error) {
		return &checkAdapter{check: check}, nil
	}
}

func (a *checkAdapter) Validate(item any) []Error {
	s, ok := Text(item)
	if !ok {
		return notText()
	}
	if err := a.check(s); err != nil {
		return []Error{{Message: err.Error(), Detail: err}}
	}
	return nil
}

func (a *checkAdapter) SupportsSelection() bool {
	return false
}
