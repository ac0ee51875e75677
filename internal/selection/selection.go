// Package selection extracts sub-values from structured items.
//
// Expressions starting with "$" are JSONPath and support the subset
// $ .name ['name'] [n] [*] .* ..name ..* which is translated to jq.
// Any other expression is a jq program.
package selection

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/itchyny/gojq"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of compiled expressions kept when no size is given.
const DefaultCacheSize = 128

// Error reports an expression that cannot be compiled or fails when run.
type Error struct {
	Expr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid selection %q: %v", e.Expr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Selector is a compiled expression. It is safe for concurrent use.
type Selector struct {
	expr string
	code *gojq.Code
}

// Select runs the expression against item and returns every value it yields.
func (s *Selector) Select(item any) ([]any, error) {
	values := make([]any, 0)
	iter := s.code.Run(item)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, &Error{Expr: s.expr, Err: err}
		}
		values = append(values, v)
	}
	return values, nil
}

func (s *Selector) String() string {
	return s.expr
}

// Engine compiles expressions and caches the result.
type Engine struct {
	cache *lru.Cache[string, *Selector]
	group singleflight.Group
}

// New returns an Engine caching up to size compiled expressions.
func New(size int) (*Engine, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, *Selector](size)
	if err != nil {
		return nil, err
	}
	return &Engine{cache: c}, nil
}

// Compile returns the Selector for expr. Concurrent calls for the same expression
// compile it once.
func (e *Engine) Compile(expr string) (*Selector, error) {
	if s, ok := e.cache.Get(expr); ok {
		return s, nil
	}
	v, err, _ := e.group.Do(expr, func() (any, error) {
		if s, ok := e.cache.Get(expr); ok {
			return s, nil
		}
		s, err := compile(expr)
		if err != nil {
			return nil, err
		}
		e.cache.Add(expr, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Selector), nil
}

// Select compiles expr and runs it against value.
func (e *Engine) Select(value any, expr string) ([]any, error) {
	s, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	return s.Select(value)
}

func compile(expr string) (*Selector, error) {
	program := expr
	if len(expr) > 0 && expr[0] == '$' {
		var err error
		if program, err = translate(expr); err != nil {
			return nil, &Error{Expr: expr, Err: err}
		}
	}
	q, err := gojq.Parse(program)
	if err != nil {
		return nil, &Error{Expr: expr, Err: err}
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, &Error{Expr: expr, Err: err}
	}
	return &Selector{expr: expr, code: code}, nil
}
