package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSelector struct {
	values []any
	err    error
}

func (s fixedSelector) Select(any) ([]any, error) {
	return s.values, s.err
}

// stringAdapter accepts strings and supports selection.
type stringAdapter struct{}

func (stringAdapter) Validate(item any) []Error {
	if _, ok := item.(string); ok {
		return nil
	}
	return []Error{{Message: "not a string"}}
}

func (stringAdapter) SupportsSelection() bool { return true }

func TestValidateAll(t *testing.T) {
	t.Parallel()

	t.Run("no selector", func(t *testing.T) {
		t.Parallel()
		results, err := ValidateAll(stringAdapter{}, 1.0, nil)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.False(t, results[0].Valid())
	})

	t.Run("one result per selected value", func(t *testing.T) {
		t.Parallel()
		results, err := ValidateAll(stringAdapter{}, nil, fixedSelector{values: []any{"a", 2.0, "c"}})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.True(t, results[0].Valid())
		assert.False(t, results[1].Valid())
		assert.True(t, results[2].Valid())
	})

	t.Run("empty selection", func(t *testing.T) {
		t.Parallel()
		results, err := ValidateAll(stringAdapter{}, nil, fixedSelector{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("selector error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		_, err := ValidateAll(stringAdapter{}, nil, fixedSelector{err: boom})
		require.ErrorIs(t, err, boom)
	})

	t.Run("adapter without selection", func(t *testing.T) {
		t.Parallel()
		_, err := ValidateAll(Accept(), "x", fixedSelector{values: []any{"x"}})
		require.ErrorIs(t, err, ErrSelectionUnsupported)
	})
}

func TestAccept(t *testing.T) {
	t.Parallel()
	a, err := Ready(Accept())(context.Background())
	require.NoError(t, err)
	assert.Empty(t, a.Validate(map[string]any{"anything": true}))
	assert.False(t, a.SupportsSelection())
}

func TestText(t *testing.T) {
	t.Parallel()
	s, ok := Text("abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", s)

	s, ok = Text([]byte("xyz"))
	assert.True(t, ok)
	assert.Equal(t, "xyz", s)

	_, ok = Text(1.0)
	assert.False(t, ok)
}

func TestCheckAdapter(t *testing.T) {
	t.Parallel()
	isOK := func(s string) error {
		if s == "ok" {
			return nil
		}
		return errors.New("Invalid thing")
	}
	a, err := NewCheck(isOK)(context.Background())
	require.NoError(t, err)

	assert.Empty(t, a.Validate("ok"))
	assert.Empty(t, a.Validate([]byte("ok")))

	errs := a.Validate("nope")
	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid thing", errs[0].Message)
	assert.True(t, errs[0].Position.IsZero())

	errs = a.Validate(42.0)
	require.Len(t, errs, 1)
	assert.Equal(t, "Value must be a string", errs[0].Message)

	assert.False(t, a.SupportsSelection())
}
