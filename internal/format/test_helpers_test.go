package format

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// digits is declared with one version per schema language that can express it.
var digits = Declaration{
	ID:             "digits",
	Title:          "Digits",
	DefaultVersion: "regexp",
	Versions: []Schema{
		{Version: "regexp", Type: "regexp", Value: "[0-9]+"},
		{Version: "ebnf", Type: "ebnf", Value: `digits = digit { digit } .
digit = "0" … "9" .`},
	},
}

// buildRegistry builds the builtin formats plus decls.
func buildRegistry(t *testing.T, decls ...Declaration) *Registry {
	t.Helper()
	b := NewBuilder(testLogger(), 4)
	require.NoError(t, b.AddBuiltins())
	for _, d := range decls {
		require.NoError(t, b.Add(d))
	}
	r, err := b.Build(context.Background())
	require.NoError(t, err)
	return r
}
