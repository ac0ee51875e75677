package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputValue(t *testing.T) {
	t.Parallel()

	o := outputValue("text")
	assert.Equal(t, "text", o.String())
	assert.Equal(t, "<output>", o.Type())

	require.NoError(t, o.Set("json"))
	assert.Equal(t, "json", o.String())
	require.NoError(t, o.Set("text"))
	assert.Equal(t, "text", o.String())

	assert.EqualError(t, o.Set("invalid"), "must be 'text' or 'json'")
	assert.Equal(t, "text", o.String())
}

func TestLanguageValue(t *testing.T) {
	t.Parallel()

	var l languageValue
	assert.Empty(t, l.String())
	assert.Equal(t, "<language>", l.Type())

	for _, v := range []string{"json-schema", "regexp", "ebnf"} {
		require.NoError(t, l.Set(v))
		assert.Equal(t, v, l.String())
	}
	assert.EqualError(t, l.Set("xsd"), "must be one of [ebnf json-schema regexp]")
}

func TestPathValue(t *testing.T) {
	t.Parallel()

	p := pathValue("")
	assert.Empty(t, p.String())
	assert.Equal(t, "<path>", p.Type())

	require.NoError(t, p.Set("/some/path"))
	assert.Equal(t, "/some/path", p.String())
}
