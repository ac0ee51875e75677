package report

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/andyballingall/validation-service/internal/format"
	"github.com/andyballingall/validation-service/internal/position"
	"github.com/andyballingall/validation-service/internal/validator"
)

func testReport() *Report {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Report{
		Format:    "person",
		Version:   "1",
		Source:    "people.json",
		StartTime: start,
		EndTime:   start.Add(time.Second),
		Results: []validator.Result{
			{},
			validator.Failed(validator.Error{
				Message:    "Unexpected end of JSON input",
				Position:   position.Char(1),
				Alternates: []position.Position{position.LineColumn(1, 2)},
			}),
			{Errors: []validator.Error{
				{Message: "must be object,boolean", Position: position.Pointer(nil)},
				{Message: "must have required property 'name'", Position: position.Pointer([]string{"a/b"})},
				{Message: "Invalid ISBN"},
			}},
		},
	}
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	t.Run("Plain", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, (&TextReporter{}).Write(&buf, testReport()))

		output := buf.String()
		assert.Contains(t, output, "DVS VALIDATION REPORT")
		assert.Contains(t, output, "person (version 1)")
		assert.Contains(t, output, "people.json")
		assert.Contains(t, output, "1s")
		assert.Contains(t, output, "[PASS] item 1")
		assert.Contains(t, output, "[FAIL] item 2")
		assert.Contains(t, output, "✗ Unexpected end of JSON input (rfc5147 char=1, linecol 1:2)")
		assert.Contains(t, output, "✗ must be object,boolean (jsonpointer (root))")
		assert.Contains(t, output, "✗ must have required property 'name' (jsonpointer /a~1b)")
		assert.Contains(t, output, "✗ Invalid ISBN\n")
		assert.Contains(t, output, "Validation summary: 1 valid, 2 invalid")
	})

	t.Run("Colour", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, (&TextReporter{UseColour: true}).Write(&buf, testReport()))

		output := buf.String()
		assert.Contains(t, output, "\033[32m[PASS]\033[0m")
		assert.Contains(t, output, "\033[31m[FAIL]\033[0m")
		assert.Contains(t, output, "\033[31m✗\033[0m")
		assert.Contains(t, output, "\033[1;37mValidation summary: \033[0m")
		assert.Contains(t, output, "\033[1;31m1 valid, 2 invalid\033[0m")
	})

	t.Run("All Valid", func(t *testing.T) {
		t.Parallel()
		r := &Report{Format: "json", Results: []validator.Result{{}, {}}}
		var buf bytes.Buffer
		require.NoError(t, (&TextReporter{UseColour: true}).Write(&buf, r))

		output := buf.String()
		assert.Contains(t, output, "\033[1;32m2 valid, 0 invalid\033[0m")
		assert.NotContains(t, output, "Duration")
		assert.NotContains(t, output, "version")
	})

	t.Run("Large Counts", func(t *testing.T) {
		t.Parallel()
		r := &Report{Results: make([]validator.Result, 1234)}
		var buf bytes.Buffer
		require.NoError(t, (&TextReporter{}).WriteSummary(&buf, r))
		assert.Contains(t, buf.String(), "1,234 valid, 0 invalid")
	})

	t.Run("Formats", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		err := (&TextReporter{}).WriteFormats(&buf, []format.Summary{
			{ID: "json", Title: "JSON"},
			{ID: "json-schema", Title: "JSON Schema", Versions: []string{"draft-04", "draft-07"}, DefaultVersion: "draft-07"},
		})
		require.NoError(t, err)
		assert.Equal(t, "json         JSON\njson-schema  JSON Schema [draft-04, draft-07*]\n", buf.String())
	})

	t.Run("No Formats", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, (&TextReporter{}).WriteFormats(&buf, nil))
		assert.Equal(t, "No formats found\n", buf.String())
	})
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	t.Run("Write emits the wire shape", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, (&JSONReporter{}).Write(&buf, testReport()))

		out := buf.Bytes()
		require.True(t, gjson.ValidBytes(out))
		assert.Equal(t, int64(3), gjson.GetBytes(out, "#").Int())
		assert.True(t, gjson.GetBytes(out, "0").Bool())
		assert.Equal(t, "Unexpected end of JSON input", gjson.GetBytes(out, "1.0.message").String())
		assert.Equal(t, "char=1", gjson.GetBytes(out, "1.0.position").String())
		assert.Equal(t, "rfc5147", gjson.GetBytes(out, "1.0.positionFormat").String())

		root := gjson.GetBytes(out, "2.0")
		assert.True(t, root.Get("position").Exists(), "the empty pointer is a position")
		assert.Empty(t, root.Get("position").String())
		assert.Equal(t, "jsonpointer", root.Get("positionFormat").String())
		assert.Equal(t, "/a~1b", gjson.GetBytes(out, "2.1.position").String())

		isbn := gjson.GetBytes(out, "2.2")
		assert.False(t, isbn.Get("position").Exists())
		assert.False(t, isbn.Get("positionFormat").Exists())
		assert.False(t, isbn.Get("alternates").Exists())
	})

	t.Run("Write with no results", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, (&JSONReporter{}).Write(&buf, &Report{}))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("WriteResult writes one line per result", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		jr := &JSONReporter{}
		for i, res := range testReport().Results {
			require.NoError(t, jr.WriteResult(&buf, i, res))
		}
		require.NoError(t, jr.WriteSummary(&buf, testReport()))

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 3)
		assert.Equal(t, "true", string(lines[0]))
		assert.Equal(t, "Unexpected end of JSON input", gjson.GetBytes(lines[1], "0.message").String())
	})

	t.Run("WriteFormats", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, (&JSONReporter{}).WriteFormats(&buf, []format.Summary{
			{ID: "regexp", Title: "Regular expression", Language: true},
		}))
		out := buf.Bytes()
		assert.Equal(t, "regexp", gjson.GetBytes(out, "0.id").String())
		assert.True(t, gjson.GetBytes(out, "0.language").Bool())
		assert.False(t, gjson.GetBytes(out, "0.versions").Exists())
	})
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		kind    string
		message string
		status  int64
	}{
		{
			name:    "not found",
			err:     &format.NotFoundError{Message: "Format not found"},
			kind:    "NotFound",
			message: "Format not found",
			status:  404,
		},
		{
			name:    "malformed request, wrapped",
			err:     fmt.Errorf("validate: %w", &format.MalformedRequestError{Message: "bad selection"}),
			kind:    "MalformedRequest",
			message: "bad selection",
			status:  400,
		},
		{
			name:    "configuration",
			err:     &format.ConfigurationError{Message: "No schema or parser available to validate x"},
			kind:    "MalformedConfiguration",
			message: "No schema or parser available to validate x",
			status:  500,
		},
		{
			name:    "other",
			err:     errors.New("disk on fire"),
			kind:    "Internal",
			message: "disk on fire",
			status:  500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, WriteError(&buf, tt.err))
			out := buf.Bytes()
			assert.Equal(t, tt.kind, gjson.GetBytes(out, "error").String())
			assert.Equal(t, tt.message, gjson.GetBytes(out, "message").String())
			assert.Equal(t, tt.status, gjson.GetBytes(out, "status").Int())
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	assert.IsType(t, &JSONReporter{}, New("json", true))
	assert.Equal(t, &TextReporter{UseColour: true}, New("text", true))
	assert.Equal(t, &TextReporter{}, New("", false))
}

func TestReportCounts(t *testing.T) {
	t.Parallel()
	r := testReport()
	valid, invalid := r.Counts()
	assert.Equal(t, 1, valid)
	assert.Equal(t, 2, invalid)
	assert.False(t, r.Valid())
	assert.True(t, (&Report{}).Valid())
}
