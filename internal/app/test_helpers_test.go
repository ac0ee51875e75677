package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/validation-service/internal/config"
	"github.com/andyballingall/validation-service/internal/format"
)

const testConfig = `
workers: 2
formats:
  - id: person
    title: Person
    defaultVersion: "1"
    versions:
      - version: "1"
        type: json-schema
        value:
          type: object
          required: [name]
          properties:
            name: {type: string}
      - version: "2"
        type: json-schema
        file: schemas/person-2.json
  - id: postcode
    versions:
      - version: "1"
        type: regexp
        value: "^[A-Z]{1,2}[0-9] [0-9][A-Z]{2}$"
`

const person2Schema = `{"type":"object","required":["name","age"]}`

type mockEnvProvider struct {
	values map[string]string
}

func (m *mockEnvProvider) Get(key string) string {
	return m.values[key]
}

type MockManager struct {
	mock.Mock
	registry *format.Registry
}

func (m *MockManager) Registry() *format.Registry {
	return m.registry
}

func (m *MockManager) Validate(ctx context.Context, opts ValidateOptions) error {
	args := m.Called(ctx, opts)
	return args.Error(0)
}

func (m *MockManager) WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error {
	args := m.Called(ctx, opts, readyChan)
	return args.Error(0)
}

func (m *MockManager) ListFormats(flt format.Filter, output string, useColour bool) error {
	args := m.Called(flt, output, useColour)
	return args.Error(0)
}

func (m *MockManager) Schema(id, version string) (*format.Schema, error) {
	args := m.Called(id, version)
	s, _ := args.Get(0).(*format.Schema)
	return s, args.Error(1)
}

// safeBuffer is a thread-safe wrapper around bytes.Buffer for use in concurrent tests.
type safeBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *safeBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// waitFor polls the buffer until it contains n occurrences of substr or timeout is reached.
func (s *safeBuffer) waitFor(substr string, n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if bytes.Count([]byte(s.String()), []byte(substr)) >= n {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupConfigDir writes testConfig and its schema file to a new directory.
func setupConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schemas"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemas", "person-2.json"), []byte(person2Schema), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(testConfig), 0o600))
	return dir
}

// builtinRegistry returns a registry of the builtin formats.
func builtinRegistry(t *testing.T) *format.Registry {
	t.Helper()
	b := format.NewBuilder(discardLogger(), 1)
	require.NoError(t, b.AddBuiltins())
	r, err := b.Build(context.Background())
	require.NoError(t, err)
	return r
}
