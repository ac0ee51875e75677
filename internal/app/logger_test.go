package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("writes to the config directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		logLevel := &slog.LevelVar{}
		logLevel.Set(slog.LevelInfo)
		stderr := &bytes.Buffer{}

		logger, closer, err := setupLogger(stderr, logLevel, dir, &mockEnvProvider{})
		require.NoError(t, err)
		require.NotNil(t, closer)
		defer closer.Close()
		assert.FileExists(t, filepath.Join(dir, LogFile))

		logger.Info("test message", "key", "value")

		assert.Contains(t, stderr.String(), "test message")
		assert.NotContains(t, stderr.String(), "key=value", "info does not show attrs")

		data, err := os.ReadFile(filepath.Join(dir, LogFile))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"test message"`)
		assert.Contains(t, string(data), `"key":"value"`)
	})

	t.Run("debug records reach the file only", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		logLevel := &slog.LevelVar{}
		stderr := &bytes.Buffer{}

		logger, closer, err := setupLogger(stderr, logLevel, dir, &mockEnvProvider{})
		require.NoError(t, err)
		defer closer.Close()

		logger.Debug("quiet")
		assert.Empty(t, stderr.String())
		data, err := os.ReadFile(filepath.Join(dir, LogFile))
		require.NoError(t, err)
		assert.Contains(t, string(data), "quiet")
	})

	t.Run("env var override", func(t *testing.T) {
		t.Parallel()
		logFile := filepath.Join(t.TempDir(), "custom.log")
		env := &mockEnvProvider{values: map[string]string{LogEnvVar: logFile}}

		logger, closer, err := setupLogger(&bytes.Buffer{}, &slog.LevelVar{}, t.TempDir(), env)
		require.NoError(t, err)
		defer closer.Close()

		logger.Info("custom log")
		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "custom log")
	})

	t.Run("fallback on file error", func(t *testing.T) {
		t.Parallel()
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))
		env := &mockEnvProvider{values: map[string]string{LogEnvVar: filepath.Join(blocker, "dvs.log")}}
		stderr := &bytes.Buffer{}

		logger, closer, err := setupLogger(stderr, &slog.LevelVar{}, "", env)
		require.Error(t, err)
		assert.Nil(t, closer)
		require.NotNil(t, logger)

		logger.Info("fallback message")
		assert.Contains(t, stderr.String(), "fallback message")
	})
}

func TestConsoleHandler(t *testing.T) {
	t.Parallel()

	t.Run("levels", func(t *testing.T) {
		t.Parallel()
		logLevel := &slog.LevelVar{}
		logLevel.Set(slog.LevelDebug)
		buf := &bytes.Buffer{}
		handler := &consoleHandler{w: buf, level: logLevel}

		tests := []struct {
			level slog.Level
			msg   string
			want  string
		}{
			{slog.LevelDebug, "d", "d\n"},
			{slog.LevelInfo, "i", "i\n"},
			{slog.LevelWarn, "w", "Warning: w\n"},
			{slog.LevelError, "e", "Error: e\n"},
		}
		for _, tt := range tests {
			buf.Reset()
			require.NoError(t, handler.Handle(context.Background(), slog.Record{Level: tt.level, Message: tt.msg}))
			assert.Equal(t, tt.want, buf.String())
		}
	})

	t.Run("attributes", func(t *testing.T) {
		t.Parallel()
		logLevel := &slog.LevelVar{}
		logLevel.Set(slog.LevelDebug)
		buf := &bytes.Buffer{}
		handler := &consoleHandler{w: buf, level: logLevel}

		rec := slog.NewRecord(time.Now(), slog.LevelWarn, "format version unusable", 0)
		rec.AddAttrs(slog.String("error", "Invalid EBNF"))
		require.NoError(t, handler.Handle(context.Background(), rec))
		assert.Equal(t, "Warning: format version unusable: Invalid EBNF\n", buf.String())

		buf.Reset()
		logLevel.Set(slog.LevelInfo)
		rec2 := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
		rec2.AddAttrs(slog.String("format", "json"))
		require.NoError(t, handler.Handle(context.Background(), rec2))
		assert.Equal(t, "msg\n", buf.String())

		buf.Reset()
		logLevel.Set(slog.LevelDebug)
		h2 := handler.WithAttrs([]slog.Attr{slog.String("component", "watcher")})
		require.NoError(t, h2.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)))
		assert.Equal(t, "msg component=watcher\n", buf.String())
		assert.Same(t, h2, h2.WithGroup("g"))
	})
}

type errHandler struct{}

func (e *errHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (e *errHandler) Handle(context.Context, slog.Record) error { return errors.New("handler error") }
func (e *errHandler) WithAttrs(_ []slog.Attr) slog.Handler      { return e }
func (e *errHandler) WithGroup(_ string) slog.Handler           { return e }

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	t.Run("Enabled", func(t *testing.T) {
		t.Parallel()
		h1 := &consoleHandler{w: &bytes.Buffer{}, level: &slog.LevelVar{}}
		h2 := &consoleHandler{w: &bytes.Buffer{}, level: &slog.LevelVar{}}
		multi := &multiHandler{handlers: []slog.Handler{h1, h2}}

		assert.True(t, multi.Enabled(context.Background(), slog.LevelInfo))

		h1.level.Set(slog.LevelError)
		h2.level.Set(slog.LevelError)
		assert.False(t, multi.Enabled(context.Background(), slog.LevelInfo))
	})

	t.Run("Handle error propagation", func(t *testing.T) {
		t.Parallel()
		m := &multiHandler{handlers: []slog.Handler{&errHandler{}}}
		require.Error(t, m.Handle(context.Background(), slog.Record{Level: slog.LevelInfo}))
	})

	t.Run("WithAttrs and WithGroup", func(t *testing.T) {
		t.Parallel()
		h1 := &consoleHandler{w: &bytes.Buffer{}, level: &slog.LevelVar{}}
		multi := &multiHandler{handlers: []slog.Handler{h1, &errHandler{}}}

		m2 := multi.WithAttrs([]slog.Attr{slog.String("v", "1")})
		assert.IsType(t, &multiHandler{}, m2)
		assert.IsType(t, &multiHandler{}, m2.WithGroup("g"))
	})
}
