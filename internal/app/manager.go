package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/andyballingall/validation-service/internal/config"
	"github.com/andyballingall/validation-service/internal/format"
	"github.com/andyballingall/validation-service/internal/orchestrator"
	"github.com/andyballingall/validation-service/internal/parser"
	"github.com/andyballingall/validation-service/internal/report"
	"github.com/andyballingall/validation-service/internal/selection"
	"github.com/andyballingall/validation-service/internal/validator"
)

// Stdin names standard input as a validation input.
const Stdin = "-"

// ValidateOptions describes one validate invocation.
type ValidateOptions struct {
	Request   orchestrator.Request
	Inputs    []string // file paths; none, or Stdin, reads standard input
	Output    string
	UseColour bool
	Stream    bool
}

// Manager defines the operations behind the CLI commands.
type Manager interface {
	Validate(ctx context.Context, opts ValidateOptions) error
	WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error
	ListFormats(flt format.Filter, output string, useColour bool) error
	Schema(id, version string) (*format.Schema, error)
	Registry() *format.Registry
}

// Ensure the interface is satisfied.
var _ Manager = (*LazyManager)(nil)

// LazyManager acts as a placeholder for a real Manager implementation, allowing
// for deferred initialization of dependencies.
type LazyManager struct {
	inner Manager
}

func (l *LazyManager) SetInner(m Manager) {
	l.inner = m
}

// HasInner returns true if the inner manager has been set.
func (l *LazyManager) HasInner() bool {
	return l.inner != nil
}

func (l *LazyManager) check() Manager {
	if l.inner == nil {
		panic("LazyManager accessed before initialization; check command wiring.")
	}
	return l.inner
}

func (l *LazyManager) Validate(ctx context.Context, opts ValidateOptions) error {
	return l.check().Validate(ctx, opts)
}

func (l *LazyManager) WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error {
	return l.check().WatchValidation(ctx, opts, readyChan)
}

func (l *LazyManager) ListFormats(flt format.Filter, output string, useColour bool) error {
	return l.check().ListFormats(flt, output, useColour)
}

func (l *LazyManager) Schema(id, version string) (*format.Schema, error) {
	return l.check().Schema(id, version)
}

func (l *LazyManager) Registry() *format.Registry {
	return l.check().Registry()
}

// service is everything built from one reading of the configuration.
type service struct {
	cfg          *config.Config
	orchestrator *orchestrator.Orchestrator
}

// loadService reads dvs.yml from dir, or serves the builtin formats alone when there is
// none, and builds the registry.
func loadService(ctx context.Context, dir string, logger *slog.Logger) (*service, error) {
	cfg, err := config.New(dir)
	var missing *config.MissingConfigError
	switch {
	case errors.As(err, &missing):
		logger.Debug("no dvs.yml found, serving builtin formats", "dir", dir)
		cfg = config.Empty(dir)
	case err != nil:
		return nil, err
	}

	b := format.NewBuilder(logger, cfg.Workers)
	if err := b.AddBuiltins(); err != nil {
		return nil, err
	}
	decls, err := cfg.Declarations()
	if err != nil {
		return nil, err
	}
	for _, d := range decls {
		if err := b.Add(d); err != nil {
			return nil, err
		}
	}
	reg, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}

	sel, err := selection.New(cfg.SelectionCacheSize)
	if err != nil {
		return nil, err
	}
	o := orchestrator.New(reg, sel, logger)
	o.SetWorkers(cfg.Workers)
	return &service{cfg: cfg, orchestrator: o}, nil
}

// Ensure the interface is satisfied.
var _ Manager = (*CLIManager)(nil)

// CLIManager is the concrete implementation of the Manager interface.
type CLIManager struct {
	logger         *slog.Logger
	dir            string
	stdin          io.Reader
	reporterWriter io.Writer

	mu  sync.RWMutex
	svc *service
}

// NewCLIManager builds the registry served from the configuration in dir.
func NewCLIManager(ctx context.Context, logger *slog.Logger, dir string, stdin io.Reader, stdout io.Writer) (*CLIManager, error) {
	svc, err := loadService(ctx, dir, logger)
	if err != nil {
		return nil, err
	}
	return &CLIManager{
		logger:         logger,
		dir:            dir,
		stdin:          stdin,
		reporterWriter: stdout,
		svc:            svc,
	}, nil
}

func (m *CLIManager) service() *service {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.svc
}

// reload rebuilds the registry. The previous one stays in use when rebuilding fails.
func (m *CLIManager) reload(ctx context.Context) error {
	svc, err := loadService(ctx, m.dir, m.logger)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.svc = svc
	m.mu.Unlock()
	return nil
}

func (m *CLIManager) Registry() *format.Registry {
	return m.service().orchestrator.Registry()
}

func (m *CLIManager) ListFormats(flt format.Filter, output string, useColour bool) error {
	m.logger.Debug("listing formats", "id", flt.ID, "language", flt.Language)
	return report.New(output, useColour).WriteFormats(m.reporterWriter, m.Registry().List(flt))
}

func (m *CLIManager) Schema(id, version string) (*format.Schema, error) {
	f, err := m.Registry().Format(id)
	if err != nil {
		return nil, err
	}
	return f.Schema(version)
}

func (m *CLIManager) Validate(ctx context.Context, opts ValidateOptions) error {
	m.logger.Debug("validating", "format", opts.Request.Format, "version", opts.Request.Version,
		"select", opts.Request.Select, "inputs", opts.Inputs, "stream", opts.Stream)

	var err error
	if opts.Stream {
		err = m.validateStream(ctx, opts)
	} else {
		err = m.validateBatch(ctx, opts)
	}

	var invalid *InvalidItemsError
	if err != nil && !errors.As(err, &invalid) && opts.Output == "json" {
		if wErr := report.WriteError(m.reporterWriter, err); wErr != nil {
			return wErr
		}
		return &ReportedError{Err: err}
	}
	return err
}

func (m *CLIManager) validateBatch(ctx context.Context, opts ValidateOptions) error {
	inputs, err := m.readInputs(opts.Inputs)
	if err != nil {
		return err
	}

	r := &report.Report{
		Format:    opts.Request.Format,
		Version:   opts.Request.Version,
		Source:    sourceLabel(opts.Inputs),
		StartTime: time.Now(),
	}
	r.Results, err = m.service().orchestrator.Validate(ctx, opts.Request, inputs...)
	if err != nil {
		return err
	}
	r.EndTime = time.Now()

	if err := report.New(opts.Output, opts.UseColour).Write(m.reporterWriter, r); err != nil {
		return err
	}
	return invalidItems(r)
}

func (m *CLIManager) validateStream(ctx context.Context, opts ValidateOptions) error {
	if len(opts.Inputs) > 1 {
		return &StreamInputsError{Count: len(opts.Inputs)}
	}
	rc, err := m.open(sourceLabel(opts.Inputs))
	if err != nil {
		return err
	}
	defer rc.Close()

	reporter := report.New(opts.Output, opts.UseColour)
	r := &report.Report{
		Format:  opts.Request.Format,
		Version: opts.Request.Version,
		Source:  sourceLabel(opts.Inputs),
	}
	emit := func(res validator.Result) error {
		if err := reporter.WriteResult(m.reporterWriter, len(r.Results), res); err != nil {
			return err
		}
		r.Results = append(r.Results, res)
		return nil
	}
	if err := m.service().orchestrator.StreamReader(ctx, opts.Request, rc, emit); err != nil {
		return err
	}
	if err := reporter.WriteSummary(m.reporterWriter, r); err != nil {
		return err
	}
	return invalidItems(r)
}

func invalidItems(r *report.Report) error {
	if _, invalid := r.Counts(); invalid > 0 {
		return &InvalidItemsError{Invalid: invalid, Total: len(r.Results)}
	}
	return nil
}

func sourceLabel(inputs []string) string {
	if len(inputs) == 0 {
		return Stdin
	}
	return strings.Join(inputs, ", ")
}

func (m *CLIManager) open(path string) (io.ReadCloser, error) {
	if path == Stdin {
		return io.NopCloser(m.stdin), nil
	}
	return os.Open(path)
}

// readInputs reads every input as one text. The line break ending a file is not part
// of its value.
func (m *CLIManager) readInputs(paths []string) ([]any, error) {
	if len(paths) == 0 {
		paths = []string{Stdin}
	}
	inputs := make([]any, 0, len(paths))
	for _, p := range paths {
		rc, err := m.open(p)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		inputs = append(inputs, parser.TrimLineBreak(string(data)))
	}
	return inputs, nil
}

// WatchValidation validates once, then again whenever an input, dvs.yml or a schema
// file changes, until ctx is done. Configuration changes rebuild the registry first.
// If you want to know when the watcher is ready to start listening to changes,
// pass a non-nil readyChan to be notified.
func (m *CLIManager) WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error {
	m.logger.Debug("watching validation", "format", opts.Request.Format, "inputs", opts.Inputs)

	inputs := make([]string, 0, len(opts.Inputs))
	for _, in := range opts.Inputs {
		if in == Stdin {
			return &WatchStdinError{}
		}
		abs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		inputs = append(inputs, abs)
	}
	if len(inputs) == 0 {
		return &WatchStdinError{}
	}

	run := func() {
		err := m.Validate(ctx, opts)
		var invalid *InvalidItemsError
		var reported *ReportedError
		if err != nil && !errors.As(err, &invalid) && !errors.As(err, &reported) {
			m.logger.Error("Validation failed", "error", err)
		}
	}
	run()

	watcher := NewWatcher(m.dir, append(inputs, m.service().cfg.SchemaFiles()...), m.classify(inputs), m.logger)
	callback := func(event WatchEvent) {
		if event.Reload {
			m.logger.Info("Configuration changed:", "path", event.Path)
			if err := m.reload(ctx); err != nil {
				m.logger.Error("Reload failed", "error", err)
				return
			}
		} else {
			m.logger.Info("Input changed:", "path", event.Path)
		}
		run()
	}

	// Forward watcher Ready signal if caller wants notification
	if readyChan != nil {
		go func() {
			select {
			case <-watcher.Ready:
				readyChan <- struct{}{}
			case <-ctx.Done():
			}
		}()
	}

	return watcher.Watch(ctx, callback)
}

// classify maps a changed path to a WatchEvent. The set of schema files is read at
// the time of the change, so files added by a reload are picked up.
func (m *CLIManager) classify(inputs []string) func(string) *WatchEvent {
	return func(path string) *WatchEvent {
		if path == filepath.Join(m.dir, config.ConfigFile) {
			return &WatchEvent{Path: path, Reload: true}
		}
		for _, s := range m.service().cfg.SchemaFiles() {
			if path == s {
				return &WatchEvent{Path: path, Reload: true}
			}
		}
		for _, in := range inputs {
			if path == in {
				return &WatchEvent{Path: path}
			}
		}
		return nil
	}
}
