// Package orchestrator runs validation calls: it resolves the requested format, parses
// the input, applies the selection and validates every item.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/andyballingall/validation-service/internal/format"
	"github.com/andyballingall/validation-service/internal/parser"
	"github.com/andyballingall/validation-service/internal/position"
	"github.com/andyballingall/validation-service/internal/selection"
	"github.com/andyballingall/validation-service/internal/validator"
)

// Request names what the inputs of a call are validated against.
type Request struct {
	Format  string
	Version string
	Select  string
}

// Orchestrator validates inputs against the formats of one registry. It is safe for
// concurrent use.
type Orchestrator struct {
	registry  *format.Registry
	selection *selection.Engine
	logger    *slog.Logger
	workers   int
}

// New returns an Orchestrator validating with GOMAXPROCS workers.
func New(reg *format.Registry, sel *selection.Engine, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		registry:  reg,
		selection: sel,
		logger:    logger,
		workers:   runtime.GOMAXPROCS(0),
	}
}

// SetWorkers limits how many items are validated at once. Values below one are ignored.
func (o *Orchestrator) SetWorkers(n int) {
	if n > 0 {
		o.workers = n
	}
}

// Registry returns the registry formats are resolved in.
func (o *Orchestrator) Registry() *format.Registry {
	return o.registry
}

// call is a resolved request.
type call struct {
	format   *format.Format
	adapter  validator.Adapter
	selector validator.Selector
}

func (o *Orchestrator) resolve(req Request) (*call, error) {
	f, a, err := o.registry.Resolve(req.Format, req.Version)
	if err != nil {
		return nil, err
	}
	c := &call{format: f, adapter: a}
	if req.Select == "" {
		return c, nil
	}
	if !a.SupportsSelection() {
		return nil, validator.ErrSelectionUnsupported
	}
	s, err := o.selection.Compile(req.Select)
	if err != nil {
		return nil, malformed(err)
	}
	c.selector = s
	return c, nil
}

func malformed(err error) error {
	var se *selection.Error
	if errors.As(err, &se) {
		return &format.MalformedRequestError{Message: se.Error(), Err: err}
	}
	return err
}

// unit is one parsed item and the codec for the text it came from.
type unit struct {
	item  any
	codec *position.Codec
}

// Validate validates each input and returns one result per validated item, in input
// order. Text inputs are parsed with the format's parser first; if any input fails to
// parse, the only result is that parse failure. With a selection each item contributes
// one result per selected value.
func (o *Orchestrator) Validate(ctx context.Context, req Request, inputs ...any) ([]validator.Result, error) {
	c, err := o.resolve(req)
	if err != nil {
		return nil, err
	}

	var units []unit
	for _, input := range inputs {
		items, codec, err := parse(c.format.Parser(), input)
		if err != nil {
			return []validator.Result{parseFailure(err, codec)}, nil
		}
		for _, item := range items {
			units = append(units, unit{item: item, codec: codec})
		}
	}

	perItem := make([][]validator.Result, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rs, err := validator.ValidateAll(c.adapter, u.item, c.selector)
			if err != nil {
				return malformed(err)
			}
			for j := range rs {
				normalize(rs[j].Errors, u.codec)
			}
			perItem[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]validator.Result, 0, len(units))
	invalid := 0
	for _, rs := range perItem {
		for _, r := range rs {
			if !r.Valid() {
				invalid++
			}
			results = append(results, r)
		}
	}
	o.logger.Debug("validated", "format", req.Format, "version", req.Version,
		"inputs", len(inputs), "results", len(results), "invalid", invalid)
	return results, nil
}

// parse turns one input into items. Structured input is a single item.
func parse(p parser.Parser, input any) ([]any, *position.Codec, error) {
	codec := position.NoSource()
	if rec, ok := input.(parser.Record); ok {
		codec = position.NewCodec(rec.Text)
		if lp, ok := p.(parser.LineParser); ok {
			items, err := lp.ParseLine(rec.Text, rec.Line)
			return items, codec, err
		}
		input = rec.Text
	}
	if s, ok := validator.Text(input); ok {
		codec = position.NewCodec(s)
	}
	if p == nil {
		return []any{input}, codec, nil
	}
	items, err := p.Parse(input)
	return items, codec, err
}

func parseFailure(err error, codec *position.Codec) validator.Result {
	e := validator.Error{Message: err.Error(), Detail: err}
	var pe *parser.Error
	if errors.As(err, &pe) {
		e.Message = pe.Message
		e.Position = pe.Position
	}
	e.Alternates = codec.Alternates(e.Position)
	return validator.Failed(e)
}

// normalize attaches the alternate encodings of every error position.
func normalize(errs []validator.Error, codec *position.Codec) {
	for i := range errs {
		errs[i].Alternates = codec.Alternates(errs[i].Position)
	}
}
