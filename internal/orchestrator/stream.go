package orchestrator

import (
	"bufio"
	"context"
	"io"

	"github.com/andyballingall/validation-service/internal/format"
	"github.com/andyballingall/validation-service/internal/parser"
	"github.com/andyballingall/validation-service/internal/validator"
)

// maxLine is the longest line StreamReader accepts.
const maxLine = 16 << 20

var errStreamSelection = &format.MalformedRequestError{Message: "Selection is not supported when streaming"}

// ValidateStream validates inputs as they arrive on in and emits their results in
// arrival order. An input that fails to parse yields one failed result and the stream
// continues. At most the worker limit of inputs are in flight; beyond that intake
// waits for the consumer. The output is closed when in is closed and drained, or when
// ctx is done.
func (o *Orchestrator) ValidateStream(ctx context.Context, req Request, in <-chan any) (<-chan validator.Result, error) {
	if req.Select != "" {
		return nil, errStreamSelection
	}
	c, err := o.resolve(req)
	if err != nil {
		return nil, err
	}

	pending := make(chan chan []validator.Result, o.workers)
	out := make(chan validator.Result)

	go func() {
		defer close(pending)
		for {
			var input any
			var ok bool
			select {
			case <-ctx.Done():
				return
			case input, ok = <-in:
				if !ok {
					return
				}
			}
			future := make(chan []validator.Result, 1)
			select {
			case <-ctx.Done():
				return
			case pending <- future:
			}
			go func() {
				future <- o.validateOne(c, input)
			}()
		}
	}()

	go func() {
		defer close(out)
		for future := range pending {
			var results []validator.Result
			select {
			case <-ctx.Done():
				return
			case results = <-future:
			}
			for _, r := range results {
				select {
				case <-ctx.Done():
					return
				case out <- r:
				}
			}
		}
	}()

	return out, nil
}

func (o *Orchestrator) validateOne(c *call, input any) []validator.Result {
	items, codec, err := parse(c.format.Parser(), input)
	if err != nil {
		return []validator.Result{parseFailure(err, codec)}
	}
	results := make([]validator.Result, len(items))
	for i, item := range items {
		errs := c.adapter.Validate(item)
		normalize(errs, codec)
		results[i] = validator.Result{Errors: errs}
	}
	return results
}

// StreamReader validates the content of r and passes every result to emit. Input in a
// line oriented format is validated line by line while it is read; any other input is
// read fully and validated as one text. An error from emit stops the call.
func (o *Orchestrator) StreamReader(ctx context.Context, req Request, r io.Reader, emit func(validator.Result) error) error {
	f, err := o.registry.Format(req.Format)
	if err != nil {
		return err
	}
	if _, ok := f.Parser().(parser.LineParser); !ok || req.Select != "" {
		results, err := o.ValidateReader(ctx, req, r)
		if err != nil {
			return err
		}
		for _, res := range results {
			if err := emit(res); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan any)
	out, err := o.ValidateStream(ctx, req, lines)
	if err != nil {
		return err
	}

	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)
		n := 0
		for sc.Scan() {
			n++
			select {
			case lines <- parser.Record{Line: n, Text: sc.Text()}:
			case <-ctx.Done():
				scanErr <- ctx.Err()
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for res := range out {
		if err := emit(res); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return <-scanErr
}

// ValidateReader reads r fully and validates it as one text input. A line break ending
// the input is not part of it.
func (o *Orchestrator) ValidateReader(ctx context.Context, req Request, r io.Reader) ([]validator.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return o.Validate(ctx, req, parser.TrimLineBreak(string(data)))
}
