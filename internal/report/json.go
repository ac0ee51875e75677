package report

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/andyballingall/validation-service/internal/format"
	"github.com/andyballingall/validation-service/internal/validator"
)

// JSONReporter writes the wire shape: an array with one entry per item, true or the
// list of errors. Streamed results are written one per line.
type JSONReporter struct{}

func (jr *JSONReporter) Write(w io.Writer, r *Report) error {
	results := r.Results
	if results == nil {
		results = []validator.Result{}
	}
	return writeLine(w, results)
}

func (jr *JSONReporter) WriteResult(w io.Writer, _ int, res validator.Result) error {
	return writeLine(w, res)
}

func (jr *JSONReporter) WriteSummary(io.Writer, *Report) error {
	return nil
}

func (jr *JSONReporter) WriteFormats(w io.Writer, formats []format.Summary) error {
	if formats == nil {
		formats = []format.Summary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(formats)
}

func writeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
