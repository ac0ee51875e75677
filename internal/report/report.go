// Package report writes validation results and format listings for people and machines.
package report

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/andyballingall/validation-service/internal/format"
	"github.com/andyballingall/validation-service/internal/validator"
)

// Report is the outcome of one validation call.
type Report struct {
	Format    string
	Version   string
	Source    string // file name or "-" for stdin
	StartTime time.Time
	EndTime   time.Time
	Results   []validator.Result
}

// Counts returns the number of valid and invalid results.
func (r *Report) Counts() (valid, invalid int) {
	for _, res := range r.Results {
		if res.Valid() {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid
}

// Valid reports whether every result is valid.
func (r *Report) Valid() bool {
	_, invalid := r.Counts()
	return invalid == 0
}

// Reporter renders reports. A streamed call writes each result with WriteResult as it
// arrives and finishes with WriteSummary; a batch call uses Write.
type Reporter interface {
	Write(w io.Writer, r *Report) error
	WriteResult(w io.Writer, index int, res validator.Result) error
	WriteSummary(w io.Writer, r *Report) error
	WriteFormats(w io.Writer, formats []format.Summary) error
}

// New returns the reporter for an output name: "json" or "text".
func New(output string, useColour bool) Reporter {
	if output == "json" {
		return &JSONReporter{}
	}
	return &TextReporter{UseColour: useColour}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// WriteError writes err as {"error", "message", "status"}. Errors outside the format
// taxonomy are reported as internal errors.
func WriteError(w io.Writer, err error) error {
	body := errorBody{Error: "Internal", Message: err.Error(), Status: http.StatusInternalServerError}
	var se format.StatusError
	if errors.As(err, &se) {
		body.Error, body.Message, body.Status = se.Kind(), se.Error(), se.Status()
	}
	data, mErr := json.Marshal(body)
	if mErr != nil {
		return mErr
	}
	_, wErr := w.Write(append(data, '\n'))
	return wErr
}
