package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/andyballingall/validation-service/internal/format"
	"github.com/andyballingall/validation-service/internal/position"
	"github.com/andyballingall/validation-service/internal/validator"
)

// TextReporter writes results for people.
type TextReporter struct {
	UseColour bool
}

const (
	colReset     = "\033[0m"
	colRed       = "\033[31m"
	colGreen     = "\033[32m"
	colGrey      = "\033[90m"
	colWhite     = "\033[37m"
	colBoldRed   = "\033[1;31m"
	colBoldGreen = "\033[1;32m"
	colBoldWhite = "\033[1;37m"
)

var printer = message.NewPrinter(language.English)

var divider = strings.Repeat("-", 40)

// cs returns a string which will render with the given colour
// if colourisation is enabled.
func (tr *TextReporter) cs(c, s string) string {
	if !tr.UseColour {
		return s
	}
	return c + s + colReset
}

func (tr *TextReporter) Write(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "%s\n", divider)
	fmt.Fprint(w, tr.cs(colBoldWhite, "DVS VALIDATION REPORT\n\n"))
	fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Format:  "), tr.cs(colWhite, formatLabel(r)))
	if r.Source != "" {
		fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Input:   "), tr.cs(colWhite, r.Source))
	}
	if !r.StartTime.IsZero() {
		fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Duration:"), tr.cs(colWhite, r.EndTime.Sub(r.StartTime).String()))
	}
	fmt.Fprintf(w, "%s\n", divider)

	for i, res := range r.Results {
		if err := tr.WriteResult(w, i, res); err != nil {
			return err
		}
	}
	return tr.WriteSummary(w, r)
}

func formatLabel(r *Report) string {
	if r.Version == "" {
		return r.Format
	}
	return r.Format + " (version " + r.Version + ")"
}

func (tr *TextReporter) WriteResult(w io.Writer, index int, res validator.Result) error {
	item := fmt.Sprintf("item %d", index+1)
	if res.Valid() {
		_, err := fmt.Fprintf(w, "%s %s\n", tr.cs(colGreen, "[PASS]"), item)
		return err
	}
	fmt.Fprintf(w, "%s %s\n", tr.cs(colRed, "[FAIL]"), tr.cs(colRed, item))
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %s %s", tr.cs(colRed, "✗"), e.Message)
		if loc := location(e); loc != "" {
			fmt.Fprintf(w, " %s", tr.cs(colGrey, "("+loc+")"))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// location describes where an error is, in every encoding known for it.
func location(e validator.Error) string {
	if e.Position.IsZero() {
		return ""
	}
	parts := []string{describe(e.Position)}
	for _, alt := range e.Alternates {
		parts = append(parts, describe(alt))
	}
	return strings.Join(parts, ", ")
}

func describe(p position.Position) string {
	if p.Format == position.JSONPointer && p.Value == "" {
		return "jsonpointer (root)"
	}
	return string(p.Format) + " " + p.Value
}

func (tr *TextReporter) WriteSummary(w io.Writer, r *Report) error {
	valid, invalid := r.Counts()
	fmt.Fprintf(w, "%s\n", divider)
	summaryLabel := tr.cs(colBoldWhite, "Validation summary: ")
	summaryStats := printer.Sprintf("%d valid, %d invalid", valid, invalid)
	statsColor := colBoldGreen
	if invalid > 0 {
		statsColor = colBoldRed
	}
	fmt.Fprintf(w, "%s%s\n", summaryLabel, tr.cs(statsColor, summaryStats))
	_, err := fmt.Fprintf(w, "%s\n", divider)
	return err
}

func (tr *TextReporter) WriteFormats(w io.Writer, formats []format.Summary) error {
	if len(formats) == 0 {
		_, err := fmt.Fprintln(w, "No formats found")
		return err
	}
	width := 0
	for _, f := range formats {
		width = max(width, len(f.ID))
	}
	for _, f := range formats {
		title := f.Title
		if title == "" {
			title = f.Short
		}
		fmt.Fprintf(w, "%s  %s", tr.cs(colBoldWhite, fmt.Sprintf("%-*s", width, f.ID)), title)
		if len(f.Versions) > 0 {
			versions := make([]string, len(f.Versions))
			for i, v := range f.Versions {
				versions[i] = v
				if v == f.DefaultVersion {
					versions[i] += "*"
				}
			}
			fmt.Fprintf(w, " %s", tr.cs(colGrey, "["+strings.Join(versions, ", ")+"]"))
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
