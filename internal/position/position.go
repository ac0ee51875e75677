// Package position provides the position tokens attached to validation errors and
// the conversions between their encodings.
package position

import (
	"fmt"
	"strconv"
	"strings"
)

// Format identifies how a position token is encoded.
type Format string

const (
	// JSONPointer is an RFC 6901 pointer into a structured value. "" is the whole value.
	JSONPointer Format = "jsonpointer"
	// RFC5147 is a "char=N" or "line=N" fragment of a text/plain resource.
	RFC5147 Format = "rfc5147"
	// LineCol is "<line>:<column>", both 1-based.
	LineCol Format = "linecol"
	// RowCol is "<row>:<column>", both 1-based, as reported by row oriented parsers.
	RowCol Format = "rowcol"
)

// Valid reports whether f is one of the known encodings.
func (f Format) Valid() bool {
	switch f {
	case JSONPointer, RFC5147, LineCol, RowCol:
		return true
	}
	return false
}

// Position is a token paired with its encoding. The zero value means "no position".
type Position struct {
	Value  string
	Format Format
}

// IsZero reports whether p carries no position.
func (p Position) IsZero() bool {
	return p.Format == ""
}

func (p Position) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %q", p.Format, p.Value)
}

// Char returns the rfc5147 position of a character offset.
func Char(n int) Position {
	return Position{Value: "char=" + strconv.Itoa(n), Format: RFC5147}
}

// Line returns the rfc5147 position of a 1-based line.
func Line(n int) Position {
	return Position{Value: "line=" + strconv.Itoa(n), Format: RFC5147}
}

// LineColumn returns a linecol position.
func LineColumn(line, col int) Position {
	return Position{Value: strconv.Itoa(line) + ":" + strconv.Itoa(col), Format: LineCol}
}

// RowColumn returns a rowcol position.
func RowColumn(row, col int) Position {
	return Position{Value: strconv.Itoa(row) + ":" + strconv.Itoa(col), Format: RowCol}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer returns the JSON Pointer addressing the given path segments.
func Pointer(segments []string) Position {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(s))
	}
	return Position{Value: b.String(), Format: JSONPointer}
}

// CharOffset extracts N from an rfc5147 "char=N" token.
func (p Position) CharOffset() (int, bool) {
	return p.rfc5147("char=")
}

// LineNumber extracts N from an rfc5147 "line=N" token.
func (p Position) LineNumber() (int, bool) {
	return p.rfc5147("line=")
}

func (p Position) rfc5147(prefix string) (int, bool) {
	if p.Format != RFC5147 {
		return 0, false
	}
	s, ok := strings.CutPrefix(p.Value, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// LineCol extracts the line and column of a linecol or rowcol token.
func (p Position) LineCol() (line, col int, ok bool) {
	if p.Format != LineCol && p.Format != RowCol {
		return 0, 0, false
	}
	l, c, found := strings.Cut(p.Value, ":")
	if !found {
		return 0, 0, false
	}
	line, lErr := strconv.Atoi(l)
	col, cErr := strconv.Atoi(c)
	if lErr != nil || cErr != nil || line < 1 || col < 1 {
		return 0, 0, false
	}
	return line, col, true
}
