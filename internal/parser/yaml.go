package parser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andyballingall/validation-service/internal/position"
)

var yamlLine = regexp.MustCompile(`line (\d+)`)

// YAML parses a YAML stream. Each document is one item. Mappings become
// map[string]any so items look the same as decoded JSON.
type YAML struct{}

func (YAML) Parse(input any) ([]any, error) {
	s, ok := text(input)
	if !ok {
		return []any{input}, nil
	}
	dec := yaml.NewDecoder(strings.NewReader(s))
	var items []any
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, yamlError(err)
		}
		items = append(items, NormalizeYAML(v))
	}
	return items, nil
}

// yamlParserProblems are the syntax errors yaml.v3 raises from its parser. It numbers
// their lines from zero, where scanner errors count from one, and it leaves the line
// out of either kind when the number it would print is zero.
var yamlParserProblems = map[string]bool{
	"did not find expected ',' or ']'":       true,
	"did not find expected ',' or '}'":       true,
	"did not find expected '-' indicator":    true,
	"did not find expected <document start>": true,
	"did not find expected <stream-start>":   true,
	"did not find expected key":              true,
	"did not find expected node content":     true,
	"found duplicate %TAG directive":         true,
	"found duplicate %YAML directive":        true,
	"found incompatible YAML document":       true,
	"found undefined tag handle":             true,
}

var yamlScannerProblem = regexp.MustCompile(`^(found |could not find |did not find |mapping (keys|values) are not allowed|block sequence entries are not allowed|exceeded max depth)`)

func yamlError(err error) *Error {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	e := &Error{Message: capitalize(msg)}
	m := yamlLine.FindStringSubmatch(msg)
	if m == nil {
		if yamlParserProblems[msg] || yamlScannerProblem.MatchString(msg) {
			e.Position = position.Line(1)
		}
		return e
	}
	n, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return e
	}
	if yamlParserProblems[strings.TrimPrefix(msg, m[0]+": ")] {
		n++
	}
	e.Position = position.Line(n)
	return e
}

// NormalizeYAML converts a value decoded by yaml.v3 to the shapes a JSON decoder
// produces.
func NormalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = NormalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = NormalizeYAML(val)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = NormalizeYAML(t[i])
		}
		return arr
	case int64:
		if t >= math.MinInt && t <= math.MaxInt {
			return int(t)
		}
		return float64(t)
	case uint64:
		if t <= math.MaxInt {
			return int(t)
		}
		return float64(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}
