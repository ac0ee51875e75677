package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var errTrailingInput = errors.New("unexpected end of path")

// translate rewrites a JSONPath expression as an equivalent jq program.
func translate(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "$")
	if !ok {
		return "", fmt.Errorf("path must start with $")
	}
	steps := []string{"."}
	for rest != "" {
		var step string
		var err error
		switch {
		case strings.HasPrefix(rest, ".."):
			step, rest, err = descendant(rest[2:])
		case rest[0] == '.':
			step, rest, err = dotChild(rest[1:])
		case rest[0] == '[':
			step, rest, err = bracket(rest)
		default:
			err = fmt.Errorf("unexpected %q", rest[:1])
		}
		if err != nil {
			return "", err
		}
		steps = append(steps, step)
	}
	return strings.Join(steps, " | "), nil
}

func descendant(rest string) (string, string, error) {
	switch {
	case strings.HasPrefix(rest, "*"):
		return ".[]? | ..", rest[1:], nil
	case strings.HasPrefix(rest, "["):
		step, rest, err := bracket(rest)
		if err != nil {
			return "", "", err
		}
		if step == ".[]?" {
			return ".[]? | ..", rest, nil
		}
		return ".. | " + step, rest, nil
	}
	name, rest := splitName(rest)
	if name == "" {
		return "", "", errTrailingInput
	}
	return ".. | " + member(name), rest, nil
}

func dotChild(rest string) (string, string, error) {
	if strings.HasPrefix(rest, "*") {
		return ".[]?", rest[1:], nil
	}
	name, rest := splitName(rest)
	if name == "" {
		return "", "", errTrailingInput
	}
	return member(name), rest, nil
}

// bracket handles [*], [n], ['name'] and ["name"].
func bracket(rest string) (string, string, error) {
	end := closingBracket(rest)
	if end < 0 {
		return "", "", fmt.Errorf("unterminated %q", rest)
	}
	inner := strings.TrimSpace(rest[1:end])
	rest = rest[end+1:]
	switch {
	case inner == "*":
		return ".[]?", rest, nil
	case len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0]:
		return member(inner[1 : len(inner)-1]), rest, nil
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return "", "", fmt.Errorf("unsupported subscript [%s]", inner)
	}
	return fmt.Sprintf(`select(type == "array" and length > %d) | .[%d]`, n, n), rest, nil
}

func closingBracket(s string) int {
	var quote byte
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ']':
			return i
		}
	}
	return -1
}

func splitName(s string) (name, rest string) {
	i := strings.IndexAny(s, ".[")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

func member(name string) string {
	lit, _ := json.Marshal(name)
	return fmt.Sprintf(`select(type == "object" and has(%s)) | .[%s]`, lit, lit)
}
