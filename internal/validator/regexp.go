package validator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"
)

type regexpAdapter struct {
	re *regexp.Regexp
}

// NewRegexp returns a Constructor for an adapter that accepts strings matched in full by
// pattern. An invalid pattern is a construction error.
func NewRegexp(pattern string) Constructor {
	return func(ctx context.Context) (Adapter, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		re, err := regexp.Compile(`^(?:` + pattern + `)$`)
		if err != nil {
			return nil, errors.New(regexpMessage(pattern, err))
		}
		return &regexpAdapter{re: re}, nil
	}
}

func (a *regexpAdapter) Validate(item any) []Error {
	s, ok := Text(item)
	if !ok {
		return notText()
	}
	if a.re.MatchString(s) {
		return nil
	}
	return []Error{{Message: "Value does not match regular expression"}}
}

func (a *regexpAdapter) SupportsSelection() bool {
	return false
}

// CheckRegexp reports whether s is a valid regular expression.
func CheckRegexp(s string) error {
	if _, err := regexp.Compile(s); err != nil {
		return errors.New(regexpMessage(s, err))
	}
	return nil
}

func regexpMessage(pattern string, err error) string {
	reason := err.Error()
	var se *syntax.Error
	if errors.As(err, &se) {
		reason = syntaxReason(se.Code)
	}
	return fmt.Sprintf("Invalid regular expression: /%s/: %s", pattern, reason)
}

func syntaxReason(code syntax.ErrorCode) string {
	switch code {
	case syntax.ErrMissingRepeatArgument, syntax.ErrInvalidRepeatOp:
		return "Nothing to repeat"
	case syntax.ErrMissingParen:
		return "Unterminated group"
	case syntax.ErrUnexpectedParen:
		return "Unmatched ')'"
	case syntax.ErrMissingBracket:
		return "Unterminated character class"
	case syntax.ErrInvalidCharRange:
		return "Range out of order in character class"
	case syntax.ErrInvalidRepeatSize:
		return "numbers out of order in {} quantifier"
	case syntax.ErrTrailingBackslash:
		return "\\ at end of pattern"
	case syntax.ErrInvalidEscape:
		return "Invalid escape"
	}
	s := string(code)
	if s == "" {
		return "Invalid pattern"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
