package parser

import (
	"errors"
	"strings"
)

// ErrInvalidISBN is returned for text that is not an ISBN-10 or ISBN-13.
var ErrInvalidISBN = errors.New("Invalid ISBN")

// ParseISBN returns the canonical digits of an ISBN-10 or ISBN-13. Hyphens and spaces
// are ignored; the check digit must be correct.
func ParseISBN(s string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, s)

	switch len(digits) {
	case 10:
		if isbn10(digits) {
			return strings.ToUpper(digits), nil
		}
	case 13:
		if isbn13(digits) {
			return digits, nil
		}
	}
	return "", ErrInvalidISBN
}

// CheckISBN reports whether s is a valid ISBN.
func CheckISBN(s string) error {
	_, err := ParseISBN(s)
	return err
}

func isbn10(s string) bool {
	sum := 0
	for i := range 10 {
		c := s[i]
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case i == 9 && (c == 'X' || c == 'x'):
			d = 10
		default:
			return false
		}
		sum += (10 - i) * d
	}
	return sum%11 == 0
}

func isbn13(s string) bool {
	sum := 0
	for i := range 13 {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return sum%10 == 0
}
