package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// w3cParser reads the EBNF notation of the XML recommendation:
//
//	[1] Name ::= 'lit' | "lit" | #x20 | [a-z#x30-#x39] | [^"] | (A B)? C* D+ | A - B
//
// Production numbers and /* comments */ are skipped.
type w3cParser struct {
	src []rune
	pos int
}

func parseW3C(source, start string) (*grammar, error) {
	p := &w3cParser{src: []rune(source)}
	prods := make(map[string]node)
	var first string

	p.skipBlank()
	for !p.eof() {
		p.skipNumber()
		name := p.name()
		if name == "" {
			return nil, p.errorf("expected production name")
		}
		p.skipBlank()
		if !p.consume("::=") {
			return nil, p.errorf("expected ::= after %s", name)
		}
		body, err := p.alternatives()
		if err != nil {
			return nil, err
		}
		if _, dup := prods[name]; dup {
			return nil, fmt.Errorf("production %s declared twice", name)
		}
		prods[name] = body
		if first == "" {
			first = name
		}
		p.skipBlank()
	}

	if first == "" {
		return nil, errors.New("grammar has no productions")
	}
	if start == "" {
		start = first
	}
	if _, ok := prods[start]; !ok {
		return nil, fmt.Errorf("start production %s is undefined", start)
	}
	for name, body := range prods {
		if missing := undefined(body, prods); missing != "" {
			return nil, fmt.Errorf("production %s refers to undefined %s", name, missing)
		}
	}
	return &grammar{prods: prods, start: start}, nil
}

// undefined returns the first name x refers to that has no production.
func undefined(x node, prods map[string]node) string {
	var children []node
	switch x := x.(type) {
	case ref:
		if _, ok := prods[string(x)]; !ok {
			return string(x)
		}
	case alt:
		children = x
	case seq:
		children = x
	case opt:
		children = []node{x.body}
	case star:
		children = []node{x.body}
	case except:
		children = []node{x.base, x.minus}
	}
	for _, c := range children {
		if name := undefined(c, prods); name != "" {
			return name
		}
	}
	return ""
}

func (p *w3cParser) alternatives() (node, error) {
	first, err := p.sequence()
	if err != nil {
		return nil, err
	}
	out := alt{first}
	for {
		p.skipBlank()
		if !p.consume("|") {
			break
		}
		next, err := p.sequence()
		if err != nil {
			return nil, err
		}
		out = append(out, next)
	}
	if len(out) == 1 {
		return first, nil
	}
	return out, nil
}

func (p *w3cParser) sequence() (node, error) {
	var out seq
	for {
		p.skipBlank()
		if p.eof() || p.peek() == '|' || p.peek() == ')' || p.atProduction() {
			break
		}
		x, err := p.exception()
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	switch len(out) {
	case 0:
		return nil, p.errorf("expected expression")
	case 1:
		return out[0], nil
	}
	return out, nil
}

func (p *w3cParser) exception() (node, error) {
	base, err := p.postfix()
	if err != nil {
		return nil, err
	}
	p.skipBlank()
	if !p.consume("-") {
		return base, nil
	}
	p.skipBlank()
	minus, err := p.postfix()
	if err != nil {
		return nil, err
	}
	return except{base: base, minus: minus}, nil
}

func (p *w3cParser) postfix() (node, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for !p.eof() {
		switch p.peek() {
		case '?':
			x = opt{x}
		case '*':
			x = star{x}
		case '+':
			x = seq{x, star{x}}
		default:
			return x, nil
		}
		p.pos++
	}
	return x, nil
}

func (p *w3cParser) primary() (node, error) {
	if p.eof() {
		return nil, p.errorf("unexpected end of grammar")
	}
	switch r := p.peek(); {
	case r == '(':
		p.pos++
		x, err := p.alternatives()
		if err != nil {
			return nil, err
		}
		p.skipBlank()
		if !p.consume(")") {
			return nil, p.errorf("expected )")
		}
		return x, nil
	case r == '\'' || r == '"':
		p.pos++
		end := p.pos
		for end < len(p.src) && p.src[end] != r {
			end++
		}
		if end == len(p.src) || end == p.pos {
			return nil, p.errorf("unterminated or empty literal")
		}
		s := string(p.src[p.pos:end])
		p.pos = end + 1
		return lit(s), nil
	case r == '#':
		c, err := p.hexChar()
		if err != nil {
			return nil, err
		}
		return lit(string(c)), nil
	case r == '[':
		return p.class()
	}
	if name := p.name(); name != "" {
		return ref(name), nil
	}
	return nil, p.errorf("unexpected %q", p.peek())
}

func (p *w3cParser) class() (node, error) {
	p.pos++ // [
	var c class
	if p.consume("^") {
		c.negate = true
	}
	for !p.eof() && p.peek() != ']' {
		lo, err := p.classChar()
		if err != nil {
			return nil, err
		}
		hi := lo
		if p.peek() == '-' && p.pos+1 < len(p.src) && p.src[p.pos+1] != ']' {
			p.pos++
			if hi, err = p.classChar(); err != nil {
				return nil, err
			}
		}
		if hi < lo {
			return nil, p.errorf("invalid range")
		}
		c.spans = append(c.spans, runeSpan{lo, hi})
	}
	if !p.consume("]") || len(c.spans) == 0 {
		return nil, p.errorf("unterminated or empty character class")
	}
	return c, nil
}

func (p *w3cParser) classChar() (rune, error) {
	if p.peek() == '#' {
		return p.hexChar()
	}
	r := p.peek()
	p.pos++
	return r, nil
}

func (p *w3cParser) hexChar() (rune, error) {
	if !p.consume("#x") {
		return 0, p.errorf("expected #x")
	}
	start := p.pos
	for !p.eof() && strings.ContainsRune("0123456789abcdefABCDEF", p.peek()) {
		p.pos++
	}
	n, err := strconv.ParseUint(string(p.src[start:p.pos]), 16, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, p.errorf("invalid character code")
	}
	return rune(n), nil
}

func (p *w3cParser) name() string {
	start := p.pos
	for !p.eof() {
		r := p.peek()
		if !(unicode.IsLetter(r) || r == '_' || (p.pos > start && (unicode.IsDigit(r) || r == '.' || r == ':'))) {
			break
		}
		p.pos++
	}
	return string(p.src[start:p.pos])
}

// atProduction reports whether the next production starts here.
func (p *w3cParser) atProduction() bool {
	saved := p.pos
	defer func() { p.pos = saved }()
	p.skipNumber()
	if p.name() == "" {
		return false
	}
	p.skipBlank()
	return p.consume("::=")
}

func (p *w3cParser) skipNumber() {
	if p.peek() != '[' {
		return
	}
	end := p.pos + 1
	for end < len(p.src) && unicode.IsDigit(p.src[end]) {
		end++
	}
	if end > p.pos+1 && end < len(p.src) && p.src[end] == ']' {
		p.pos = end + 1
		p.skipBlank()
	}
}

func (p *w3cParser) skipBlank() {
	for !p.eof() {
		switch {
		case unicode.IsSpace(p.peek()):
			p.pos++
		case p.hasPrefix("/*"):
			end := strings.Index(string(p.src[p.pos+2:]), "*/")
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += 2 + utf8.RuneCountInString(string(p.src[p.pos+2:])[:end]) + 2
		default:
			return
		}
	}
}

func (p *w3cParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *w3cParser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *w3cParser) hasPrefix(s string) bool {
	r := []rune(s)
	return p.pos+len(r) <= len(p.src) && string(p.src[p.pos:p.pos+len(r)]) == s
}

func (p *w3cParser) consume(s string) bool {
	if !p.hasPrefix(s) {
		return false
	}
	p.pos += utf8.RuneCountInString(s)
	return true
}

func (p *w3cParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}
