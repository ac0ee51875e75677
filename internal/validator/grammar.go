package validator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// ErrInvalidGrammar is the message reported for grammar text that does not parse.
var ErrInvalidGrammar = errors.New("Invalid EBNF")

// GrammarError wraps a grammar that failed to parse or verify.
type GrammarError struct {
	Err error
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("invalid grammar: %v", e.Err)
}

func (e *GrammarError) Unwrap() error {
	return e.Err
}

// Expression nodes shared by both notations.
type (
	node     any
	alt      []node
	seq      []node
	ref      string
	lit      string
	opt      struct{ body node }
	star     struct{ body node }
	except   struct{ base, minus node }
	runeSpan struct{ lo, hi rune }
	class    struct {
		spans  []runeSpan
		negate bool
	}
)

func (c class) matches(r rune) bool {
	for _, s := range c.spans {
		if r >= s.lo && r <= s.hi {
			return !c.negate
		}
	}
	return c.negate
}

// grammar is a set of productions ready for matching. In the Go notation white space
// may separate the tokens of productions whose name starts with an upper case letter;
// the W3C notation spells out all white space.
type grammar struct {
	prods     map[string]node
	start     string
	skipSpace bool
}

func (g *grammar) lexical(name string) bool {
	if !g.skipSpace {
		return true
	}
	r, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(r)
}

type grammarAdapter struct {
	g *grammar
}

// NewGrammar returns a Constructor for an adapter that accepts strings derivable from the
// start production of an EBNF grammar. Grammars using "::=" are read in the W3C notation
// of the XML recommendation; all others in the notation of golang.org/x/exp/ebnf. An
// empty start selects the first production in the source.
func NewGrammar(source, start string) Constructor {
	return func(ctx context.Context) (Adapter, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := parseGrammar(source, start)
		if err != nil {
			return nil, &GrammarError{Err: err}
		}
		return &grammarAdapter{g: g}, nil
	}
}

// CheckGrammar reports whether s is a valid grammar.
func CheckGrammar(s string) error {
	if _, err := parseGrammar(s, ""); err != nil {
		return ErrInvalidGrammar
	}
	return nil
}

func parseGrammar(source, start string) (*grammar, error) {
	if strings.Contains(source, "::=") {
		return parseW3C(source, start)
	}
	return parseGoEBNF(source, start)
}

func parseGoEBNF(source, start string) (*grammar, error) {
	g, err := ebnf.Parse("grammar", strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	if len(g) == 0 {
		return nil, errors.New("grammar has no productions")
	}
	if start == "" {
		start = firstProduction(g)
	}
	if err := ebnf.Verify(g, start); err != nil {
		return nil, err
	}
	prods := make(map[string]node, len(g))
	for name, p := range g {
		prods[name] = fromGoEBNF(p.Expr)
	}
	return &grammar{prods: prods, start: start, skipSpace: true}, nil
}

func firstProduction(g ebnf.Grammar) string {
	var first *ebnf.Production
	for _, p := range g {
		if first == nil || p.Pos().Offset < first.Pos().Offset {
			first = p
		}
	}
	return first.Name.String
}

func fromGoEBNF(x ebnf.Expression) node {
	switch x := x.(type) {
	case nil:
		return seq{}
	case ebnf.Alternative:
		out := make(alt, len(x))
		for i, e := range x {
			out[i] = fromGoEBNF(e)
		}
		return out
	case ebnf.Sequence:
		out := make(seq, len(x))
		for i, e := range x {
			out[i] = fromGoEBNF(e)
		}
		return out
	case *ebnf.Name:
		return ref(x.String)
	case *ebnf.Token:
		return lit(x.String)
	case *ebnf.Range:
		lo, _ := utf8.DecodeRuneInString(x.Begin.String)
		hi, _ := utf8.DecodeRuneInString(x.End.String)
		return class{spans: []runeSpan{{lo, hi}}}
	case *ebnf.Group:
		return fromGoEBNF(x.Body)
	case *ebnf.Option:
		return opt{fromGoEBNF(x.Body)}
	case *ebnf.Repetition:
		return star{fromGoEBNF(x.Body)}
	}
	return seq{}
}

func (a *grammarAdapter) Validate(item any) []Error {
	s, ok := Text(item)
	if !ok {
		return notText()
	}
	m := &matcher{g: a.g, in: []rune(s), memo: make(map[memoKey][]int)}
	lexical := a.g.lexical(a.g.start)
	for _, end := range m.name(a.g.start, 0, true) {
		if !lexical {
			end = m.skipSpace(end)
		}
		if end == len(m.in) {
			return nil
		}
	}
	return []Error{{Message: "Value does not match grammar"}}
}

func (a *grammarAdapter) SupportsSelection() bool {
	return false
}

type memoKey struct {
	name string
	pos  int
}

// matcher is a backtracking recognizer. It is created per Validate call.
type matcher struct {
	g    *grammar
	in   []rune
	memo map[memoKey][]int
}

// name returns every position at which production name, started at pos, can end.
// Within non-lexical productions white space may precede each token.
func (m *matcher) name(name string, pos int, lexical bool) []int {
	body, ok := m.g.prods[name]
	if !ok {
		return nil
	}
	inner := m.g.lexical(name)
	if !lexical && inner {
		pos = m.skipSpace(pos)
	}
	key := memoKey{name, pos}
	if ends, ok := m.memo[key]; ok {
		return ends
	}
	m.memo[key] = nil // left recursion matches nothing
	ends := m.expr(body, pos, inner)
	m.memo[key] = ends
	return ends
}

func (m *matcher) expr(x node, pos int, lexical bool) []int {
	switch x := x.(type) {
	case alt:
		var ends []int
		for _, a := range x {
			ends = union(ends, m.expr(a, pos, lexical))
		}
		return ends
	case seq:
		ends := []int{pos}
		for _, term := range x {
			var next []int
			for _, p := range ends {
				next = union(next, m.expr(term, p, lexical))
			}
			if len(next) == 0 {
				return nil
			}
			ends = next
		}
		return ends
	case ref:
		return m.name(string(x), pos, lexical)
	case lit:
		if !lexical {
			pos = m.skipSpace(pos)
		}
		l := []rune(string(x))
		if pos+len(l) > len(m.in) || !slices.Equal(m.in[pos:pos+len(l)], l) {
			return nil
		}
		return []int{pos + len(l)}
	case class:
		if !lexical {
			pos = m.skipSpace(pos)
		}
		if pos < len(m.in) && x.matches(m.in[pos]) {
			return []int{pos + 1}
		}
		return nil
	case opt:
		return union([]int{pos}, m.expr(x.body, pos, lexical))
	case star:
		ends := []int{pos}
		frontier := []int{pos}
		for len(frontier) > 0 {
			var next []int
			for _, p := range frontier {
				for _, e := range m.expr(x.body, p, lexical) {
					if !slices.Contains(ends, e) {
						next = union(next, []int{e})
					}
				}
			}
			ends = union(ends, next)
			frontier = next
		}
		return ends
	case except:
		var ends []int
		for _, e := range m.expr(x.base, pos, lexical) {
			if !m.exactly(x.minus, pos, e, lexical) {
				ends = append(ends, e)
			}
		}
		return ends
	}
	return nil
}

// exactly reports whether x matches the input between from and to.
func (m *matcher) exactly(x node, from, to int, lexical bool) bool {
	return slices.Contains(m.expr(x, from, lexical), to)
}

func (m *matcher) skipSpace(pos int) int {
	for pos < len(m.in) && unicode.IsSpace(m.in[pos]) {
		pos++
	}
	return pos
}

// union merges two sorted, duplicate free position sets.
func union(a, b []int) []int {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
