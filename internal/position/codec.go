package position

// Codec derives alternate encodings of positions reported against one source text.
// Offsets and columns count characters (runes), not bytes.
type Codec struct {
	size   int
	starts []int // rune offset of the first character of each line
	known  bool
}

// NewCodec returns a Codec for the given source. A Codec built from an empty
// source can still convert positions that lie at offset 0.
func NewCodec(source string) *Codec {
	c := &Codec{starts: []int{0}, known: true}
	n := 0
	for _, r := range source {
		n++
		if r == '\n' {
			c.starts = append(c.starts, n)
		}
	}
	c.size = n
	return c
}

// NoSource returns a Codec that never derives alternates. It is used when the
// validated value was not text, so character based conversions are impossible.
func NoSource() *Codec {
	return &Codec{}
}

// Alternates returns the encodings that can be derived from p, excluding p itself.
// Positions that cannot be converted deterministically yield nil.
func (c *Codec) Alternates(p Position) []Position {
	if c == nil || !c.known || p.IsZero() {
		return nil
	}
	if n, ok := p.CharOffset(); ok {
		if line, col, ok := c.lineCol(n); ok {
			return []Position{LineColumn(line, col)}
		}
		return nil
	}
	if line, col, ok := p.LineCol(); ok {
		if n, ok := c.offset(line, col); ok {
			return []Position{Char(n)}
		}
	}
	return nil
}

func (c *Codec) lineCol(n int) (line, col int, ok bool) {
	if n < 0 || n > c.size {
		return 0, 0, false
	}
	// starts is sorted; find the last line start <= n
	lo, hi := 0, len(c.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.starts[mid] <= n {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, n - c.starts[lo] + 1, true
}

func (c *Codec) offset(line, col int) (int, bool) {
	if line < 1 || line > len(c.starts) {
		return 0, false
	}
	n := c.starts[line-1] + col - 1
	end := c.size
	if line < len(c.starts) {
		end = c.starts[line] - 1 // the newline itself
	}
	if n > end {
		return 0, false
	}
	return n, true
}
