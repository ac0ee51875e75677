package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  Position
		want Position
	}{
		{"char", Char(3), Position{"char=3", RFC5147}},
		{"line", Line(2), Position{"line=2", RFC5147}},
		{"linecol", LineColumn(2, 7), Position{"2:7", LineCol}},
		{"rowcol", RowColumn(3, 1), Position{"3:1", RowCol}},
		{"root pointer", Pointer(nil), Position{"", JSONPointer}},
		{"nested pointer", Pointer([]string{"a", "0"}), Position{"/a/0", JSONPointer}},
		{"escaped pointer", Pointer([]string{"a/b", "m~n"}), Position{"/a~1b/m~0n", JSONPointer}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.got)
			assert.False(t, tt.got.IsZero())
		})
	}
}

func TestPosition_IsZero(t *testing.T) {
	t.Parallel()
	assert.True(t, Position{}.IsZero())
	assert.Empty(t, Position{}.String())
	assert.Equal(t, `rfc5147 "char=1"`, Char(1).String())
}

func TestFormat_Valid(t *testing.T) {
	t.Parallel()
	for _, f := range []Format{JSONPointer, RFC5147, LineCol, RowCol} {
		assert.True(t, f.Valid(), f)
	}
	assert.False(t, Format("xpath").Valid())
}

func TestCodec_Alternates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		pos    Position
		want   []Position
	}{
		{
			name:   "end of input on one line",
			source: "{",
			pos:    Char(1),
			want:   []Position{LineColumn(1, 2)},
		},
		{
			name:   "offset on second line",
			source: "{\n1",
			pos:    Char(2),
			want:   []Position{LineColumn(2, 1)},
		},
		{
			name:   "offset counts characters not bytes",
			source: "ä\nx",
			pos:    Char(2),
			want:   []Position{LineColumn(2, 1)},
		},
		{
			name:   "offset past end",
			source: "ab",
			pos:    Char(3),
		},
		{
			name:   "empty source at start",
			source: "",
			pos:    Char(0),
			want:   []Position{LineColumn(1, 1)},
		},
		{
			name:   "linecol to char",
			source: "{\n,}",
			pos:    LineColumn(2, 1),
			want:   []Position{Char(2)},
		},
		{
			name:   "rowcol to char",
			source: "<x>\n<y>\n</x>",
			pos:    RowColumn(3, 1),
			want:   []Position{Char(8)},
		},
		{
			name:   "linecol beyond line length",
			source: "ab\ncd",
			pos:    LineColumn(1, 5),
		},
		{
			name:   "linecol beyond last line",
			source: "ab",
			pos:    LineColumn(2, 1),
		},
		{
			name:   "line numbers are never converted",
			source: "a\nb",
			pos:    Line(2),
		},
		{
			name:   "json pointers are never converted",
			source: "{}",
			pos:    Pointer([]string{"a"}),
		},
		{
			name:   "no position",
			source: "{}",
			pos:    Position{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewCodec(tt.source).Alternates(tt.pos))
		})
	}
}

func TestCodec_NoSource(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NoSource().Alternates(Char(0)))
	assert.Nil(t, NoSource().Alternates(LineColumn(1, 1)))

	var c *Codec
	assert.Nil(t, c.Alternates(Char(0)))
}

func TestPosition_Extractors(t *testing.T) {
	t.Parallel()

	n, ok := Char(12).CharOffset()
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = Line(1).CharOffset()
	assert.False(t, ok)

	n, ok = Line(4).LineNumber()
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = Position{Value: "char=x", Format: RFC5147}.CharOffset()
	assert.False(t, ok)

	l, c, ok := RowColumn(3, 9).LineCol()
	assert.True(t, ok)
	assert.Equal(t, 3, l)
	assert.Equal(t, 9, c)

	_, _, ok = Position{Value: "3", Format: LineCol}.LineCol()
	assert.False(t, ok)
	_, _, ok = Char(1).LineCol()
	assert.False(t, ok)
}
