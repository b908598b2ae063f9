package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExpression(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  bool
	}{
		{"#{a + b}", true},
		{"#{}", true},
		{"#{'}'}", true},
		{`#{"a\"}"}`, true},
		{"#{a} + #{b}", false},
		{"#{a", false},
		{" #{a}", false},
		{"a + b", false},
		{"{a}", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsExpression(tt.input), tt.input)
	}
}

func TestStrip(t *testing.T) {
	t.Parallel()
	got, ok := Strip("#{cond ? 'a}' : 'b'}")
	assert.True(t, ok)
	assert.Equal(t, "cond ? 'a}' : 'b'", got)

	got, ok = Strip("plain")
	assert.False(t, ok)
	assert.Equal(t, "plain", got)
}

func TestSplit(t *testing.T) {
	t.Parallel()
	segs, err := Split("timeout=#{t * 2}ms, name=#{'x}'}")
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		{Text: "timeout=", Offset: 0},
		{Text: "t * 2", Expr: true, Offset: 10},
		{Text: "ms, name=", Offset: 16},
		{Text: "'x}'", Expr: true, Offset: 27},
	}, segs)

	segs, err = Split("#{a}#{b}")
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		{Text: "a", Expr: true, Offset: 2},
		{Text: "b", Expr: true, Offset: 6},
	}, segs)

	segs, err = Split("no expressions")
	require.NoError(t, err)
	assert.Equal(t, []Segment{{Text: "no expressions"}}, segs)
	assert.False(t, HasExpression("no expressions"))

	segs, err = Split("")
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestSplitUnterminated(t *testing.T) {
	t.Parallel()
	_, err := Split("a=#{x} b=#{y")
	require.ErrorIs(t, err, ErrUnterminated)
	assert.Contains(t, err.Error(), "offset 9")
}
