package differ

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return lines
}

func TestHunksEqualInput(t *testing.T) {
	d := New(DefaultContextRadius)
	lines := numbered(5)
	assert.Empty(t, d.Hunks(lines, append([]string(nil), lines...)))
	assert.Empty(t, d.Hunks(nil, nil))
}

func TestOpsTags(t *testing.T) {
	d := New(DefaultContextRadius)
	old := []string{"a", "b", "c", "d"}
	cand := []string{"a", "B", "c", "d", "e"}
	ops := d.Ops(old, cand)
	require.Equal(t, []Op{
		{Tag: Equal, OldStart: 0, OldEnd: 1, NewStart: 0, NewEnd: 1},
		{Tag: Replace, OldStart: 1, OldEnd: 2, NewStart: 1, NewEnd: 2},
		{Tag: Equal, OldStart: 2, OldEnd: 4, NewStart: 2, NewEnd: 4},
		{Tag: Insert, OldStart: 4, OldEnd: 4, NewStart: 4, NewEnd: 5},
	}, ops)

	ops = d.Ops([]string{"a", "b", "c"}, []string{"a", "c"})
	require.Equal(t, []Op{
		{Tag: Equal, OldStart: 0, OldEnd: 1, NewStart: 0, NewEnd: 1},
		{Tag: Delete, OldStart: 1, OldEnd: 2, NewStart: 1, NewEnd: 1},
		{Tag: Equal, OldStart: 2, OldEnd: 3, NewStart: 1, NewEnd: 2},
	}, ops)
}

func TestHunksSeparatedChanges(t *testing.T) {
	old := numbered(60)
	cand := append([]string(nil), old...)
	cand[4] = "changed 5"
	cand[49] = "changed 50"

	hunks := New(DefaultContextRadius).Hunks(old, cand)
	require.Len(t, hunks, 2)

	assert.Equal(t, []Op{
		{Tag: Equal, OldStart: 0, OldEnd: 4, NewStart: 0, NewEnd: 4},
		{Tag: Replace, OldStart: 4, OldEnd: 5, NewStart: 4, NewEnd: 5},
		{Tag: Equal, OldStart: 5, OldEnd: 15, NewStart: 5, NewEnd: 15},
	}, hunks[0].Ops)
	assert.Equal(t, []Op{
		{Tag: Equal, OldStart: 39, OldEnd: 49, NewStart: 39, NewEnd: 49},
		{Tag: Replace, OldStart: 49, OldEnd: 50, NewStart: 49, NewEnd: 50},
		{Tag: Equal, OldStart: 50, OldEnd: 60, NewStart: 50, NewEnd: 60},
	}, hunks[1].Ops)
}

func TestHunksMergeNearbyChanges(t *testing.T) {
	old := numbered(40)
	cand := append([]string(nil), old...)
	cand[10] = "x"
	cand[25] = "y"

	hunks := New(DefaultContextRadius).Hunks(old, cand)
	require.Len(t, hunks, 1)
	ops := hunks[0].Ops
	assert.Equal(t, 0, ops[0].OldStart)
	assert.Equal(t, 36, ops[len(ops)-1].OldEnd)
}

func TestHunksZeroRadius(t *testing.T) {
	old := []string{"a", "b", "c"}
	cand := []string{"A", "b", "C"}
	hunks := New(0).Hunks(old, cand)
	require.Len(t, hunks, 2)
	assert.Equal(t, []Op{{Tag: Replace, OldStart: 0, OldEnd: 1, NewStart: 0, NewEnd: 1}}, hunks[0].Ops)
	assert.Equal(t, []Op{{Tag: Replace, OldStart: 2, OldEnd: 3, NewStart: 2, NewEnd: 3}}, hunks[1].Ops)
}

func TestHunkLines(t *testing.T) {
	old := []string{"keep", "gone", "old"}
	cand := []string{"keep", "new", "added"}
	hunks := New(DefaultContextRadius).Hunks(old, cand)
	require.Len(t, hunks, 1)

	lines := hunks[0].Lines(old, cand)
	var got []string
	for _, l := range lines {
		got = append(got, fmt.Sprintf("%s %d %s", l.Tag, l.Number(), l.Text))
	}
	assert.Equal(t, []string{
		"equal 1 keep",
		"delete 2 gone",
		"delete 3 old",
		"insert 2 new",
		"insert 3 added",
	}, got)
}

func TestOpsLargeAlphabet(t *testing.T) {
	// More distinct lines than fit below the surrogate block.
	old := numbered(0xD800 + 10)
	cand := append([]string(nil), old...)
	cand[len(cand)-1] = "tail"
	ops := New(DefaultContextRadius).Ops(old, cand)
	last := ops[len(ops)-1]
	assert.Equal(t, Replace, last.Tag)
	assert.Equal(t, len(old)-1, last.OldStart)
}
