package review

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/mvref/internal/differ"
)

func init() {
	color.NoColor = true
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		input string
		want  Decision
	}{
		{"", Accept},
		{"\n", Accept},
		{"y\n", Accept},
		{"Y", Accept},
		{"C\n", CancelAll},
		{"S\n", SkipFile},
		{"n\n", Decline},
		{"c\n", Decline},
		{"s\n", Decline},
		{"yes\n", Decline},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDecision(tt.input), "input %q", tt.input)
	}
}

func sampleHunk() Hunk {
	old := []string{"import a from \"./x\";", "keep"}
	cand := []string{"import a from \"./y/x\";", "keep"}
	hunks := differ.New(differ.DefaultContextRadius).Hunks(old, cand)
	return Hunk{Path: "/p/f.ts", Index: 0, Total: 1, Lines: hunks[0].Lines(old, cand)}
}

func TestTerminalReview(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminal(strings.NewReader("n\nS\n"), &out)

	require.NoError(t, r.BeginFile("/p/f.ts", 1))
	d, err := r.Review(sampleHunk())
	require.NoError(t, err)
	assert.Equal(t, Decline, d)

	d, err = r.Review(sampleHunk())
	require.NoError(t, err)
	assert.Equal(t, SkipFile, d)

	got := out.String()
	assert.Contains(t, got, "/p/f.ts (1 hunk(s))")
	assert.Contains(t, got, "   1 -import a from \"./x\";")
	assert.Contains(t, got, "   1 +import a from \"./y/x\";")
	assert.Contains(t, got, "   2  keep")
	assert.Contains(t, got, Prompt)
	assert.NotContains(t, got, "\x1b[2J", "buffer output is not a terminal")
}

func TestTerminalReviewEOF(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminal(strings.NewReader(""), &out)
	d, err := r.Review(sampleHunk())
	require.NoError(t, err)
	assert.Equal(t, CancelAll, d)
}

func TestTerminalReviewLastLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminal(strings.NewReader("y"), &out)
	d, err := r.Review(sampleHunk())
	require.NoError(t, err)
	assert.Equal(t, Accept, d)
}

func TestScripted(t *testing.T) {
	s := &Scripted{Decisions: []Decision{Accept}}
	require.NoError(t, s.BeginFile("a", 2))
	d, _ := s.Review(Hunk{Path: "a"})
	assert.Equal(t, Accept, d)
	d, _ = s.Review(Hunk{Path: "a", Index: 1})
	assert.Equal(t, Decline, d)
	assert.Equal(t, []string{"a"}, s.Files)
	assert.Len(t, s.Seen, 2)
}
