package patcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/mvref/internal/differ"
)

func sample(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return lines
}

func TestApplySelectedHunks(t *testing.T) {
	old := sample(60)
	cand := append([]string(nil), old...)
	cand[4] = "first change"
	cand[49] = "second change"

	hunks := differ.New(differ.DefaultContextRadius).Hunks(old, cand)
	require.Len(t, hunks, 2)

	t.Run("accept first decline second", func(t *testing.T) {
		got := Apply(old, cand, hunks[:1])
		assert.Equal(t, "first change", got[4])
		assert.Equal(t, "line 50", got[49])
		assert.Len(t, got, len(old))
	})

	t.Run("accept all equals candidate", func(t *testing.T) {
		assert.Equal(t, cand, Apply(old, cand, hunks))
	})

	t.Run("accept none equals original", func(t *testing.T) {
		assert.Equal(t, old, Apply(old, cand, nil))
	})
}

func TestApplyShiftingEdits(t *testing.T) {
	// Both hunks change the line count; applying them in any other order
	// than descending start would land the second edit on the wrong lines.
	old := sample(40)
	var cand []string
	cand = append(cand, old[:2]...)
	cand = append(cand, "inserted a", "inserted b")
	cand = append(cand, old[2:30]...)
	cand = append(cand, old[31:]...) // drop "line 31"

	hunks := differ.New(3).Hunks(old, cand)
	require.Len(t, hunks, 2)

	assert.Equal(t, cand, Apply(old, cand, hunks))

	onlySecond := Apply(old, cand, hunks[1:])
	assert.NotContains(t, onlySecond, "line 31")
	assert.NotContains(t, onlySecond, "inserted a")
	assert.Len(t, onlySecond, len(old)-1)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	old := []string{"a", "b"}
	cand := []string{"a", "c"}
	hunks := differ.New(1).Hunks(old, cand)
	Apply(old, cand, hunks)
	assert.Equal(t, []string{"a", "b"}, old)
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "b", ""}, SplitLines("a\r\nb\r\n"))
	assert.Equal(t, []string{""}, SplitLines(""))
}

func TestCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("old\r\ncontent\r\n"), 0o640))

	require.NoError(t, Commit(path, []string{"new", "content", ""}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\ncontent\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestCommitMissingFile(t *testing.T) {
	err := Commit(filepath.Join(t.TempDir(), "missing"), []string{"x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrite))
	assert.True(t, strings.Contains(err.Error(), "missing"))
}

func TestWriteFileThroughSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))
	require.NoError(t, os.Symlink(target, link))

	require.NoError(t, WriteFile(link, []byte("new")))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.True(t, info.Mode()&os.ModeSymlink != 0, "link replaced by a regular file")
}
