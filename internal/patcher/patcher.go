// Package patcher merges accepted hunks into a file's original lines and
// commits the result to disk.
package patcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/sokinpui/mvref/internal/differ"
)

// ErrWrite marks a failure to commit a file. It aborts the whole run.
var ErrWrite = errors.New("write failed")

// SplitLines splits content on "\n". A trailing "\r" is dropped from every
// line, so a committed file always uses "\n" endings.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// edit replaces buf[start:end] with lines.
type edit struct {
	start int
	end   int
	lines []string
}

// Apply returns the original lines with every change op of the accepted
// hunks replaced by the candidate's corresponding range. Lines outside
// accepted ops are kept as they are in the original.
func Apply(oldLines, newLines []string, accepted []differ.Hunk) []string {
	var edits []edit
	for _, h := range accepted {
		for _, op := range h.Ops {
			if op.Tag == differ.Equal {
				continue
			}
			edits = append(edits, edit{
				start: op.OldStart,
				end:   op.OldEnd,
				lines: newLines[op.NewStart:op.NewEnd],
			})
		}
	}

	// Highest start first: an edit never shifts the indices of one still to
	// be applied.
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].start > edits[j].start
	})

	buf := slices.Clone(oldLines)
	for _, e := range edits {
		buf = slices.Replace(buf, e.start, e.end, e.lines...)
	}
	return buf
}

// Commit replaces the content of path with lines joined by "\n".
func Commit(path string, lines []string) error {
	return WriteFile(path, []byte(strings.Join(lines, "\n")))
}

// WriteFile replaces the content of an existing file. The data is written to
// a temporary file in the same directory and renamed over the original, so
// the file is never left partially written. The original permission bits
// are kept, and a symlink is written through to its target.
func WriteFile(path string, data []byte) error {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".mvref-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		cleanup()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}
