// Package discovery enumerates the files under a working root that are
// candidates for reference rewriting.
package discovery

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// Predicate excludes paths from discovery. Paths are relative to the root.
type Predicate interface {
	Excluded(rel string, isDir bool) bool
}

// ErrorFunc receives enumeration errors. The offending entry is skipped and
// the walk continues.
type ErrorFunc func(path string, err error)

// Files returns a lazy sequence of regular files below root in lexical
// order. Excluded directories are not descended into. Symlinks are
// followed for the type check only: a link to a regular file is yielded,
// links to directories and broken links are not.
func Files(root string, pred Predicate, onErr ErrorFunc) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if onErr != nil {
					onErr(path, err)
				}
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if path == root {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				if onErr != nil {
					onErr(path, err)
				}
				return nil
			}

			if d.IsDir() {
				if pred != nil && pred.Excluded(rel, true) {
					return filepath.SkipDir
				}
				return nil
			}
			if pred != nil && pred.Excluded(rel, false) {
				return nil
			}
			if !isRegular(path, d) {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
