// Package ignore decides which paths under a working root are excluded from
// reference rewriting.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the project-local ignore file, read from the root.
const FileName = ".mvrefignore"

// Pattern represents a single ignore pattern with its properties.
type Pattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool // Pattern starts with / (matches from root only)
}

// Matcher combines mvref's own patterns with the repository's .gitignore
// files. A path is excluded when either side excludes it.
type Matcher struct {
	patterns []Pattern
	git      gitignore.Matcher
	hidden   bool
}

// Options controls how a Matcher is loaded.
type Options struct {
	// Patterns are added after the defaults and the ignore file.
	Patterns []string
	// NoDefaults drops the built-in patterns.
	NoDefaults bool
	// Hidden includes entries whose name starts with a dot.
	Hidden bool
}

// NewMatcher creates an empty Matcher that excludes nothing.
func NewMatcher() *Matcher {
	return &Matcher{patterns: []Pattern{}, hidden: true}
}

// AddPattern adds a single pattern string to the matcher.
func (m *Matcher) AddPattern(line string) {
	line = strings.TrimSpace(line)

	// Skip empty lines and comments
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	p := Pattern{}

	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	}

	// Unanchored patterns without a slash match the basename at any level.
	if !p.anchored && !strings.Contains(line, "/") {
		line = "**/" + line
	}

	p.pattern = line
	m.patterns = append(m.patterns, p)
}

// AddPatterns adds multiple pattern strings to the matcher.
func (m *Matcher) AddPatterns(lines []string) {
	for _, line := range lines {
		m.AddPattern(line)
	}
}

// LoadFile loads patterns from a gitignore-style file. A missing file is
// not an error.
func (m *Matcher) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		m.AddPattern(scanner.Text())
	}

	return scanner.Err()
}

// LoadDefaults adds patterns for directories that never hold project
// references worth rewriting.
func (m *Matcher) LoadDefaults() {
	m.AddPatterns([]string{
		// Version control and our own journal
		".git/",
		".hg/",
		".svn/",
		".mvref/",

		// Dependencies and build output
		"node_modules/",
		"bower_components/",
		"jspm_packages/",
		"target/",
		"__pycache__/",
		".venv/",
		"venv/",
		".gradle/",
		".next/",
		".nuxt/",
		"dist/",
		"coverage/",

		// Lock files are regenerated, not edited
		"package-lock.json",
		"yarn.lock",
		"pnpm-lock.yaml",
		"Cargo.lock",
		"go.sum",

		".DS_Store",
		"*.swp",
	})
}

// Match reports whether path, relative to the root and slash separated, is
// excluded by the matcher's own patterns.
func (m *Matcher) Match(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")

	ignored := false
	for _, p := range m.patterns {
		// A dir-only pattern excludes a file through one of its parents.
		if p.dirOnly && !isDir {
			if m.matchDirPattern(p.pattern, path) {
				ignored = !p.negated
			}
			continue
		}
		if m.matchPattern(p.pattern, path) {
			ignored = !p.negated
		}
	}
	return ignored
}

// Excluded is the predicate used by discovery: own patterns, hidden
// entries, and the repository's .gitignore files.
func (m *Matcher) Excluded(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	if !m.hidden && isHidden(path) {
		return true
	}
	if m.Match(path, isDir) {
		return true
	}
	if m.git != nil && m.git.Match(strings.Split(path, "/"), isDir) {
		return true
	}
	return false
}

func isHidden(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// matchDirPattern checks if a path is inside a directory matching the pattern.
func (m *Matcher) matchDirPattern(pattern, path string) bool {
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		if m.matchPattern(pattern, strings.Join(parts[:i], "/")) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchPattern(pattern, path string) bool {
	if matched, _ := doublestar.Match(pattern, path); matched {
		return true
	}
	// "node_modules" also covers "node_modules/foo/bar.js"
	if !strings.HasSuffix(pattern, "/**") {
		if matched, _ := doublestar.Match(pattern+"/**", path); matched {
			return true
		}
	}
	return false
}

// Load builds the Matcher for root. Patterns are applied in order: defaults,
// the root .mvrefignore, then opts.Patterns; later negations override
// earlier patterns. Every .gitignore below root is honoured as well.
func Load(root string, opts Options) (*Matcher, error) {
	m := NewMatcher()
	m.hidden = opts.Hidden

	if !opts.NoDefaults {
		m.LoadDefaults()
	}
	if err := m.LoadFile(filepath.Join(root, FileName)); err != nil {
		return nil, err
	}
	m.AddPatterns(opts.Patterns)

	ps, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		m.git = gitignore.NewMatcher(ps)
	}
	return m, nil
}
