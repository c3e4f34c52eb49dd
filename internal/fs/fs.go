package fs

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"lukechampine.com/blake3"

	"github.com/sokinpui/mvref/internal/model"
)

// PathResolver turns user-supplied paths into absolute paths under a
// working root, and back into short paths for display.
type PathResolver struct {
	root string
}

// NewPathResolver creates a PathResolver. An empty root means the current
// working directory.
func NewPathResolver(root string) (*PathResolver, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get current working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root directory '%s': %w", root, err)
	}
	return &PathResolver{root: abs}, nil
}

// Root returns the absolute working root.
func (r *PathResolver) Root() string {
	return r.root
}

// Resolve makes p absolute, relative to the root when it is not already.
func (r *PathResolver) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.root, p)
}

// Display shortens an absolute path to be relative to the root when it
// lies inside it.
func (r *PathResolver) Display(p string) string {
	rel, err := filepath.Rel(r.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}

// ReadText reads path as UTF-8 text. ok is false when the file cannot be
// read or is not valid UTF-8; callers treat such files as having no
// references.
func ReadText(path string) (content string, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil || !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// MoveEntry renames mv.Source to mv.Destination, creating the
// destination's parent directories first.
func MoveEntry(mv model.Move) error {
	if _, err := os.Lstat(mv.Source); err != nil {
		return fmt.Errorf("source not found: %w", err)
	}
	if _, err := os.Lstat(mv.Destination); err == nil {
		return fmt.Errorf("destination already exists: %s", mv.Destination)
	}
	if dir := filepath.Dir(mv.Destination); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}
	if err := os.Rename(mv.Source, mv.Destination); err != nil {
		return fmt.Errorf("failed to move '%s': %w", mv.Source, err)
	}
	return nil
}

// HashBytes returns the hex blake3-256 digest of data.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile returns the hex blake3-256 digest of the file at path.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// RepoRoot returns the worktree root of the git repository containing
// dir. ok is false when dir is not inside a repository.
func RepoRoot(dir string) (root string, ok bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", false
	}
	return wt.Filesystem.Root(), true
}
