// Package rewriter computes the candidate content of a file after a set of
// path moves, by substituting textual references to the moved paths.
//
// Matching is plain substring replacement on raw text. Nothing is parsed as
// code, so a quoted string that merely looks like a moved path is rewritten
// too; the diff review is where such false positives get declined.
package rewriter

import (
	"path/filepath"
	"strings"

	"github.com/sokinpui/mvref/internal/model"
)

// quotes bound the extensionless forms so that a longer unrelated string
// sharing the same prefix is left alone.
var quotes = []string{`"`, `'`}

// Rewrite returns content with every supported reference form of each move
// replaced. Moves are applied in the order given; the output of one move is
// the input of the next. It never fails: forms that cannot be computed for a
// move are skipped.
func Rewrite(filePath, content string, moves []model.Move) string {
	for _, mv := range moves {
		content = rewriteDirect(filePath, content, mv)
		content = rewriteAnchored(content, mv)
	}
	return content
}

// rewriteDirect handles references relative to the referencing file's own
// directory, e.g. "../lib/test.ts" and "../lib/test".
func rewriteDirect(filePath, content string, mv model.Move) string {
	dir := filepath.Dir(filePath)
	src, ok := relative(dir, mv.Source)
	if !ok {
		return content
	}
	dst, ok := relative(dir, mv.Destination)
	if !ok {
		return content
	}
	content = strings.ReplaceAll(content, src, dst)
	return replaceQuoted(content, "", trimExt(src), trimExt(dst))
}

// rewriteAnchored handles references relative to the parent of the nearest
// common ancestor of source and destination. These model absolute-style
// import roots such as "@app/lib/test", so the extensionless form must be
// preceded by a slash.
func rewriteAnchored(content string, mv model.Move) string {
	common, ok := commonAncestor(mv.Source, mv.Destination)
	if !ok {
		return content
	}
	anchor, ok := parent(common)
	if !ok {
		return content
	}
	src, ok := relative(anchor, mv.Source)
	if !ok {
		return content
	}
	dst, ok := relative(anchor, mv.Destination)
	if !ok {
		return content
	}
	content = strings.ReplaceAll(content, src, dst)
	return replaceQuoted(content, "/", trimExt(src), trimExt(dst))
}

func replaceQuoted(content, prefix, src, dst string) string {
	if src == "" || src == "." {
		return content
	}
	for _, q := range quotes {
		content = strings.ReplaceAll(content, prefix+src+q, prefix+dst+q)
	}
	return content
}

// relative returns target relative to base using forward slashes. An empty
// or "." result would match everywhere, so it is reported as undefined.
func relative(base, target string) (string, bool) {
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == "." || rel == "" {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// trimExt removes the final extension of the last path element. Names that
// start with their only dot (".env") and "."/".." elements keep theirs.
func trimExt(p string) string {
	i := strings.LastIndexByte(p, '/')
	base := p[i+1:]
	if base == "." || base == ".." {
		return p
	}
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return p
	}
	return p[:i+1+dot]
}

// commonAncestor returns the component-wise longest common prefix of a and b.
func commonAncestor(a, b string) (string, bool) {
	as := splitPath(a)
	bs := splitPath(b)
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	if n == 0 {
		return "", false
	}
	joined := strings.Join(as[:n], "/")
	if joined == "" {
		// only the leading separator of two absolute paths is shared
		joined = "/"
	}
	return filepath.FromSlash(joined), true
}

func splitPath(p string) []string {
	return strings.Split(filepath.ToSlash(filepath.Clean(p)), "/")
}

// parent reports the directory containing p; the filesystem root and a
// volume root have none.
func parent(p string) (string, bool) {
	dir := filepath.Dir(p)
	if dir == p {
		return "", false
	}
	return dir, true
}
