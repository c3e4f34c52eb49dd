// Package differ computes line-level diffs between a file's original and
// candidate content and groups them into context-bounded hunks.
package differ

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContextRadius is the number of unchanged lines kept around a change.
const DefaultContextRadius = 10

// Tag classifies an Op.
type Tag int

const (
	Equal Tag = iota
	Insert
	Delete
	Replace
)

func (t Tag) String() string {
	switch t {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	default:
		return "equal"
	}
}

// Op maps the original range [OldStart, OldEnd) onto the candidate range
// [NewStart, NewEnd). Indices are 0-based line indices.
type Op struct {
	Tag      Tag
	OldStart int
	OldEnd   int
	NewStart int
	NewEnd   int
}

// Hunk is a contiguous diff region including its surrounding context.
type Hunk struct {
	Ops []Op
}

// Line is one rendered line of a hunk.
type Line struct {
	Tag Tag // Equal, Insert or Delete
	// OldIndex and NewIndex are -1 when the line does not exist on that side.
	OldIndex int
	NewIndex int
	Text     string
}

// Number is the 1-based line number shown to the operator: the candidate
// position when there is one, the original position for pure deletions.
func (l Line) Number() int {
	if l.NewIndex >= 0 {
		return l.NewIndex + 1
	}
	return l.OldIndex + 1
}

// Lines expands the hunk into displayable lines. Within a Replace op the
// deleted lines come before the inserted ones.
func (h Hunk) Lines(oldLines, newLines []string) []Line {
	var out []Line
	for _, op := range h.Ops {
		switch op.Tag {
		case Equal:
			for i := 0; i < op.OldEnd-op.OldStart; i++ {
				out = append(out, Line{Tag: Equal, OldIndex: op.OldStart + i, NewIndex: op.NewStart + i, Text: oldLines[op.OldStart+i]})
			}
		default:
			for i := op.OldStart; i < op.OldEnd; i++ {
				out = append(out, Line{Tag: Delete, OldIndex: i, NewIndex: -1, Text: oldLines[i]})
			}
			for j := op.NewStart; j < op.NewEnd; j++ {
				out = append(out, Line{Tag: Insert, OldIndex: -1, NewIndex: j, Text: newLines[j]})
			}
		}
	}
	return out
}

// Differ computes hunks with a fixed context radius.
type Differ struct {
	dmp    *diffmatchpatch.DiffMatchPatch
	radius int
}

// New creates a Differ. A negative radius selects DefaultContextRadius.
func New(radius int) *Differ {
	if radius < 0 {
		radius = DefaultContextRadius
	}
	dmp := diffmatchpatch.New()
	// A timeout would make the result depend on machine speed.
	dmp.DiffTimeout = 0
	return &Differ{dmp: dmp, radius: radius}
}

// Hunks diffs oldLines against newLines. Equal inputs produce no hunks.
func (d *Differ) Hunks(oldLines, newLines []string) []Hunk {
	ops := d.Ops(oldLines, newLines)
	return group(ops, d.radius)
}

// Ops returns the full opcode list covering both inputs.
func (d *Differ) Ops(oldLines, newLines []string) []Op {
	oldRunes, newRunes := linesToRunes(oldLines, newLines)
	diffs := d.dmp.DiffMainRunes(oldRunes, newRunes, false)

	var ops []Op
	i, j := 0, 0
	for k := 0; k < len(diffs); k++ {
		n := utf8.RuneCountInString(diffs[k].Text)
		switch diffs[k].Type {
		case diffmatchpatch.DiffEqual:
			ops = append(ops, Op{Tag: Equal, OldStart: i, OldEnd: i + n, NewStart: j, NewEnd: j + n})
			i += n
			j += n
		case diffmatchpatch.DiffDelete:
			// A deletion directly followed by an insertion is a replacement.
			if k+1 < len(diffs) && diffs[k+1].Type == diffmatchpatch.DiffInsert {
				m := utf8.RuneCountInString(diffs[k+1].Text)
				ops = append(ops, Op{Tag: Replace, OldStart: i, OldEnd: i + n, NewStart: j, NewEnd: j + m})
				i += n
				j += m
				k++
				continue
			}
			ops = append(ops, Op{Tag: Delete, OldStart: i, OldEnd: i + n, NewStart: j, NewEnd: j})
			i += n
		case diffmatchpatch.DiffInsert:
			if k+1 < len(diffs) && diffs[k+1].Type == diffmatchpatch.DiffDelete {
				m := utf8.RuneCountInString(diffs[k+1].Text)
				ops = append(ops, Op{Tag: Replace, OldStart: i, OldEnd: i + m, NewStart: j, NewEnd: j + n})
				i += m
				j += n
				k++
				continue
			}
			ops = append(ops, Op{Tag: Insert, OldStart: i, OldEnd: i, NewStart: j, NewEnd: j + n})
			j += n
		}
	}
	return ops
}

// linesToRunes encodes every distinct line as one rune so the character
// diff of diffmatchpatch becomes a line diff.
func linesToRunes(oldLines, newLines []string) ([]rune, []rune) {
	index := make(map[string]rune)
	next := rune(1)
	encode := func(lines []string) []rune {
		out := make([]rune, len(lines))
		for i, l := range lines {
			r, ok := index[l]
			if !ok {
				r = next
				next++
				if next == 0xD800 {
					// skip the surrogate block, it does not survive string conversion
					next = 0xE000
				}
				index[l] = r
			}
			out[i] = r
		}
		return out
	}
	return encode(oldLines), encode(newLines)
}

// group splits ops into hunks, keeping radius lines of context around each
// change and merging changes whose gap is at most twice the radius.
func group(ops []Op, radius int) []Hunk {
	changed := false
	for _, op := range ops {
		if op.Tag != Equal {
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}

	ops = append([]Op(nil), ops...)
	if first := &ops[0]; first.Tag == Equal {
		first.OldStart = max(first.OldStart, first.OldEnd-radius)
		first.NewStart = max(first.NewStart, first.NewEnd-radius)
	}
	if last := &ops[len(ops)-1]; last.Tag == Equal {
		last.OldEnd = min(last.OldEnd, last.OldStart+radius)
		last.NewEnd = min(last.NewEnd, last.NewStart+radius)
	}

	var hunks []Hunk
	var cur []Op
	for _, op := range ops {
		if op.Tag == Equal && op.OldEnd-op.OldStart > 2*radius {
			cur = append(cur, Op{
				Tag:      Equal,
				OldStart: op.OldStart,
				OldEnd:   min(op.OldEnd, op.OldStart+radius),
				NewStart: op.NewStart,
				NewEnd:   min(op.NewEnd, op.NewStart+radius),
			})
			hunks = appendHunk(hunks, cur)
			cur = nil
			op.OldStart = max(op.OldStart, op.OldEnd-radius)
			op.NewStart = max(op.NewStart, op.NewEnd-radius)
		}
		cur = append(cur, op)
	}
	return appendHunk(hunks, cur)
}

// appendHunk drops groups that carry no change and empty Equal ops.
func appendHunk(hunks []Hunk, ops []Op) []Hunk {
	var kept []Op
	changed := false
	for _, op := range ops {
		if op.Tag == Equal && op.OldStart == op.OldEnd {
			continue
		}
		if op.Tag != Equal {
			changed = true
		}
		kept = append(kept, op)
	}
	if !changed {
		return hunks
	}
	return append(hunks, Hunk{Ops: kept})
}
