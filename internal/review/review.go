// Package review presents hunks to an operator and collects a decision for
// each of them.
package review

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/sokinpui/mvref/internal/differ"
	"github.com/sokinpui/mvref/internal/ui"
)

// Prompt is printed after every hunk.
const Prompt = "\n(Y_es/n_o/C_ancel/S_kip file)> "

// Decision is the operator's answer for one hunk.
type Decision int

const (
	Accept Decision = iota
	Decline
	SkipFile
	CancelAll
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Decline:
		return "decline"
	case SkipFile:
		return "skip-file"
	case CancelAll:
		return "cancel"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// ParseDecision maps one line of operator input to a Decision. Anything
// unrecognised declines the hunk.
func ParseDecision(input string) Decision {
	switch strings.TrimSpace(input) {
	case "", "y", "Y":
		return Accept
	case "C":
		return CancelAll
	case "S":
		return SkipFile
	default:
		return Decline
	}
}

// Hunk is what a Reviewer gets to see for one decision.
type Hunk struct {
	Path  string
	Index int // 0-based position within the file
	Total int
	Lines []differ.Line
}

// Reviewer decides on hunks. BeginFile is called once before the first
// hunk of every file with at least one hunk.
type Reviewer interface {
	BeginFile(path string, hunks int) error
	Review(h Hunk) (Decision, error)
}

// Terminal reads decisions from in and renders hunks to out.
type Terminal struct {
	in    *bufio.Reader
	out   io.Writer
	clear bool
}

// NewTerminal creates a Terminal reviewer. The screen is cleared between
// files only when out is a terminal.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{in: bufio.NewReader(in), out: out}
	if f, ok := out.(*os.File); ok {
		t.clear = term.IsTerminal(int(f.Fd()))
	}
	return t
}

func (t *Terminal) BeginFile(path string, hunks int) error {
	if t.clear {
		// clear screen, cursor home
		if _, err := io.WriteString(t.out, "\x1b[2J\x1b[H"); err != nil {
			return err
		}
	}
	_, err := ui.FileHeaderColor.Fprintf(t.out, "\n\n%s (%d hunk(s))\n", path, hunks)
	return err
}

func (t *Terminal) Review(h Hunk) (Decision, error) {
	if h.Total > 1 {
		ui.LineNumberColor.Fprintf(t.out, "\n@@ %d/%d @@\n", h.Index+1, h.Total)
	}
	for _, l := range h.Lines {
		if err := renderLine(t.out, l); err != nil {
			return Decline, err
		}
	}

	if _, err := ui.PromptColor.Fprint(t.out, Prompt); err != nil {
		return Decline, err
	}
	input, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && input == "" {
			// Nobody left to answer; stop without writing anything else.
			fmt.Fprintln(t.out)
			return CancelAll, nil
		}
		if !errors.Is(err, io.EOF) {
			return Decline, fmt.Errorf("failed to read decision: %w", err)
		}
	}
	return ParseDecision(input), nil
}

func renderLine(w io.Writer, l differ.Line) error {
	if _, err := ui.LineNumberColor.Fprintf(w, "%4d ", l.Number()); err != nil {
		return err
	}
	var err error
	switch l.Tag {
	case differ.Delete:
		_, err = ui.DeletedColor.Fprintln(w, "-"+l.Text)
	case differ.Insert:
		_, err = ui.InsertedColor.Fprintln(w, "+"+l.Text)
	default:
		_, err = fmt.Fprintln(w, " "+l.Text)
	}
	return err
}

// AcceptAll accepts every hunk without asking.
type AcceptAll struct{}

func (AcceptAll) BeginFile(string, int) error { return nil }
func (AcceptAll) Review(Hunk) (Decision, error) {
	return Accept, nil
}

// Scripted replays a fixed list of decisions in order. Once the list is
// exhausted every further hunk is declined.
type Scripted struct {
	Decisions []Decision
	// Seen records every hunk presented, in order.
	Seen []Hunk
	// Files records every BeginFile call, in order.
	Files []string
}

func (s *Scripted) BeginFile(path string, _ int) error {
	s.Files = append(s.Files, path)
	return nil
}

func (s *Scripted) Review(h Hunk) (Decision, error) {
	s.Seen = append(s.Seen, h)
	if len(s.Decisions) == 0 {
		return Decline, nil
	}
	d := s.Decisions[0]
	s.Decisions = s.Decisions[1:]
	return d, nil
}
