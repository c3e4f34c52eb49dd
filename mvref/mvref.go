package mvref

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sokinpui/mvref/cli"
	"github.com/sokinpui/mvref/internal/differ"
	"github.com/sokinpui/mvref/internal/discovery"
	"github.com/sokinpui/mvref/internal/fs"
	"github.com/sokinpui/mvref/internal/ignore"
	"github.com/sokinpui/mvref/internal/model"
	"github.com/sokinpui/mvref/internal/patcher"
	"github.com/sokinpui/mvref/internal/review"
	"github.com/sokinpui/mvref/internal/rewriter"
	"github.com/sokinpui/mvref/internal/state"
	"github.com/sokinpui/mvref/internal/ui"
)

// App orchestrates the entire application logic.
type App struct {
	cfg          *cli.Config
	log          zerolog.Logger
	stateManager *state.Manager
	pathResolver *fs.PathResolver
	matcher      *ignore.Matcher
	differ       *differ.Differ
	reviewer     review.Reviewer
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// Option customises an App.
type Option func(*App)

// WithReviewer replaces the reviewer chosen from the config.
func WithReviewer(r review.Reviewer) Option {
	return func(a *App) { a.reviewer = r }
}

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.log = l }
}

// New creates a new App instance.
func New(cfg *cli.Config, opts ...Option) (*App, error) {
	pathResolver, err := fs.NewPathResolver(cfg.Root)
	if err != nil {
		return nil, err
	}
	stateManager, err := state.New(pathResolver.Root())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state manager: %w", err)
	}
	matcher, err := ignore.Load(pathResolver.Root(), ignore.Options{
		Patterns:   cfg.Ignore,
		NoDefaults: cfg.NoDefaultIgnore,
		Hidden:     cfg.Hidden,
	})
	if err != nil {
		stateManager.Close()
		return nil, fmt.Errorf("failed to load ignore patterns: %w", err)
	}

	a := &App{
		cfg:          cfg,
		log:          zerolog.Nop(),
		stateManager: stateManager,
		pathResolver: pathResolver,
		matcher:      matcher,
		differ:       differ.New(cfg.ContextRadius),
	}
	if cfg.Yes {
		a.reviewer = review.AcceptAll{}
	} else {
		a.reviewer = review.NewTerminal(os.Stdin, os.Stdout)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Close releases the journal.
func (a *App) Close() {
	a.stateManager.Close()
}

// Resolver returns the resolver for paths relative to the working root.
func (a *App) Resolver() *fs.PathResolver {
	return a.pathResolver
}

// Execute performs the moves and then reviews the reference rewrites they
// imply, file by file. A cancelled run is not an error; it is reported in
// the summary.
func (a *App) Execute(moves []model.Move) (summary model.Summary, err error) {
	defer recoverPanic(&err)
	return a.run(moves)
}

// Undo reverts the most recent run recorded in the journal.
func (a *App) Undo() (summary model.Summary, err error) {
	defer recoverPanic(&err)
	return a.undoLastOperation()
}

// recoverPanic is the centralized panic recovery for every entry point.
func recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = &DetailedError{
			Err:   fmt.Errorf("internal panic: %v", r),
			Stack: debug.Stack(),
		}
	}
}

type fileOutcome int

const (
	unchanged fileOutcome = iota
	written
	skipped
	cancelled
)

func (a *App) run(moves []model.Move) (summary model.Summary, err error) {
	sorted := slices.Clone(moves)
	slices.SortStableFunc(sorted, func(x, y model.Move) int {
		return strings.Compare(y.Source, x.Source)
	})

	var ops []state.Operation
	defer func() {
		if werr := a.stateManager.Write(ops); werr != nil {
			a.log.Warn().Err(werr).Msg("journal not written")
			if err == nil {
				err = werr
			}
		}
	}()

	if !a.cfg.RewriteOnly {
		for _, mv := range sorted {
			src, dst := a.pathResolver.Display(mv.Source), a.pathResolver.Display(mv.Destination)
			ui.Info("Move %s to %s", src, dst)
			if err := fs.MoveEntry(mv); err != nil {
				summary.Failed = append(summary.Failed, src)
				return summary, err
			}
			ops = append(ops, state.Operation{Action: model.ActionMove, Path: mv.Source, NewPath: mv.Destination})
			summary.Moved = append(summary.Moved, src+" -> "+dst)
		}
	}
	if a.cfg.NoRewrite {
		return summary, nil
	}

	for path := range discovery.Files(a.pathResolver.Root(), a.scanFilter(), a.reportDiscoveryError) {
		outcome, op, err := a.processFile(path, sorted)
		display := a.pathResolver.Display(path)
		if err != nil {
			summary.Failed = append(summary.Failed, display)
			return summary, err
		}
		switch outcome {
		case written:
			ops = append(ops, op)
			summary.Rewritten = append(summary.Rewritten, display)
			a.log.Debug().Str("file", display).Msg("written")
		case skipped:
			summary.Skipped = append(summary.Skipped, display)
			a.log.Debug().Str("file", display).Msg("skipped")
		case cancelled:
			summary.Cancelled = true
			a.log.Debug().Str("file", display).Msg("cancelled")
			return summary, nil
		}
	}
	return summary, nil
}

// scanFilter never lets discovery into the journal directory, whatever the
// ignore settings.
type scanFilter struct {
	matcher  *ignore.Matcher
	stateDir string // slash-separated, relative to the root; empty when outside it
}

func (f scanFilter) Excluded(rel string, isDir bool) bool {
	if f.stateDir != "" {
		slashed := filepath.ToSlash(rel)
		if slashed == f.stateDir || strings.HasPrefix(slashed, f.stateDir+"/") {
			return true
		}
	}
	return f.matcher.Excluded(rel, isDir)
}

func (a *App) scanFilter() scanFilter {
	f := scanFilter{matcher: a.matcher}
	rel, err := filepath.Rel(a.pathResolver.Root(), a.stateManager.StateDir)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		f.stateDir = filepath.ToSlash(rel)
	}
	return f
}

func (a *App) reportDiscoveryError(path string, err error) {
	ui.Error("Cannot read %s: %v", a.pathResolver.Display(path), err)
	a.log.Warn().Err(err).Str("path", path).Msg("discovery")
}

// processFile runs one file through rewrite, diff, review and commit.
func (a *App) processFile(path string, moves []model.Move) (fileOutcome, state.Operation, error) {
	display := a.pathResolver.Display(path)

	content, ok := fs.ReadText(path)
	if !ok {
		a.log.Debug().Str("file", display).Msg("unreadable or not text")
		return unchanged, state.Operation{}, nil
	}
	rewritten := rewriter.Rewrite(path, content, moves)
	if rewritten == content {
		a.log.Debug().Str("file", display).Msg("unchanged")
		return unchanged, state.Operation{}, nil
	}

	oldLines := patcher.SplitLines(content)
	newLines := patcher.SplitLines(rewritten)
	hunks := a.differ.Hunks(oldLines, newLines)
	if len(hunks) == 0 {
		return unchanged, state.Operation{}, nil
	}
	a.log.Debug().Str("file", display).Int("hunks", len(hunks)).Msg("diff computed")

	if err := a.reviewer.BeginFile(display, len(hunks)); err != nil {
		return unchanged, state.Operation{}, fmt.Errorf("review %s: %w", display, err)
	}

	var accepted []differ.Hunk
	for i, h := range hunks {
		decision, err := a.reviewer.Review(review.Hunk{
			Path:  display,
			Index: i,
			Total: len(hunks),
			Lines: h.Lines(oldLines, newLines),
		})
		if err != nil {
			return unchanged, state.Operation{}, fmt.Errorf("review %s: %w", display, err)
		}
		switch decision {
		case review.Accept:
			accepted = append(accepted, h)
		case review.SkipFile:
			return skipped, state.Operation{}, nil
		case review.CancelAll:
			return cancelled, state.Operation{}, nil
		}
	}
	if len(accepted) == 0 {
		return skipped, state.Operation{}, nil
	}

	backup, err := a.stateManager.SaveBackup([]byte(content))
	if err != nil {
		return unchanged, state.Operation{}, fmt.Errorf("%w: %s: %w", patcher.ErrWrite, display, err)
	}
	lines := patcher.Apply(oldLines, newLines, accepted)
	if err := patcher.Commit(path, lines); err != nil {
		return unchanged, state.Operation{}, err
	}

	return written, state.Operation{
		Action:      model.ActionRewrite,
		Path:        path,
		ContentHash: fs.HashBytes([]byte(strings.Join(lines, "\n"))),
		Backup:      backup,
	}, nil
}

// undoLastOperation reverts the operations of the last run in reverse order.
// A file changed since the run is left alone and reported as failed.
func (a *App) undoLastOperation() (model.Summary, error) {
	ops, err := a.stateManager.GetOperationsToUndo()
	if err != nil {
		return model.Summary{}, err
	}
	if len(ops) == 0 {
		return model.Summary{Message: "No operation to undo."}, nil
	}

	summary := model.Summary{Message: "Undid last run."}
	for _, op := range slices.Backward(ops) {
		display := a.pathResolver.Display(op.Path)
		var err error
		switch op.Action {
		case model.ActionMove:
			err = fs.MoveEntry(model.Move{Source: op.NewPath, Destination: op.Path})
			if err == nil {
				summary.Moved = append(summary.Moved, a.pathResolver.Display(op.NewPath)+" -> "+display)
			}
		case model.ActionRewrite:
			err = a.restore(op)
			if err == nil {
				summary.Rewritten = append(summary.Rewritten, display)
			}
		default:
			err = fmt.Errorf("unknown action '%s'", op.Action)
		}
		if err != nil {
			ui.Error("Cannot undo %s %s: %v", op.Action, display, err)
			a.log.Warn().Err(err).Str("path", op.Path).Msg("undo")
			summary.Failed = append(summary.Failed, display)
		}
	}
	return summary, nil
}

var errModified = errors.New("file was modified after the run")

func (a *App) restore(op state.Operation) error {
	hash, err := fs.HashFile(op.Path)
	if err != nil {
		return err
	}
	if hash != op.ContentHash {
		return errModified
	}
	content, err := a.stateManager.ReadBackup(op.Backup)
	if err != nil {
		return err
	}
	return patcher.WriteFile(op.Path, content)
}

// PrintSummary writes the summary of a run to w.
func PrintSummary(w io.Writer, title string, s model.Summary) {
	ui.PrintSummary(w, title, s)
}
