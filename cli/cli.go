package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/sokinpui/mvref/internal/config"
	"github.com/sokinpui/mvref/internal/fs"
	"github.com/sokinpui/mvref/internal/model"
)

// Separator splits the source from the destination in a move argument.
const Separator = "::"

// Flags holds all the command-line flag values.
type Flags struct {
	Root            string
	Context         int
	Yes             bool
	NoRewrite       bool
	RewriteOnly     bool
	Ignore          []string
	NoDefaultIgnore bool
	Hidden          bool
	ConfigFile      string
	Verbose         bool
	LogFile         string
	Stdin           bool
	Clipboard       bool
}

// Config is the merged configuration of a run: the config file, with every
// flag given on the command line applied on top.
type Config struct {
	config.Config
	// Root is the absolute working root.
	Root        string
	Yes         bool
	NoRewrite   bool
	RewriteOnly bool
}

// BindFlags defines the flags shared by all commands on flags.
func BindFlags(flags *pflag.FlagSet, f *Flags) {
	flags.StringVarP(&f.Root, "root", "C", "", "Working root to move in and scan for references (default: current directory).")
	flags.StringVar(&f.ConfigFile, "config", "", "Config file (default: <root>/"+config.FileName+").")
	flags.BoolVarP(&f.Verbose, "verbose", "v", false, "Log every file decision.")
	flags.StringVar(&f.LogFile, "log-file", "", "Also write the log to this file.")
}

// BindMoveFlags defines the flags of the move command on flags.
func BindMoveFlags(flags *pflag.FlagSet, f *Flags) {
	flags.IntVarP(&f.Context, "context", "U", 10, "Number of unchanged lines shown around each change.")
	flags.BoolVarP(&f.Yes, "yes", "y", false, "Accept every change without prompting.")
	flags.BoolVar(&f.NoRewrite, "no-rewrite", false, "Only move; do not rewrite references.")
	flags.BoolVar(&f.RewriteOnly, "rewrite-only", false, "Only rewrite references for moves that were already made.")
	flags.StringArrayVarP(&f.Ignore, "ignore", "i", nil, "Extra gitignore-style pattern to skip (repeatable).")
	flags.BoolVar(&f.NoDefaultIgnore, "no-default-ignore", false, "Do not skip VCS, dependency and build directories.")
	flags.BoolVar(&f.Hidden, "hidden", false, "Also scan hidden files and directories.")
	flags.BoolVar(&f.Stdin, "stdin", false, "Also read SRC::DST lines from stdin (requires --yes).")
	flags.BoolVar(&f.Clipboard, "clipboard", false, "Also read SRC::DST lines from the clipboard.")
}

// Resolve loads the config file and applies every flag that was set on
// flags on top of it.
func Resolve(flags *pflag.FlagSet, f *Flags) (*Config, error) {
	if f.NoRewrite && f.RewriteOnly {
		return nil, fmt.Errorf("--no-rewrite and --rewrite-only are mutually exclusive")
	}
	if f.Stdin && !f.Yes {
		return nil, fmt.Errorf("--stdin requires --yes: review answers are read from stdin")
	}

	resolver, err := fs.NewPathResolver(f.Root)
	if err != nil {
		return nil, err
	}

	fileCfg, err := config.Load(resolver.Root(), f.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := &Config{
		Config:      fileCfg,
		Root:        resolver.Root(),
		Yes:         f.Yes,
		NoRewrite:   f.NoRewrite,
		RewriteOnly: f.RewriteOnly,
	}

	if flags.Changed("context") {
		cfg.ContextRadius = f.Context
	}
	cfg.Ignore = append(cfg.Ignore, f.Ignore...)
	if flags.Changed("no-default-ignore") {
		cfg.NoDefaultIgnore = f.NoDefaultIgnore
	}
	if flags.Changed("hidden") {
		cfg.Hidden = f.Hidden
	}
	if f.Verbose {
		cfg.Log.Level = "debug"
	}
	if flags.Changed("log-file") {
		cfg.Log.File = f.LogFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseMove parses a "SRC::DST" argument. Relative paths are resolved
// against the resolver's root.
func ParseMove(arg string, resolver *fs.PathResolver) (model.Move, error) {
	src, dst, ok := strings.Cut(arg, Separator)
	if !ok {
		return model.Move{}, fmt.Errorf("invalid move '%s': expected SRC%sDST", arg, Separator)
	}
	if src == "" || dst == "" {
		return model.Move{}, fmt.Errorf("invalid move '%s': source and destination are required", arg)
	}
	return model.Move{
		Source:      resolver.Resolve(src),
		Destination: resolver.Resolve(dst),
	}, nil
}

// ParseMoves parses every argument with ParseMove.
func ParseMoves(args []string, resolver *fs.PathResolver) ([]model.Move, error) {
	moves := make([]model.Move, 0, len(args))
	for _, arg := range args {
		mv, err := ParseMove(arg, resolver)
		if err != nil {
			return nil, err
		}
		moves = append(moves, mv)
	}
	return moves, nil
}
