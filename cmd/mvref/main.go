// Package main provides the mvref CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sokinpui/mvref/cli"
	"github.com/sokinpui/mvref/internal/logging"
	"github.com/sokinpui/mvref/internal/source"
	"github.com/sokinpui/mvref/internal/ui"
	"github.com/sokinpui/mvref/mvref"
)

var version = "dev"

var flags cli.Flags

var rootCmd = &cobra.Command{
	Use:           "mvref",
	Short:         "Move files and fix the references to them",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var moveCmd = &cobra.Command{
	Use:   "move SRC::DST...",
	Short: "Move files or directories and review reference rewrites",
	Long: `Move files or directories, then scan the working root for textual
references to the old paths and offer every rewrite as a diff hunk.

At each hunk answer y (or Enter) to accept, n to decline, S to skip the rest
of the file, or C to cancel. Files already written stay written on cancel.

Examples:
  mvref move lib/test.ts::lib/test/test.ts
  mvref move -y src/util::src/internal/util docs/a.md::docs/guide/a.md
  mvref move --rewrite-only old/name.go::new/name.go   # after a git mv
  git diff --name-status -M | awk '$1 ~ /^R/ {print $2"::"$3}' | mvref move --stdin --rewrite-only -y`,
	RunE: runMove,
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the last run",
	Args:  cobra.NoArgs,
	RunE:  runUndo,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("mvref " + version)
	},
}

func init() {
	cli.BindFlags(rootCmd.PersistentFlags(), &flags)
	cli.BindMoveFlags(moveCmd.Flags(), &flags)

	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		ui.Error("Error: %v", err)
		var detailed *mvref.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n%s\n", detailed.Stack)
		}
		os.Exit(1)
	}
}

func newApp(cmd *cobra.Command) (*mvref.App, error) {
	cfg, err := cli.Resolve(cmd.Flags(), &flags)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	app, err := mvref.New(cfg, mvref.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return app, nil
}

func runMove(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	sp := source.New()
	if flags.Stdin {
		lines, err := sp.FromStdin()
		if err != nil {
			return err
		}
		args = append(args, lines...)
	}
	if flags.Clipboard {
		lines, err := sp.FromClipboard()
		if err != nil {
			return err
		}
		args = append(args, lines...)
	}
	if len(args) == 0 {
		return fmt.Errorf("no moves given")
	}

	moves, err := cli.ParseMoves(args, app.Resolver())
	if err != nil {
		return err
	}

	summary, err := app.Execute(moves)
	mvref.PrintSummary(os.Stderr, "mvref", summary)
	return err
}

func runUndo(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	summary, err := app.Undo()
	mvref.PrintSummary(os.Stderr, "mvref undo", summary)
	return err
}
