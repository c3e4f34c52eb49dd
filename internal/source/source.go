// Package source reads move lists that are not given as arguments: one
// SRC::DST per line, from stdin or the clipboard.
package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/mvref/internal/ui"
)

// SourceProvider retrieves move lists.
type SourceProvider struct {
	stdin         io.Reader
	readClipboard func() (string, error)
}

// New creates a new SourceProvider reading the process's stdin and the
// system clipboard.
func New() *SourceProvider {
	return &SourceProvider{stdin: os.Stdin, readClipboard: clipboard.ReadAll}
}

// FromStdin reads a move list from stdin.
func (sp *SourceProvider) FromStdin() ([]string, error) {
	ui.Header("--- Reading moves from stdin ---")
	content, err := io.ReadAll(sp.stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read from stdin: %w", err)
	}
	return Lines(string(content)), nil
}

// FromClipboard reads a move list from the clipboard.
func (sp *SourceProvider) FromClipboard() ([]string, error) {
	ui.Header("--- Reading moves from clipboard ---")
	content, err := sp.readClipboard()
	if err != nil {
		return nil, fmt.Errorf("failed to read from clipboard: %w", err)
	}
	lines := Lines(content)
	if len(lines) == 0 {
		ui.Warning("Clipboard is empty. Nothing to process.")
	}
	return lines, nil
}

// Lines splits content into move arguments. Blank lines and lines starting
// with '#' are dropped.
func Lines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
