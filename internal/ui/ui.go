package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/sokinpui/mvref/internal/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	PromptColor  = color.New(color.FgMagenta)

	// Hunk rendering.
	FileHeaderColor = color.New(color.FgMagenta)
	LineNumberColor = color.New(color.FgHiBlack)
	DeletedColor    = color.New(color.FgRed)
	InsertedColor   = color.New(color.FgGreen)
)

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(os.Stderr, "  "+format+"\n", a...)
}

func Prompt(format string, a ...interface{}) string {
	return PromptColor.Sprintf(format, a...)
}

// --- Summaries ---

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// RenderSummary formats the outcome of a run.
func RenderSummary(title string, s model.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if s.Message != "" {
		b.WriteString(s.Message)
		b.WriteString("\n")
	}

	hasContent := false
	section := func(style lipgloss.Style, label string, paths []string) {
		if len(paths) == 0 {
			return
		}
		hasContent = true
		b.WriteString(style.Render(fmt.Sprintf("%s %d:", label, len(paths))))
		b.WriteString("\n")
		for _, p := range paths {
			b.WriteString(fmt.Sprintf("  - %s\n", p))
		}
	}
	section(successStyle, "Moved", s.Moved)
	section(successStyle, "Rewritten", s.Rewritten)
	section(warningStyle, "Skipped", s.Skipped)
	section(errorStyle, "Failed", s.Failed)

	if s.Cancelled {
		b.WriteString(warningStyle.Render("Cancelled; remaining files were not processed."))
		b.WriteString("\n")
	} else if !hasContent && s.Message == "" {
		b.WriteString(faintStyle.Render("Nothing to do."))
		b.WriteString("\n")
	}
	return b.String()
}

// PrintSummary writes RenderSummary to w.
func PrintSummary(w io.Writer, title string, s model.Summary) {
	fmt.Fprint(w, RenderSummary(title, s))
}
