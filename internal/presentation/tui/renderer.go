package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aretw0/transit/internal/install"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Write renders markdown to w. Rich output is used only when w is a terminal;
// pipes and files receive the raw markdown.
func Write(w io.Writer, markdown string) error {
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		rendered, err := NewRenderer()(markdown)
		if err == nil {
			markdown = rendered
		}
	}
	_, err := io.WriteString(w, markdown)
	return err
}

// JournalMarkdown formats the transaction log of an operation as a markdown table.
func JournalMarkdown(operationID string, entries []domain.LogEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Journal `%s`\n\n", operationID)
	if len(entries) == 0 {
		sb.WriteString("_No entries._\n")
		return sb.String()
	}

	sb.WriteString("| # | Time | Type | Element | Action |\n")
	sb.WriteString("|---|------|------|---------|--------|\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s |\n",
			i+1, e.Time.Format(time.RFC3339), cell(e.ElementType), cell(e.ElementName), e.Action)
	}
	return sb.String()
}

// ReportMarkdown formats an import report: outcome per object in install
// order, followed by the errors.
func ReportMarkdown(r *install.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Import `%s`\n\n", r.OperationID)

	counts := make([]string, 0, 5)
	for _, o := range []domain.Outcome{
		domain.OutcomeApplied, domain.OutcomePartial, domain.OutcomeSkipped,
		domain.OutcomeFailed, domain.OutcomeNotAttempted,
	} {
		if n := r.Count(o); n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", n, o))
		}
	}
	if len(counts) > 0 {
		fmt.Fprintf(&sb, "**%s**\n\n", strings.Join(counts, ", "))
	}

	if len(r.Order) > 0 {
		sb.WriteString("| # | Type | Id | Outcome |\n")
		sb.WriteString("|---|------|----|---------|\n")
		for i, k := range r.Order {
			fmt.Fprintf(&sb, "| %d | %s | %s | %s |\n", i+1, cell(k.Type), cell(k.ID), r.Outcome(k))
		}
	}

	if len(r.Errors) > 0 {
		sb.WriteString("\n## Errors\n\n")
		for _, err := range r.Errors {
			fmt.Fprintf(&sb, "- %s\n", err)
		}
	}
	return sb.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
