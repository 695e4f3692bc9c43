package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner writes the transit banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _                        _ _   ", "#38bdf8"},
		{" | |_ _ __ __ _ _ __  ___(_) |_ ", "#22d3ee"},
		{" | __| '__/ _` | '_ \\/ __| | __|", "#2dd4bf"},
		{" | |_| | | (_| | | | \\__ \\ | |_ ", "#34d399"},
		{"  \\__|_|  \\__,_|_| |_|___/_|\\__|", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

var outcomeColors = map[domain.Outcome]string{
	domain.OutcomeApplied:      "#4ade80",
	domain.OutcomePartial:      "#fb923c",
	domain.OutcomeFailed:       "#f87171",
	domain.OutcomeSkipped:      "#9ca3af",
	domain.OutcomeNotAttempted: "#6b7280",
}

// Outcome colours an outcome label for terminal output.
func Outcome(o domain.Outcome) string {
	p := termenv.ColorProfile()
	s := termenv.String(string(o))
	if c, ok := outcomeColors[o]; ok {
		s = s.Foreground(p.Color(c))
	}
	if o == domain.OutcomeFailed {
		s = s.Bold()
	}
	return s.String()
}
