package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/tsload/harness"
)

var (
	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#90EE90"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// renderReport formats a harness report, one line per check followed by its
// failures. Styling is applied only when color is true.
func renderReport(r *harness.Report, color bool) string {
	render := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	for _, res := range r.Results {
		status := render(passStyle, "PASS")
		if !res.Passed {
			status = render(failStyle, "FAIL")
		}
		fmt.Fprintf(&b, "%s %s %s\n", status, res.Check,
			render(detailStyle, fmt.Sprintf("(%s, %d modules, %s)", res.Entry, res.Modules, res.Duration.Round(time.Microsecond))))
		for _, f := range res.Failures {
			fmt.Fprintf(&b, "    %s\n", f)
		}
	}

	summary := fmt.Sprintf("%d checks, %d failed", len(r.Results), r.Failed())
	if r.Passed() {
		b.WriteString(render(passStyle, summary))
	} else {
		b.WriteString(render(failStyle, summary))
	}
	b.WriteByte('\n')
	return b.String()
}
