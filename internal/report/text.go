package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"ichthus/internal/rule"
)

// TextRenderer writes human-readable output grouped by file.
type TextRenderer struct {
	fileStyle  lipgloss.Style
	errStyle   lipgloss.Style
	warnStyle  lipgloss.Style
	infoStyle  lipgloss.Style
	mutedStyle lipgloss.Style
	boldStyle  lipgloss.Style
}

// NewTextRenderer builds the renderer with its terminal styles.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{
		fileStyle: lipgloss.NewStyle().
			Bold(true).
			Underline(true),
		errStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ef4444")).
			Bold(true),
		warnStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b")).
			Bold(true),
		infoStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3b82f6")),
		mutedStyle: lipgloss.NewStyle().
			Faint(true),
		boldStyle: lipgloss.NewStyle().
			Bold(true),
	}
}

func (r *TextRenderer) severityLabel(sev rule.Severity) string {
	switch sev {
	case rule.SeverityError:
		return r.errStyle.Render("error")
	case rule.SeverityWarning:
		return r.warnStyle.Render("warning")
	default:
		return r.infoStyle.Render("info")
	}
}

// Render writes findings grouped by file, then a one-line summary.
// Findings are assumed to be sorted.
func (r *TextRenderer) Render(w io.Writer, findings []rule.Finding, summary Summary) error {
	currentFile := ""
	for _, f := range findings {
		if f.File != currentFile {
			if currentFile != "" {
				fmt.Fprintln(w)
			}
			currentFile = f.File
			fmt.Fprintln(w, r.fileStyle.Render(f.File))
		}
		fmt.Fprintf(w, "  %s:%d  %s  %s  %s\n",
			r.mutedStyle.Render(fmt.Sprintf("%d", f.Line)),
			f.Column,
			r.severityLabel(f.Severity),
			r.mutedStyle.Render(f.RuleID),
			f.Message,
		)
	}
	if len(findings) > 0 {
		fmt.Fprintln(w)
	}

	counts := rule.CountBySeverity(findings)
	if len(findings) == 0 {
		fmt.Fprintf(w, "%s %d file(s) scanned, no findings",
			r.boldStyle.Render("✓"), summary.FilesScanned)
	} else {
		fmt.Fprintf(w, "%d finding(s) in %d file(s): %d error(s), %d warning(s), %d info",
			len(findings), summary.FilesScanned,
			counts[rule.SeverityError], counts[rule.SeverityWarning], counts[rule.SeverityInfo])
	}
	if summary.Suppressed > 0 {
		fmt.Fprintf(w, " %s", r.mutedStyle.Render(fmt.Sprintf("(%d baselined)", summary.Suppressed)))
	}
	fmt.Fprintln(w)
	return nil
}
