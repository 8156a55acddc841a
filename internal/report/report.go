// Package report renders lint results for the terminal, for machines
// (JSON), and for code-review tooling (SARIF).
package report

import (
	"fmt"
	"io"
	"strings"

	"ichthus/internal/rule"
)

// Format selects an output renderer.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat converts a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json, or sarif)", s)
}

// Summary carries the run totals shown after the findings.
type Summary struct {
	FilesScanned int
	Suppressed   int // findings hidden by the baseline
}

// Renderer writes findings in one output format.
type Renderer interface {
	Render(w io.Writer, findings []rule.Finding, summary Summary) error
}

// New returns the renderer for the given format. The registry supplies
// rule metadata for formats that embed it.
func New(format Format, reg *rule.Registry) (Renderer, error) {
	switch format {
	case FormatText:
		return NewTextRenderer(), nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatSARIF:
		return &SARIFRenderer{Registry: reg}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
