package report

import (
	"encoding/json"
	"io"

	"ichthus/internal/rule"
)

// JSONRenderer writes the machine-readable report.
type JSONRenderer struct{}

type jsonFinding struct {
	rule.Finding
	Fingerprint string `json:"fingerprint"`
}

type jsonReport struct {
	Version      string        `json:"version"`
	FilesScanned int           `json:"files_scanned"`
	Suppressed   int           `json:"suppressed"`
	Findings     []jsonFinding `json:"findings"`
}

// Render writes findings and totals as a single JSON document.
func (r *JSONRenderer) Render(w io.Writer, findings []rule.Finding, summary Summary) error {
	out := jsonReport{
		Version:      "1",
		FilesScanned: summary.FilesScanned,
		Suppressed:   summary.Suppressed,
		Findings:     make([]jsonFinding, 0, len(findings)),
	}
	for _, f := range findings {
		out.Findings = append(out.Findings, jsonFinding{Finding: f, Fingerprint: f.Fingerprint()})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
