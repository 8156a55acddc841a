// Package rule defines rule identity, severities, and findings shared by the
// analyzers and renderers.
package rule

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Severity classifies how seriously a finding should be treated.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity converts a config string to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Category groups rules by the guide section they enforce.
type Category string

const (
	CategoryNaming      Category = "naming"
	CategoryNamespaces  Category = "namespaces"
	CategoryDocComments Category = "documentation"
	CategorySuppression Category = "suppression"
	CategorySQL         Category = "sql"
	CategoryGuideDocs   Category = "guide-docs"
)

// Rule describes one enforceable convention.
type Rule struct {
	ID        string
	Category  Category
	Severity  Severity // default severity, before config overrides
	Summary   string
	Rationale string // rendered by `rules explain`
}

// Finding is one violation located in a file.
type Finding struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`

	// Subject identifies the declaration independent of position, so the
	// fingerprint survives line drift. For document findings this is the
	// section number.
	Subject string `json:"subject"`
}

// Fingerprint returns a stable identity for baseline matching.
// Positions are deliberately excluded.
func (f Finding) Fingerprint() string {
	h := sha256.Sum256([]byte(f.RuleID + "\x00" + f.File + "\x00" + f.Subject))
	return hex.EncodeToString(h[:16])
}

// Sort orders findings by file, then line, then column, then rule ID.
func Sort(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// FormatID normalizes a rule ID for lookups (case-insensitive).
func FormatID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
