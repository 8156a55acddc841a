package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ichthus/internal/config"
	"ichthus/internal/logging"
	"ichthus/internal/rule"
)

// Checker evaluates the DOC0xx rules over guide revisions.
type Checker struct {
	cfg *config.Config
	reg *rule.Registry
}

// NewChecker creates a Checker for a configuration.
func NewChecker(cfg *config.Config) *Checker {
	return &Checker{cfg: cfg, reg: rule.NewRegistry()}
}

func (c *Checker) finding(id, file string, line int, subject, msg string) (rule.Finding, bool) {
	if c.cfg.RuleDisabled(id) {
		return rule.Finding{}, false
	}
	return rule.Finding{
		RuleID:   id,
		Severity: c.reg.Severity(id, c.cfg.Rules.Severity),
		File:     file,
		Line:     line,
		Column:   1,
		Subject:  subject,
		Message:  msg,
	}, true
}

// CheckDirectory checks every revision matching the configured glob under
// dir, in lexical order, running intra-document checks on each and the
// contradiction check across the sequence.
func (c *Checker) CheckDirectory(dir string) ([]rule.Finding, error) {
	timer := logging.StartTimer(logging.CategoryDocs, "CheckDirectory")
	defer timer.Stop()

	pattern := c.cfg.Docs.RevisionGlob
	if pattern == "" {
		pattern = "*.md"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad revision glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	logging.Docs("Checking %d revisions under %s", len(matches), dir)

	var findings []rule.Finding
	var revisions []*Revision
	for _, path := range matches {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		rev := ParseRevision(rel, content)
		revisions = append(revisions, rev)
		findings = append(findings, c.CheckRevision(rev)...)
	}

	findings = append(findings, c.checkContradictions(revisions)...)
	rule.Sort(findings)
	return findings, nil
}

// CheckRevision runs the intra-document checks: heading presence, section
// numbering, and heading hierarchy.
func (c *Checker) CheckRevision(rev *Revision) []rule.Finding {
	var findings []rule.Finding

	if len(rev.Headings) == 0 {
		if f, ok := c.finding("DOC001", rev.Path, 1, "document",
			"document has no headings; revision cannot be checked"); ok {
			findings = append(findings, f)
		}
		return findings
	}

	findings = append(findings, c.checkNumbering(rev)...)
	findings = append(findings, c.checkHeadingLevels(rev)...)
	return findings
}

// checkNumbering verifies sibling monotonicity (DOC002) and parent prefixes
// (DOC003) over the numbered headings.
func (c *Checker) checkNumbering(rev *Revision) []rule.Finding {
	var findings []rule.Finding

	// open[d] is the active section number at depth d+1.
	var open [][]int
	for _, h := range rev.Headings {
		if len(h.Number) == 0 {
			continue
		}
		depth := len(h.Number)
		subject := "section:" + h.NumberString()

		if depth >= 2 {
			parentOK := len(open) >= depth-1 && prefixEqual(h.Number[:depth-1], open[depth-2])
			if !parentOK {
				if f, ok := c.finding("DOC003", rev.Path, h.Line, subject,
					fmt.Sprintf("section %s is not nested under an open section %s",
						h.NumberString(), numberString(h.Number[:depth-1]))); ok {
					findings = append(findings, f)
				}
			}
		}

		// Sibling check: compare with the previously open number at the
		// same depth under the same parent.
		if len(open) >= depth {
			prev := open[depth-1]
			sameParent := prefixEqual(prev[:depth-1], h.Number[:depth-1])
			if sameParent && h.Number[depth-1] != prev[depth-1]+1 {
				if f, ok := c.finding("DOC002", rev.Path, h.Line, subject,
					fmt.Sprintf("section %s follows %s; expected %s",
						h.NumberString(), numberString(prev), numberString(append(append([]int{}, prev[:depth-1]...), prev[depth-1]+1)))); ok {
					findings = append(findings, f)
				}
			}
		} else if h.Number[depth-1] != 1 && depth > 1 {
			if f, ok := c.finding("DOC002", rev.Path, h.Line, subject,
				fmt.Sprintf("first subsection at this depth is %s; expected %s.1",
					h.NumberString(), numberString(h.Number[:depth-1]))); ok {
				findings = append(findings, f)
			}
		}

		open = open[:min(len(open), depth-1)]
		open = append(open, h.Number)
	}
	return findings
}

// checkHeadingLevels flags level skips (DOC004).
func (c *Checker) checkHeadingLevels(rev *Revision) []rule.Finding {
	var findings []rule.Finding
	prev := 0
	for _, h := range rev.Headings {
		if prev > 0 && h.Level > prev+1 {
			if f, ok := c.finding("DOC004", rev.Path, h.Line, "heading:"+h.Title,
				fmt.Sprintf("heading level h%d follows h%d; levels must not skip", h.Level, prev)); ok {
				findings = append(findings, f)
			}
		}
		prev = h.Level
	}
	return findings
}

// checkContradictions compares each revision against its predecessor:
// a titled section that disappears, or a directive whose polarity flips,
// needs the deviation marker in the later revision (DOC005).
func (c *Checker) checkContradictions(revisions []*Revision) []rule.Finding {
	var findings []rule.Finding
	marker := strings.ToLower(c.cfg.Docs.DeviationMarker)
	if marker == "" {
		marker = "deviation"
	}

	for i := 1; i < len(revisions); i++ {
		earlier, later := revisions[i-1], revisions[i]
		laterWhole := strings.ToLower(revisionText(later))

		for _, sec := range earlier.Sections {
			title := sec.Heading.Title
			if strings.TrimSpace(title) == "" {
				continue
			}
			laterSec, exists := later.SectionByTitle(title)
			if !exists {
				if !strings.Contains(laterWhole, marker) {
					if f, ok := c.finding("DOC005", later.Path, 1,
						"dropped:"+NormalizeTitle(title),
						fmt.Sprintf("section %q from %s was dropped without a %s rationale",
							title, earlier.Path, c.cfg.Docs.DeviationMarker)); ok {
						findings = append(findings, f)
					}
				}
				continue
			}

			if strings.Contains(strings.ToLower(laterSec.Body), marker) {
				continue // explicit deviation covers any reversal
			}
			earlierDirectives := extractDirectives(sec.Body)
			laterDirectives := extractDirectives(laterSec.Body)
			for _, ed := range earlierDirectives {
				for _, ld := range laterDirectives {
					if ed.stem == ld.stem && ed.negative != ld.negative {
						if f, ok := c.finding("DOC005", later.Path, laterSec.Heading.Line,
							"reversed:"+NormalizeTitle(title)+":"+ed.stem,
							fmt.Sprintf("section %q reverses a rule from %s without a %s rationale",
								title, earlier.Path, c.cfg.Docs.DeviationMarker)); ok {
							findings = append(findings, f)
						}
					}
				}
			}
		}
	}
	return findings
}

func revisionText(rev *Revision) string {
	var sb strings.Builder
	for _, s := range rev.Sections {
		sb.WriteString(s.Heading.Title)
		sb.WriteString("\n")
		sb.WriteString(s.Body)
		sb.WriteString("\n")
	}
	return sb.String()
}

func prefixEqual(a, b []int) bool {
	if len(b) < len(a) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func numberString(n []int) string {
	return Heading{Number: n}.NumberString()
}
