// Package docs runs editorial QA over the style-guide Markdown revisions:
// heading structure, section numbering, and cross-revision contradiction
// checks.
package docs

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// Heading is one Markdown heading with its parsed section number.
type Heading struct {
	Level  int    // Markdown level, 1-6
	Number []int  // parsed numeric prefix ("3.2" -> [3 2]), nil when unnumbered
	Title  string // heading text without the numeric prefix
	Line   int    // 1-based
}

// NumberString renders the section number ("3.2"), or "" when unnumbered.
func (h Heading) NumberString() string {
	if len(h.Number) == 0 {
		return ""
	}
	parts := make([]string, len(h.Number))
	for i, n := range h.Number {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Section is a heading plus the body text up to the next heading.
type Section struct {
	Heading Heading
	Body    string
}

// Revision is one parsed style-guide draft.
type Revision struct {
	Path     string
	Headings []Heading
	Sections []Section
}

// Section lookup by normalized title.
func (r *Revision) SectionByTitle(title string) (Section, bool) {
	want := NormalizeTitle(title)
	for _, s := range r.Sections {
		if NormalizeTitle(s.Heading.Title) == want {
			return s, true
		}
	}
	return Section{}, false
}

// NormalizeTitle folds case and whitespace for title comparison across
// revisions.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

var sectionNumberRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+(.*)$`)

// ParseRevision extracts headings and sections from a Markdown document.
func ParseRevision(path string, content []byte) *Revision {
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(content))
	rev := &Revision{Path: path}

	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok || h.Lines().Len() == 0 {
			return gmast.WalkContinue, nil
		}
		seg := h.Lines().At(0)
		raw := strings.TrimSpace(string(content[seg.Start:seg.Stop]))
		line := 1 + bytes.Count(content[:seg.Start], []byte("\n"))

		heading := Heading{Level: h.Level, Title: raw, Line: line}
		if m := sectionNumberRe.FindStringSubmatch(raw); m != nil {
			for _, part := range strings.Split(m[1], ".") {
				v, err := strconv.Atoi(part)
				if err != nil {
					heading.Number = nil
					break
				}
				heading.Number = append(heading.Number, v)
			}
			heading.Title = strings.TrimSpace(m[2])
		}
		rev.Headings = append(rev.Headings, heading)
		return gmast.WalkContinue, nil
	})

	// Slice raw lines into per-heading bodies: everything up to the next
	// heading of any level.
	lines := strings.Split(string(content), "\n")
	for i, h := range rev.Headings {
		start := h.Line // body starts on the line after the heading
		end := len(lines)
		if i+1 < len(rev.Headings) {
			end = rev.Headings[i+1].Line - 1
		}
		body := ""
		if start < end {
			body = strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		}
		rev.Sections = append(rev.Sections, Section{Heading: h, Body: body})
	}
	return rev
}

// directive is one normative statement extracted from section prose.
type directive struct {
	stem     string
	negative bool
}

var (
	negativeRe  = regexp.MustCompile(`(?i)\b(never|must not|do not|don't|forbidden|avoid)\b`)
	positiveRe  = regexp.MustCompile(`(?i)\b(always|must|required|prefer|use)\b`)
	polarityRe  = regexp.MustCompile(`(?i)\b(never|must not|must|do not|don't|forbidden|avoid|always|required|prefer|use)\b`)
	stemCleanRe = regexp.MustCompile(`[^a-z0-9 ]`)
)

// extractDirectives pulls normative sentences out of body prose. The stem is
// the sentence with polarity words removed, so "always use PascalCase" and
// "never use PascalCase" share a stem with opposite polarity.
func extractDirectives(body string) []directive {
	var out []directive
	for _, sentence := range splitSentences(body) {
		neg := negativeRe.MatchString(sentence)
		if !neg && !positiveRe.MatchString(sentence) {
			continue
		}
		stem := strings.ToLower(sentence)
		stem = polarityRe.ReplaceAllString(stem, " ")
		stem = stemCleanRe.ReplaceAllString(stem, " ")
		stem = strings.Join(strings.Fields(stem), " ")
		if len(strings.Fields(stem)) < 2 {
			continue
		}
		out = append(out, directive{stem: stem, negative: neg})
	}
	return out
}

// splitSentences breaks prose into sentences on periods and line breaks.
func splitSentences(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "-*+ ")
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "```") {
			continue
		}
		for _, s := range strings.Split(line, ". ") {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
