package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"ichthus/internal/rule"
)

// ExplainRule renders one rule's documentation as terminal markdown.
func ExplainRule(r rule.Rule) (string, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", r.ID)
	fmt.Fprintf(&md, "**%s**\n\n", r.Summary)
	fmt.Fprintf(&md, "- Category: `%s`\n", r.Category)
	fmt.Fprintf(&md, "- Default severity: `%s`\n\n", r.Severity)
	if r.Rationale != "" {
		fmt.Fprintf(&md, "%s\n", r.Rationale)
	}
	return renderMarkdown(md.String())
}

// RuleTable renders the full rule listing grouped by category.
func RuleTable(rules []rule.Rule) (string, error) {
	byCategory := make(map[rule.Category][]rule.Rule)
	for _, r := range rules {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}
	categories := make([]rule.Category, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	var md strings.Builder
	md.WriteString("# Rules\n\n")
	for _, c := range categories {
		fmt.Fprintf(&md, "## %s\n\n", c)
		fmt.Fprintln(&md, "| ID | Severity | Summary |")
		fmt.Fprintln(&md, "|----|----------|---------|")
		for _, r := range byCategory[c] {
			fmt.Fprintf(&md, "| %s | %s | %s |\n", r.ID, r.Severity, r.Summary)
		}
		fmt.Fprintln(&md)
	}
	return renderMarkdown(md.String())
}

func renderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// No usable terminal profile. Plain markdown still reads fine.
		return md, nil
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md, nil
	}
	return out, nil
}
