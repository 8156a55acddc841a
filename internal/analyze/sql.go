package analyze

import (
	"fmt"
	"strings"

	"ichthus/internal/rule"
	"ichthus/internal/source"
)

// sqlStarters are the statement verbs that mark a literal as inline SQL.
var sqlStarters = map[string]bool{
	"select": true, "insert": true, "update": true, "delete": true,
	"create": true, "alter": true, "drop": true, "merge": true,
}

// sqlKeywords are checked for casing once a literal is recognized as SQL.
var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "join": true,
	"inner": true, "left": true, "right": true, "outer": true,
	"group": true, "order": true, "by": true, "having": true,
	"insert": true, "into": true, "values": true, "update": true,
	"set": true, "delete": true, "union": true, "distinct": true,
	"on": true, "and": true, "or": true, "not": true, "null": true,
	"as": true, "exists": true, "between": true, "like": true, "in": true,
}

// looksLikeSQL applies the recognizer: the first word is a statement verb
// and the literal has at least two keyword tokens in total.
func looksLikeSQL(s string) bool {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return false
	}
	if !sqlStarters[strings.ToLower(fields[0])] {
		return false
	}
	keywordCount := 0
	for _, f := range fields {
		if sqlKeywords[strings.ToLower(f)] {
			keywordCount++
		}
	}
	return keywordCount >= 2
}

// lowercaseSQLKeywords returns keywords not written fully uppercase, in
// order of appearance, deduplicated.
func lowercaseSQLKeywords(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Fields(s) {
		token := strings.Trim(f, "(),;")
		lower := strings.ToLower(token)
		if sqlKeywords[lower] && !seen[lower] && token != strings.ToUpper(token) {
			out = append(out, token)
			seen[lower] = true
		}
	}
	return out
}

// checkSQLLiterals flags lowercase keywords in string literals that look
// like SQL statements.
func (a *Analyzer) checkSQLLiterals(f *source.File) []rule.Finding {
	var findings []rule.Finding
	for i, lit := range f.Strings {
		if !looksLikeSQL(lit.Value) {
			continue
		}
		lower := lowercaseSQLKeywords(lit.Value)
		if len(lower) == 0 {
			continue
		}
		if fd, ok := a.finding("ICH401", f.Path, lit.Line, lit.Column,
			fmt.Sprintf("sql#%d", i),
			fmt.Sprintf("SQL keywords should be uppercase: %s", strings.Join(lower, ", "))); ok {
			findings = append(findings, fd)
		}
	}
	return findings
}
