// Package ident classifies identifier casing the way the conventions define
// it: PascalCase and camelCase word shapes, registered-acronym capitalization,
// Hungarian prefixes, and the WinForms control prefix table.
package ident

import (
	"strings"
	"unicode"
)

// SplitWords breaks an identifier into its constituent words. Boundaries are
// underscores, lower-to-upper transitions, and the end of an uppercase run
// ("EDIParser" -> ["EDI", "Parser"]). Digits attach to the preceding word.
func SplitWords(name string) []string {
	var words []string
	runes := []rune(name)
	start := 0

	flush := func(end int) {
		if end > start {
			words = append(words, string(runes[start:end]))
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '_' {
			flush(i)
			start = i + 1
			continue
		}
		if i == start {
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			// fooBar boundary
			flush(i)
		case unicode.IsUpper(r) && unicode.IsDigit(prev):
			flush(i)
		case unicode.IsLower(r) && unicode.IsUpper(prev):
			// End of an uppercase run: the last upper belongs to this word.
			if i-1 > start {
				flush(i - 1)
			}
		}
	}
	flush(len(runes))
	return words
}

// IsPascalCase reports whether a name is a legal PascalCase identifier:
// starts with an uppercase letter, contains only letters and digits.
// Acronym correctness is checked separately by AcronymViolation.
func IsPascalCase(name string) bool {
	if name == "" {
		return false
	}
	runes := []rune(name)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsCamelCase reports whether a name is a legal camelCase identifier:
// starts with a lowercase letter, contains only letters and digits.
func IsCamelCase(name string) bool {
	if name == "" {
		return false
	}
	runes := []rune(name)
	if !unicode.IsLower(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsScreamingSnake reports whether a name is SCREAMING_SNAKE_CASE: at least
// one underscore or all-caps, with no lowercase letters.
func IsScreamingSnake(name string) bool {
	if name == "" {
		return false
	}
	hasLetter := false
	for _, r := range name {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r):
			hasLetter = true
		case unicode.IsDigit(r), r == '_':
		default:
			return false
		}
	}
	return hasLetter && (strings.Contains(name, "_") || strings.ToUpper(name) == name)
}

// IsInterfaceName reports whether a name follows the interface convention:
// an I prefix immediately followed by a PascalCase name ("IMessageParser").
// A bare "I" or "Item"-style name (I followed by lowercase) does not qualify.
func IsInterfaceName(name string) bool {
	runes := []rune(name)
	if len(runes) < 2 || runes[0] != 'I' {
		return false
	}
	return unicode.IsUpper(runes[1]) && IsPascalCase(string(runes[1:]))
}

// AcronymViolation scans a name's words for a registered acronym written in
// title case ("Edi" where EDI is registered). It returns the offending word
// and its registered spelling.
func AcronymViolation(name string, acronyms []string) (got, want string, found bool) {
	if len(acronyms) == 0 {
		return "", "", false
	}
	registered := make(map[string]bool, len(acronyms))
	for _, a := range acronyms {
		registered[strings.ToUpper(a)] = true
	}
	for _, w := range SplitWords(name) {
		upper := strings.ToUpper(w)
		if w != upper && registered[upper] {
			return w, upper, true
		}
	}
	return "", "", false
}

// HungarianPrefix returns the forbidden type-encoding prefix a name carries,
// if any. A prefix only matches when followed by an uppercase letter or
// another separator ("strName", "m_count"), so "string" and "interval"
// never match.
func HungarianPrefix(name string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if !strings.HasPrefix(name, p) || len(name) == len(p) {
			continue
		}
		rest := []rune(name[len(p):])
		if strings.HasSuffix(p, "_") || unicode.IsUpper(rest[0]) {
			return p, true
		}
	}
	return "", false
}

// ControlPrefix returns the WinForms prefix a field name starts with, if the
// prefix is in the table and followed by a PascalCase remainder.
func ControlPrefix(name string, table map[string]string) (prefix string, ok bool) {
	for p := range table {
		if strings.HasPrefix(name, p) && len(name) > len(p) {
			if IsPascalCase(name[len(p):]) {
				return p, true
			}
		}
	}
	return "", false
}

// Exempt reports whether a name is outside casing rules entirely:
// single letters, the discard name, and compiler-generated names.
func Exempt(name string) bool {
	if len([]rune(name)) <= 1 {
		return true
	}
	// Compiler-generated identifiers (<>c__DisplayClass, etc.)
	return strings.ContainsAny(name, "<>$")
}
