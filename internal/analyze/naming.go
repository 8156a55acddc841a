package analyze

import (
	"fmt"
	"strings"

	"ichthus/internal/ident"
	"ichthus/internal/rule"
	"ichthus/internal/source"
)

// checkDeclaration evaluates the naming and documentation rules for one
// declaration.
func (a *Analyzer) checkDeclaration(f *source.File, d source.Declaration) []rule.Finding {
	if ident.Exempt(d.Name) {
		return nil
	}

	var findings []rule.Finding
	add := func(id, msg string) {
		if fd, ok := a.finding(id, f.Path, d.Line, d.Column, d.Path(), msg); ok {
			findings = append(findings, fd)
		}
	}
	acronymCheck := func() {
		if got, want, found := ident.AcronymViolation(d.Name, a.cfg.Naming.Acronyms); found {
			add("ICH009", fmt.Sprintf("%s %q writes registered acronym %q as %q; use %q",
				d.Kind, d.Name, want, got, strings.Replace(d.Name, got, want, 1)))
		}
	}

	switch d.Kind {
	case source.KindInterface:
		if !ident.IsInterfaceName(d.Name) {
			add("ICH003", fmt.Sprintf("interface %q must be named I followed by a PascalCase noun", d.Name))
		} else {
			acronymCheck()
		}

	case source.KindClass, source.KindStruct, source.KindEnum, source.KindDelegate:
		if !ident.IsPascalCase(d.Name) {
			add("ICH002", fmt.Sprintf("%s %q must be PascalCase", d.Kind, d.Name))
		} else {
			acronymCheck()
		}

	case source.KindMethod:
		if !ident.IsPascalCase(d.Name) {
			add("ICH004", fmt.Sprintf("method %q must be PascalCase", d.Name))
		} else {
			acronymCheck()
		}

	case source.KindProperty, source.KindEvent:
		if !ident.IsPascalCase(d.Name) {
			add("ICH005", fmt.Sprintf("%s %q must be PascalCase", d.Kind, d.Name))
		} else {
			acronymCheck()
		}

	case source.KindParameter:
		if prefix, found := ident.HungarianPrefix(d.Name, a.cfg.Naming.HungarianPrefixes); found {
			add("ICH010", fmt.Sprintf("parameter %q carries forbidden type prefix %q", d.Name, prefix))
		} else if !ident.IsCamelCase(d.Name) {
			add("ICH006", fmt.Sprintf("parameter %q must be camelCase", d.Name))
		}

	case source.KindLocal:
		if d.IsConst {
			a.checkConstant(d, add)
		} else if prefix, found := ident.HungarianPrefix(d.Name, a.cfg.Naming.HungarianPrefixes); found {
			add("ICH010", fmt.Sprintf("local %q carries forbidden type prefix %q", d.Name, prefix))
		} else if !ident.IsCamelCase(d.Name) {
			add("ICH007", fmt.Sprintf("local %q must be camelCase", d.Name))
		}

	case source.KindField:
		a.checkField(d, add)
	}

	findings = append(findings, a.checkDocComment(f, d)...)
	return findings
}

// checkConstant enforces PascalCase constants; SCREAMING_SNAKE gets its own
// message because it is the common import from C.
func (a *Analyzer) checkConstant(d source.Declaration, add func(id, msg string)) {
	switch {
	case ident.IsScreamingSnake(d.Name):
		add("ICH008", fmt.Sprintf("constant %q uses SCREAMING_SNAKE_CASE; constants are PascalCase", d.Name))
	case !ident.IsPascalCase(d.Name):
		add("ICH008", fmt.Sprintf("constant %q must be PascalCase", d.Name))
	default:
		if got, want, found := ident.AcronymViolation(d.Name, a.cfg.Naming.Acronyms); found {
			add("ICH009", fmt.Sprintf("constant %q writes registered acronym %q as %q",
				d.Name, want, got))
		}
	}
}

// controlTypeFor returns the prefix for a declared WinForms control type,
// matching on the final type segment so qualified names work.
func (a *Analyzer) controlTypeFor(typeName string) (prefix string, ok bool) {
	base := typeName
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[i+1:]
	}
	for p, control := range a.cfg.Naming.ControlPrefixes {
		if base == control {
			return p, true
		}
	}
	return "", false
}

// checkField enforces constant, control-prefix, Hungarian, and private-field
// casing rules, in that order of specificity.
func (a *Analyzer) checkField(d source.Declaration, add func(id, msg string)) {
	if d.IsConst {
		a.checkConstant(d, add)
		return
	}

	if wantPrefix, isControl := a.controlTypeFor(d.TypeName); isControl {
		gotPrefix, hasPrefix := ident.ControlPrefix(d.Name, a.cfg.Naming.ControlPrefixes)
		if !hasPrefix || gotPrefix != wantPrefix {
			add("ICH011", fmt.Sprintf("field %q holds a %s and should be named %s followed by PascalCase",
				d.Name, d.TypeName, wantPrefix))
		}
		return
	}

	if prefix, found := ident.HungarianPrefix(d.Name, a.cfg.Naming.HungarianPrefixes); found {
		add("ICH010", fmt.Sprintf("field %q carries forbidden type prefix %q", d.Name, prefix))
		return
	}

	if d.Visibility == "private" || d.Visibility == "" {
		if !ident.IsCamelCase(d.Name) {
			add("ICH012", fmt.Sprintf("private field %q must be camelCase", d.Name))
		}
	}
}

// checkDocComment enforces XML doc requirements on public surface area.
func (a *Analyzer) checkDocComment(f *source.File, d source.Declaration) []rule.Finding {
	if d.Visibility != "public" || d.HasDoc {
		return nil
	}

	var findings []rule.Finding
	switch {
	case d.Kind.IsType():
		if fd, ok := a.finding("ICH201", f.Path, d.Line, d.Column, d.Path(),
			fmt.Sprintf("public %s %q has no XML documentation comment", d.Kind, d.Name)); ok {
			findings = append(findings, fd)
		}
	case d.Kind == source.KindMethod || d.Kind == source.KindProperty:
		if fd, ok := a.finding("ICH202", f.Path, d.Line, d.Column, d.Path(),
			fmt.Sprintf("public %s %q has no XML documentation comment", d.Kind, d.Name)); ok {
			findings = append(findings, fd)
		}
	}
	return findings
}

// checkNamespaceShape enforces segment casing, depth, and the root segment.
func (a *Analyzer) checkNamespaceShape(f *source.File) []rule.Finding {
	var findings []rule.Finding
	for _, ns := range f.Namespaces {
		full := ns.Name
		if ns.Namespace != "" {
			full = ns.Namespace + "." + ns.Name
		}
		segments := strings.Split(full, ".")
		subject := "namespace:" + full

		for _, seg := range segments {
			if !ident.IsPascalCase(seg) {
				if fd, ok := a.finding("ICH101", f.Path, ns.Line, ns.Column, subject,
					fmt.Sprintf("namespace segment %q must be PascalCase", seg)); ok {
					findings = append(findings, fd)
				}
			} else if got, want, found := ident.AcronymViolation(seg, a.cfg.Naming.Acronyms); found {
				if fd, ok := a.finding("ICH101", f.Path, ns.Line, ns.Column, subject,
					fmt.Sprintf("namespace segment %q writes registered acronym %q as %q", seg, want, got)); ok {
					findings = append(findings, fd)
				}
			}
		}

		if max := a.cfg.Namespaces.MaxDepth; len(segments) > max {
			if fd, ok := a.finding("ICH102", f.Path, ns.Line, ns.Column, subject,
				fmt.Sprintf("namespace %q has %d segments; the limit is %d", full, len(segments), max)); ok {
				findings = append(findings, fd)
			}
		}

		if root := a.cfg.Namespaces.RootSegment; root != "" && segments[0] != root {
			if fd, ok := a.finding("ICH103", f.Path, ns.Line, ns.Column, subject,
				fmt.Sprintf("namespace %q must start with the %q root segment", full, root)); ok {
				findings = append(findings, fd)
			}
		}
	}
	return findings
}
