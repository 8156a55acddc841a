// Package source extracts declarations from C# and VB.NET files into a
// language-agnostic form the rule engine evaluates. C# goes through
// tree-sitter; VB.NET goes through a line-oriented scanner because no
// tree-sitter grammar exists for it.
package source

import (
	"path/filepath"
	"strings"
)

// Language identifies a supported source language.
type Language string

const (
	LangCSharp Language = "csharp"
	LangVBNet  Language = "vbnet"
)

// Kind classifies a declaration.
type Kind string

const (
	KindNamespace Kind = "namespace"
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindEnum      Kind = "enum"
	KindDelegate  Kind = "delegate"
	KindInterface Kind = "interface"
	KindMethod    Kind = "method"
	KindProperty  Kind = "property"
	KindField     Kind = "field"
	KindEvent     Kind = "event"
	KindParameter Kind = "parameter"
	KindLocal     Kind = "local"
)

// IsType reports whether the kind declares a type.
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindStruct, KindEnum, KindDelegate, KindInterface:
		return true
	}
	return false
}

// Declaration is one named program element.
type Declaration struct {
	Kind       Kind
	Name       string
	Namespace  string // enclosing namespace, dotted; "" at file level
	Container  string // enclosing type name; "" for top-level declarations
	Visibility string // public, private, protected, internal, or "" when unspecified
	TypeName   string // declared type, where the language states one (fields, locals)
	IsConst    bool
	HasDoc     bool // XML doc comment immediately precedes the declaration
	Line       int  // 1-based
	Column     int  // 1-based
}

// Path returns a position-independent identity for baseline fingerprints.
func (d Declaration) Path() string {
	parts := make([]string, 0, 4)
	if d.Namespace != "" {
		parts = append(parts, d.Namespace)
	}
	if d.Container != "" {
		parts = append(parts, d.Container)
	}
	parts = append(parts, string(d.Kind)+":"+d.Name)
	return strings.Join(parts, "/")
}

// Attribute is one applied attribute, e.g. SuppressMessage.
type Attribute struct {
	Name   string
	Line   int
	Column int
}

// StringLiteral is a string constant found in the file.
type StringLiteral struct {
	Value  string
	Line   int
	Column int
}

// Pragma is a warning-suppression directive found in raw text
// (#pragma warning disable in C#, #Disable Warning in VB).
type Pragma struct {
	Text string
	Line int
}

// Using records one import directive and the namespace it was written in,
// the raw material for the namespace dependency graph.
type Using struct {
	Target    string // imported namespace
	Namespace string // enclosing namespace of the directive's file, "" at file top
	Line      int
}

// File is the extraction result for one source file.
type File struct {
	Path       string
	Language   Language
	Namespaces []Declaration // kind == KindNamespace, one per declaration site
	Decls      []Declaration
	Attributes []Attribute
	Strings    []StringLiteral
	Pragmas    []Pragma
	Usings     []Using
}

// IsGenerated reports whether a path is designer/generated output that the
// conventions do not govern.
func IsGenerated(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(base, ".designer.cs") ||
		strings.HasSuffix(base, ".designer.vb") ||
		strings.HasSuffix(base, ".g.cs") ||
		strings.HasSuffix(base, ".generated.cs")
}

// LanguageFor returns the language for a path, or "" if unsupported.
func LanguageFor(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cs":
		return LangCSharp
	case ".vb":
		return LangVBNet
	}
	return ""
}
