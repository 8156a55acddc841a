package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"ichthus/internal/logging"
)

// CSharpParser extracts declarations from C# files using tree-sitter.
type CSharpParser struct {
	parser *sitter.Parser
}

// NewCSharpParser creates a new tree-sitter backed C# parser.
func NewCSharpParser() *CSharpParser {
	logging.ScanDebug("Creating new CSharpParser")
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	return &CSharpParser{parser: p}
}

// Close releases resources held by the parser.
func (p *CSharpParser) Close() {
	p.parser.Close()
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *CSharpParser) SupportedExtensions() []string {
	return []string{".cs"}
}

// Language returns the language identifier.
func (p *CSharpParser) Language() Language {
	return LangCSharp
}

// Parse extracts declarations, attributes, string literals, pragmas, and
// using directives from C# source.
func (p *CSharpParser) Parse(ctx context.Context, path string, content []byte) (*File, error) {
	start := time.Now()
	logging.ScanDebug("TreeSitter: parsing C# file: %s (%d bytes)", filepath.Base(path), len(content))

	tree, err := p.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		logging.Get(logging.CategoryScan).Error("TreeSitter: C# parse failed: %s - %v", path, err)
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	file := &File{Path: path, Language: LangCSharp}
	w := &csharpWalker{content: content, file: file}
	w.walk(tree.RootNode())
	file.Pragmas = scanPragmas(content, "#pragma warning disable")

	logging.ScanDebug("TreeSitter: C# parsed %s - %d decls in %v",
		filepath.Base(path), len(file.Decls), time.Since(start))
	return file, nil
}

// csharpWalker carries namespace and container context down the tree.
type csharpWalker struct {
	content    []byte
	file       *File
	namespaces []string // active namespace segments, dotted when joined
	containers []string // enclosing type (and method, for locals/params)
}

func (w *csharpWalker) text(n *sitter.Node) string {
	return n.Content(w.content)
}

func (w *csharpWalker) namespace() string {
	return strings.Join(w.namespaces, ".")
}

func (w *csharpWalker) container() string {
	return strings.Join(w.containers, ".")
}

func (w *csharpWalker) pos(n *sitter.Node) (int, int) {
	pt := n.StartPoint()
	return int(pt.Row) + 1, int(pt.Column) + 1
}

// nameOf returns the declaration's name field, falling back to the first
// identifier child for grammar nodes without one.
func (w *csharpWalker) nameOf(n *sitter.Node) (string, *sitter.Node) {
	if name := n.ChildByFieldName("name"); name != nil {
		return w.text(name), name
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "identifier" {
			return w.text(c), c
		}
	}
	return "", nil
}

// modifiersOf collects modifier keyword texts on a declaration node.
func (w *csharpWalker) modifiersOf(n *sitter.Node) []string {
	var mods []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "modifier" {
			mods = append(mods, w.text(c))
		}
	}
	return mods
}

func visibilityFrom(mods []string) string {
	vis := ""
	for _, m := range mods {
		switch m {
		case "public", "private", "internal":
			if vis == "protected" && m == "internal" {
				vis = "protected internal"
			} else {
				vis = m
			}
		case "protected":
			if vis == "internal" {
				vis = "protected internal"
			} else {
				vis = "protected"
			}
		}
	}
	return vis
}

func hasModifier(mods []string, want string) bool {
	for _, m := range mods {
		if m == want {
			return true
		}
	}
	return false
}

// hasDocComment checks whether a /// comment immediately precedes the node,
// skipping intervening attribute lists.
func (w *csharpWalker) hasDocComment(n *sitter.Node) bool {
	for prev := n.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		switch prev.Type() {
		case "attribute_list":
			continue
		case "comment":
			return strings.HasPrefix(strings.TrimSpace(w.text(prev)), "///")
		default:
			return false
		}
	}
	return false
}

func (w *csharpWalker) addDecl(d Declaration) {
	w.file.Decls = append(w.file.Decls, d)
}

func (w *csharpWalker) walk(n *sitter.Node) {
	switch n.Type() {
	case "using_directive":
		target := ""
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() == "qualified_name" || c.Type() == "identifier" {
				target = w.text(c)
			}
		}
		if target != "" {
			line, _ := w.pos(n)
			w.file.Usings = append(w.file.Usings, Using{
				Target:    target,
				Namespace: w.namespace(),
				Line:      line,
			})
		}
		return

	case "namespace_declaration", "file_scoped_namespace_declaration":
		name, nameNode := w.nameOf(n)
		if name != "" {
			line, col := w.pos(nameNode)
			w.file.Namespaces = append(w.file.Namespaces, Declaration{
				Kind: KindNamespace, Name: name,
				Namespace: w.namespace(),
				Line:      line, Column: col,
			})
			w.namespaces = append(w.namespaces, name)
			defer func() { w.namespaces = w.namespaces[:len(w.namespaces)-1] }()
		}

	case "class_declaration", "struct_declaration", "enum_declaration",
		"record_declaration", "interface_declaration", "delegate_declaration":
		name, nameNode := w.nameOf(n)
		if name != "" {
			kind := KindClass
			switch n.Type() {
			case "struct_declaration":
				kind = KindStruct
			case "enum_declaration":
				kind = KindEnum
			case "interface_declaration":
				kind = KindInterface
			case "delegate_declaration":
				kind = KindDelegate
			}
			line, col := w.pos(nameNode)
			w.addDecl(Declaration{
				Kind: kind, Name: name,
				Namespace:  w.namespace(),
				Container:  w.container(),
				Visibility: visibilityFrom(w.modifiersOf(n)),
				HasDoc:     w.hasDocComment(n),
				Line:       line, Column: col,
			})
			w.containers = append(w.containers, name)
			defer func() { w.containers = w.containers[:len(w.containers)-1] }()
		}

	case "method_declaration":
		name, nameNode := w.nameOf(n)
		if name != "" {
			line, col := w.pos(nameNode)
			w.addDecl(Declaration{
				Kind: KindMethod, Name: name,
				Namespace:  w.namespace(),
				Container:  w.container(),
				Visibility: visibilityFrom(w.modifiersOf(n)),
				HasDoc:     w.hasDocComment(n),
				Line:       line, Column: col,
			})
			w.containers = append(w.containers, name)
			defer func() { w.containers = w.containers[:len(w.containers)-1] }()
		}

	case "property_declaration":
		name, nameNode := w.nameOf(n)
		if name != "" {
			line, col := w.pos(nameNode)
			w.addDecl(Declaration{
				Kind: KindProperty, Name: name,
				Namespace:  w.namespace(),
				Container:  w.container(),
				Visibility: visibilityFrom(w.modifiersOf(n)),
				HasDoc:     w.hasDocComment(n),
				Line:       line, Column: col,
			})
		}

	case "field_declaration", "event_field_declaration":
		mods := w.modifiersOf(n)
		kind := KindField
		if n.Type() == "event_field_declaration" {
			kind = KindEvent
		}
		w.collectVariables(n, kind, visibilityFrom(mods), hasModifier(mods, "const"), w.hasDocComment(n))

	case "enum_member_declaration":
		name, nameNode := w.nameOf(n)
		if name != "" {
			line, col := w.pos(nameNode)
			w.addDecl(Declaration{
				Kind: KindField, Name: name, IsConst: true,
				Namespace: w.namespace(),
				Container: w.container(),
				// Enum members share the enum's visibility
				Visibility: "public",
				Line:       line, Column: col,
			})
		}
		return

	case "local_declaration_statement":
		isConst := false
		for i := 0; i < int(n.ChildCount()); i++ {
			if w.text(n.Child(i)) == "const" {
				isConst = true
			}
		}
		w.collectVariables(n, KindLocal, "", isConst, false)

	case "parameter":
		name, nameNode := w.nameOf(n)
		if name != "" {
			line, col := w.pos(nameNode)
			typeName := ""
			if tn := n.ChildByFieldName("type"); tn != nil {
				typeName = w.text(tn)
			}
			w.addDecl(Declaration{
				Kind: KindParameter, Name: name,
				Namespace: w.namespace(),
				Container: w.container(),
				TypeName:  typeName,
				Line:      line, Column: col,
			})
		}
		return

	case "attribute":
		name, nameNode := w.nameOf(n)
		if name != "" {
			line, col := w.pos(nameNode)
			w.file.Attributes = append(w.file.Attributes, Attribute{
				Name: name, Line: line, Column: col,
			})
		}
		return

	case "string_literal", "verbatim_string_literal", "raw_string_literal":
		line, col := w.pos(n)
		w.file.Strings = append(w.file.Strings, StringLiteral{
			Value: trimStringDelimiters(w.text(n)),
			Line:  line, Column: col,
		})
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i))
	}
}

// collectVariables emits one declaration per variable_declarator under a
// field, event, or local declaration node.
func (w *csharpWalker) collectVariables(n *sitter.Node, kind Kind, visibility string, isConst, hasDoc bool) {
	typeName := ""
	var visit func(*sitter.Node)
	visit = func(c *sitter.Node) {
		switch c.Type() {
		case "variable_declaration":
			if tn := c.ChildByFieldName("type"); tn != nil {
				typeName = w.text(tn)
			}
		case "variable_declarator":
			name, nameNode := w.nameOf(c)
			if name != "" {
				line, col := w.pos(nameNode)
				w.addDecl(Declaration{
					Kind: kind, Name: name,
					Namespace:  w.namespace(),
					Container:  w.container(),
					Visibility: visibility,
					TypeName:   typeName,
					IsConst:    isConst,
					HasDoc:     hasDoc,
					Line:       line, Column: col,
				})
			}
			return
		}
		for i := 0; i < int(c.NamedChildCount()); i++ {
			visit(c.NamedChild(i))
		}
	}
	visit(n)
}

// trimStringDelimiters strips quote characters and verbatim/raw prefixes.
func trimStringDelimiters(s string) string {
	s = strings.TrimPrefix(s, "@")
	s = strings.Trim(s, "\"")
	return s
}

// scanPragmas finds raw-text suppression directives, which sit below the
// grammar's radar in both languages.
func scanPragmas(content []byte, directive string) []Pragma {
	var pragmas []Pragma
	for i, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), strings.ToLower(directive)) {
			pragmas = append(pragmas, Pragma{Text: trimmed, Line: i + 1})
		}
	}
	return pragmas
}
