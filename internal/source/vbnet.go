package source

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ichthus/internal/logging"
)

// VBNetParser extracts declarations from VB.NET files with a line-oriented
// scanner. It recognizes the declaration forms the conventions govern;
// statement bodies beyond Dim are not modeled.
type VBNetParser struct{}

// NewVBNetParser creates a new VB.NET scanner.
func NewVBNetParser() *VBNetParser {
	logging.ScanDebug("Creating new VBNetParser")
	return &VBNetParser{}
}

// Close is a no-op; the scanner holds no resources.
func (p *VBNetParser) Close() {}

// SupportedExtensions returns the file extensions this parser handles.
func (p *VBNetParser) SupportedExtensions() []string {
	return []string{".vb"}
}

// Language returns the language identifier.
func (p *VBNetParser) Language() Language {
	return LangVBNet
}

var (
	vbNamespaceRe    = regexp.MustCompile(`(?i)^\s*Namespace\s+([\w.]+)`)
	vbEndNamespaceRe = regexp.MustCompile(`(?i)^\s*End\s+Namespace\b`)
	vbImportsRe      = regexp.MustCompile(`(?i)^\s*Imports\s+([\w.]+)`)
	vbTypeRe         = regexp.MustCompile(`(?i)^\s*(?:(Public|Private|Friend|Protected)\s+)?(?:(?:Shared|NotInheritable|MustInherit|Partial)\s+)*(Class|Module|Structure|Interface|Enum)\s+(\w+)`)
	vbEndTypeRe      = regexp.MustCompile(`(?i)^\s*End\s+(Class|Module|Structure|Interface|Enum)\b`)
	vbMethodRe       = regexp.MustCompile(`(?i)^\s*(?:(Public|Private|Friend|Protected)\s+)?(?:(?:Shared|Overrides|Overridable|MustOverride|Async|Iterator)\s+)*(Sub|Function)\s+(\w+)\s*\((.*)\)`)
	vbEndMethodRe    = regexp.MustCompile(`(?i)^\s*End\s+(Sub|Function)\b`)
	vbPropertyRe     = regexp.MustCompile(`(?i)^\s*(?:(Public|Private|Friend|Protected)\s+)?(?:(?:Shared|ReadOnly|WriteOnly|Overrides|Default)\s+)*Property\s+(\w+)`)
	vbEventRe        = regexp.MustCompile(`(?i)^\s*(?:(Public|Private|Friend|Protected)\s+)?(?:Shared\s+)?Event\s+(\w+)`)
	vbFieldRe        = regexp.MustCompile(`(?i)^\s*(Public|Private|Friend|Protected|Dim|Const)\s+(?:(?:Shared|ReadOnly|WithEvents)\s+)*(Const\s+)?(\w+)\s+As\s+([\w.()]+)`)
	vbAttrRe         = regexp.MustCompile(`<\s*(\w+)`)
	vbParamRe        = regexp.MustCompile(`(?i)^(?:(?:ByVal|ByRef|Optional|ParamArray)\s+)*(\w+)(?:\s+As\s+([\w.()]+))?`)
	vbStringRe       = regexp.MustCompile(`"([^"]*)"`)
)

var vbMustOverrideRe = regexp.MustCompile(`(?i)\bMustOverride\b`)

// vbBlock is one open Class/Module/Structure/Interface/Enum or method body
// on the scanner's nesting stack.
type vbBlock struct {
	name string
	kind Kind
}

func vbContainer(blocks []vbBlock) string {
	names := make([]string, len(blocks))
	for i, b := range blocks {
		names[i] = b.name
	}
	return strings.Join(names, ".")
}

func vbInnermost(blocks []vbBlock) (vbBlock, bool) {
	if len(blocks) == 0 {
		return vbBlock{}, false
	}
	return blocks[len(blocks)-1], true
}

func vbInMethod(blocks []vbBlock) bool {
	for _, b := range blocks {
		if b.kind == KindMethod {
			return true
		}
	}
	return false
}

// vbVisibility normalizes a VB access keyword to the shared vocabulary.
func vbVisibility(kw string) string {
	switch strings.ToLower(kw) {
	case "public":
		return "public"
	case "private":
		return "private"
	case "friend":
		return "internal"
	case "protected":
		return "protected"
	}
	return ""
}

// Parse extracts declarations from VB.NET source.
func (p *VBNetParser) Parse(_ context.Context, path string, content []byte) (*File, error) {
	start := time.Now()
	logging.ScanDebug("Scanning VB.NET file: %s (%d bytes)", filepath.Base(path), len(content))

	file := &File{Path: path, Language: LangVBNet}
	var nsStack []string
	var blocks []vbBlock
	prevDoc := false

	lines := strings.Split(string(content), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		code, _ := splitVBComment(raw)
		trimmed := strings.TrimSpace(code)

		// Doc comments are ''' lines; remember for the next declaration.
		if strings.HasPrefix(strings.TrimSpace(raw), "'''") {
			prevDoc = true
			continue
		}
		if trimmed == "" {
			prevDoc = false
			continue
		}

		if strings.HasPrefix(strings.ToLower(trimmed), "#disable warning") {
			file.Pragmas = append(file.Pragmas, Pragma{Text: trimmed, Line: lineNo})
			continue
		}

		for _, m := range vbAttrRe.FindAllStringSubmatchIndex(code, -1) {
			name := code[m[2]:m[3]]
			file.Attributes = append(file.Attributes, Attribute{
				Name: name, Line: lineNo, Column: m[2] + 1,
			})
		}

		for _, m := range vbStringRe.FindAllStringSubmatchIndex(code, -1) {
			file.Strings = append(file.Strings, StringLiteral{
				Value: code[m[2]:m[3]], Line: lineNo, Column: m[0] + 1,
			})
		}

		switch {
		case vbEndNamespaceRe.MatchString(code):
			if len(nsStack) > 0 {
				nsStack = nsStack[:len(nsStack)-1]
			}

		case vbEndMethodRe.MatchString(code):
			if top, ok := vbInnermost(blocks); ok && top.kind == KindMethod {
				blocks = blocks[:len(blocks)-1]
			}

		case vbEndTypeRe.MatchString(code):
			if top, ok := vbInnermost(blocks); ok && top.kind != KindMethod {
				blocks = blocks[:len(blocks)-1]
			}

		case vbNamespaceRe.MatchString(code):
			m := vbNamespaceRe.FindStringSubmatch(code)
			file.Namespaces = append(file.Namespaces, Declaration{
				Kind: KindNamespace, Name: m[1],
				Namespace: strings.Join(nsStack, "."),
				Line:      lineNo, Column: strings.Index(code, m[1]) + 1,
			})
			nsStack = append(nsStack, m[1])

		case vbImportsRe.MatchString(code):
			m := vbImportsRe.FindStringSubmatch(code)
			file.Usings = append(file.Usings, Using{
				Target: m[1], Namespace: strings.Join(nsStack, "."), Line: lineNo,
			})

		case vbTypeRe.MatchString(code):
			m := vbTypeRe.FindStringSubmatch(code)
			kind := KindClass
			switch strings.ToLower(m[2]) {
			case "structure":
				kind = KindStruct
			case "interface":
				kind = KindInterface
			case "enum":
				kind = KindEnum
			case "module":
				kind = KindClass
			}
			file.Decls = append(file.Decls, Declaration{
				Kind: kind, Name: m[3],
				Namespace:  strings.Join(nsStack, "."),
				Container:  vbContainer(blocks),
				Visibility: vbVisibility(m[1]),
				HasDoc:     prevDoc,
				Line:       lineNo, Column: strings.Index(code, m[3]) + 1,
			})
			blocks = append(blocks, vbBlock{name: m[3], kind: kind})

		case vbMethodRe.MatchString(code):
			m := vbMethodRe.FindStringSubmatch(code)
			name := m[3]
			file.Decls = append(file.Decls, Declaration{
				Kind: KindMethod, Name: name,
				Namespace:  strings.Join(nsStack, "."),
				Container:  vbContainer(blocks),
				Visibility: vbVisibility(m[1]),
				HasDoc:     prevDoc,
				Line:       lineNo, Column: strings.Index(code, name) + 1,
			})
			// Interface members and MustOverride signatures have no body,
			// so no End Sub/Function will close them. Leave them off the
			// nesting stack.
			top, inType := vbInnermost(blocks)
			bodyless := (inType && top.kind == KindInterface) || vbMustOverrideRe.MatchString(code)
			paramContainer := vbContainer(append(blocks, vbBlock{name: name, kind: KindMethod}))
			for _, param := range splitVBParams(m[4]) {
				pm := vbParamRe.FindStringSubmatch(param)
				if pm == nil {
					continue
				}
				file.Decls = append(file.Decls, Declaration{
					Kind: KindParameter, Name: pm[1],
					Namespace: strings.Join(nsStack, "."),
					Container: paramContainer,
					TypeName:  pm[2],
					Line:      lineNo, Column: strings.Index(code, pm[1]) + 1,
				})
			}
			if !bodyless {
				blocks = append(blocks, vbBlock{name: name, kind: KindMethod})
			}

		case vbPropertyRe.MatchString(code):
			m := vbPropertyRe.FindStringSubmatch(code)
			file.Decls = append(file.Decls, Declaration{
				Kind: KindProperty, Name: m[2],
				Namespace:  strings.Join(nsStack, "."),
				Container:  vbContainer(blocks),
				Visibility: vbVisibility(m[1]),
				HasDoc:     prevDoc,
				Line:       lineNo, Column: strings.Index(code, m[2]) + 1,
			})

		case vbEventRe.MatchString(code):
			m := vbEventRe.FindStringSubmatch(code)
			file.Decls = append(file.Decls, Declaration{
				Kind: KindEvent, Name: m[2],
				Namespace:  strings.Join(nsStack, "."),
				Container:  vbContainer(blocks),
				Visibility: vbVisibility(m[1]),
				HasDoc:     prevDoc,
				Line:       lineNo, Column: strings.Index(code, m[2]) + 1,
			})

		case vbFieldRe.MatchString(code):
			m := vbFieldRe.FindStringSubmatch(code)
			kw := strings.ToLower(m[1])
			isConst := kw == "const" || strings.TrimSpace(strings.ToLower(m[2])) == "const"
			kind := KindField
			if vbInMethod(blocks) {
				kind = KindLocal
			}
			vis := vbVisibility(m[1])
			file.Decls = append(file.Decls, Declaration{
				Kind: kind, Name: m[3],
				Namespace:  strings.Join(nsStack, "."),
				Container:  vbContainer(blocks),
				Visibility: vis,
				TypeName:   m[4],
				IsConst:    isConst,
				HasDoc:     prevDoc,
				Line:       lineNo, Column: strings.Index(code, m[3]) + 1,
			})
		}

		prevDoc = false
	}

	logging.ScanDebug("Scanned %s - %d decls in %v", filepath.Base(path), len(file.Decls), time.Since(start))
	return file, nil
}

// splitVBComment separates code from a trailing ' comment, honoring strings.
func splitVBComment(line string) (code, comment string) {
	inString := false
	for i, r := range line {
		switch r {
		case '"':
			inString = !inString
		case '\'':
			if !inString {
				return line[:i], line[i:]
			}
		}
	}
	return line, ""
}

// splitVBParams splits a parameter list on top-level commas.
func splitVBParams(params string) []string {
	params = strings.TrimSpace(params)
	if params == "" {
		return nil
	}
	depth := 0
	var out []string
	start := 0
	for i, r := range params {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(params[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(params[start:]))
	return out
}
