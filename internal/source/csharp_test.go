package source

import (
	"context"
	"testing"
)

const csharpSample = `using System;
using Ichthus.Core.Abstractions;

namespace Ichthus.Edi.Parsing
{
    /// <summary>Parses inbound EDI envelopes.</summary>
    public class EDIParser
    {
        private int retryCount;
        public const int MaxRetries = 5;

        [SuppressMessage("Design", "CA1031")]
        public string ParseDocument(string rawInput)
        {
            var localTotal = 0;
            const string Query = "select * from Orders where Id = @id";
            return rawInput;
        }
    }

    public interface IMessageRouter
    {
        void Route(string payload);
    }
}
`

func parseCSharp(t *testing.T, src string) *File {
	t.Helper()
	p := NewCSharpParser()
	defer p.Close()

	file, err := p.Parse(context.Background(), "Parser.cs", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return file
}

func findDecl(file *File, kind Kind, name string) *Declaration {
	for i := range file.Decls {
		if file.Decls[i].Kind == kind && file.Decls[i].Name == name {
			return &file.Decls[i]
		}
	}
	return nil
}

func TestCSharpParser_Namespaces(t *testing.T) {
	file := parseCSharp(t, csharpSample)

	if len(file.Namespaces) != 1 {
		t.Fatalf("expected 1 namespace declaration, got %d", len(file.Namespaces))
	}
	if file.Namespaces[0].Name != "Ichthus.Edi.Parsing" {
		t.Errorf("namespace = %q, want Ichthus.Edi.Parsing", file.Namespaces[0].Name)
	}
}

func TestCSharpParser_Usings(t *testing.T) {
	file := parseCSharp(t, csharpSample)

	if len(file.Usings) != 2 {
		t.Fatalf("expected 2 usings, got %d: %+v", len(file.Usings), file.Usings)
	}
	if file.Usings[1].Target != "Ichthus.Core.Abstractions" {
		t.Errorf("using target = %q", file.Usings[1].Target)
	}
}

func TestCSharpParser_Declarations(t *testing.T) {
	file := parseCSharp(t, csharpSample)

	cls := findDecl(file, KindClass, "EDIParser")
	if cls == nil {
		t.Fatal("class EDIParser not found")
	}
	if cls.Visibility != "public" {
		t.Errorf("class visibility = %q, want public", cls.Visibility)
	}
	if !cls.HasDoc {
		t.Error("class should have a doc comment")
	}
	if cls.Namespace != "Ichthus.Edi.Parsing" {
		t.Errorf("class namespace = %q", cls.Namespace)
	}

	field := findDecl(file, KindField, "retryCount")
	if field == nil {
		t.Fatal("field retryCount not found")
	}
	if field.Visibility != "private" {
		t.Errorf("field visibility = %q, want private", field.Visibility)
	}
	if field.Container != "EDIParser" {
		t.Errorf("field container = %q", field.Container)
	}

	constant := findDecl(file, KindField, "MaxRetries")
	if constant == nil {
		t.Fatal("const MaxRetries not found")
	}
	if !constant.IsConst {
		t.Error("MaxRetries should be const")
	}

	method := findDecl(file, KindMethod, "ParseDocument")
	if method == nil {
		t.Fatal("method ParseDocument not found")
	}
	if method.HasDoc {
		t.Error("ParseDocument has no doc comment")
	}

	param := findDecl(file, KindParameter, "rawInput")
	if param == nil {
		t.Fatal("parameter rawInput not found")
	}

	local := findDecl(file, KindLocal, "localTotal")
	if local == nil {
		t.Fatal("local localTotal not found")
	}
	constLocal := findDecl(file, KindLocal, "Query")
	if constLocal == nil {
		t.Fatal("const local Query not found")
	}
	if !constLocal.IsConst {
		t.Error("Query should be const")
	}

	iface := findDecl(file, KindInterface, "IMessageRouter")
	if iface == nil {
		t.Fatal("interface IMessageRouter not found")
	}
}

func TestCSharpParser_AttributesAndStrings(t *testing.T) {
	file := parseCSharp(t, csharpSample)

	foundSuppress := false
	for _, a := range file.Attributes {
		if a.Name == "SuppressMessage" {
			foundSuppress = true
		}
	}
	if !foundSuppress {
		t.Error("SuppressMessage attribute not extracted")
	}

	foundSQL := false
	for _, s := range file.Strings {
		if s.Value == "select * from Orders where Id = @id" {
			foundSQL = true
		}
	}
	if !foundSQL {
		t.Errorf("SQL string literal not extracted: %+v", file.Strings)
	}
}

func TestCSharpParser_Pragmas(t *testing.T) {
	src := "#pragma warning disable CA1031\nnamespace Ichthus.Core { }\n"
	file := parseCSharp(t, src)

	if len(file.Pragmas) != 1 {
		t.Fatalf("expected 1 pragma, got %d", len(file.Pragmas))
	}
	if file.Pragmas[0].Line != 1 {
		t.Errorf("pragma line = %d, want 1", file.Pragmas[0].Line)
	}
}

func TestDeclarationPath(t *testing.T) {
	d := Declaration{Kind: KindMethod, Name: "Route", Namespace: "Ichthus.Core", Container: "Router"}
	if got := d.Path(); got != "Ichthus.Core/Router/method:Route" {
		t.Errorf("Path() = %q", got)
	}
}

func TestIsGenerated(t *testing.T) {
	if !IsGenerated("Form1.Designer.cs") {
		t.Error("Designer.cs should be generated")
	}
	if !IsGenerated("Form1.designer.vb") {
		t.Error("designer.vb should be generated")
	}
	if IsGenerated("Parser.cs") {
		t.Error("Parser.cs is not generated")
	}
}
