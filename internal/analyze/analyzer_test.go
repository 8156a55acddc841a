package analyze

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ichthus/internal/config"
	"ichthus/internal/rule"
	"ichthus/internal/source"
)

func writeWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func lint(t *testing.T, cfg *config.Config, files map[string]string) []rule.Finding {
	t.Helper()
	dir := writeWorkspace(t, files)
	a := New(cfg)
	defer a.Close()

	findings, err := a.LintWorkspace(context.Background(), dir)
	require.NoError(t, err)
	return findings
}

func byRule(findings []rule.Finding, id string) []rule.Finding {
	var out []rule.Finding
	for _, f := range findings {
		if f.RuleID == id {
			out = append(out, f)
		}
	}
	return out
}

func TestLint_CleanFileHasNoFindings(t *testing.T) {
	findings := lint(t, config.DefaultConfig(), map[string]string{
		"Parser.cs": `namespace Ichthus.Parsing
{
    /// <summary>Parses EDI envelopes.</summary>
    public class EDIParser
    {
        private int retryCount;

        /// <summary>Parses one document.</summary>
        public string ParseDocument(string rawInput)
        {
            var runningTotal = 0;
            _ = runningTotal;
            return rawInput;
        }
    }
}
`,
	})
	assert.Empty(t, findings)
}

func TestLint_NamingRules(t *testing.T) {
	findings := lint(t, config.DefaultConfig(), map[string]string{
		"Bad.cs": `namespace Ichthus.Edi
{
    /// <summary>Wrongly cased acronym.</summary>
    public class EdiParser
    {
        private string strCustomerName;
        public const int MAX_RETRIES = 5;

        /// <summary>Casing offender.</summary>
        public void process(string RawInput)
        {
        }
    }

    /// <summary>Missing the I prefix.</summary>
    public interface MessageRouter
    {
    }
}
`,
	})

	assert.Len(t, byRule(findings, "ICH009"), 1, "EdiParser should flag the Edi acronym")
	assert.Len(t, byRule(findings, "ICH010"), 1, "strCustomerName should flag Hungarian prefix")
	assert.Len(t, byRule(findings, "ICH008"), 1, "MAX_RETRIES should flag screaming snake")
	assert.Len(t, byRule(findings, "ICH004"), 1, "process should flag method casing")
	assert.Len(t, byRule(findings, "ICH006"), 1, "RawInput should flag parameter casing")
	assert.Len(t, byRule(findings, "ICH003"), 1, "MessageRouter should flag missing I prefix")
}

func TestLint_NamespaceShape(t *testing.T) {
	findings := lint(t, config.DefaultConfig(), map[string]string{
		"Deep.cs": `namespace Acme.Billing.Invoices.Monthly.Reports
{
    /// <summary>Placeholder.</summary>
    public class Report { }
}
`,
	})

	assert.NotEmpty(t, byRule(findings, "ICH102"), "five segments exceed the depth limit")
	assert.NotEmpty(t, byRule(findings, "ICH103"), "root segment is not Ichthus")
}

func TestLint_CorePolicy(t *testing.T) {
	files := map[string]string{
		"Core.cs": `using Ichthus.Billing;

namespace Ichthus.Core.Abstractions
{
    /// <summary>Core abstraction.</summary>
    public interface IClock { }
}
`,
		"Billing.cs": `namespace Ichthus.Billing
{
    /// <summary>App-level type.</summary>
    public class Invoice { }
}
`,
	}
	findings := lint(t, config.DefaultConfig(), files)

	violations := byRule(findings, "ICH104")
	require.Len(t, violations, 1)
	assert.Equal(t, rule.SeverityError, violations[0].Severity)
	assert.Contains(t, violations[0].Message, "Ichthus.Core.Abstractions")
	assert.Contains(t, violations[0].Message, "Ichthus.Billing")
}

func TestLint_CorePolicyTransitive(t *testing.T) {
	files := map[string]string{
		"A.cs": `using Ichthus.Core.Time;

namespace Ichthus.Core.Abstractions
{
    /// <summary>Core root.</summary>
    public interface IClock { }
}
`,
		"B.cs": `using Ichthus.Billing;

namespace Ichthus.Core.Time
{
    /// <summary>Core sibling that leaks.</summary>
    public class Clock { }
}
`,
		"C.cs": `namespace Ichthus.Billing
{
    /// <summary>App type.</summary>
    public class Invoice { }
}
`,
	}
	findings := lint(t, config.DefaultConfig(), files)

	violations := byRule(findings, "ICH104")
	// Direct: Core.Time -> Billing. Transitive: Core.Abstractions -> Billing.
	require.Len(t, violations, 2)
}

func TestLint_SuppressionRules(t *testing.T) {
	findings := lint(t, config.DefaultConfig(), map[string]string{
		"Sup.cs": `#pragma warning disable CA1031
namespace Ichthus.Edi
{
    /// <summary>Suppression offender.</summary>
    public class Handler
    {
        [SuppressMessage("Design", "CA1031")]
        private void swallow() { }
    }
}
`,
	})

	assert.Len(t, byRule(findings, "ICH301"), 1)
	assert.Len(t, byRule(findings, "ICH302"), 1)
}

func TestLint_SQLKeywords(t *testing.T) {
	findings := lint(t, config.DefaultConfig(), map[string]string{
		"Query.cs": `namespace Ichthus.Data
{
    /// <summary>Data access.</summary>
    public class OrderStore
    {
        private string query = "select OrderId from Orders where Total > 10";
        private string clean = "SELECT OrderId FROM Orders WHERE Total > 10";
        private string prose = "select a color from the palette";
    }
}
`,
	})

	sql := byRule(findings, "ICH401")
	require.Len(t, sql, 2, "query (lowercase SQL) and prose (matches recognizer) flagged; clean passes")
	assert.Contains(t, sql[0].Message, "select")
}

func TestLint_DocComments(t *testing.T) {
	findings := lint(t, config.DefaultConfig(), map[string]string{
		"Doc.cs": `namespace Ichthus.Edi
{
    public class Parser
    {
        public void Run() { }
        private void helper() { }
    }
}
`,
	})

	assert.Len(t, byRule(findings, "ICH201"), 1, "public type without doc")
	assert.Len(t, byRule(findings, "ICH202"), 1, "public method without doc; private helper exempt")
}

func TestLint_DisabledRuleProducesNoFindings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules.Disabled = []string{"ICH201", "ICH202"}

	findings := lint(t, cfg, map[string]string{
		"Doc.cs": `namespace Ichthus.Edi
{
    public class Parser
    {
        public void Run() { }
    }
}
`,
	})

	assert.Empty(t, byRule(findings, "ICH201"))
	assert.Empty(t, byRule(findings, "ICH202"))
}

func TestLint_SeverityOverrideKeepsMessageAndFingerprint(t *testing.T) {
	files := map[string]string{
		"Bad.cs": `namespace Ichthus.Edi
{
    /// <summary>Offender.</summary>
    public class ediParser { }
}
`,
	}

	base := lint(t, config.DefaultConfig(), files)
	baseViolations := byRule(base, "ICH002")
	require.Len(t, baseViolations, 1)

	cfg := config.DefaultConfig()
	cfg.Rules.Severity = map[string]string{"ICH002": "error"}
	overridden := byRule(lint(t, cfg, files), "ICH002")
	require.Len(t, overridden, 1)

	assert.Equal(t, rule.SeverityError, overridden[0].Severity)
	assert.Equal(t, baseViolations[0].Message, overridden[0].Message)
	assert.Equal(t, baseViolations[0].Fingerprint(), overridden[0].Fingerprint())
}

func TestLint_SkipsGeneratedAndUnknownFiles(t *testing.T) {
	findings := lint(t, config.DefaultConfig(), map[string]string{
		"Form1.Designer.cs": `namespace wrong_ns { public class f { } }`,
		"notes.txt":         `namespace not_code { }`,
	})
	assert.Empty(t, findings)
}

func TestLint_VBNetWorkspace(t *testing.T) {
	findings := lint(t, config.DefaultConfig(), map[string]string{
		"Invoice.vb": `Namespace Ichthus.Billing
    ''' <summary>Invoice generator.</summary>
    Public Class InvoiceGenerator
        Private strTotal As Double
    End Class
End Namespace
`,
	})

	assert.Len(t, byRule(findings, "ICH010"), 1, "strTotal should flag Hungarian prefix")
}

// failingParser stands in for a parser that cannot read its input.
type failingParser struct{}

func (failingParser) Parse(context.Context, string, []byte) (*source.File, error) {
	return nil, errors.New("unterminated declaration block")
}
func (failingParser) SupportedExtensions() []string { return []string{".vb"} }
func (failingParser) Language() source.Language     { return source.LangVBNet }
func (failingParser) Close()                        {}

func TestLint_ParseFailureIsFindingNotAbort(t *testing.T) {
	dir := writeWorkspace(t, map[string]string{
		"Broken.vb": "Namespace Ichthus.Billing\nEnd Namespace\n",
		"Parser.cs": `namespace Ichthus.Parsing { public class ediParser { } }`,
	})

	a := New(config.DefaultConfig())
	defer a.Close()
	a.factory.Register(failingParser{})

	findings, err := a.LintWorkspace(context.Background(), dir)
	require.NoError(t, err, "a broken file must not abort the run")

	failures := byRule(findings, "ICH001")
	require.Len(t, failures, 1)
	f := failures[0]
	assert.Equal(t, rule.SeverityError, f.Severity)
	assert.Equal(t, "Broken.vb", f.File)
	assert.Equal(t, "Broken.vb", f.Subject)
	assert.Contains(t, f.Message, "unterminated declaration block")

	assert.NotEmpty(t, byRule(findings, "ICH002"), "remaining files are still checked")
}

func TestCollectSources_SkipsHiddenDirs(t *testing.T) {
	dir := writeWorkspace(t, map[string]string{
		"src/A.cs":          `namespace Ichthus.Core { }`,
		".git/B.cs":         `namespace Hidden { }`,
		".ichthus/C.cs":     `namespace Hidden { }`,
		".github/D.cs":      `namespace Ichthus.Ci { }`,
		"src/E.designer.vb": `Namespace Hidden\nEnd Namespace`,
	})

	paths, err := CollectSources(dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join("src", "A.cs"),
		filepath.Join(".github", "D.cs"),
	}, paths)
}
