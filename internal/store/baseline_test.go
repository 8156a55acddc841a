package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ichthus/internal/rule"
)

func newTestStore(t *testing.T) *BaselineStore {
	t.Helper()
	s, err := NewBaselineStore(filepath.Join(t.TempDir(), "ichthus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleFindings() []rule.Finding {
	return []rule.Finding{
		{RuleID: "ICH002", Severity: rule.SeverityWarning, File: "Parser.cs", Line: 10, Subject: "Ichthus.Parsing//class:ediParser", Message: "type name should be PascalCase"},
		{RuleID: "ICH010", Severity: rule.SeverityWarning, File: "Invoice.vb", Line: 4, Subject: "Ichthus.Billing/InvoiceGenerator/field:strCustomerName", Message: "Hungarian prefix"},
	}
}

func TestBaseline_UpdateAndFilter(t *testing.T) {
	s := newTestStore(t)
	findings := sampleFindings()

	fresh, suppressed, err := s.Filter(findings)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
	assert.Equal(t, 0, suppressed)

	require.NoError(t, s.UpdateBaseline(findings))

	fresh, suppressed, err = s.Filter(findings)
	require.NoError(t, err)
	assert.Empty(t, fresh)
	assert.Equal(t, 2, suppressed)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBaseline_FilterIgnoresLineDrift(t *testing.T) {
	s := newTestStore(t)
	findings := sampleFindings()
	require.NoError(t, s.UpdateBaseline(findings))

	// Same declarations reported at different lines after an edit above them.
	moved := sampleFindings()
	moved[0].Line = 42
	moved[1].Line = 99

	fresh, suppressed, err := s.Filter(moved)
	require.NoError(t, err)
	assert.Empty(t, fresh)
	assert.Equal(t, 2, suppressed)
}

func TestBaseline_FilterReportsNewFindings(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateBaseline(sampleFindings()))

	next := append(sampleFindings(), rule.Finding{
		RuleID: "ICH004", Severity: rule.SeverityWarning,
		File: "Parser.cs", Line: 20,
		Subject: "Ichthus.Parsing/EdiParser/method:parse_segment",
		Message: "method name should be PascalCase",
	})

	fresh, suppressed, err := s.Filter(next)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "ICH004", fresh[0].RuleID)
	assert.Equal(t, 2, suppressed)
}

func TestBaseline_UpdateReplacesPrevious(t *testing.T) {
	s := newTestStore(t)
	findings := sampleFindings()
	require.NoError(t, s.UpdateBaseline(findings))

	// Re-baseline with only the first finding; the second becomes fresh again.
	require.NoError(t, s.UpdateBaseline(findings[:1]))

	fresh, suppressed, err := s.Filter(findings)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "ICH010", fresh[0].RuleID)
	assert.Equal(t, 1, suppressed)
}

func TestBaseline_Clear(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateBaseline(sampleFindings()))
	require.NoError(t, s.Clear())

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBaseline_Runs(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.RecordRun(5, 0)
	require.NoError(t, err)
	id2, err := s.RecordRun(2, 3)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	runs, err := s.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].Findings)
	assert.Equal(t, 3, runs[0].Suppressed)
}

func TestBaseline_ReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ichthus.db")

	s, err := NewBaselineStore(path)
	require.NoError(t, err)
	require.NoError(t, s.UpdateBaseline(sampleFindings()))
	require.NoError(t, s.Close())

	s2, err := NewBaselineStore(path)
	require.NoError(t, err)
	defer s2.Close()

	n, err := s2.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
