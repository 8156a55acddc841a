package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_StableAcrossPositions(t *testing.T) {
	a := Finding{RuleID: "ICH002", File: "Parser.cs", Line: 10, Column: 5, Subject: "Ichthus.Edi/ediParser"}
	b := Finding{RuleID: "ICH002", File: "Parser.cs", Line: 99, Column: 1, Subject: "Ichthus.Edi/ediParser"}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_DistinguishesSubjects(t *testing.T) {
	a := Finding{RuleID: "ICH002", File: "Parser.cs", Subject: "x"}
	b := Finding{RuleID: "ICH002", File: "Parser.cs", Subject: "y"}
	c := Finding{RuleID: "ICH004", File: "Parser.cs", Subject: "x"}

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestSort(t *testing.T) {
	findings := []Finding{
		{File: "b.cs", Line: 1, RuleID: "ICH004"},
		{File: "a.cs", Line: 9, RuleID: "ICH002"},
		{File: "a.cs", Line: 2, RuleID: "ICH010"},
		{File: "a.cs", Line: 2, RuleID: "ICH002"},
	}
	Sort(findings)

	assert.Equal(t, "a.cs", findings[0].File)
	assert.Equal(t, 2, findings[0].Line)
	assert.Equal(t, "ICH002", findings[0].RuleID)
	assert.Equal(t, "ICH010", findings[1].RuleID)
	assert.Equal(t, "b.cs", findings[3].File)
}

func TestRegistry_AllIDsUnique(t *testing.T) {
	reg := NewRegistry()
	seen := make(map[string]bool)
	for _, rl := range reg.All() {
		require.False(t, seen[rl.ID], "duplicate rule ID %s", rl.ID)
		seen[rl.ID] = true
		require.NotEmpty(t, rl.Summary)
		require.NotEmpty(t, rl.Rationale)
	}
}

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry()

	rl, err := reg.Get("ich104")
	require.NoError(t, err)
	assert.Equal(t, SeverityError, rl.Severity)
	assert.Equal(t, CategoryNamespaces, rl.Category)

	_, err = reg.Get("ICH999")
	assert.Error(t, err)
}

func TestRegistry_SeverityOverride(t *testing.T) {
	reg := NewRegistry()

	// Default
	assert.Equal(t, SeverityWarning, reg.Severity("ICH002", nil))
	// Override applies
	assert.Equal(t, SeverityError, reg.Severity("ICH002", map[string]string{"ICH002": "error"}))
	// Bad override falls back to default
	assert.Equal(t, SeverityWarning, reg.Severity("ICH002", map[string]string{"ICH002": "fatal"}))
}

func TestHasErrors(t *testing.T) {
	assert.False(t, HasErrors([]Finding{{Severity: SeverityWarning}}))
	assert.True(t, HasErrors([]Finding{{Severity: SeverityWarning}, {Severity: SeverityError}}))
}
