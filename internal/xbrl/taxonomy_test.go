package xbrl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyMetrics(t *testing.T) {
	assert.Len(t, KeyMetrics, 14)
	assert.Contains(t, KeyMetrics, "NetIncomeLoss")
	assert.Contains(t, KeyMetrics, "CashAndCashEquivalentsAtCarryingValue")
}

func TestBatchMetrics_ExtendKeyMetrics(t *testing.T) {
	assert.Len(t, BatchMetrics, 30)
	assert.Equal(t, KeyMetrics, BatchMetrics[:len(KeyMetrics)])
	assert.Contains(t, BatchMetrics, "LongTermDebt")
}

func TestDefaultLists_AreCopies(t *testing.T) {
	lists := DefaultLists()
	lists.Key[0] = "Mutated"
	assert.Equal(t, "Revenues", KeyMetrics[0])
}

func TestLoadLists_EmptyPath(t *testing.T) {
	lists, err := LoadLists("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLists(), lists)
}

func TestLoadLists_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists.yaml")
	content := `
key:
  - Revenues
  - NetIncomeLoss
cashflow:
  - NetCashProvidedByUsedInOperatingActivities
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	lists, err := LoadLists(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Revenues", "NetIncomeLoss"}, lists.Key)
	assert.Equal(t, []string{"NetCashProvidedByUsedInOperatingActivities"}, lists.CashFlow)
	// Untouched lists keep defaults.
	assert.Equal(t, BalanceMetrics, lists.Balance)
	assert.Equal(t, IncomeMetrics, lists.Income)
}

func TestLoadLists_MissingFile(t *testing.T) {
	_, err := LoadLists(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read metric lists")
}

func TestLoadLists_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key: [unterminated"), 0644))

	_, err := LoadLists(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse metric lists")
}
