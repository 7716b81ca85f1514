package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chaseHeader = "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"

func TestChaseParser_Parse(t *testing.T) {
	data, err := os.ReadFile("../../testdata/chase_checking.csv")
	require.NoError(t, err)

	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader(string(data)), "checking")
	require.NoError(t, err)
	assert.Len(t, txns, 6)

	// First: rent by Zelle, a deposit.
	assert.Equal(t, "ZELLE FROM JOHN SMITH", txns[0].Description)
	assert.Equal(t, "-1500.00", txns[0].Amount.StringFixed(2))
	assert.True(t, txns[0].IsDeposit())
	assert.Equal(t, "checking", txns[0].AccountID)
	assert.Equal(t, 2025, txns[0].Date.Year())
	assert.Equal(t, 1, int(txns[0].Date.Month()))
	assert.Equal(t, 2, txns[0].Date.Day())

	// Second: a purchase is money paid out.
	assert.Equal(t, "84.12", txns[1].Amount.StringFixed(2))
	assert.False(t, txns[1].IsDeposit())
}

func TestChaseParser_SignConvention(t *testing.T) {
	data, err := os.ReadFile("../../testdata/chase_checking.csv")
	require.NoError(t, err)

	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader(string(data)), "checking")
	require.NoError(t, err)

	for _, txn := range txns {
		isPurchase := strings.Contains(txn.Description, "HOME DEPOT") || strings.Contains(txn.Description, "UTILITY")
		assert.Equal(t, !isPurchase, txn.IsDeposit(), "deposit sign for %s", txn.Description)
	}
}

func TestChaseParser_StableIDs(t *testing.T) {
	data, err := os.ReadFile("../../testdata/chase_checking.csv")
	require.NoError(t, err)

	p := &ChaseParser{}
	first, err := p.Parse(strings.NewReader(string(data)), "checking")
	require.NoError(t, err)
	second, err := p.Parse(strings.NewReader(string(data)), "checking")
	require.NoError(t, err)

	ids := make(map[string]bool)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		ids[first[i].ID] = true
	}
	assert.Len(t, ids, 6, "identical mobile deposits still get distinct IDs")
	assert.True(t, strings.HasPrefix(first[0].ID, "chase_20250102_ZELLEFROMJ_"))
}

func TestChaseParser_EmptyFile(t *testing.T) {
	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader(chaseHeader), "checking")
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestChaseParser_BadDate(t *testing.T) {
	csv := chaseHeader + "CREDIT,NOTADATE,desc,1500.00,ACH_CREDIT,100.00,\n"
	p := &ChaseParser{}
	_, err := p.Parse(strings.NewReader(csv), "checking")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing date")
}

func TestChaseParser_BadAmount(t *testing.T) {
	csv := chaseHeader + "CREDIT,01/03/2025,desc,NOTANUMBER,ACH_CREDIT,100.00,\n"
	p := &ChaseParser{}
	_, err := p.Parse(strings.NewReader(csv), "checking")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestChaseParser_Format(t *testing.T) {
	p := &ChaseParser{}
	assert.Equal(t, "chase", p.Format())
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	assert.NotNil(t, r.Get("Chase"))
	assert.NotNil(t, r.Get("CHASE"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := DefaultRegistry()
	assert.Panics(t, func() { r.Register(&ChaseParser{}) })
}

func TestRegistry_ParseFile(t *testing.T) {
	r := DefaultRegistry()
	txns, err := r.ParseFile("../../testdata/chase_checking.csv", "chase", "checking")
	require.NoError(t, err)
	assert.Len(t, txns, 6)

	_, err = r.ParseFile("../../testdata/chase_checking.csv", "ofx", "checking")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown import format")

	_, err = r.ParseFile(filepath.Join(t.TempDir(), "missing.csv"), "chase", "checking")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScan_FindsCSVs(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "other.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "bank.csv", files[0].Name)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	processedDir := filepath.Join(importDir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))

	err := MarkProcessed(dir, "bank.csv")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(importDir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "bank.csv"))
	assert.NoError(t, err)
}

func TestMarkProcessed_ReplacesEarlierCopy(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "import", "processed")
	require.NoError(t, os.MkdirAll(processed, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(processed, "bank.csv"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "bank.csv"), []byte("new"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.csv"))

	data, err := os.ReadFile(filepath.Join(processed, "bank.csv"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
