package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/rentcheck/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testTx(id, amount, desc string) model.Transaction {
	return model.Transaction{
		ID:          id,
		AccountID:   "checking",
		Date:        time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		Amount:      dec(amount),
		Description: desc,
	}
}

func testTenant(id string) model.Tenant {
	return model.Tenant{
		ID:       id,
		Name:     "John Smith",
		Property: "12 Elm St, Unit 2",
		Rule: model.SearchTermsRule{
			ExpectedRent: decimal.NewNullDecimal(dec("1500")),
			Tolerance:    dec("50"),
			Terms:        []string{"SMITH", "ZELLE"},
		},
	}
}

func TestTable_PutKeepsOrder(t *testing.T) {
	tbl := NewTable[model.Transaction]()
	assert.False(t, tbl.Put(testTx("a", "-1", "first")))
	assert.False(t, tbl.Put(testTx("b", "-2", "second")))
	assert.False(t, tbl.Put(testTx("c", "-3", "third")))

	// Replacing keeps position.
	assert.True(t, tbl.Put(testTx("b", "-20", "second corrected")))

	rows := tbl.List()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.Equal(t, "second corrected", rows[1].Description)
	assert.True(t, tbl.Dirty())
}

func TestTable_Delete(t *testing.T) {
	tbl := NewTable(testTx("a", "-1", ""), testTx("b", "-2", ""), testTx("c", "-3", ""))
	assert.False(t, tbl.Dirty())

	assert.True(t, tbl.Delete("b"))
	assert.False(t, tbl.Delete("b"))
	assert.Equal(t, 2, tbl.Len())

	got, ok := tbl.Get("c")
	require.True(t, ok)
	assert.Equal(t, "c", got.ID)

	removed := tbl.DeleteWhere(func(tx model.Transaction) bool { return tx.ID == "a" })
	require.Len(t, removed, 1)
	assert.Equal(t, "a", removed[0].ID)
	assert.False(t, tbl.Has("a"))
	assert.Nil(t, tbl.DeleteWhere(func(model.Transaction) bool { return false }))
}

func TestTables_CloneIsIndependent(t *testing.T) {
	tables := NewTables()
	tables.Transactions.Put(testTx("a", "-1", ""))

	c := tables.Clone()
	assert.False(t, c.Transactions.Dirty())
	c.Transactions.Put(testTx("b", "-2", ""))
	c.Transactions.Delete("a")

	assert.True(t, tables.Transactions.Has("a"))
	assert.False(t, tables.Transactions.Has("b"))
}

func TestTables_Lookups(t *testing.T) {
	tables := NewTables()
	tables.Assignments.Put(model.NewAssignment("ten1", "t1", false))
	tables.Rejections.Put(model.RejectedMatch{TenantID: "ten2", TransactionID: "t1"})

	a, ok := tables.AssignmentFor("t1")
	require.True(t, ok)
	assert.Equal(t, "ten1", a.TenantID)
	_, ok = tables.AssignmentFor("t2")
	assert.False(t, ok)

	assert.True(t, tables.IsRejected("ten2", "t1"))
	assert.False(t, tables.IsRejected("ten1", "t1"))
}

func TestCreateAndOpen_RoundTrip(t *testing.T) {
	root := t.TempDir()
	s, err := Create(root)
	require.NoError(t, err)

	for _, name := range []string{"transactions.csv", "tenants.csv", "assignments.csv", "rejected-matches.csv"} {
		_, err := os.Stat(filepath.Join(root, DataDir, name))
		require.NoError(t, err, "%s should exist", name)
	}

	err = s.Update(func(tables *Tables) error {
		tables.Transactions.Put(testTx("t1", "-1500.00", "ZELLE FROM JOHN SMITH"))
		tables.Transactions.Put(testTx("t2", "42.10", "HARDWARE STORE"))
		tables.Tenants.Put(testTenant("ten1"))
		tables.Tenants.Put(model.Tenant{
			ID:   "ten2",
			Name: "Jane Doe",
			Rule: model.ExactAmountsRule{Amounts: []decimal.Decimal{dec("875.00"), dec("900")}},
		})
		tables.Tenants.Put(model.Tenant{ID: "ten3", Name: "Draft"})
		tables.Assignments.Put(model.NewAssignment("ten1", "t1", true))
		tables.Rejections.Put(model.RejectedMatch{TenantID: "ten2", TransactionID: "t1"})
		return nil
	})
	require.NoError(t, err)

	reopened, err := Open(root)
	require.NoError(t, err)

	err = reopened.View(func(tables *Tables) error {
		txns := tables.Transactions.List()
		require.Len(t, txns, 2)
		assert.Equal(t, "t1", txns[0].ID)
		assert.True(t, txns[0].Amount.Equal(dec("-1500")))
		assert.Equal(t, "ZELLE FROM JOHN SMITH", txns[0].Description)
		assert.Equal(t, "checking", txns[0].AccountID)
		assert.Equal(t, 3, txns[0].Date.Day())

		ten1, ok := tables.Tenants.Get("ten1")
		require.True(t, ok)
		rule, ok := ten1.Rule.(model.SearchTermsRule)
		require.True(t, ok)
		assert.True(t, rule.ExpectedRent.Valid)
		assert.True(t, rule.ExpectedRent.Decimal.Equal(dec("1500")))
		assert.True(t, rule.Tolerance.Equal(dec("50")))
		assert.Equal(t, []string{"SMITH", "ZELLE"}, rule.Terms)
		assert.Equal(t, "12 Elm St, Unit 2", ten1.Property)

		ten2, ok := tables.Tenants.Get("ten2")
		require.True(t, ok)
		exact, ok := ten2.Rule.(model.ExactAmountsRule)
		require.True(t, ok)
		require.Len(t, exact.Amounts, 2)
		assert.True(t, exact.Amounts[0].Equal(dec("875")))

		ten3, ok := tables.Tenants.Get("ten3")
		require.True(t, ok)
		assert.Nil(t, ten3.Rule)

		a, ok := tables.AssignmentFor("t1")
		require.True(t, ok)
		assert.True(t, a.Manual)
		assert.Equal(t, "ten1/t1", a.ID)

		assert.True(t, tables.IsRejected("ten2", "t1"))
		return nil
	})
	require.NoError(t, err)
}

func TestOpen_MissingFilesAreEmpty(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DataDir), 0o755))

	s, err := Open(root)
	require.NoError(t, err)
	_ = s.View(func(tables *Tables) error {
		assert.Equal(t, 0, tables.Transactions.Len())
		assert.Equal(t, 0, tables.Tenants.Len())
		return nil
	})
}

func TestOpen_NoDataDir(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_BadRow(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, DataDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data := TransactionsHeader + "\nt1,checking,NOTADATE,-1,desc,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.csv"), []byte(data), 0o644))

	_, err := Open(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transactions.csv row 2")
	assert.Contains(t, err.Error(), "parsing date")
}

func TestUpdate_OnlyWritesChangedTables(t *testing.T) {
	root := t.TempDir()
	s, err := Create(root)
	require.NoError(t, err)

	tenantsPath := filepath.Join(root, DataDir, "tenants.csv")
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(tenantsPath, past, past))

	require.NoError(t, s.Update(func(tables *Tables) error {
		tables.Transactions.Put(testTx("t1", "-1", ""))
		return nil
	}))

	info, err := os.Stat(tenantsPath)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "tenants.csv should not be rewritten")

	entries, err := os.ReadDir(filepath.Join(root, DataDir))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "leftover temp file %s", e.Name())
	}
}

func TestUpdate_FnErrorDiscardsChanges(t *testing.T) {
	s := NewMemory()
	boom := errors.New("boom")

	err := s.Update(func(tables *Tables) error {
		tables.Transactions.Put(testTx("t1", "-1", ""))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_ = s.View(func(tables *Tables) error {
		assert.Equal(t, 0, tables.Transactions.Len())
		return nil
	})
}

func TestUpdate_WriteFailureKeepsPreviousState(t *testing.T) {
	root := t.TempDir()
	s, err := Create(root)
	require.NoError(t, err)

	// Replace the data directory with a plain file so writes fail.
	dataDir := filepath.Join(root, DataDir)
	require.NoError(t, os.RemoveAll(dataDir))
	require.NoError(t, os.WriteFile(dataDir, []byte("x"), 0o644))

	err = s.Update(func(tables *Tables) error {
		tables.Transactions.Put(testTx("t1", "-1", ""))
		return nil
	})
	require.Error(t, err)

	_ = s.View(func(tables *Tables) error {
		assert.Equal(t, 0, tables.Transactions.Len())
		return nil
	})
}

func TestUnmarshalTenant_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   string
	}{
		{"field count", []string{"a"}, "expected 9 fields"},
		{"missing id", []string{"", "n", "", "", "", "", "", "", ""}, "missing id"},
		{"bad mode", []string{"x", "n", "", "", "weekly", "", "", "", ""}, "unknown match_mode"},
		{"bad rent", []string{"x", "n", "", "", "searchTerms", "abc", "", "", ""}, "parsing expected_rent"},
		{"bad amount", []string{"x", "n", "", "", "exactAmounts", "", "", "", "1;b"}, "parsing exact amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalTenant(tt.record)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMarshalTenant_MissingRent(t *testing.T) {
	row := MarshalTenant(model.Tenant{ID: "x", Rule: model.SearchTermsRule{Terms: []string{"SMITH"}}})
	assert.Equal(t, "searchTerms", row[tenColMode])
	assert.Equal(t, "", row[tenColRent])

	got, err := UnmarshalTenant(row)
	require.NoError(t, err)
	rule := got.Rule.(model.SearchTermsRule)
	assert.False(t, rule.ExpectedRent.Valid)
}

func TestUnmarshalAssignment_BadManual(t *testing.T) {
	_, err := UnmarshalAssignment([]string{"a/b", "a", "b", "maybe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing is_manual")
}
