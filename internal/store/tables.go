package store

import "github.com/cleared-dev/rentcheck/internal/model"

// Tables is one snapshot of every entity collection.
type Tables struct {
	Transactions *Table[model.Transaction]
	Tenants      *Table[model.Tenant]
	Assignments  *Table[model.Assignment]
	Rejections   *Table[model.RejectedMatch]
}

// NewTables returns empty tables.
func NewTables() *Tables {
	return &Tables{
		Transactions: NewTable[model.Transaction](),
		Tenants:      NewTable[model.Tenant](),
		Assignments:  NewTable[model.Assignment](),
		Rejections:   NewTable[model.RejectedMatch](),
	}
}

// Clone returns an independent copy with clean dirty flags.
func (t *Tables) Clone() *Tables {
	return &Tables{
		Transactions: t.Transactions.clone(),
		Tenants:      t.Tenants.clone(),
		Assignments:  t.Assignments.clone(),
		Rejections:   t.Rejections.clone(),
	}
}

// AssignmentFor returns the assignment referencing txID, if any.
func (t *Tables) AssignmentFor(txID string) (model.Assignment, bool) {
	return t.Assignments.Find(func(a model.Assignment) bool { return a.TransactionID == txID })
}

// IsRejected reports whether the tenant/transaction pair was rejected.
func (t *Tables) IsRejected(tenantID, txID string) bool {
	return t.Rejections.Has(model.RejectedMatch{TenantID: tenantID, TransactionID: txID}.Key())
}
