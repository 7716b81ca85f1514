package matching

import (
	"github.com/cleared-dev/rentcheck/internal/model"
	"github.com/cleared-dev/rentcheck/internal/store"
)

// Rejections is the memory of tenant/transaction pairings the user removed.
// The auto-matcher never proposes a rejected pairing again.
type Rejections struct {
	t *store.Tables
}

// NewRejections operates on the rejected-matches table of t.
func NewRejections(t *store.Tables) Rejections {
	return Rejections{t: t}
}

// Reject records the pairing. Rejecting twice is a no-op.
func (r Rejections) Reject(tenantID, txID string) {
	m := model.RejectedMatch{TenantID: tenantID, TransactionID: txID}
	if r.t.Rejections.Has(m.Key()) {
		return
	}
	r.t.Rejections.Put(m)
}

// Unreject forgets the pairing and reports whether it was recorded.
func (r Rejections) Unreject(tenantID, txID string) bool {
	return r.t.Rejections.Delete(model.RejectedMatch{TenantID: tenantID, TransactionID: txID}.Key())
}

// IsRejected reports whether the pairing was rejected.
func (r Rejections) IsRejected(tenantID, txID string) bool {
	return r.t.IsRejected(tenantID, txID)
}

// ClearForTenant removes every rejection of tenantID.
func (r Rejections) ClearForTenant(tenantID string) int {
	return len(r.t.Rejections.DeleteWhere(func(m model.RejectedMatch) bool { return m.TenantID == tenantID }))
}

// ClearForTransactions removes every rejection of the given transactions.
func (r Rejections) ClearForTransactions(txIDs map[string]bool) int {
	return len(r.t.Rejections.DeleteWhere(func(m model.RejectedMatch) bool { return txIDs[m.TransactionID] }))
}
