package matching

import (
	"github.com/cleared-dev/rentcheck/internal/model"
	"github.com/cleared-dev/rentcheck/internal/store"
)

// Reevaluate checks the automatic assignments of tenant against its
// (new) rule and retracts those that no longer match, including those whose
// transaction is gone. Manual assignments are never touched. Retraction
// does not record a rejection; the pairing may qualify again later.
func Reevaluate(t *store.Tables, tenant model.Tenant) []model.Assignment {
	return t.Assignments.DeleteWhere(func(a model.Assignment) bool {
		if a.TenantID != tenant.ID || a.Manual {
			return false
		}
		tx, ok := t.Transactions.Get(a.TransactionID)
		if !ok {
			return true
		}
		return !tx.IsDeposit() || !Evaluate(tenant, tx)
	})
}
