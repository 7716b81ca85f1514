package matching

import (
	"fmt"

	"github.com/cleared-dev/rentcheck/internal/model"
	"github.com/cleared-dev/rentcheck/internal/store"
)

// Assign links txID to tenantID as a manual assignment. Any rejection of
// the pair is forgotten and any existing assignment of the transaction,
// to this or another tenant, is replaced.
func Assign(t *store.Tables, tenantID, txID string) (model.Assignment, error) {
	if !t.Tenants.Has(tenantID) {
		return model.Assignment{}, fmt.Errorf("%w: %s", ErrTenantNotFound, tenantID)
	}
	if !t.Transactions.Has(txID) {
		return model.Assignment{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, txID)
	}

	NewRejections(t).Unreject(tenantID, txID)
	t.Assignments.DeleteWhere(func(a model.Assignment) bool { return a.TransactionID == txID })

	a := model.NewAssignment(tenantID, txID, true)
	t.Assignments.Put(a)
	return a, nil
}

// Unassign removes the assignment of txID, if any, and remembers the pair
// as rejected so auto-match does not propose it again. It returns the
// removed assignment, or nil when the transaction was unassigned.
func Unassign(t *store.Tables, txID string) *model.Assignment {
	a, ok := t.AssignmentFor(txID)
	if !ok {
		return nil
	}
	if t.Tenants.Has(a.TenantID) && t.Transactions.Has(txID) {
		NewRejections(t).Reject(a.TenantID, txID)
	}
	t.Assignments.DeleteWhere(func(x model.Assignment) bool { return x.TransactionID == txID })
	return &a
}
