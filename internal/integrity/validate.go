package integrity

import (
	"fmt"

	"github.com/cleared-dev/rentcheck/internal/id"
	"github.com/cleared-dev/rentcheck/internal/store"
)

// Invariants checked by Validate.
const (
	InvariantSingleTenant     = 1 // a transaction has at most one assignment
	InvariantAssignmentRefs   = 2 // assignments reference existing tenants and transactions
	InvariantAssignmentID     = 3 // assignment IDs are id.Pair(tenant, transaction)
	InvariantRejectionRefs    = 4 // rejections reference existing tenants and transactions
	InvariantAssignedRejected = 5 // an assigned pair is not also rejected
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	Key         string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.Key, e.Description)
}

// Validate checks the cross-table invariants of a snapshot.
func Validate(t *store.Tables) []ValidationError {
	var errs []ValidationError

	// Invariant 1: one assignment per transaction.
	byTx := make(map[string][]string)
	var txOrder []string
	for _, a := range t.Assignments.List() {
		if _, seen := byTx[a.TransactionID]; !seen {
			txOrder = append(txOrder, a.TransactionID)
		}
		byTx[a.TransactionID] = append(byTx[a.TransactionID], a.TenantID)
	}
	for _, txID := range txOrder {
		if tenants := byTx[txID]; len(tenants) > 1 {
			errs = append(errs, ValidationError{
				Invariant:   InvariantSingleTenant,
				Key:         txID,
				Description: fmt.Sprintf("assigned to %d tenants %v", len(tenants), tenants),
			})
		}
	}

	for _, a := range t.Assignments.List() {
		// Invariant 2: referents exist.
		if !t.Tenants.Has(a.TenantID) {
			errs = append(errs, ValidationError{
				Invariant:   InvariantAssignmentRefs,
				Key:         a.ID,
				Description: fmt.Sprintf("unknown tenant %s", a.TenantID),
			})
		}
		if !t.Transactions.Has(a.TransactionID) {
			errs = append(errs, ValidationError{
				Invariant:   InvariantAssignmentRefs,
				Key:         a.ID,
				Description: fmt.Sprintf("unknown transaction %s", a.TransactionID),
			})
		}

		// Invariant 3: deterministic ID.
		if want := id.Pair(a.TenantID, a.TransactionID); a.ID != want {
			errs = append(errs, ValidationError{
				Invariant:   InvariantAssignmentID,
				Key:         a.ID,
				Description: fmt.Sprintf("id should be %s", want),
			})
		}

		// Invariant 5: not both assigned and rejected.
		if t.IsRejected(a.TenantID, a.TransactionID) {
			errs = append(errs, ValidationError{
				Invariant:   InvariantAssignedRejected,
				Key:         a.ID,
				Description: "pair is assigned and rejected",
			})
		}
	}

	// Invariant 4: rejection referents exist.
	for _, r := range t.Rejections.List() {
		if !t.Tenants.Has(r.TenantID) || !t.Transactions.Has(r.TransactionID) {
			errs = append(errs, ValidationError{
				Invariant:   InvariantRejectionRefs,
				Key:         r.Key(),
				Description: "rejection references a missing tenant or transaction",
			})
		}
	}

	return errs
}
