package matching

import (
	"github.com/rs/zerolog"

	"github.com/cleared-dev/rentcheck/internal/model"
	"github.com/cleared-dev/rentcheck/internal/store"
)

// MatchResult reports what one auto-match pass changed.
type MatchResult struct {
	Created []model.Assignment
	// Pruned counts assignments and rejections dropped because their tenant
	// or transaction no longer exists.
	Pruned int
}

// Matched returns the number of new assignments.
func (r MatchResult) Matched() int {
	return len(r.Created)
}

// AutoMatch assigns every unassigned deposit to the first tenant, in stored
// order, whose rule it satisfies and who has not been rejected for it.
// Transactions are visited in ingestion order. Existing assignments are
// kept as they are, so a second pass over unchanged tables creates nothing.
func AutoMatch(t *store.Tables, log zerolog.Logger) MatchResult {
	var res MatchResult
	res.Pruned = pruneDangling(t, log)

	var tenants []model.Tenant
	for _, ten := range t.Tenants.List() {
		if err := CheckRule(ten); err != nil {
			log.Warn().Err(err).Str("tenant_id", ten.ID).Str("tenant", ten.Name).Msg("tenant skipped by auto-match")
			continue
		}
		tenants = append(tenants, ten)
	}

	assigned := make(map[string]bool, t.Assignments.Len())
	for _, a := range t.Assignments.List() {
		assigned[a.TransactionID] = true
	}

	rejections := NewRejections(t)
	for _, tx := range t.Transactions.List() {
		if !tx.IsDeposit() || assigned[tx.ID] {
			continue
		}
		for _, ten := range tenants {
			if rejections.IsRejected(ten.ID, tx.ID) {
				continue
			}
			if !Evaluate(ten, tx) {
				continue
			}
			a := model.NewAssignment(ten.ID, tx.ID, false)
			t.Assignments.Put(a)
			assigned[tx.ID] = true
			res.Created = append(res.Created, a)
			log.Debug().
				Str("tenant_id", ten.ID).
				Str("transaction_id", tx.ID).
				Str("amount", tx.DepositAmount().StringFixed(2)).
				Msg("auto-matched deposit")
			break
		}
	}
	return res
}

// pruneDangling drops assignments and rejections that reference a tenant or
// transaction that no longer exists.
func pruneDangling(t *store.Tables, log zerolog.Logger) int {
	dangling := func(tenantID, txID string) bool {
		return !t.Tenants.Has(tenantID) || !t.Transactions.Has(txID)
	}

	assignments := t.Assignments.DeleteWhere(func(a model.Assignment) bool {
		return dangling(a.TenantID, a.TransactionID)
	})
	for _, a := range assignments {
		log.Info().Str("tenant_id", a.TenantID).Str("transaction_id", a.TransactionID).Msg("removed dangling assignment")
	}

	rejections := t.Rejections.DeleteWhere(func(m model.RejectedMatch) bool {
		return dangling(m.TenantID, m.TransactionID)
	})
	return len(assignments) + len(rejections)
}
