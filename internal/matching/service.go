package matching

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/rentcheck/internal/id"
	"github.com/cleared-dev/rentcheck/internal/integrity"
	"github.com/cleared-dev/rentcheck/internal/model"
	"github.com/cleared-dev/rentcheck/internal/store"
)

// Store is the entity store the service works against.
type Store interface {
	View(fn func(*store.Tables) error) error
	Update(fn func(*store.Tables) error) error
}

// Service is the entry point for every reconciliation operation. Each
// operation reads and writes one store snapshot.
type Service struct {
	store Store
	log   zerolog.Logger
}

// NewService creates a Service.
func NewService(s Store, log zerolog.Logger) *Service {
	return &Service{store: s, log: log}
}

// RunAutoMatch assigns unassigned deposits to tenants by rule. On a store
// error nothing is persisted and the result is empty.
func (s *Service) RunAutoMatch() (MatchResult, error) {
	var res MatchResult
	err := s.store.Update(func(t *store.Tables) error {
		res = AutoMatch(t, s.log)
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("auto-match failed")
		return MatchResult{}, fmt.Errorf("auto-match: %w", err)
	}
	s.log.Info().Int("matched", res.Matched()).Int("pruned", res.Pruned).Msg("auto-match complete")
	return res, nil
}

// AssignTransaction manually assigns txID to tenantID.
func (s *Service) AssignTransaction(tenantID, txID string) (model.Assignment, error) {
	var a model.Assignment
	err := s.store.Update(func(t *store.Tables) error {
		var err error
		a, err = Assign(t, tenantID, txID)
		return err
	})
	if err != nil {
		return model.Assignment{}, fmt.Errorf("assigning %s: %w", txID, err)
	}
	s.log.Info().Str("tenant_id", tenantID).Str("transaction_id", txID).Msg("assigned transaction")
	return a, nil
}

// UnassignTransaction removes the assignment of txID and remembers the
// pairing as rejected. It returns nil when nothing was assigned.
func (s *Service) UnassignTransaction(txID string) (*model.Assignment, error) {
	var removed *model.Assignment
	err := s.store.Update(func(t *store.Tables) error {
		removed = Unassign(t, txID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unassigning %s: %w", txID, err)
	}
	if removed != nil {
		s.log.Info().Str("tenant_id", removed.TenantID).Str("transaction_id", txID).Msg("unassigned transaction")
	}
	return removed, nil
}

// SaveTenantResult reports the outcome of SaveTenant.
type SaveTenantResult struct {
	Tenant  model.Tenant
	Created bool
	// Retracted holds automatic assignments that no longer match the
	// edited rule.
	Retracted []model.Assignment
}

// SaveTenant creates or replaces a tenant. An empty ID creates a tenant
// with a fresh ID. Replacing an existing tenant re-evaluates its automatic
// assignments against the new rule in the same update.
func (s *Service) SaveTenant(tenant model.Tenant) (SaveTenantResult, error) {
	tenant, err := normalizeTenant(tenant)
	if err != nil {
		return SaveTenantResult{}, err
	}

	res := SaveTenantResult{Tenant: tenant}
	err = s.store.Update(func(t *store.Tables) error {
		res.Created = !t.Tenants.Put(tenant)
		if !res.Created {
			res.Retracted = Reevaluate(t, tenant)
		}
		return nil
	})
	if err != nil {
		return SaveTenantResult{}, fmt.Errorf("saving tenant %s: %w", tenant.ID, err)
	}

	ev := s.log.Info().Str("tenant_id", tenant.ID).Bool("created", res.Created)
	if err := CheckRule(tenant); err != nil {
		ev = ev.AnErr("rule", err)
	}
	ev.Int("retracted", len(res.Retracted)).Msg("saved tenant")
	return res, nil
}

func normalizeTenant(t model.Tenant) (model.Tenant, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return t, fmt.Errorf("%w: name is required", ErrInvalidTenant)
	}
	if t.ID == "" {
		t.ID = id.NewTenantID()
	} else if !id.ValidTenantID(t.ID) {
		return t, fmt.Errorf("%w: bad id %q", ErrInvalidTenant, t.ID)
	}

	if r, ok := t.Rule.(model.SearchTermsRule); ok {
		r.Terms = model.NormalizeTerms(r.Terms)
		for _, term := range r.Terms {
			if strings.Contains(term, store.ListSep) {
				return t, fmt.Errorf("%w: search term %q must not contain %q", ErrInvalidTenant, term, store.ListSep)
			}
		}
		t.Rule = r
	}
	return t, nil
}

// DeleteTenant removes a tenant together with its assignments and
// rejections.
func (s *Service) DeleteTenant(tenantID string) error {
	var assignments, rejections int
	err := s.store.Update(func(t *store.Tables) error {
		if !t.Tenants.Delete(tenantID) {
			return fmt.Errorf("%w: %s", ErrTenantNotFound, tenantID)
		}
		assignments = len(t.Assignments.DeleteWhere(func(a model.Assignment) bool { return a.TenantID == tenantID }))
		rejections = NewRejections(t).ClearForTenant(tenantID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting tenant: %w", err)
	}
	s.log.Info().Str("tenant_id", tenantID).Int("assignments", assignments).Int("rejections", rejections).Msg("deleted tenant")
	return nil
}

// ImportResult reports what ImportTransactions changed.
type ImportResult struct {
	Added     int
	Updated   int
	Unchanged int
	// Retracted holds automatic assignments whose transaction was
	// corrected and no longer matches its tenant.
	Retracted []model.Assignment
}

// ImportTransactions inserts new transactions in order and corrects
// existing ones in place, keyed by ID.
func (s *Service) ImportTransactions(txns []model.Transaction) (ImportResult, error) {
	for _, tx := range txns {
		if tx.ID == "" {
			return ImportResult{}, fmt.Errorf("importing transactions: transaction dated %s has no id", tx.Date.Format("2006-01-02"))
		}
	}

	var res ImportResult
	err := s.store.Update(func(t *store.Tables) error {
		for _, tx := range txns {
			old, ok := t.Transactions.Get(tx.ID)
			switch {
			case !ok:
				res.Added++
			case sameTransaction(old, tx):
				res.Unchanged++
				continue
			default:
				res.Updated++
			}
			t.Transactions.Put(tx)
			if ok {
				res.Retracted = append(res.Retracted, recheckTransaction(t, tx)...)
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("importing transactions: %w", err)
	}
	s.log.Info().
		Int("added", res.Added).
		Int("updated", res.Updated).
		Int("unchanged", res.Unchanged).
		Int("retracted", len(res.Retracted)).
		Msg("imported transactions")
	return res, nil
}

func sameTransaction(a, b model.Transaction) bool {
	return a.AccountID == b.AccountID &&
		a.Date.Equal(b.Date) &&
		a.Amount.Equal(b.Amount) &&
		a.Description == b.Description &&
		a.MerchantText == b.MerchantText
}

// recheckTransaction retracts the automatic assignment of a corrected
// transaction when its tenant's rule no longer accepts it.
func recheckTransaction(t *store.Tables, tx model.Transaction) []model.Assignment {
	return t.Assignments.DeleteWhere(func(a model.Assignment) bool {
		if a.TransactionID != tx.ID || a.Manual {
			return false
		}
		tenant, ok := t.Tenants.Get(a.TenantID)
		return !ok || !tx.IsDeposit() || !Evaluate(tenant, tx)
	})
}

// DeleteTransactions removes transactions with their assignments and
// rejections. Unknown IDs are ignored. It returns how many were removed.
func (s *Service) DeleteTransactions(txIDs []string) (int, error) {
	ids := make(map[string]bool, len(txIDs))
	for _, txID := range txIDs {
		ids[txID] = true
	}
	return s.deleteTransactionsWhere(func(tx model.Transaction) bool { return ids[tx.ID] })
}

// DeleteAccount removes every transaction of a bank account, cascading like
// DeleteTransactions.
func (s *Service) DeleteAccount(accountID string) (int, error) {
	return s.deleteTransactionsWhere(func(tx model.Transaction) bool { return tx.AccountID == accountID })
}

func (s *Service) deleteTransactionsWhere(pred func(model.Transaction) bool) (int, error) {
	var removed []model.Transaction
	err := s.store.Update(func(t *store.Tables) error {
		removed = t.Transactions.DeleteWhere(pred)
		ids := make(map[string]bool, len(removed))
		for _, tx := range removed {
			ids[tx.ID] = true
		}
		t.Assignments.DeleteWhere(func(a model.Assignment) bool { return ids[a.TransactionID] })
		NewRejections(t).ClearForTransactions(ids)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("deleting transactions: %w", err)
	}
	s.log.Info().Int("transactions", len(removed)).Msg("deleted transactions")
	return len(removed), nil
}

// Tenants returns all tenants in match priority order.
func (s *Service) Tenants() ([]model.Tenant, error) {
	var out []model.Tenant
	err := s.store.View(func(t *store.Tables) error {
		out = t.Tenants.List()
		return nil
	})
	return out, err
}

// Tenant returns one tenant.
func (s *Service) Tenant(tenantID string) (model.Tenant, error) {
	var out model.Tenant
	err := s.store.View(func(t *store.Tables) error {
		var ok bool
		if out, ok = t.Tenants.Get(tenantID); !ok {
			return fmt.Errorf("%w: %s", ErrTenantNotFound, tenantID)
		}
		return nil
	})
	return out, err
}

// TransactionFilter narrows Transactions. Zero values do not filter.
type TransactionFilter struct {
	DepositsOnly   bool
	UnassignedOnly bool
	AccountID      string
	From, To       time.Time // inclusive
}

func (f TransactionFilter) match(t *store.Tables, tx model.Transaction) bool {
	if f.DepositsOnly && !tx.IsDeposit() {
		return false
	}
	if f.AccountID != "" && tx.AccountID != f.AccountID {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	if f.UnassignedOnly {
		if _, ok := t.AssignmentFor(tx.ID); ok {
			return false
		}
	}
	return true
}

// Transactions returns transactions in ingestion order.
func (s *Service) Transactions(f TransactionFilter) ([]model.Transaction, error) {
	var out []model.Transaction
	err := s.store.View(func(t *store.Tables) error {
		out = t.Transactions.Filter(func(tx model.Transaction) bool { return f.match(t, tx) })
		return nil
	})
	return out, err
}

// Assignments returns all assignments.
func (s *Service) Assignments() ([]model.Assignment, error) {
	var out []model.Assignment
	err := s.store.View(func(t *store.Tables) error {
		out = t.Assignments.List()
		return nil
	})
	return out, err
}

// Check validates the store's cross-table invariants.
func (s *Service) Check() ([]integrity.ValidationError, error) {
	var errs []integrity.ValidationError
	err := s.store.View(func(t *store.Tables) error {
		errs = integrity.Validate(t)
		return nil
	})
	return errs, err
}
