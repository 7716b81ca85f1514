package matching

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/rentcheck/internal/model"
)

// exactAmountEpsilon is the largest difference (exclusive) still treated
// as equal in exact-amount mode.
var exactAmountEpsilon = decimal.New(1, -2)

// CheckRule reports why a tenant's rule cannot match anything, or nil.
func CheckRule(t model.Tenant) error {
	switch r := t.Rule.(type) {
	case nil:
		return fmt.Errorf("%w: no rule configured", ErrIncompleteRule)
	case model.SearchTermsRule:
		if !r.ExpectedRent.Valid {
			return fmt.Errorf("%w: expected rent is missing", ErrIncompleteRule)
		}
		if r.Tolerance.IsNegative() {
			return fmt.Errorf("%w: tolerance %s is negative", ErrIncompleteRule, r.Tolerance)
		}
		for _, term := range r.Terms {
			if strings.TrimSpace(term) != "" {
				return nil
			}
		}
		return fmt.Errorf("%w: no search terms", ErrIncompleteRule)
	case model.ExactAmountsRule:
		if len(r.Amounts) == 0 {
			return fmt.Errorf("%w: no exact amounts", ErrIncompleteRule)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown rule %T", ErrIncompleteRule, r)
	}
}

// Evaluate reports whether tx satisfies the tenant's rule. Callers pass
// deposits only; the amount is compared by absolute value. A tenant scoped
// to an account never matches transactions from another account. Tenants
// failing CheckRule never match.
func Evaluate(t model.Tenant, tx model.Transaction) bool {
	if CheckRule(t) != nil {
		return false
	}
	if t.AccountID != "" && t.AccountID != tx.AccountID {
		return false
	}

	amount := tx.DepositAmount()
	switch r := t.Rule.(type) {
	case model.SearchTermsRule:
		return matchSearchTerms(r, amount, tx.MatchText())
	case model.ExactAmountsRule:
		return matchExactAmounts(r, amount)
	}
	return false
}

func matchSearchTerms(r model.SearchTermsRule, amount decimal.Decimal, text string) bool {
	rent := r.ExpectedRent.Decimal
	if amount.LessThan(rent.Sub(r.Tolerance)) || amount.GreaterThan(rent.Add(r.Tolerance)) {
		return false
	}
	for _, term := range r.Terms {
		term = strings.ToUpper(strings.TrimSpace(term))
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func matchExactAmounts(r model.ExactAmountsRule, amount decimal.Decimal) bool {
	for _, want := range r.Amounts {
		if amount.Sub(want).Abs().LessThan(exactAmountEpsilon) {
			return true
		}
	}
	return false
}
