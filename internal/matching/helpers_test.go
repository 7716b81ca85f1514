package matching

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/rentcheck/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func deposit(txID, amount, desc string) model.Transaction {
	return model.Transaction{
		ID:          txID,
		AccountID:   "checking",
		Date:        date(2025, 1, 3),
		Amount:      dec(amount).Neg(),
		Description: desc,
	}
}

func searchTenant(tenantID, rent, tolerance string, terms ...string) model.Tenant {
	return model.Tenant{
		ID:   tenantID,
		Name: "Tenant " + tenantID,
		Rule: model.SearchTermsRule{
			ExpectedRent: decimal.NewNullDecimal(dec(rent)),
			Tolerance:    dec(tolerance),
			Terms:        terms,
		},
	}
}

func exactTenant(tenantID string, amounts ...string) model.Tenant {
	rule := model.ExactAmountsRule{}
	for _, a := range amounts {
		rule.Amounts = append(rule.Amounts, dec(a))
	}
	return model.Tenant{ID: tenantID, Name: "Tenant " + tenantID, Rule: rule}
}
