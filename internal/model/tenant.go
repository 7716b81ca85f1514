package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MatchMode names the rule variant a tenant uses.
type MatchMode string

const (
	MatchSearchTerms  MatchMode = "searchTerms"
	MatchExactAmounts MatchMode = "exactAmounts"
)

// Rule is the matching configuration of a tenant. It is either a
// SearchTermsRule or an ExactAmountsRule.
type Rule interface {
	Mode() MatchMode
	isRule()
}

// SearchTermsRule matches deposits within Tolerance of ExpectedRent whose
// text contains one of Terms.
type SearchTermsRule struct {
	ExpectedRent decimal.NullDecimal
	Tolerance    decimal.Decimal
	Terms        []string
}

// Mode implements Rule.
func (SearchTermsRule) Mode() MatchMode { return MatchSearchTerms }
func (SearchTermsRule) isRule()         {}

// ExactAmountsRule matches deposits equal to one of Amounts.
type ExactAmountsRule struct {
	Amounts []decimal.Decimal
}

// Mode implements Rule.
func (ExactAmountsRule) Mode() MatchMode { return MatchExactAmounts }
func (ExactAmountsRule) isRule()         {}

// Tenant is a rent-paying party and the rule that recognizes their payments.
type Tenant struct {
	ID        string
	Name      string
	Property  string
	AccountID string // empty = any account
	Rule      Rule
}

// Key returns the store key.
func (t Tenant) Key() string { return t.ID }

// Mode returns the active match mode, or "" when no rule is set.
func (t Tenant) Mode() MatchMode {
	if t.Rule == nil {
		return ""
	}
	return t.Rule.Mode()
}

// NormalizeTerms upper-cases and trims terms, dropping empties and duplicates.
func NormalizeTerms(terms []string) []string {
	var out []string
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		term = strings.ToUpper(strings.TrimSpace(term))
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}
