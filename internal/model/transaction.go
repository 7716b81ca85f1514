package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized bank statement line.
type Transaction struct {
	ID           string
	AccountID    string    // configured bank account name, may be empty
	Date         time.Time
	Amount       decimal.Decimal // negative = deposit, positive = paid out
	Description  string
	MerchantText string
}

// Key returns the store key.
func (t Transaction) Key() string { return t.ID }

// IsDeposit reports whether the transaction is money received.
func (t Transaction) IsDeposit() bool { return t.Amount.IsNegative() }

// DepositAmount returns the absolute amount.
func (t Transaction) DepositAmount() decimal.Decimal { return t.Amount.Abs() }

// MatchText is the upper-cased text search terms are matched against.
func (t Transaction) MatchText() string {
	return strings.ToUpper(t.Description + " " + t.MerchantText)
}
