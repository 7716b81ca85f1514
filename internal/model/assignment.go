package model

import "github.com/cleared-dev/rentcheck/internal/id"

// Assignment links a transaction to the tenant who paid it.
type Assignment struct {
	ID            string // id.Pair(TenantID, TransactionID)
	TenantID      string
	TransactionID string
	Manual        bool
}

// NewAssignment builds an assignment with its deterministic ID.
func NewAssignment(tenantID, txID string, manual bool) Assignment {
	return Assignment{
		ID:            id.Pair(tenantID, txID),
		TenantID:      tenantID,
		TransactionID: txID,
		Manual:        manual,
	}
}

// Key returns the store key.
func (a Assignment) Key() string { return a.ID }

// RejectedMatch records a tenant/transaction pairing the user removed.
type RejectedMatch struct {
	TenantID      string
	TransactionID string
}

// Key returns the store key.
func (r RejectedMatch) Key() string { return id.Pair(r.TenantID, r.TransactionID) }
