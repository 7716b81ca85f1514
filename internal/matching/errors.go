package matching

import "errors"

var (
	// ErrIncompleteRule marks a tenant whose rule lacks what its mode needs.
	// Such tenants never match.
	ErrIncompleteRule = errors.New("incomplete match rule")
	// ErrInvalidTenant is returned when a tenant cannot be saved.
	ErrInvalidTenant = errors.New("invalid tenant")
	// ErrTenantNotFound is returned for unknown tenant IDs.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrTransactionNotFound is returned for unknown transaction IDs.
	ErrTransactionNotFound = errors.New("transaction not found")
)
