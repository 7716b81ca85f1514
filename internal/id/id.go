package id

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PairSep separates the tenant and transaction halves of a pair key.
const PairSep = "/"

// Pair returns the key for a tenant/transaction pairing, e.g. "ten1/t1".
// It is used both as the Assignment ID and the RejectedMatch key.
func Pair(tenantID, txID string) string {
	return tenantID + PairSep + txID
}

// SplitPair parses a key produced by Pair.
func SplitPair(key string) (tenantID, txID string, err error) {
	tenantID, txID, ok := strings.Cut(key, PairSep)
	if !ok || tenantID == "" || txID == "" {
		return "", "", fmt.Errorf("invalid pair key: %q", key)
	}
	return tenantID, txID, nil
}

// NewTenantID returns a fresh random tenant ID.
func NewTenantID() string {
	return uuid.NewString()
}

// ValidTenantID reports whether s can be used as a tenant ID.
func ValidTenantID(s string) bool {
	return s != "" && !strings.Contains(s, PairSep) && strings.TrimSpace(s) == s
}

// TransactionID returns a stable ID for a statement line, like
// "chase_20250103_ZELLEFROMJ_1a2b3c4d". occurrence counts identical lines
// within one statement (0 for the first) so repeated payments of the same
// amount on the same day stay distinct while re-ingesting the file yields
// the same IDs.
func TransactionID(source, accountID string, date time.Time, amount decimal.Decimal, description string, occurrence int) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, description)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}

	h := sha1.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d", accountID, date.Format("2006-01-02"), amount.StringFixed(2), description, occurrence)
	sum := hex.EncodeToString(h.Sum(nil))[:8]

	return fmt.Sprintf("%s_%s_%s_%s", source, date.Format("20060102"), prefix, sum)
}
