package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Action names recorded in the activity log.
const (
	ActionAutoAssign     = "auto_assign"
	ActionRetract        = "retract"
	ActionAssign         = "assign"
	ActionUnassign       = "unassign"
	ActionTenantSave     = "tenant_save"
	ActionTenantDelete   = "tenant_delete"
	ActionImport         = "import"
	ActionAccountDelete  = "account_delete"
	ActionDanglingPruned = "dangling_pruned"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp     time.Time
	Action        string
	TenantID      string
	TransactionID string
	Details       string
}

// Header is the CSV header for activity-log.csv.
const Header = "timestamp,action,tenant_id,transaction_id,details"

const (
	numFields  = 5
	logDir     = "logs"
	logFile    = "logs/activity-log.csv"
	colTime    = 0
	colAction  = 1
	colTenant  = 2
	colTx      = 3
	colDetails = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colAction] = e.Action
	row[colTenant] = e.TenantID
	row[colTx] = e.TransactionID
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}

	return Entry{
		Timestamp:     ts,
		Action:        record[colAction],
		TenantID:      record[colTenant],
		TransactionID: record[colTx],
		Details:       record[colDetails],
	}, nil
}

// Append writes entries to <repoRoot>/logs/activity-log.csv, creating the
// file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/activity-log.csv.
// Returns an empty slice if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	path := filepath.Join(repoRoot, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
