package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/rentcheck/internal/model"
)

// ListSep joins multi-valued fields (search terms, exact amounts).
const ListSep = ";"

const dateFormat = "2006-01-02"

// Headers for the data files.
const (
	TransactionsHeader = "id,account_id,date,amount,description,merchant_text"
	TenantsHeader      = "id,name,property,account_id,match_mode,expected_rent,tolerance,search_terms,exact_amounts"
	AssignmentsHeader  = "id,tenant_id,transaction_id,is_manual"
	RejectionsHeader   = "tenant_id,transaction_id"
)

const (
	txNumFields   = 6
	txColID       = 0
	txColAccount  = 1
	txColDate     = 2
	txColAmount   = 3
	txColDesc     = 4
	txColMerchant = 5
)

const (
	tenNumFields  = 9
	tenColID      = 0
	tenColName    = 1
	tenColProp    = 2
	tenColAccount = 3
	tenColMode    = 4
	tenColRent    = 5
	tenColTol     = 6
	tenColTerms   = 7
	tenColAmounts = 8
)

const (
	asgNumFields = 4
	asgColID     = 0
	asgColTenant = 1
	asgColTx     = 2
	asgColManual = 3
)

const (
	rejNumFields = 2
	rejColTenant = 0
	rejColTx     = 1
)

// codec describes how one entity type is laid out in its CSV file.
type codec[T Record] struct {
	file      string
	header    string
	numFields int
	marshal   func(T) []string
	unmarshal func([]string) (T, error)
}

var (
	transactionsCodec = codec[model.Transaction]{
		file: "transactions.csv", header: TransactionsHeader, numFields: txNumFields,
		marshal: MarshalTransaction, unmarshal: UnmarshalTransaction,
	}
	tenantsCodec = codec[model.Tenant]{
		file: "tenants.csv", header: TenantsHeader, numFields: tenNumFields,
		marshal: MarshalTenant, unmarshal: UnmarshalTenant,
	}
	assignmentsCodec = codec[model.Assignment]{
		file: "assignments.csv", header: AssignmentsHeader, numFields: asgNumFields,
		marshal: MarshalAssignment, unmarshal: UnmarshalAssignment,
	}
	rejectionsCodec = codec[model.RejectedMatch]{
		file: "rejected-matches.csv", header: RejectionsHeader, numFields: rejNumFields,
		marshal: MarshalRejection, unmarshal: UnmarshalRejection,
	}
)

func (c codec[T]) read(r io.Reader) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = c.numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.file, err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var rows []T
	for i, rec := range records[1:] {
		row, err := c.unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", c.file, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c codec[T]) write(w io.Writer, rows []T) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(c.header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(c.marshal(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(tx model.Transaction) []string {
	row := make([]string, txNumFields)
	row[txColID] = tx.ID
	row[txColAccount] = tx.AccountID
	row[txColDate] = tx.Date.Format(dateFormat)
	row[txColAmount] = tx.Amount.String()
	row[txColDesc] = tx.Description
	row[txColMerchant] = tx.MerchantText
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != txNumFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", txNumFields, len(record))
	}
	if record[txColID] == "" {
		return model.Transaction{}, fmt.Errorf("missing id")
	}

	date, err := time.Parse(dateFormat, record[txColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[txColDate], err)
	}

	amount, err := decimal.NewFromString(record[txColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[txColAmount], err)
	}

	return model.Transaction{
		ID:           record[txColID],
		AccountID:    record[txColAccount],
		Date:         date,
		Amount:       amount,
		Description:  record[txColDesc],
		MerchantText: record[txColMerchant],
	}, nil
}

// MarshalTenant converts a Tenant to a CSV row. Only the active rule's
// columns are filled.
func MarshalTenant(t model.Tenant) []string {
	row := make([]string, tenNumFields)
	row[tenColID] = t.ID
	row[tenColName] = t.Name
	row[tenColProp] = t.Property
	row[tenColAccount] = t.AccountID
	row[tenColMode] = string(t.Mode())

	switch r := t.Rule.(type) {
	case model.SearchTermsRule:
		if r.ExpectedRent.Valid {
			row[tenColRent] = r.ExpectedRent.Decimal.String()
		}
		row[tenColTol] = r.Tolerance.String()
		row[tenColTerms] = strings.Join(r.Terms, ListSep)
	case model.ExactAmountsRule:
		amounts := make([]string, len(r.Amounts))
		for i, a := range r.Amounts {
			amounts[i] = a.String()
		}
		row[tenColAmounts] = strings.Join(amounts, ListSep)
	}
	return row
}

// UnmarshalTenant converts a CSV row to a Tenant.
func UnmarshalTenant(record []string) (model.Tenant, error) {
	if len(record) != tenNumFields {
		return model.Tenant{}, fmt.Errorf("expected %d fields, got %d", tenNumFields, len(record))
	}
	if record[tenColID] == "" {
		return model.Tenant{}, fmt.Errorf("missing id")
	}

	t := model.Tenant{
		ID:        record[tenColID],
		Name:      record[tenColName],
		Property:  record[tenColProp],
		AccountID: record[tenColAccount],
	}

	switch model.MatchMode(record[tenColMode]) {
	case "":
	case model.MatchSearchTerms:
		var rule model.SearchTermsRule
		if record[tenColRent] != "" {
			rent, err := decimal.NewFromString(record[tenColRent])
			if err != nil {
				return model.Tenant{}, fmt.Errorf("parsing expected_rent %q: %w", record[tenColRent], err)
			}
			rule.ExpectedRent = decimal.NewNullDecimal(rent)
		}
		if record[tenColTol] != "" {
			tol, err := decimal.NewFromString(record[tenColTol])
			if err != nil {
				return model.Tenant{}, fmt.Errorf("parsing tolerance %q: %w", record[tenColTol], err)
			}
			rule.Tolerance = tol
		}
		rule.Terms = splitList(record[tenColTerms])
		t.Rule = rule
	case model.MatchExactAmounts:
		var rule model.ExactAmountsRule
		for _, s := range splitList(record[tenColAmounts]) {
			a, err := decimal.NewFromString(s)
			if err != nil {
				return model.Tenant{}, fmt.Errorf("parsing exact amount %q: %w", s, err)
			}
			rule.Amounts = append(rule.Amounts, a)
		}
		t.Rule = rule
	default:
		return model.Tenant{}, fmt.Errorf("unknown match_mode %q", record[tenColMode])
	}
	return t, nil
}

// MarshalAssignment converts an Assignment to a CSV row.
func MarshalAssignment(a model.Assignment) []string {
	row := make([]string, asgNumFields)
	row[asgColID] = a.ID
	row[asgColTenant] = a.TenantID
	row[asgColTx] = a.TransactionID
	row[asgColManual] = strconv.FormatBool(a.Manual)
	return row
}

// UnmarshalAssignment converts a CSV row to an Assignment.
func UnmarshalAssignment(record []string) (model.Assignment, error) {
	if len(record) != asgNumFields {
		return model.Assignment{}, fmt.Errorf("expected %d fields, got %d", asgNumFields, len(record))
	}

	manual, err := strconv.ParseBool(record[asgColManual])
	if err != nil {
		return model.Assignment{}, fmt.Errorf("parsing is_manual %q: %w", record[asgColManual], err)
	}

	return model.Assignment{
		ID:            record[asgColID],
		TenantID:      record[asgColTenant],
		TransactionID: record[asgColTx],
		Manual:        manual,
	}, nil
}

// MarshalRejection converts a RejectedMatch to a CSV row.
func MarshalRejection(r model.RejectedMatch) []string {
	row := make([]string, rejNumFields)
	row[rejColTenant] = r.TenantID
	row[rejColTx] = r.TransactionID
	return row
}

// UnmarshalRejection converts a CSV row to a RejectedMatch.
func UnmarshalRejection(record []string) (model.RejectedMatch, error) {
	if len(record) != rejNumFields {
		return model.RejectedMatch{}, fmt.Errorf("expected %d fields, got %d", rejNumFields, len(record))
	}
	return model.RejectedMatch{
		TenantID:      record[rejColTenant],
		TransactionID: record[rejColTx],
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ListSep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
