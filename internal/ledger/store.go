// =============================================================================
// Transfer Pricing - Transaction Store
// =============================================================================
//
// The Store is the ordered, append-only collection of transactions owned by
// one session. Records enter it in exactly two ways:
//   - AppendOne: a manual entry; the selection fields are validated and the
//     total amount is derived (unit price x quantity).
//   - AppendMany: an import; candidate rows are checked against the canonical
//     columns, converted, and appended verbatim (total amount is NOT
//     recomputed).
//
// A failing append never mutates the store.
//
// The store is not safe for concurrent use. Each session owns its own store.
//
// =============================================================================

package ledger

import (
	"strings"
	"time"

	"github.com/ginjaninja78/transfer-pricing/internal/schema"
	"github.com/shopspring/decimal"
)

// Placeholders are the "please select" values the form layer submits for a
// selection the user has not made yet.
type Placeholders struct {
	Department string
	Service    string
}

// DefaultPlaceholders returns the placeholder values used by the form layer.
func DefaultPlaceholders() Placeholders {
	return Placeholders{
		Department: schema.DefaultDepartmentPlaceholder,
		Service:    schema.DefaultServicePlaceholder,
	}
}

// Options configures a Store.
type Options struct {
	Placeholders Placeholders

	// Now supplies the default date for entries without one.
	Now func() time.Time
}

// Store is an ordered sequence of transaction records.
type Store struct {
	records      []Record
	extraColumns []string
	placeholders Placeholders
	now          func() time.Time
}

// New creates an empty store.
func New(opts Options) *Store {
	if opts.Placeholders == (Placeholders{}) {
		opts.Placeholders = DefaultPlaceholders()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		placeholders: opts.Placeholders,
		now:          opts.Now,
	}
}

// NewStore creates an empty store with default options.
func NewStore() *Store {
	return New(Options{})
}

// =============================================================================
// MANUAL ENTRY
// =============================================================================

// AppendOne validates a form entry, derives its total amount and appends it.
//
// RETURNS:
//   - The appended record.
//   - A *ValidationError when a selection field is blank or still holds a
//     placeholder, or when the unit price or quantity is negative.
func (s *Store) AppendOne(e Entry) (Record, error) {
	if err := s.validateEntry(e); err != nil {
		return Record{}, err
	}

	date := e.Date
	if date.IsZero() {
		date = s.now()
	}

	rec := Record{
		Date:         dateOnly(date),
		ProviderDept: normalizeNewlines(e.ProviderDept),
		ServiceName:  normalizeNewlines(e.ServiceName),
		UnitPrice:    e.UnitPrice,
		ReceiverDept: normalizeNewlines(e.ReceiverDept),
		Quantity:     e.Quantity,
		TotalAmount:  e.UnitPrice.Mul(e.Quantity),
	}
	s.records = append(s.records, rec)
	return rec.clone(), nil
}

func (s *Store) validateEntry(e Entry) error {
	selections := []struct {
		field       string
		value       string
		placeholder string
	}{
		{schema.ColProviderDept, e.ProviderDept, s.placeholders.Department},
		{schema.ColServiceName, e.ServiceName, s.placeholders.Service},
		{schema.ColReceiverDept, e.ReceiverDept, s.placeholders.Department},
	}
	for _, sel := range selections {
		if v := strings.TrimSpace(sel.value); v == "" || v == sel.placeholder {
			return &ValidationError{
				Field:   sel.field,
				Value:   sel.value,
				Message: "a value must be selected",
			}
		}
	}

	if e.UnitPrice.IsNegative() {
		return &ValidationError{Field: schema.ColUnitPrice, Value: e.UnitPrice.String(), Message: "must not be negative"}
	}
	if e.Quantity.IsNegative() {
		return &ValidationError{Field: schema.ColQuantity, Value: e.Quantity.String(), Message: "must not be negative"}
	}
	return nil
}

// normalizeNewlines stores line breaks as "\n", the form a CSV reader
// hands back for a quoted "\r\n".
func normalizeNewlines(v string) string {
	return strings.ReplaceAll(v, "\r\n", "\n")
}

// =============================================================================
// IMPORT
// =============================================================================

// AppendMany appends imported candidate rows after the existing records.
//
// The header must cover every canonical column; extra columns are kept on
// the records. Every row is converted before anything is appended, so a
// failure leaves the store unchanged.
//
// RETURNS:
//   - The number of appended rows.
//   - A *SchemaError for a missing column or an unconvertible cell.
func (s *Store) AppendMany(set *schema.CandidateSet) (int, error) {
	if set == nil {
		return 0, &SchemaError{Missing: schema.RequiredColumns()}
	}
	if missing := schema.MissingColumns(set.Headers); len(missing) > 0 {
		return 0, &SchemaError{Missing: missing}
	}

	extras := schema.ExtraColumns(set.Headers)
	converted := make([]Record, 0, len(set.Rows))
	for i, row := range set.Rows {
		rec, err := convertCandidate(row, extras)
		if err != nil {
			err.Row = i + 1
			return 0, err
		}
		converted = append(converted, rec)
	}

	s.records = append(s.records, converted...)
	s.addExtraColumns(extras)
	return len(converted), nil
}

func convertCandidate(row schema.CandidateRow, extras []string) (Record, *SchemaError) {
	var rec Record

	rawDate := row.Get(schema.ColDate)
	date, err := time.Parse(schema.DateLayout, strings.TrimSpace(rawDate))
	if err != nil {
		return Record{}, &SchemaError{Column: schema.ColDate, Value: rawDate, Message: "not a date (YYYY-MM-DD)"}
	}
	rec.Date = date

	amounts := []struct {
		column string
		dst    *decimal.Decimal
	}{
		{schema.ColUnitPrice, &rec.UnitPrice},
		{schema.ColQuantity, &rec.Quantity},
		{schema.ColTotalAmount, &rec.TotalAmount},
	}
	for _, a := range amounts {
		raw := row.Get(a.column)
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return Record{}, &SchemaError{Column: a.column, Value: raw, Message: "not a decimal number"}
		}
		if a.column != schema.ColTotalAmount && d.IsNegative() {
			return Record{}, &SchemaError{Column: a.column, Value: raw, Message: "must not be negative"}
		}
		*a.dst = d
	}

	rec.ProviderDept = normalizeNewlines(row.Get(schema.ColProviderDept))
	rec.ServiceName = normalizeNewlines(row.Get(schema.ColServiceName))
	rec.ReceiverDept = normalizeNewlines(row.Get(schema.ColReceiverDept))

	if len(extras) > 0 {
		rec.Extra = make(map[string]string, len(extras))
		for _, col := range extras {
			rec.Extra[col] = normalizeNewlines(row.Get(col))
		}
	}
	return rec, nil
}

func (s *Store) addExtraColumns(cols []string) {
	for _, col := range cols {
		known := false
		for _, have := range s.extraColumns {
			if have == col {
				known = true
				break
			}
		}
		if !known {
			s.extraColumns = append(s.extraColumns, col)
		}
	}
}

// =============================================================================
// READ ACCESS
// =============================================================================

// All returns a copy of the records in insertion order.
func (s *Store) All() []Record {
	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.clone()
	}
	return out
}

// Columns returns the canonical columns followed by any extra columns
// carried by imports, in first-seen order.
func (s *Store) Columns() []string {
	return append(schema.RequiredColumns(), s.extraColumns...)
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// IsEmpty reports whether the store holds no records.
func (s *Store) IsEmpty() bool {
	return len(s.records) == 0
}
