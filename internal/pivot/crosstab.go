// =============================================================================
// Transfer Pricing - Pivot Engine
// =============================================================================
//
// This module aggregates transactions into a crosstab:
//
//   rows    : distinct (providerDept, serviceName, unitPrice), first-seen order
//   columns : distinct receiverDept, first-seen order
//   cells   : sum of the measure (quantity by default), 0 when no record
//             matches the (row, column) pair
//
// GROUPING:
//   unitPrice is matched by exact decimal value: 100 and 100.00 share a row,
//   100 and 100.0000001 do not. No tolerance is applied.
//
// The crosstab is computed fresh on every call and never cached.
//
// =============================================================================

package pivot

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/transfer-pricing/internal/ledger"
	"github.com/ginjaninja78/transfer-pricing/internal/schema"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MEASURES
// =============================================================================

// Measure selects the record value summed into each cell.
type Measure string

const (
	// MeasureQuantity sums the quantity column.
	MeasureQuantity Measure = schema.ColQuantity

	// MeasureTotalAmount sums the totalAmount column.
	MeasureTotalAmount Measure = schema.ColTotalAmount
)

// ParseMeasure maps user input to a Measure.
// Accepted: "quantity", "qty", "amount", "total", "totalAmount".
func ParseMeasure(s string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "quantity", "qty":
		return MeasureQuantity, nil
	case "amount", "total", "totalamount":
		return MeasureTotalAmount, nil
	default:
		return "", fmt.Errorf("unknown measure '%s' (use quantity or amount)", s)
	}
}

func (m Measure) value(rec ledger.Record) decimal.Decimal {
	if m == MeasureTotalAmount {
		return rec.TotalAmount
	}
	return rec.Quantity
}

// =============================================================================
// CROSSTAB
// =============================================================================

// RowKey identifies a crosstab row.
type RowKey struct {
	ProviderDept string
	ServiceName  string
	UnitPrice    decimal.Decimal
}

// rowID is the comparable form of a RowKey. The price is held in its
// canonical text so equal decimal values share a row.
type rowID struct {
	provider, service, price string
}

func (k RowKey) id() rowID {
	return rowID{provider: k.ProviderDept, service: k.ServiceName, price: k.UnitPrice.String()}
}

// Crosstab is an aggregated, read-only view of the store.
// Cells[i][j] belongs to Rows[i] and Columns[j].
type Crosstab struct {
	Measure Measure
	Rows    []RowKey
	Columns []string
	Cells   [][]decimal.Decimal
}

// Compute builds the crosstab of records over the given measure.
// No records yield a crosstab with zero rows and zero columns.
func Compute(records []ledger.Record, measure Measure) *Crosstab {
	if measure == "" {
		measure = MeasureQuantity
	}
	ct := &Crosstab{
		Measure: measure,
		Rows:    []RowKey{},
		Columns: []string{},
		Cells:   [][]decimal.Decimal{},
	}
	if len(records) == 0 {
		return ct
	}

	rowIndex := make(map[rowID]int)
	colIndex := make(map[string]int)
	type hit struct{ row, col int }
	hits := make([]hit, len(records))

	for i, rec := range records {
		key := RowKey{ProviderDept: rec.ProviderDept, ServiceName: rec.ServiceName, UnitPrice: rec.UnitPrice}
		id := key.id()
		r, ok := rowIndex[id]
		if !ok {
			r = len(ct.Rows)
			rowIndex[id] = r
			ct.Rows = append(ct.Rows, key)
		}
		c, ok := colIndex[rec.ReceiverDept]
		if !ok {
			c = len(ct.Columns)
			colIndex[rec.ReceiverDept] = c
			ct.Columns = append(ct.Columns, rec.ReceiverDept)
		}
		hits[i] = hit{r, c}
	}

	ct.Cells = make([][]decimal.Decimal, len(ct.Rows))
	for r := range ct.Cells {
		ct.Cells[r] = make([]decimal.Decimal, len(ct.Columns))
		for c := range ct.Cells[r] {
			ct.Cells[r][c] = decimal.Zero
		}
	}
	for i, rec := range records {
		h := hits[i]
		ct.Cells[h.row][h.col] = ct.Cells[h.row][h.col].Add(measure.value(rec))
	}
	return ct
}

// FromStore computes the crosstab over every record in the store.
func FromStore(store *ledger.Store, measure Measure) *Crosstab {
	return Compute(store.All(), measure)
}

// IsEmpty reports whether the crosstab has no rows.
func (ct *Crosstab) IsEmpty() bool {
	return len(ct.Rows) == 0
}

// Cell returns the value for a row key and receiver, or zero when either is
// not part of the crosstab.
func (ct *Crosstab) Cell(key RowKey, receiver string) decimal.Decimal {
	id := key.id()
	for i, rk := range ct.Rows {
		if rk.id() != id {
			continue
		}
		for j, col := range ct.Columns {
			if col == receiver {
				return ct.Cells[i][j]
			}
		}
	}
	return decimal.Zero
}

// =============================================================================
// TOTALS
// =============================================================================

// RowTotals returns the sum of each row across all receivers.
func (ct *Crosstab) RowTotals() []decimal.Decimal {
	totals := make([]decimal.Decimal, len(ct.Rows))
	for i, row := range ct.Cells {
		totals[i] = decimal.Sum(decimal.Zero, row...)
	}
	return totals
}

// ColumnTotals returns the sum of each receiver column.
func (ct *Crosstab) ColumnTotals() []decimal.Decimal {
	totals := make([]decimal.Decimal, len(ct.Columns))
	for j := range totals {
		totals[j] = decimal.Zero
		for i := range ct.Cells {
			totals[j] = totals[j].Add(ct.Cells[i][j])
		}
	}
	return totals
}

// GrandTotal returns the sum of every cell.
func (ct *Crosstab) GrandTotal() decimal.Decimal {
	return decimal.Sum(decimal.Zero, ct.RowTotals()...)
}
