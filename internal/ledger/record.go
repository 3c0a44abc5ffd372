package ledger

import (
	"maps"
	"time"

	"github.com/ginjaninja78/transfer-pricing/internal/schema"
	"github.com/shopspring/decimal"
)

// Record is one transfer pricing transaction held by the Store.
type Record struct {
	Date         time.Time
	ProviderDept string
	ServiceName  string
	UnitPrice    decimal.Decimal
	ReceiverDept string
	Quantity     decimal.Decimal

	// TotalAmount is UnitPrice x Quantity for entered records. Imported
	// records keep the value found in the source.
	TotalAmount decimal.Decimal

	// Extra holds non-canonical columns carried by an import.
	Extra map[string]string
}

// Field renders a single column of the record as text.
// Unknown columns are looked up in Extra.
func (r Record) Field(column string) string {
	switch column {
	case schema.ColDate:
		return r.Date.Format(schema.DateLayout)
	case schema.ColProviderDept:
		return r.ProviderDept
	case schema.ColServiceName:
		return r.ServiceName
	case schema.ColUnitPrice:
		return r.UnitPrice.String()
	case schema.ColReceiverDept:
		return r.ReceiverDept
	case schema.ColQuantity:
		return r.Quantity.String()
	case schema.ColTotalAmount:
		return r.TotalAmount.String()
	default:
		return r.Extra[column]
	}
}

// Values renders the record in the given column order.
func (r Record) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = r.Field(col)
	}
	return out
}

// Equal reports whether two records hold the same values. Decimals are
// compared by value, so 100 and 100.00 are equal.
func (r Record) Equal(o Record) bool {
	return r.Date.Equal(o.Date) &&
		r.ProviderDept == o.ProviderDept &&
		r.ServiceName == o.ServiceName &&
		r.UnitPrice.Equal(o.UnitPrice) &&
		r.ReceiverDept == o.ReceiverDept &&
		r.Quantity.Equal(o.Quantity) &&
		r.TotalAmount.Equal(o.TotalAmount) &&
		maps.Equal(r.Extra, o.Extra)
}

func (r Record) clone() Record {
	if r.Extra != nil {
		r.Extra = maps.Clone(r.Extra)
	}
	return r
}

// Entry is the raw form input for a manually entered transaction.
type Entry struct {
	// Date defaults to the store clock's current day when zero.
	Date         time.Time
	ProviderDept string
	ServiceName  string
	UnitPrice    decimal.Decimal
	ReceiverDept string
	Quantity     decimal.Decimal
}

// dateOnly drops the clock part of t, keeping the calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
