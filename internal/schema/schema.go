// =============================================================================
// Transfer Pricing - Record Schema
// =============================================================================
//
// This package defines the canonical column set of a transfer pricing
// transaction and the "candidate" row types produced by importers (CSV and
// XLSX). Candidate rows are untyped (column name -> raw string) and must be
// converted by the ledger before they become records.
//
// CANONICAL COLUMN ORDER:
//   date, providerDept, serviceName, unitPrice, receiverDept, quantity,
//   totalAmount
//
// =============================================================================

package schema

import "strings"

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Column names as they appear in CSV headers and workbook sheets.
const (
	ColDate         = "date"
	ColProviderDept = "providerDept"
	ColServiceName  = "serviceName"
	ColUnitPrice    = "unitPrice"
	ColReceiverDept = "receiverDept"
	ColQuantity     = "quantity"
	ColTotalAmount  = "totalAmount"
)

// DateLayout is the layout used for the date column.
const DateLayout = "2006-01-02"

// Default "please select" values used by the form layer.
const (
	DefaultDepartmentPlaceholder = "เลือกหน่วยงาน"
	DefaultServicePlaceholder    = "เลือกบริการ"
)

var requiredColumns = []string{
	ColDate,
	ColProviderDept,
	ColServiceName,
	ColUnitPrice,
	ColReceiverDept,
	ColQuantity,
	ColTotalAmount,
}

// RequiredColumns returns the canonical, ordered column set.
// The returned slice is a copy and may be modified by the caller.
func RequiredColumns() []string {
	out := make([]string, len(requiredColumns))
	copy(out, requiredColumns)
	return out
}

// IsRequired reports whether name is one of the canonical columns.
func IsRequired(name string) bool {
	for _, col := range requiredColumns {
		if col == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the canonical columns that are absent from headers,
// in canonical order. Extra headers are ignored.
func MissingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// ExtraColumns returns the headers that are not canonical columns, in the
// order they appear.
func ExtraColumns(headers []string) []string {
	var extra []string
	for _, h := range headers {
		if !IsRequired(h) {
			extra = append(extra, h)
		}
	}
	return extra
}

// =============================================================================
// CANDIDATE ROWS
// =============================================================================

// CandidateRow is a single imported row, keyed by header name.
// Values are raw strings exactly as read from the source.
type CandidateRow map[string]string

// Get returns the raw value for a column, or "" when the column is absent.
func (r CandidateRow) Get(column string) string {
	return r[column]
}

// CandidateSet is the result of decoding an import source.
type CandidateSet struct {
	// Headers is the header row in source order.
	Headers []string

	// Rows contains the data rows as header -> value maps.
	Rows []CandidateRow

	// Source names where the rows came from: the sheet name for workbooks,
	// the uploaded file name otherwise. Used in log messages only.
	Source string
}

// Len returns the number of candidate rows.
func (s *CandidateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// NormalizeHeader strips the UTF-8 byte order mark and surrounding
// whitespace from a header cell.
func NormalizeHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}
