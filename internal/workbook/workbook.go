// =============================================================================
// Transfer Pricing - Workbook Export / Import
// =============================================================================
//
// This module writes the store and its crosstab to an XLSX workbook and reads
// transactions back from one.
//
// WORKBOOK LAYOUT:
//
//   Sheet "Transactions"
//   | date       | providerDept | serviceName | unitPrice | receiverDept | quantity | totalAmount | <extra...> |
//   | 2026-10-16 | IT แผนก      | IT Support  | 100       | สาขา A       | 2        | 200         |            |
//
//   Sheet "Crosstab"
//   | providerDept | serviceName | unitPrice | <receiver 1> | <receiver 2> | ... | total |
//   | IT แผนก      | IT Support  | 100       | 2            | 0            | ... | 2     |
//   | total        |             |           | 2            | 0            | ... | 2     |
//
// Numbers are stored as numeric cells, or as text when they carry more
// digits than a float64 keeps. Dates are stored as text (YYYY-MM-DD). Both read back
// unchanged.
//
// READING:
//   Only the first sheet is read. Its first row is the header and every
//   following non-empty row becomes a candidate row for the store.
//
// =============================================================================

package workbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/transfer-pricing/internal/ledger"
	"github.com/ginjaninja78/transfer-pricing/internal/pivot"
	"github.com/ginjaninja78/transfer-pricing/internal/schema"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	TransactionsSheet = "Transactions"
	CrosstabSheet     = "Crosstab"
)

// ContentType is the MIME type of a written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const totalLabel = "total"

// =============================================================================
// WRITING
// =============================================================================

// WriteStore writes the store's records and their quantity crosstab.
func WriteStore(w io.Writer, store *ledger.Store) error {
	records := store.All()
	return Write(w, store.Columns(), records, pivot.Compute(records, pivot.MeasureQuantity))
}

// Write produces a workbook with a transactions sheet and a crosstab sheet.
//
// PARAMETERS:
//   - w: Destination of the .xlsx bytes.
//   - columns: Header of the transactions sheet.
//   - records: Rows of the transactions sheet, in order.
//   - ct: The crosstab to render. An empty crosstab yields a header-only sheet.
func Write(w io.Writer, columns []string, records []ledger.Record, ct *pivot.Crosstab) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), TransactionsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(CrosstabSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeTransactions(f, columns, records, headerStyle); err != nil {
		return err
	}
	if err := writeCrosstab(f, ct, headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTransactions(f *excelize.File, columns []string, records []ledger.Record, headerStyle int) error {
	if err := setRow(f, TransactionsSheet, 1, stringsToCells(columns)); err != nil {
		return err
	}
	if err := f.SetRowStyle(TransactionsSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, rec := range records {
		cells := make([]interface{}, len(columns))
		for j, col := range columns {
			switch col {
			case schema.ColUnitPrice:
				cells[j] = numeric(rec.UnitPrice)
			case schema.ColQuantity:
				cells[j] = numeric(rec.Quantity)
			case schema.ColTotalAmount:
				cells[j] = numeric(rec.TotalAmount)
			default:
				cells[j] = rec.Field(col)
			}
		}
		if err := setRow(f, TransactionsSheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeCrosstab(f *excelize.File, ct *pivot.Crosstab, headerStyle int) error {
	header := []interface{}{schema.ColProviderDept, schema.ColServiceName, schema.ColUnitPrice}
	for _, col := range ct.Columns {
		header = append(header, col)
	}
	header = append(header, totalLabel)

	if err := setRow(f, CrosstabSheet, 1, header); err != nil {
		return err
	}
	if err := f.SetRowStyle(CrosstabSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if ct.IsEmpty() {
		return nil
	}

	rowTotals := ct.RowTotals()
	for i, key := range ct.Rows {
		cells := []interface{}{key.ProviderDept, key.ServiceName, numeric(key.UnitPrice)}
		for _, v := range ct.Cells[i] {
			cells = append(cells, numeric(v))
		}
		cells = append(cells, numeric(rowTotals[i]))
		if err := setRow(f, CrosstabSheet, i+2, cells); err != nil {
			return err
		}
	}

	footer := []interface{}{totalLabel, "", ""}
	for _, v := range ct.ColumnTotals() {
		footer = append(footer, numeric(v))
	}
	footer = append(footer, numeric(ct.GrandTotal()))
	return setRow(f, CrosstabSheet, len(ct.Rows)+2, footer)
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func stringsToCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// numeric converts a decimal to a spreadsheet number when the number's
// shortest text form is the same value. Longer values, beyond float64
// precision, are written as text so they read back unchanged.
func numeric(d decimal.Decimal) interface{} {
	f := d.InexactFloat64()
	if !decimal.NewFromFloat(f).Equal(d) {
		return d.String()
	}
	return f
}

// =============================================================================
// READING
// =============================================================================

// Read loads the first sheet of a workbook as candidate rows.
//
// RETURNS:
//   - The header and data rows, values as stored in the cells.
//   - An error (prefixed "parse failed") if the workbook cannot be opened
//     or has no header row.
func Read(r io.Reader) (*schema.CandidateSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("parse failed: workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	if len(rows) == 0 || isRowEmpty(rows[0]) {
		return nil, fmt.Errorf("parse failed: sheet '%s' has no header row", sheetName)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = schema.NormalizeHeader(h)
	}

	set := &schema.CandidateSet{
		Headers: headers,
		Rows:    make([]schema.CandidateRow, 0, len(rows)-1),
		Source:  sheetName,
	}
	for _, raw := range rows[1:] {
		if isRowEmpty(raw) {
			continue
		}
		row := make(schema.CandidateRow, len(headers))
		for i, h := range headers {
			// GetRows drops trailing empty cells.
			if i < len(raw) {
				row[h] = raw[i]
			} else {
				row[h] = ""
			}
		}
		set.Rows = append(set.Rows, row)
	}
	return set, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
