// =============================================================================
// Transfer Pricing - CSV Codec
// =============================================================================
//
// This module converts between the transaction store and CSV text.
//
// ENCODING:
//   - UTF-8 with a leading byte order mark so spreadsheet tools detect the
//     encoding of non-Latin department and service names
//   - Header row: canonical column order, then any extra import columns
//   - Decimals are written as carried by the value (100, 12.5, 0.333)
//   - Quoting and escaping follow RFC 4180 (encoding/csv)
//
// DECODING:
//   - An optional byte order mark is stripped
//   - The first row is the header; data rows become header -> value maps
//   - Quotes are strict and every row must have the header's field count;
//     any violation is returned as a *ParseError
//   - No type coercion and no schema check: that is the store's job
//
// =============================================================================

package csvcodec

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/ginjaninja78/transfer-pricing/internal/ledger"
	"github.com/ginjaninja78/transfer-pricing/internal/schema"
)

// ContentType is the MIME type of encoded output.
const ContentType = "text/csv"

const byteOrderMark = '\ufeff'

// ParseError reports malformed CSV input.
type ParseError struct {
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed: %v", e.Err)
}

// Unwrap returns the underlying csv error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ENCODING
// =============================================================================

// EncodeStore writes every record of the store, in store order.
func EncodeStore(w io.Writer, store *ledger.Store) error {
	return Encode(w, store.Columns(), store.All())
}

// Encode writes a BOM-prefixed CSV document with the given header.
// An empty record list still produces the header row.
func Encode(w io.Writer, columns []string, records []ledger.Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteRune(byteOrderMark); err != nil {
		return fmt.Errorf("failed to write byte order mark: %w", err)
	}

	cw := csv.NewWriter(bw)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range records {
		if err := cw.Write(rec.Values(columns)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return bw.Flush()
}

// =============================================================================
// DECODING
// =============================================================================

// Decode parses CSV text into candidate rows.
//
// RETURNS:
//   - The header and data rows. Values are untouched; headers are trimmed.
//   - A *ParseError on malformed or empty input.
func Decode(r io.Reader) (*schema.CandidateSet, error) {
	br := bufio.NewReader(r)
	if err := skipByteOrderMark(br); err != nil {
		return nil, &ParseError{Err: err}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = 0 // the header fixes the field count
	cr.LazyQuotes = false

	all, err := cr.ReadAll()
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(all) == 0 {
		return nil, &ParseError{Err: errors.New("no header row")}
	}

	headers := make([]string, len(all[0]))
	for i, h := range all[0] {
		headers[i] = schema.NormalizeHeader(h)
	}

	set := &schema.CandidateSet{
		Headers: headers,
		Rows:    make([]schema.CandidateRow, 0, len(all)-1),
	}
	for _, raw := range all[1:] {
		row := make(schema.CandidateRow, len(headers))
		for i, h := range headers {
			row[h] = raw[i]
		}
		set.Rows = append(set.Rows, row)
	}
	return set, nil
}

func skipByteOrderMark(br *bufio.Reader) error {
	r, _, err := br.ReadRune()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if r != byteOrderMark {
		return br.UnreadRune()
	}
	return nil
}
