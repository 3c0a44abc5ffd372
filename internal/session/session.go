// =============================================================================
// Transfer Pricing - Session
// =============================================================================
//
// A Session owns one transaction store for the lifetime of one user's
// working session and exposes the operations a host UI calls:
//
//   AddRecord     - manual entry from the form
//   ListRecords   - the full, unfiltered record list
//   ShowCrosstab  - the pivot of the current records
//   Import        - CSV or XLSX upload, appended after existing records
//   Export        - CSV download of the whole store
//   ExportWorkbook- XLSX download (transactions + crosstab)
//   Suggest       - form suggestions for the selection fields
//
// Sessions share nothing: two sessions never see each other's records.
//
// =============================================================================

package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/transfer-pricing/internal/config"
	"github.com/ginjaninja78/transfer-pricing/internal/csvcodec"
	"github.com/ginjaninja78/transfer-pricing/internal/ledger"
	"github.com/ginjaninja78/transfer-pricing/internal/pivot"
	"github.com/ginjaninja78/transfer-pricing/internal/schema"
	"github.com/ginjaninja78/transfer-pricing/internal/workbook"
	"github.com/ginjaninja78/transfer-pricing/pkg/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Session holds one user's store and the collaborators its commands need.
type Session struct {
	// ID identifies the session in log lines.
	ID string

	store *ledger.Store
	cfg   *config.Config
	sink  FileSink
	log   zerolog.Logger
	now   func() time.Time
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the session logger. The session id is added to it.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithClock replaces time.Now, e.g. for export file names in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New starts a session with an empty store.
func New(cfg *config.Config, sink FileSink, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Session{
		ID:   uuid.NewString(),
		cfg:  cfg,
		sink: sink,
		log:  zerolog.Nop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.With().Str("session", s.ID).Logger()
	s.store = ledger.New(ledger.Options{
		Placeholders: ledger.Placeholders{
			Department: cfg.Placeholders.Department,
			Service:    cfg.Placeholders.Service,
		},
		Now: s.now,
	})
	return s
}

// Store returns the session's store.
func (s *Session) Store() *ledger.Store {
	return s.store
}

// =============================================================================
// ADD RECORD
// =============================================================================

// Form is the raw input of the entry form. Numbers and the date are text as
// typed; blank price or quantity means 0 and a blank date means today.
type Form struct {
	Date         string
	ProviderDept string
	ServiceName  string
	UnitPrice    string
	ReceiverDept string
	Quantity     string
}

// ParseForm converts form text into a store entry.
// Unparseable numbers or dates are reported as *ledger.ValidationError.
func ParseForm(f Form) (ledger.Entry, error) {
	e := ledger.Entry{
		ProviderDept: strings.TrimSpace(f.ProviderDept),
		ServiceName:  strings.TrimSpace(f.ServiceName),
		ReceiverDept: strings.TrimSpace(f.ReceiverDept),
	}

	if d := strings.TrimSpace(f.Date); d != "" {
		date, err := time.Parse(schema.DateLayout, d)
		if err != nil {
			return ledger.Entry{}, &ledger.ValidationError{Field: schema.ColDate, Value: f.Date, Message: "not a date (YYYY-MM-DD)"}
		}
		e.Date = date
	}

	var err error
	if e.UnitPrice, err = parseAmount(schema.ColUnitPrice, f.UnitPrice); err != nil {
		return ledger.Entry{}, err
	}
	if e.Quantity, err = parseAmount(schema.ColQuantity, f.Quantity); err != nil {
		return ledger.Entry{}, err
	}
	return e, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, &ledger.ValidationError{Field: field, Value: raw, Message: "not a number"}
	}
	return d, nil
}

// AddRecord validates the form and appends one record.
func (s *Session) AddRecord(f Form) (ledger.Record, error) {
	entry, err := ParseForm(f)
	if err != nil {
		s.log.Warn().Err(err).Msg("entry rejected")
		return ledger.Record{}, err
	}

	rec, err := s.store.AppendOne(entry)
	if err != nil {
		s.log.Warn().Err(err).Msg("entry rejected")
		return ledger.Record{}, err
	}

	s.log.Debug().
		Str("provider", rec.ProviderDept).
		Str("service", rec.ServiceName).
		Str("receiver", rec.ReceiverDept).
		Str("total", rec.TotalAmount.String()).
		Int("records", s.store.Len()).
		Msg("record added")
	return rec, nil
}

// =============================================================================
// READ VIEWS
// =============================================================================

// ListRecords returns every record in insertion order.
func (s *Session) ListRecords() []ledger.Record {
	return s.store.All()
}

// ShowCrosstab computes the crosstab of the current records.
func (s *Session) ShowCrosstab(measure pivot.Measure) *pivot.Crosstab {
	ct := pivot.FromStore(s.store, measure)
	s.log.Debug().
		Str("measure", string(ct.Measure)).
		Int("rows", len(ct.Rows)).
		Int("columns", len(ct.Columns)).
		Msg("crosstab computed")
	return ct
}

// =============================================================================
// IMPORT / EXPORT
// =============================================================================

// Import decodes an uploaded file and appends its rows.
// Files named *.xlsx are read as workbooks, everything else as CSV.
//
// RETURNS:
//   - The number of imported rows.
//   - A *csvcodec.ParseError (or workbook parse error) for unreadable input,
//     a *ledger.SchemaError for an invalid header or cell. The store is
//     unchanged on error.
func (s *Session) Import(r io.Reader, name string) (int, error) {
	var (
		set *schema.CandidateSet
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		set, err = workbook.Read(r)
	} else {
		set, err = csvcodec.Decode(r)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("import rejected")
		return 0, err
	}
	if set.Source == "" {
		set.Source = name
	}

	n, err := s.store.AppendMany(set)
	if err != nil {
		s.log.Warn().Err(err).Str("file", name).Str("source", set.Source).Msg("import rejected")
		return 0, err
	}

	s.log.Info().
		Str("file", name).
		Str("source", set.Source).
		Int("rows", n).
		Int("records", s.store.Len()).
		Msg("import accepted")
	return n, nil
}

// Export writes the whole store as CSV through the file sink.
// The file name follows the configured pattern, e.g.
// transfer_pricing_2026-10-16.csv.
func (s *Session) Export() (string, error) {
	var buf bytes.Buffer
	if err := csvcodec.EncodeStore(&buf, s.store); err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}
	return s.write(utils.GenerateExportFileName(s.cfg.ExportFileFormat, ".csv", s.now()), csvcodec.ContentType, buf.Bytes())
}

// ExportWorkbook writes the store and its quantity crosstab as XLSX.
func (s *Session) ExportWorkbook() (string, error) {
	var buf bytes.Buffer
	if err := workbook.WriteStore(&buf, s.store); err != nil {
		return "", fmt.Errorf("failed to build workbook: %w", err)
	}
	return s.write(utils.GenerateExportFileName(s.cfg.ExportFileFormat, ".xlsx", s.now()), workbook.ContentType, buf.Bytes())
}

func (s *Session) write(name, contentType string, data []byte) (string, error) {
	if s.sink == nil {
		return "", errors.New("no export destination configured")
	}
	path, err := s.sink.WriteFile(name, data)
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	s.log.Info().
		Str("file", path).
		Str("content_type", contentType).
		Int("records", s.store.Len()).
		Int("bytes", len(data)).
		Msg("export written")
	return path, nil
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

// Suggest returns the configured choices for a selection field that contain
// text, ignoring case. Blank text returns every choice.
// field is "provider", "service" or "receiver".
func (s *Session) Suggest(field, text string) ([]string, error) {
	var choices []string
	switch strings.ToLower(field) {
	case "provider", "providerdept":
		choices = s.cfg.Suggestions.Providers
	case "service", "servicename":
		choices = s.cfg.Suggestions.Services
	case "receiver", "receiverdept":
		choices = s.cfg.Suggestions.Receivers
	default:
		return nil, fmt.Errorf("unknown field '%s' (use provider, service or receiver)", field)
	}

	needle := strings.ToLower(strings.TrimSpace(text))
	out := []string{}
	for _, c := range choices {
		if strings.Contains(strings.ToLower(c), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}
