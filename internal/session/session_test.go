package session_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/transfer-pricing/internal/config"
	"github.com/ginjaninja78/transfer-pricing/internal/csvcodec"
	"github.com/ginjaninja78/transfer-pricing/internal/ledger"
	"github.com/ginjaninja78/transfer-pricing/internal/pivot"
	"github.com/ginjaninja78/transfer-pricing/internal/session"
	mock_session "github.com/ginjaninja78/transfer-pricing/internal/session/mocks"
	"github.com/ginjaninja78/transfer-pricing/internal/workbook"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func newSession(t *testing.T, sink session.FileSink) *session.Session {
	t.Helper()
	return session.New(config.Default(), sink, session.WithClock(func() time.Time { return fixedNow }))
}

func validForm() session.Form {
	return session.Form{
		ProviderDept: "IT แผนก",
		ServiceName:  "บริการ IT Support",
		UnitPrice:    "1500",
		ReceiverDept: "สาขา A",
		Quantity:     "2",
	}
}

func TestNewSessionsAreIsolated(t *testing.T) {
	a := newSession(t, nil)
	b := newSession(t, nil)
	assert.NotEqual(t, a.ID, b.ID)

	_, err := a.AddRecord(validForm())
	require.NoError(t, err)

	assert.Len(t, a.ListRecords(), 1)
	assert.Empty(t, b.ListRecords())
}

func TestAddRecord(t *testing.T) {
	s := newSession(t, nil)

	rec, err := s.AddRecord(validForm())
	require.NoError(t, err)
	assert.True(t, rec.TotalAmount.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "2026-10-16", rec.Date.Format("2006-01-02"))

	form := validForm()
	form.Date = "2026-01-31"
	form.Quantity = ""
	rec, err = s.AddRecord(form)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-31", rec.Date.Format("2006-01-02"))
	assert.True(t, rec.Quantity.IsZero())
	assert.True(t, rec.TotalAmount.IsZero())

	assert.Equal(t, 2, s.Store().Len())
}

func TestAddRecordRejectsIncompleteForm(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*session.Form)
		field string
	}{
		{"placeholder provider", func(f *session.Form) { f.ProviderDept = "เลือกหน่วยงาน" }, "providerDept"},
		{"placeholder service", func(f *session.Form) { f.ServiceName = "เลือกบริการ" }, "serviceName"},
		{"blank receiver", func(f *session.Form) { f.ReceiverDept = "  " }, "receiverDept"},
		{"bad price", func(f *session.Form) { f.UnitPrice = "abc" }, "unitPrice"},
		{"bad quantity", func(f *session.Form) { f.Quantity = "1,5" }, "quantity"},
		{"bad date", func(f *session.Form) { f.Date = "16/10/2026" }, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, nil)
			form := validForm()
			tt.edit(&form)

			_, err := s.AddRecord(form)
			var vErr *ledger.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, 0, s.Store().Len())
		})
	}
}

func TestShowCrosstab(t *testing.T) {
	s := newSession(t, nil)
	assert.True(t, s.ShowCrosstab(pivot.MeasureQuantity).IsEmpty())

	_, err := s.AddRecord(validForm())
	require.NoError(t, err)
	form := validForm()
	form.ReceiverDept = "สำนักงานใหญ่"
	form.Quantity = "3"
	_, err = s.AddRecord(form)
	require.NoError(t, err)

	ct := s.ShowCrosstab(pivot.MeasureQuantity)
	require.Len(t, ct.Rows, 1)
	assert.Equal(t, []string{"สาขา A", "สำนักงานใหญ่"}, ct.Columns)
	assert.True(t, ct.GrandTotal().Equal(decimal.NewFromInt(5)))

	amounts := s.ShowCrosstab(pivot.MeasureTotalAmount)
	assert.True(t, amounts.GrandTotal().Equal(decimal.NewFromInt(7500)))
}

func TestImportCSV(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.AddRecord(validForm())
	require.NoError(t, err)

	data := "date,providerDept,serviceName,unitPrice,receiverDept,quantity,totalAmount\n" +
		"2026-10-01,HR แผนก,บริการจัดการทรัพยากรบุคคล,500,สาขา B,4,2000\n" +
		"2026-10-02,HR แผนก,บริการจัดการทรัพยากรบุคคล,500,สาขา C,1,999\n"

	n, err := s.Import(strings.NewReader(data), "upload.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records := s.ListRecords()
	require.Len(t, records, 3)
	assert.Equal(t, "IT แผนก", records[0].ProviderDept)
	assert.Equal(t, "สาขา C", records[2].ReceiverDept)
	assert.True(t, records[2].TotalAmount.Equal(decimal.NewFromInt(999)))
}

func TestImportRejectsLeaveStoreUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		check func(t *testing.T, err error)
	}{
		{
			name: "missing column",
			data: "date,providerDept,serviceName,unitPrice,receiverDept,quantity\n2026-10-01,a,b,1,c,1\n",
			check: func(t *testing.T, err error) {
				var sErr *ledger.SchemaError
				require.ErrorAs(t, err, &sErr)
				assert.Equal(t, []string{"totalAmount"}, sErr.Missing)
			},
		},
		{
			name: "bad cell",
			data: "date,providerDept,serviceName,unitPrice,receiverDept,quantity,totalAmount\n2026-10-01,a,b,x,c,1,1\n",
			check: func(t *testing.T, err error) {
				var sErr *ledger.SchemaError
				require.ErrorAs(t, err, &sErr)
				assert.Equal(t, 1, sErr.Row)
				assert.Equal(t, "unitPrice", sErr.Column)
			},
		},
		{
			name: "malformed csv",
			data: "date,providerDept\n\"unterminated,x\n",
			check: func(t *testing.T, err error) {
				var pErr *csvcodec.ParseError
				require.ErrorAs(t, err, &pErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, nil)
			_, err := s.AddRecord(validForm())
			require.NoError(t, err)

			n, err := s.Import(strings.NewReader(tt.data), "upload.csv")
			assert.Equal(t, 0, n)
			tt.check(t, err)
			assert.Equal(t, 1, s.Store().Len())
		})
	}
}

func TestImportWorkbook(t *testing.T) {
	src := newSession(t, nil)
	_, err := src.AddRecord(validForm())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, workbook.WriteStore(&buf, src.Store()))

	dst := newSession(t, nil)
	n, err := dst.Import(&buf, "report.XLSX")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, src.ListRecords()[0].Equal(dst.ListRecords()[0]))
}

func TestExportWritesCSVThroughSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mock_session.NewMockFileSink(ctrl)
	s := newSession(t, sink)

	_, err := s.AddRecord(validForm())
	require.NoError(t, err)

	var written []byte
	sink.EXPECT().
		WriteFile("transfer_pricing_2026-10-16.csv", gomock.Any()).
		DoAndReturn(func(name string, data []byte) (string, error) {
			written = data
			return "exports/" + name, nil
		})

	path, err := s.Export()
	require.NoError(t, err)
	assert.Equal(t, "exports/transfer_pricing_2026-10-16.csv", path)

	restored, err := csvcodec.Decode(bytes.NewReader(written))
	require.NoError(t, err)
	require.Equal(t, 1, restored.Len())
	assert.Equal(t, "3000", restored.Rows[0]["totalAmount"])
}

func TestExportEmptyStoreWritesHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mock_session.NewMockFileSink(ctrl)
	s := newSession(t, sink)

	sink.EXPECT().
		WriteFile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(name string, data []byte) (string, error) {
			assert.Equal(t, "\ufeffdate,providerDept,serviceName,unitPrice,receiverDept,quantity,totalAmount\n", string(data))
			return name, nil
		})

	_, err := s.Export()
	require.NoError(t, err)
}

func TestExportWorkbookUsesXLSXName(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mock_session.NewMockFileSink(ctrl)
	s := newSession(t, sink)

	sink.EXPECT().
		WriteFile("transfer_pricing_2026-10-16.xlsx", gomock.Any()).
		Return("exports/transfer_pricing_2026-10-16.xlsx", nil)

	path, err := s.ExportWorkbook()
	require.NoError(t, err)
	assert.Equal(t, "exports/transfer_pricing_2026-10-16.xlsx", path)
}

func TestExportErrors(t *testing.T) {
	_, err := newSession(t, nil).Export()
	require.Error(t, err)

	ctrl := gomock.NewController(t)
	sink := mock_session.NewMockFileSink(ctrl)
	sink.EXPECT().WriteFile(gomock.Any(), gomock.Any()).Return("", errors.New("disk full"))

	_, err = newSession(t, sink).Export()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSuggest(t *testing.T) {
	s := newSession(t, nil)

	got, err := s.Suggest("provider", "it")
	require.NoError(t, err)
	assert.Equal(t, []string{"IT แผนก"}, got)

	got, err = s.Suggest("Receiver", "สาขา")
	require.NoError(t, err)
	assert.Equal(t, []string{"สาขา A", "สาขา B", "สาขา C"}, got)

	got, err = s.Suggest("serviceName", "")
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = s.Suggest("service", "nothing matches")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = s.Suggest("date", "")
	require.Error(t, err)
}

func TestImportAndExportAreLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mock_session.NewMockFileSink(ctrl)
	sink.EXPECT().WriteFile(gomock.Any(), gomock.Any()).Return("exports/out.csv", nil)

	var logs bytes.Buffer
	s := session.New(config.Default(), sink,
		session.WithClock(func() time.Time { return fixedNow }),
		session.WithLogger(zerolog.New(&logs)))

	data := "date,providerDept,serviceName,unitPrice,receiverDept,quantity,totalAmount\n" +
		"2026-10-01,HR,Payroll,500,HQ,4,2000\n"
	_, err := s.Import(strings.NewReader(data), "upload.csv")
	require.NoError(t, err)
	_, err = s.Export()
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, `"source":"upload.csv"`)
	assert.Contains(t, out, `"content_type":"text/csv"`)
	assert.Contains(t, out, `"session":"`+s.ID+`"`)
}
