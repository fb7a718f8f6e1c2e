package register

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

type fakeSheet struct {
	rows      [][]interface{}
	appendErr error
	readErr   error
}

func (f *fakeSheet) AppendRow(ctx context.Context, values []interface{}) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, values)
	return nil
}

func (f *fakeSheet) ReadRegister(ctx context.Context) ([][]interface{}, error) {
	return f.rows, f.readErr
}

func sampleSubmission() models.QuotationSubmission {
	return models.QuotationSubmission{
		EnquiryID: "ENQ-1",
		Services: []models.ServicePayload{
			{ServiceID: 101, Totals: models.QuotationTotals{NetSell: "62125.00", NetCost: "46593.75"}},
			{ServiceID: 102, Totals: models.QuotationTotals{NetSell: "1000.00", NetCost: "900.00"}},
		},
	}
}

func TestRecordSubmissionAppendsAggregateRow(t *testing.T) {
	sheet := &fakeSheet{}
	svc := NewService(sheet, nil)

	svc.RecordSubmission(context.Background(), sampleSubmission(), "QTN-001")

	require.Len(t, sheet.rows, 1)
	row := sheet.rows[0]
	require.Len(t, row, 7)
	assert.Equal(t, "QTN-001", row[1])
	assert.Equal(t, "ENQ-1", row[2])
	assert.Equal(t, 2, row[3])
	assert.Equal(t, "63125.00", row[4])
	assert.Equal(t, "47493.75", row[5])
	assert.Equal(t, "15631.25", row[6])
}

func TestRecordSubmissionSwallowsFailures(t *testing.T) {
	sheet := &fakeSheet{appendErr: errors.New("sheet unavailable")}
	svc := NewService(sheet, nil)

	assert.NotPanics(t, func() {
		svc.RecordSubmission(context.Background(), sampleSubmission(), "QTN-001")
	})
}

func TestRecordSubmissionNilRepoIsNoop(t *testing.T) {
	svc := NewService(nil, nil)
	assert.NotPanics(t, func() {
		svc.RecordSubmission(context.Background(), sampleSubmission(), "QTN-001")
	})
}

func TestWeeklySummaryCountsTrailingWeek(t *testing.T) {
	now := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	sheet := &fakeSheet{rows: [][]interface{}{
		{"2026-08-25", "QTN-001", "ENQ-1", 2, "63125.00", "47493.75", "15631.25"},
		{"2026-08-27", "QTN-002", "ENQ-2", 1, "1000.00", "900.00", "100.00"},
		{"2026-08-01", "QTN-000", "ENQ-0", 1, "500.00", "400.00", "100.00"},
		{"garbage"},
	}}
	svc := NewService(sheet, nil)

	summary, err := svc.WeeklySummary(context.Background(), now)
	require.NoError(t, err)
	assert.Contains(t, summary, "2 submission(s)")
	assert.Contains(t, summary, "15731.25")
}

func TestWeeklySummaryEmptyWeek(t *testing.T) {
	svc := NewService(&fakeSheet{}, nil)
	summary, err := svc.WeeklySummary(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Contains(t, summary, "no submissions")
}

func TestWeeklySummaryWithoutSheet(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.WeeklySummary(context.Background(), time.Now())
	assert.Error(t, err)
}
