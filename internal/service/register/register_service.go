package register

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
	repo "github.com/freightdesk/backoffice/internal/repository/sheets"
	"github.com/freightdesk/backoffice/internal/service/quotation"
)

const dateLayout = "2006-01-02"

// Service appends every submitted quotation to the register spreadsheet
// and produces the periodic summary. A nil repository disables both, so
// the engine works without a configured sheet.
type Service struct {
	repo   repo.Repository
	logger *zap.Logger
}

// NewService wires a new register service instance.
func NewService(repository repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, logger: logger}
}

// RecordSubmission appends one row per submitted quotation. Failures are
// logged, never surfaced: the register is bookkeeping, not the submission
// path.
func (s *Service) RecordSubmission(ctx context.Context, submission models.QuotationSubmission, quotationID string) {
	if s.repo == nil {
		return
	}

	netSell := decimal.Zero
	netCost := decimal.Zero
	for _, svc := range submission.Services {
		netSell = netSell.Add(parseAmount(svc.Totals.NetSell))
		netCost = netCost.Add(parseAmount(svc.Totals.NetCost))
	}

	row := []interface{}{
		time.Now().Format(dateLayout),
		quotationID,
		submission.EnquiryID,
		len(submission.Services),
		netSell.StringFixed(2),
		netCost.StringFixed(2),
		netSell.Sub(netCost).StringFixed(2),
	}

	if err := s.repo.AppendRow(ctx, row); err != nil {
		s.logger.Error("failed to append quotation to register",
			zap.String("quotation_id", quotationID),
			zap.Error(err))
		return
	}
	s.logger.Info("quotation recorded in register", zap.String("quotation_id", quotationID))
}

// WeeklySummary aggregates the register rows of the trailing seven days
// into a short human-readable digest.
func (s *Service) WeeklySummary(ctx context.Context, now time.Time) (string, error) {
	if s.repo == nil {
		return "", fmt.Errorf("register export is not configured")
	}

	rows, err := s.repo.ReadRegister(ctx)
	if err != nil {
		return "", fmt.Errorf("load register: %w", err)
	}

	start := now.AddDate(0, 0, -7)
	var count int
	profit := decimal.Zero

	for _, row := range rows {
		if len(row) < 7 {
			continue
		}
		date, err := parseDate(row[0])
		if err != nil {
			s.logger.Debug("skip register row with invalid date", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		if date.Before(start) || date.After(now) {
			continue
		}
		count++
		profit = profit.Add(parseAmount(fmt.Sprint(row[6])))
	}

	if count == 0 {
		return fmt.Sprintf("Quotation register (%s-%s): no submissions.", start.Format(dateLayout), now.Format(dateLayout)), nil
	}
	return fmt.Sprintf("Quotation register (%s-%s): %d submission(s), booked profit %s.",
		start.Format(dateLayout), now.Format(dateLayout), count, profit.StringFixed(2)), nil
}

// Ensure the service satisfies the engine's optional register hook.
var _ quotation.Register = (*Service)(nil)

func parseAmount(raw string) decimal.Decimal {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func parseDate(value interface{}) (time.Time, error) {
	raw, ok := value.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("date cell is not a string")
	}
	return time.Parse(dateLayout, raw)
}
