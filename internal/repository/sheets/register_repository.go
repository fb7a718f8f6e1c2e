package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/freightdesk/backoffice/internal/config"
)

// Repository defines the persistence operations of the quotation register
// spreadsheet.
type Repository interface {
	AppendRow(ctx context.Context, values []interface{}) error
	ReadRegister(ctx context.Context) ([][]interface{}, error)
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	registerRange string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed register instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		registerRange: cfg.RegisterRange,
		logger:        logger,
	}, nil
}

// AppendRow appends one register entry to the configured range.
func (r *GoogleSheetRepository) AppendRow(ctx context.Context, values []interface{}) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, r.registerRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", r.registerRange, err)
	}

	r.logger.Debug("row appended to register", zap.String("range", r.registerRange))
	return nil
}

// ReadRegister fetches the full register range.
func (r *GoogleSheetRepository) ReadRegister(ctx context.Context) ([][]interface{}, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.registerRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", r.registerRange, err)
	}

	return resp.Values, nil
}
