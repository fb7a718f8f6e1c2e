package erp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/freightdesk/backoffice/internal/config"
	"github.com/freightdesk/backoffice/internal/domain/models"
)

// Client is the persistence collaborator: it accepts one aggregated
// submission covering every service of an enquiry and either creates a new
// quotation or updates an existing one.
type Client interface {
	CreateQuotation(ctx context.Context, submission models.QuotationSubmission) (*SubmitAck, error)
	UpdateQuotation(ctx context.Context, quotationID string, submission models.QuotationSubmission) (*SubmitAck, error)
}

// SubmitAck mirrors the successful response from the ERP.
type SubmitAck struct {
	QuotationID string `json:"quotation_id"`
	Message     string `json:"message"`
}

// apiError represents an ERP error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an ERP quotation client using the provided configuration values.
func NewClient(cfg config.UpstreamConfig) *APIClient {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// CreateQuotation posts a new aggregate quotation.
func (c *APIClient) CreateQuotation(ctx context.Context, submission models.QuotationSubmission) (*SubmitAck, error) {
	return c.send(ctx, resty.MethodPost, "/quotations", submission)
}

// UpdateQuotation replaces an existing aggregate quotation.
func (c *APIClient) UpdateQuotation(ctx context.Context, quotationID string, submission models.QuotationSubmission) (*SubmitAck, error) {
	return c.send(ctx, resty.MethodPut, fmt.Sprintf("/quotations/%s", quotationID), submission)
}

func (c *APIClient) send(ctx context.Context, method, path string, submission models.QuotationSubmission) (*SubmitAck, error) {
	result := new(SubmitAck)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(submission).
		SetResult(result).
		SetError(apiErr).
		Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("submit quotation: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Error.Message
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return nil, fmt.Errorf("erp api error: code=%d, message=%s", code, message)
	}

	return result, nil
}
