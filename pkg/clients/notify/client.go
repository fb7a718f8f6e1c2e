package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/config"
	"github.com/freightdesk/backoffice/internal/domain/models"
)

// Client is the notification collaborator. Sends are fire-and-forget: a
// delivery failure is logged and swallowed, never propagated to the caller.
type Client interface {
	Send(ctx context.Context, notice models.Notification)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient builds a notification client using the provided configuration values.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient, logger: logger}
}

// Send posts one transient user-facing notice.
func (c *APIClient) Send(ctx context.Context, notice models.Notification) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(notice).
		Post("/notifications")
	if err != nil {
		c.logger.Warn("notification delivery failed", zap.Error(err))
		return
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		c.logger.Warn("notification rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("type", string(notice.Type)))
	}
}
