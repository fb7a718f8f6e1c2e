package refdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/config"
	"github.com/freightdesk/backoffice/internal/domain/models"
)

// Kind names one reference list served by the ERP.
type Kind string

const (
	KindCurrencies Kind = "currencies"
	KindCarriers   Kind = "carriers"
	KindUnits      Kind = "units"
)

// KnownKinds lists every reference list the back office proxies.
var KnownKinds = []Kind{KindCurrencies, KindCarriers, KindUnits}

// ParseKind resolves a URL segment to a reference list.
func ParseKind(raw string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range KnownKinds {
		if k == kind {
			return k, true
		}
	}
	return "", false
}

// Client serves the flat {code,label} reference lists. Lists are cached for
// the life of the process and refreshed on a schedule; a fetch or shape
// failure degrades to the previous (or empty) list so dependent screens
// stay usable.
type Client interface {
	List(ctx context.Context, kind Kind) ([]models.RefItem, error)
	Refresh(ctx context.Context) error
}

// APIClient is a resty-backed, caching implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	cache map[Kind][]models.RefItem
}

// NewClient builds a reference-data client using the provided configuration values.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		logger:     logger,
		cache:      make(map[Kind][]models.RefItem),
	}
}

type listResponse struct {
	Items []struct {
		Code  string `json:"code"`
		Label string `json:"label"`
	} `json:"items"`
}

// List returns the cached reference list, fetching it on first use.
func (c *APIClient) List(ctx context.Context, kind Kind) ([]models.RefItem, error) {
	c.mu.RLock()
	items, ok := c.cache[kind]
	c.mu.RUnlock()
	if ok {
		return items, nil
	}
	return c.fetch(ctx, kind)
}

// Refresh refetches every known list, keeping stale entries on failure.
func (c *APIClient) Refresh(ctx context.Context) error {
	var firstErr error
	for _, kind := range KnownKinds {
		if _, err := c.fetch(ctx, kind); err != nil {
			c.logger.Warn("reference list refresh failed", zap.String("kind", string(kind)), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (c *APIClient) fetch(ctx context.Context, kind Kind) ([]models.RefItem, error) {
	result := new(listResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		Get(fmt.Sprintf("/refdata/%s", kind))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", kind, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("refdata api error: kind=%s, code=%d", kind, resp.StatusCode())
	}

	// Entries missing a code are dropped rather than failing the whole list.
	items := make([]models.RefItem, 0, len(result.Items))
	for _, item := range result.Items {
		if strings.TrimSpace(item.Code) == "" {
			c.logger.Debug("skip reference entry without code", zap.String("kind", string(kind)))
			continue
		}
		label := item.Label
		if label == "" {
			label = item.Code
		}
		items = append(items, models.RefItem{Code: item.Code, Label: label})
	}

	c.mu.Lock()
	c.cache[kind] = items
	c.mu.Unlock()

	return items, nil
}
