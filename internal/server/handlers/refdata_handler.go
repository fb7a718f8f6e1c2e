package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/pkg/clients/refdata"
)

// RefDataHandler proxies the cached reference lists to form screens.
type RefDataHandler struct {
	client refdata.Client
	logger *zap.Logger
}

// NewRefDataHandler constructs the HTTP handler adapter.
func NewRefDataHandler(client refdata.Client, logger *zap.Logger) *RefDataHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefDataHandler{client: client, logger: logger}
}

// List serves one reference list. When the upstream fetch fails the lists
// degrade to empty so select inputs render instead of erroring out.
func (h *RefDataHandler) List(c *gin.Context) {
	kind, ok := refdata.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown reference list"})
		return
	}

	items, err := h.client.List(c.Request.Context(), kind)
	if err != nil {
		h.logger.Warn("reference list unavailable", zap.String("kind", string(kind)), zap.Error(err))
		items = nil
	}
	if items == nil {
		items = []models.RefItem{}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
