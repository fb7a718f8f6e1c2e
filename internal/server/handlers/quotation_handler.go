package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/internal/service/quotation"
)

// QuotationHandler exposes the drafting engine over HTTP.
type QuotationHandler struct {
	svc    *quotation.Service
	logger *zap.Logger
}

// NewQuotationHandler constructs the HTTP handler adapter.
func NewQuotationHandler(svc *quotation.Service, logger *zap.Logger) *QuotationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotationHandler{svc: svc, logger: logger}
}

// Open starts a drafting session for an enquiry.
func (h *QuotationHandler) Open(c *gin.Context) {
	var req quotation.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid open payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := h.svc.Open(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("failed opening drafting session", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, view)
}

// View returns the current screen state of a session.
func (h *QuotationHandler) View(c *gin.Context) {
	view, err := h.svc.View(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Select switches the active service of a session.
func (h *QuotationHandler) Select(c *gin.Context) {
	var req struct {
		ServiceID int `json:"service_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := h.svc.Select(c.Request.Context(), c.Param("id"), req.ServiceID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateForm applies field edits to the live form.
func (h *QuotationHandler) UpdateForm(c *gin.Context) {
	var req quotation.FormUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := h.svc.UpdateForm(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ApplyTariff hydrates the live charge list from a published rate card.
func (h *QuotationHandler) ApplyTariff(c *gin.Context) {
	var req struct {
		ServiceType   string `json:"service_type" binding:"required"`
		PortOfLoad    string `json:"port_of_load" binding:"required"`
		PortOfDisch   string `json:"port_of_discharge" binding:"required"`
		ContainerType string `json:"container_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := h.svc.ApplyTariff(c.Request.Context(), c.Param("id"), models.TariffLookup{
		ServiceType:   models.ParseServiceType(req.ServiceType),
		PortOfLoad:    req.PortOfLoad,
		PortOfDisch:   req.PortOfDisch,
		ContainerType: req.ContainerType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ImportChat hydrates the live charge list from the chatbot hand-off.
func (h *QuotationHandler) ImportChat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := h.svc.ImportChat(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Submit aggregates every drafted service into one ERP submission. Without
// confirm, unfilled services produce a 409 carrying their indexes so the
// client can offer "fix now" vs "submit anyway".
func (h *QuotationHandler) Submit(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), c.Param("id"), req.Confirm)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if !result.Submitted {
		c.JSON(http.StatusConflict, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reset discards a session and all of its drafts.
func (h *QuotationHandler) Reset(c *gin.Context) {
	if err := h.svc.Reset(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuotationHandler) respondError(c *gin.Context, err error) {
	if verr, ok := quotation.AsValidationError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"field_errors": verr.Fields})
		return
	}

	switch {
	case errors.Is(err, quotation.ErrSessionNotFound), errors.Is(err, quotation.ErrNoTariff):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, quotation.ErrUnknownService):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, quotation.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("quotation request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
