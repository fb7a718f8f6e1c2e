package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/internal/service/booking"
)

// BookingHandler exposes the export-job wizards over HTTP.
type BookingHandler struct {
	svc    *booking.Service
	logger *zap.Logger
}

// NewBookingHandler constructs the HTTP handler adapter.
func NewBookingHandler(svc *booking.Service, logger *zap.Logger) *BookingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingHandler{svc: svc, logger: logger}
}

// Start opens a wizard draft.
func (h *BookingHandler) Start(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	draft, err := h.svc.Start(models.JobMode(strings.ToUpper(req.Mode)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// Draft returns the current wizard state.
func (h *BookingHandler) Draft(c *gin.Context) {
	draft, err := h.svc.Draft(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// ApplyStep validates and stores one wizard step.
func (h *BookingHandler) ApplyStep(c *gin.Context) {
	step, ok := models.ParseWizardStep(c.Param("step"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown wizard step"})
		return
	}

	payload, err := c.GetRawData()
	if err != nil || len(payload) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	draft, err := h.svc.ApplyStep(c.Param("id"), step, json.RawMessage(payload))
	if err != nil {
		if errors.Is(err, booking.ErrDraftNotFound) {
			h.respondError(c, err)
			return
		}
		// Step payload problems are the user's to fix.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}

// Confirm turns a complete draft into a persisted job.
func (h *BookingHandler) Confirm(c *gin.Context) {
	job, err := h.svc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// List serves one page of confirmed bookings.
func (h *BookingHandler) List(c *gin.Context) {
	mode := models.JobMode(strings.ToUpper(c.Query("mode")))
	jobs, total, err := h.svc.List(c.Request.Context(), mode,
		atoiDefault(c.Query("page"), 1), atoiDefault(c.Query("limit"), 25))
	if err != nil {
		h.logger.Error("failed listing jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": total})
}

func (h *BookingHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrIncompleteDraft):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("booking request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}
