package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/internal/repository/mongodb"
	"github.com/freightdesk/backoffice/internal/service/masterdata"
)

// MasterDataHandler exposes the catalogue CRUD screens over HTTP.
type MasterDataHandler struct {
	svc    *masterdata.Service
	logger *zap.Logger
}

// NewMasterDataHandler constructs the HTTP handler adapter.
func NewMasterDataHandler(svc *masterdata.Service, logger *zap.Logger) *MasterDataHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MasterDataHandler{svc: svc, logger: logger}
}

func (h *MasterDataHandler) kind(c *gin.Context) (models.MasterKind, bool) {
	kind, ok := models.ParseMasterKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown catalogue"})
		return "", false
	}
	return kind, true
}

// List serves one page of a catalogue with search and status filters.
func (h *MasterDataHandler) List(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	filter := models.MasterListFilter{
		Search: c.Query("q"),
		Page:   atoiDefault(c.Query("page"), 1),
		Limit:  atoiDefault(c.Query("limit"), 25),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	page, err := h.svc.List(c.Request.Context(), kind, filter)
	if err != nil {
		h.logger.Error("failed listing master records", zap.String("kind", string(kind)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get serves one record.
func (h *MasterDataHandler) Get(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	record, err := h.svc.Get(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Create stores a new record.
func (h *MasterDataHandler) Create(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	var input masterdata.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.Create(c.Request.Context(), kind, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Update replaces the editable fields of a record.
func (h *MasterDataHandler) Update(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	var input masterdata.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.Update(c.Request.Context(), kind, c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// SetActive flips the activate/deactivate row action.
func (h *MasterDataHandler) SetActive(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.SetActive(c.Request.Context(), kind, c.Param("id"), *req.Active); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete soft-deletes a record.
func (h *MasterDataHandler) Delete(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), kind, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MasterDataHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mongodb.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, masterdata.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("master data request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}

func atoiDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
