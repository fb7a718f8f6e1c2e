package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/internal/repository/mongodb"
	"github.com/freightdesk/backoffice/internal/service/tariff"
)

// TariffHandler exposes the tariff authoring tool over HTTP.
type TariffHandler struct {
	svc    *tariff.Service
	logger *zap.Logger
}

// NewTariffHandler constructs the HTTP handler adapter.
func NewTariffHandler(svc *tariff.Service, logger *zap.Logger) *TariffHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TariffHandler{svc: svc, logger: logger}
}

// List serves one page of rate cards.
func (h *TariffHandler) List(c *gin.Context) {
	tariffs, total, err := h.svc.List(c.Request.Context(),
		atoiDefault(c.Query("page"), 1), atoiDefault(c.Query("limit"), 25))
	if err != nil {
		h.logger.Error("failed listing tariffs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tariffs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tariffs": tariffs, "total": total})
}

// Get serves one rate card.
func (h *TariffHandler) Get(c *gin.Context) {
	record, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Create publishes a new rate card.
func (h *TariffHandler) Create(c *gin.Context) {
	var input tariff.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Update replaces a rate card.
func (h *TariffHandler) Update(c *gin.Context) {
	var input tariff.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete removes a rate card.
func (h *TariffHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Lookup resolves the active rate card for a lane.
func (h *TariffHandler) Lookup(c *gin.Context) {
	query := models.TariffLookup{
		ServiceType:   models.ParseServiceType(c.Query("service_type")),
		PortOfLoad:    c.Query("port_of_load"),
		PortOfDisch:   c.Query("port_of_discharge"),
		ContainerType: c.Query("container_type"),
	}
	if query.PortOfLoad == "" || query.PortOfDisch == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "port_of_load and port_of_discharge are required"})
		return
	}

	record, err := h.svc.Lookup(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no tariff published for this lane"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *TariffHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mongodb.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "tariff not found"})
	case errors.Is(err, tariff.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("tariff request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}
