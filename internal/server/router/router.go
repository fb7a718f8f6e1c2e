package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/server/handlers"
)

// Handlers bundles the HTTP adapters the router mounts.
type Handlers struct {
	Quotation  *handlers.QuotationHandler
	MasterData *handlers.MasterDataHandler
	Booking    *handlers.BookingHandler
	Tariff     *handlers.TariffHandler
	RefData    *handlers.RefDataHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")

	sessions := api.Group("/quotation-sessions")
	sessions.POST("", h.Quotation.Open)
	sessions.GET("/:id", h.Quotation.View)
	sessions.POST("/:id/select", h.Quotation.Select)
	sessions.PUT("/:id/form", h.Quotation.UpdateForm)
	sessions.POST("/:id/apply-tariff", h.Quotation.ApplyTariff)
	sessions.POST("/:id/import-chat", h.Quotation.ImportChat)
	sessions.POST("/:id/submit", h.Quotation.Submit)
	sessions.DELETE("/:id", h.Quotation.Reset)

	masters := api.Group("/masters/:kind")
	masters.GET("", h.MasterData.List)
	masters.POST("", h.MasterData.Create)
	masters.GET("/:id", h.MasterData.Get)
	masters.PUT("/:id", h.MasterData.Update)
	masters.PATCH("/:id/active", h.MasterData.SetActive)
	masters.DELETE("/:id", h.MasterData.Delete)

	jobs := api.Group("/jobs")
	jobs.GET("", h.Booking.List)
	jobs.POST("/drafts", h.Booking.Start)
	jobs.GET("/drafts/:id", h.Booking.Draft)
	jobs.PUT("/drafts/:id/steps/:step", h.Booking.ApplyStep)
	jobs.POST("/drafts/:id/confirm", h.Booking.Confirm)

	tariffs := api.Group("/tariffs")
	tariffs.GET("", h.Tariff.List)
	tariffs.POST("", h.Tariff.Create)
	tariffs.GET("/lookup", h.Tariff.Lookup)
	tariffs.GET("/:id", h.Tariff.Get)
	tariffs.PUT("/:id", h.Tariff.Update)
	tariffs.DELETE("/:id", h.Tariff.Delete)

	api.GET("/refdata/:kind", h.RefData.List)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
