package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/config"
	"github.com/freightdesk/backoffice/internal/repository/mongodb"
	"github.com/freightdesk/backoffice/internal/repository/sheets"
	"github.com/freightdesk/backoffice/internal/scheduler"
	"github.com/freightdesk/backoffice/internal/server/handlers"
	"github.com/freightdesk/backoffice/internal/server/router"
	bookingsvc "github.com/freightdesk/backoffice/internal/service/booking"
	masterdatasvc "github.com/freightdesk/backoffice/internal/service/masterdata"
	quotationsvc "github.com/freightdesk/backoffice/internal/service/quotation"
	registersvc "github.com/freightdesk/backoffice/internal/service/register"
	tariffsvc "github.com/freightdesk/backoffice/internal/service/tariff"
	"github.com/freightdesk/backoffice/pkg/clients/enquiry"
	"github.com/freightdesk/backoffice/pkg/clients/erp"
	"github.com/freightdesk/backoffice/pkg/clients/notify"
	"github.com/freightdesk/backoffice/pkg/clients/refdata"
	"github.com/freightdesk/backoffice/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.New(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	enquiryClient := enquiry.NewClient(cfg.Upstream)
	erpClient := erp.NewClient(cfg.Upstream)
	notifyClient := notify.NewClient(cfg.Upstream, baseLogger.Named("clients.notify"))
	refdataClient := refdata.NewClient(cfg.Upstream, baseLogger.Named("clients.refdata"))

	masterSvc := masterdatasvc.NewService(mongoRepo, baseLogger.Named("svc.masterdata"))
	bookingSvc := bookingsvc.NewService(mongoRepo, cfg.Jobs, baseLogger.Named("svc.booking"))
	tariffSvc := tariffsvc.NewService(mongoRepo, baseLogger.Named("svc.tariff"))
	quotationSvc := quotationsvc.NewService(enquiryClient, erpClient, notifyClient, tariffSvc, cfg.Quotation.HomeCountry, baseLogger.Named("svc.quotation"))

	// The submission register is optional; without a configured sheet the
	// quotation engine simply skips the export.
	var registerSvc *registersvc.Service
	if cfg.Sheets.SpreadsheetID != "" {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		registerSvc = registersvc.NewService(sheetsRepo, baseLogger.Named("svc.register"))
		quotationSvc.SetRegister(registerSvc)
		baseLogger.Info("quotation register export enabled")
	} else {
		baseLogger.Warn("register sheet not configured, submission export disabled")
	}

	engine := router.New(router.Handlers{
		Quotation:  handlers.NewQuotationHandler(quotationSvc, baseLogger.Named("handlers.quotation")),
		MasterData: handlers.NewMasterDataHandler(masterSvc, baseLogger.Named("handlers.masterdata")),
		Booking:    handlers.NewBookingHandler(bookingSvc, baseLogger.Named("handlers.booking")),
		Tariff:     handlers.NewTariffHandler(tariffSvc, baseLogger.Named("handlers.tariff")),
		RefData:    handlers.NewRefDataHandler(refdataClient, baseLogger.Named("handlers.refdata")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, quotationSvc, registerSvc, refdataClient, notifyClient, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
