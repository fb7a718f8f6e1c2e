package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/config"
	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/internal/service/quotation"
	"github.com/freightdesk/backoffice/internal/service/register"
	"github.com/freightdesk/backoffice/pkg/clients/notify"
	"github.com/freightdesk/backoffice/pkg/clients/refdata"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	quotationSvc *quotation.Service
	registerSvc  *register.Service
	refdataCli   refdata.Client
	notifier     notify.Client
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. registerSvc may be nil when
// the register sheet is not configured.
func NewScheduler(cfg config.Config, quotationSvc *quotation.Service, registerSvc *register.Service, refdataCli refdata.Client, notifier notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:         cron.New(),
		quotationSvc: quotationSvc,
		registerSvc:  registerSvc,
		refdataCli:   refdataCli,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the recurring jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Quotation.RefdataCron, s.refreshRefdata); err != nil {
		s.logger.Error("failed to schedule reference data refresh", zap.Error(err))
	}

	// Idle drafting sessions are swept every half hour regardless of the
	// refresh cadence; the TTL itself comes from config.
	if _, err := s.cron.AddFunc("*/30 * * * *", s.sweepIdleSessions); err != nil {
		s.logger.Error("failed to schedule session sweep", zap.Error(err))
	}

	if s.registerSvc != nil {
		if _, err := s.cron.AddFunc(s.cfg.Quotation.RegisterCron, s.sendWeeklySummary); err != nil {
			s.logger.Error("failed to schedule weekly register summary", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) refreshRefdata() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.refdataCli.Refresh(ctx); err != nil {
		s.logger.Warn("reference data refresh incomplete", zap.Error(err))
		return
	}
	s.logger.Info("reference data refreshed")
}

func (s *Scheduler) sweepIdleSessions() {
	ttl := time.Duration(s.cfg.Quotation.SessionIdleMinutes) * time.Minute
	if swept := s.quotationSvc.SweepIdle(ttl); swept > 0 {
		s.logger.Info("swept idle drafting sessions", zap.Int("count", swept))
	}
}

func (s *Scheduler) sendWeeklySummary() {
	s.logger.Info("generating weekly register summary")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := s.registerSvc.WeeklySummary(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to generate weekly register summary", zap.Error(err))
		return
	}

	s.notifier.Send(ctx, models.Notification{
		Type:    models.NoticeInfo,
		Message: summary,
	})
	s.logger.Info("weekly register summary sent")
}
