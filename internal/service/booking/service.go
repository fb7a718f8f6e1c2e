package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/config"
	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/internal/repository/mongodb"
)

var (
	// ErrDraftNotFound means the wizard draft id is unknown or expired.
	ErrDraftNotFound = errors.New("booking draft not found")
	// ErrIncompleteDraft means confirm was called before every step passed.
	ErrIncompleteDraft = errors.New("booking draft has incomplete steps")
)

// Service runs the air/sea export booking wizards. Work-in-progress drafts
// live in memory per wizard session; only confirmed bookings reach Mongo.
type Service struct {
	repo   mongodb.JobRepository
	cfg    config.JobsConfig
	logger *zap.Logger

	mu     sync.RWMutex
	drafts map[string]*models.JobDraft
}

// NewService wires a new booking service instance.
func NewService(repo mongodb.JobRepository, cfg config.JobsConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		drafts: make(map[string]*models.JobDraft),
	}
}

// Start opens a wizard draft for one export mode.
func (s *Service) Start(mode models.JobMode) (*models.JobDraft, error) {
	if mode != models.JobAirExport && mode != models.JobSeaExport {
		return nil, fmt.Errorf("unsupported job mode %q", mode)
	}

	draft := &models.JobDraft{ID: uuid.NewString(), Mode: mode}
	s.mu.Lock()
	s.drafts[draft.ID] = draft
	s.mu.Unlock()

	s.logger.Info("booking draft started",
		zap.String("draft_id", draft.ID),
		zap.String("mode", string(mode)))
	return draft, nil
}

// Draft returns the current wizard state.
func (s *Service) Draft(draftID string) (*models.JobDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	snapshot := *draft
	return &snapshot, nil
}

// ApplyStep validates and stores one wizard step. Steps may be filled in
// any order; a failed validation leaves the previous step content intact.
func (s *Service) ApplyStep(draftID string, step models.WizardStep, payload json.RawMessage) (*models.JobDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}

	switch step {
	case models.StepParties:
		var parties models.JobParties
		if err := json.Unmarshal(payload, &parties); err != nil {
			return nil, fmt.Errorf("decode parties step: %w", err)
		}
		if err := validateParties(parties); err != nil {
			return nil, err
		}
		draft.Parties = &parties

	case models.StepRouting:
		var routing models.JobRouting
		if err := json.Unmarshal(payload, &routing); err != nil {
			return nil, fmt.Errorf("decode routing step: %w", err)
		}
		if err := validateRouting(routing, draft.Mode); err != nil {
			return nil, err
		}
		draft.Routing = &routing

	case models.StepCargo:
		var cargo models.CargoDetail
		if err := json.Unmarshal(payload, &cargo); err != nil {
			return nil, fmt.Errorf("decode cargo step: %w", err)
		}
		if err := validateCargo(cargo, draft.Mode); err != nil {
			return nil, err
		}
		draft.Cargo = &cargo

	case models.StepReview:
		var review struct {
			Remark string `json:"remark"`
		}
		if err := json.Unmarshal(payload, &review); err != nil {
			return nil, fmt.Errorf("decode review step: %w", err)
		}
		draft.Remark = review.Remark

	default:
		return nil, fmt.Errorf("unknown wizard step %q", step)
	}

	snapshot := *draft
	return &snapshot, nil
}

// Confirm turns a complete draft into a numbered, persisted job and drops
// the wizard state.
func (s *Service) Confirm(ctx context.Context, draftID string) (*models.Job, error) {
	s.mu.Lock()
	draft, ok := s.drafts[draftID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrDraftNotFound
	}

	if draft.Parties == nil || draft.Routing == nil || draft.Cargo == nil {
		return nil, ErrIncompleteDraft
	}

	var job models.Job
	if err := copier.Copy(&job, draft); err != nil {
		return nil, fmt.Errorf("map booking draft: %w", err)
	}
	job.ID = uuid.NewString()
	job.CreatedAt = time.Now()

	number, err := s.nextJobNumber(ctx, draft.Mode, job.CreatedAt)
	if err != nil {
		return nil, err
	}
	job.JobNumber = number

	if err := s.repo.InsertJob(ctx, job); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.drafts, draftID)
	s.mu.Unlock()

	s.logger.Info("booking confirmed",
		zap.String("job_number", job.JobNumber),
		zap.String("mode", string(job.Mode)))
	return &job, nil
}

// List returns one page of confirmed bookings.
func (s *Service) List(ctx context.Context, mode models.JobMode, page, limit int) ([]models.Job, int64, error) {
	return s.repo.ListJobs(ctx, mode, page, limit)
}

func (s *Service) nextJobNumber(ctx context.Context, mode models.JobMode, at time.Time) (string, error) {
	count, err := s.repo.CountJobs(ctx, mode)
	if err != nil {
		return "", fmt.Errorf("sequence job number: %w", err)
	}
	prefix := s.cfg.NumberPrefixSea
	if mode == models.JobAirExport {
		prefix = s.cfg.NumberPrefixAir
	}
	return fmt.Sprintf("%s-%s-%05d", prefix, at.Format("200601"), count+1), nil
}

func validateParties(p models.JobParties) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Shipper, validation.Required),
		validation.Field(&p.Consignee, validation.Required),
		validation.Field(&p.BranchID, validation.Required),
	)
}

func validateRouting(r models.JobRouting, mode models.JobMode) error {
	rules := []*validation.FieldRules{
		validation.Field(&r.PortOfLoad, validation.Required),
		validation.Field(&r.PortOfDisch, validation.Required),
		validation.Field(&r.Carrier, validation.Required),
	}
	if mode == models.JobSeaExport {
		rules = append(rules, validation.Field(&r.CallMode, validation.Required))
	}
	return validation.ValidateStruct(&r, rules...)
}

func validateCargo(c models.CargoDetail, mode models.JobMode) error {
	if mode == models.JobAirExport {
		if c.Air == nil || c.Air.Pieces <= 0 || c.Air.GrossWeightKg <= 0 {
			return fmt.Errorf("air cargo needs pieces and gross weight")
		}
		return nil
	}
	if c.FCL == nil && c.LCL == nil {
		return fmt.Errorf("sea cargo needs FCL or LCL details")
	}
	if c.FCL != nil && (c.FCL.ContainerType == "" || c.FCL.Containers <= 0) {
		return fmt.Errorf("FCL cargo needs container type and count")
	}
	if c.LCL != nil && (c.LCL.Packages <= 0 || c.LCL.VolumeCbm <= 0) {
		return fmt.Errorf("LCL cargo needs packages and volume")
	}
	return nil
}
