package masterdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/internal/repository/mongodb"
)

// ErrInvalidInput wraps every user-correctable validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Service implements the master-data screens: paginated, filterable lists
// with create/update/soft-delete/activate row actions over each catalogue.
type Service struct {
	repo   mongodb.MasterRepository
	logger *zap.Logger
}

// NewService wires a new master-data service instance.
func NewService(repo mongodb.MasterRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Input carries the editable fields of a master record.
type Input struct {
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
}

// requiredAttributes lists the kind-specific columns each catalogue needs.
var requiredAttributes = map[models.MasterKind][]string{
	models.KindPort:          {"country", "mode"},
	models.KindContainerType: {"size"},
	models.KindFrequency:     {"weekday"},
	models.KindCallMode:      {"mode"},
	models.KindBranch:        {"city"},
}

func (in Input) validate(kind models.MasterKind) error {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Code, validation.Required, validation.Length(1, 16)),
		validation.Field(&in.Name, validation.Required, validation.Length(1, 120)),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	for _, attr := range requiredAttributes[kind] {
		if strings.TrimSpace(in.Attributes[attr]) == "" {
			return fmt.Errorf("%w: attribute %q is required for %s", ErrInvalidInput, attr, kind)
		}
	}
	return nil
}

// List returns one page of a catalogue.
func (s *Service) List(ctx context.Context, kind models.MasterKind, filter models.MasterListFilter) (*models.MasterPage, error) {
	return s.repo.ListMaster(ctx, kind, filter)
}

// Get fetches one record.
func (s *Service) Get(ctx context.Context, kind models.MasterKind, id string) (*models.MasterRecord, error) {
	return s.repo.GetMaster(ctx, kind, id)
}

// Create validates the input and stores a new, active record.
func (s *Service) Create(ctx context.Context, kind models.MasterKind, input Input) (*models.MasterRecord, error) {
	if err := input.validate(kind); err != nil {
		return nil, err
	}

	var record models.MasterRecord
	if err := copier.Copy(&record, &input); err != nil {
		return nil, fmt.Errorf("map master input: %w", err)
	}
	record.ID = uuid.NewString()
	record.Kind = kind
	record.Code = strings.ToUpper(strings.TrimSpace(record.Code))
	record.Active = true
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	if err := s.repo.InsertMaster(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("master record created",
		zap.String("kind", string(kind)),
		zap.String("code", record.Code))
	return &record, nil
}

// Update validates the input and replaces the editable fields of a record.
func (s *Service) Update(ctx context.Context, kind models.MasterKind, id string, input Input) (*models.MasterRecord, error) {
	if err := input.validate(kind); err != nil {
		return nil, err
	}

	record, err := s.repo.GetMaster(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := copier.Copy(record, &input); err != nil {
		return nil, fmt.Errorf("map master input: %w", err)
	}
	record.Code = strings.ToUpper(strings.TrimSpace(record.Code))
	record.UpdatedAt = time.Now()

	if err := s.repo.UpdateMaster(ctx, *record); err != nil {
		return nil, err
	}
	return record, nil
}

// SetActive flips the activate/deactivate row action.
func (s *Service) SetActive(ctx context.Context, kind models.MasterKind, id string, active bool) error {
	return s.repo.SetMasterActive(ctx, kind, id, active)
}

// Delete soft-deletes a record.
func (s *Service) Delete(ctx context.Context, kind models.MasterKind, id string) error {
	if err := s.repo.SoftDeleteMaster(ctx, kind, id); err != nil {
		return err
	}
	s.logger.Info("master record deleted",
		zap.String("kind", string(kind)),
		zap.String("id", id))
	return nil
}
