package tariff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/internal/repository/mongodb"
)

// ErrInvalidInput wraps every user-correctable validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Service implements the tariff authoring tool: CRUD over published rate
// cards plus the lane lookup the quotation engine's destination flow uses.
type Service struct {
	repo   mongodb.TariffRepository
	logger *zap.Logger
}

// NewService wires a new tariff service instance.
func NewService(repo mongodb.TariffRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Input carries the editable fields of a rate card.
type Input struct {
	Name          string              `json:"name"`
	ServiceType   string              `json:"service_type"`
	PortOfLoad    string              `json:"port_of_load"`
	PortOfDisch   string              `json:"port_of_discharge"`
	ContainerType string              `json:"container_type"`
	Lines         []models.TariffLine `json:"lines"`
	ValidUpto     string              `json:"valid_upto"`
	Active        bool                `json:"active"`
}

func (in Input) validate() error {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&in.ServiceType, validation.Required),
		validation.Field(&in.PortOfLoad, validation.Required),
		validation.Field(&in.PortOfDisch, validation.Required),
		validation.Field(&in.Lines, validation.Required),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	for i, line := range in.Lines {
		if err := validation.ValidateStruct(&line,
			validation.Field(&line.ChargeName, validation.Required),
			validation.Field(&line.Currency, validation.Required, validation.Length(3, 3)),
			validation.Field(&line.Unit, validation.Required),
			validation.Field(&line.SellPerUnit, validation.Required),
			validation.Field(&line.CostPerUnit, validation.Required),
		); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrInvalidInput, i, err)
		}
	}

	if models.ParseServiceType(in.ServiceType) == models.ServiceFCL && in.ContainerType == "" {
		return fmt.Errorf("%w: container_type is required for FCL tariffs", ErrInvalidInput)
	}
	return nil
}

func (in Input) toTariff() models.Tariff {
	return models.Tariff{
		Name:          strings.TrimSpace(in.Name),
		ServiceType:   models.ParseServiceType(in.ServiceType),
		PortOfLoad:    strings.ToUpper(strings.TrimSpace(in.PortOfLoad)),
		PortOfDisch:   strings.ToUpper(strings.TrimSpace(in.PortOfDisch)),
		ContainerType: strings.ToUpper(strings.TrimSpace(in.ContainerType)),
		Lines:         in.Lines,
		ValidUpto:     in.ValidUpto,
		Active:        in.Active,
	}
}

// List returns one page of rate cards.
func (s *Service) List(ctx context.Context, page, limit int) ([]models.Tariff, int64, error) {
	return s.repo.ListTariffs(ctx, page, limit)
}

// Get fetches one rate card.
func (s *Service) Get(ctx context.Context, id string) (*models.Tariff, error) {
	return s.repo.GetTariff(ctx, id)
}

// Create validates and stores a new rate card.
func (s *Service) Create(ctx context.Context, input Input) (*models.Tariff, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	tariff := input.toTariff()
	tariff.ID = uuid.NewString()
	tariff.CreatedAt = time.Now()
	tariff.UpdatedAt = tariff.CreatedAt

	if err := s.repo.InsertTariff(ctx, tariff); err != nil {
		return nil, err
	}
	s.logger.Info("tariff published",
		zap.String("name", tariff.Name),
		zap.String("lane", tariff.PortOfLoad+"-"+tariff.PortOfDisch))
	return &tariff, nil
}

// Update validates and replaces a rate card.
func (s *Service) Update(ctx context.Context, id string, input Input) (*models.Tariff, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	tariff := input.toTariff()
	tariff.ID = id
	tariff.UpdatedAt = time.Now()

	if err := s.repo.UpdateTariff(ctx, tariff); err != nil {
		return nil, err
	}
	return &tariff, nil
}

// Delete removes a rate card.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteTariff(ctx, id)
}

// Lookup resolves the active rate card for a lane.
func (s *Service) Lookup(ctx context.Context, query models.TariffLookup) (*models.Tariff, error) {
	return s.repo.Lookup(ctx, query)
}
