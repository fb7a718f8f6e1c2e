package quotation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/pkg/clients/enquiry"
	"github.com/freightdesk/backoffice/pkg/clients/erp"
	"github.com/freightdesk/backoffice/pkg/clients/notify"
)

// TariffSource resolves published rate cards for the destination flow.
type TariffSource interface {
	Lookup(ctx context.Context, query models.TariffLookup) (*models.Tariff, error)
}

// Register receives successful submissions for bookkeeping. Implementations
// must not fail the submission path.
type Register interface {
	RecordSubmission(ctx context.Context, submission models.QuotationSubmission, quotationID string)
}

// Service is the quotation drafting engine. It owns the live form of every
// open drafting session, parks the inactive services' forms in the draft
// store, and aggregates everything into one ERP submission.
type Service struct {
	drafts      *DraftStore
	enquiries   enquiry.Client
	erp         erp.Client
	notifier    notify.Client
	tariffs     TariffSource
	register    Register
	homeCountry string
	logger      *zap.Logger

	mu   sync.Mutex
	live map[string]*draftingSession
}

// SetRegister attaches the optional submission register.
func (s *Service) SetRegister(register Register) {
	s.register = register
}

// draftingSession is one user's open wizard: the enquiry's service list,
// the single live form, and the submission in-flight flag.
type draftingSession struct {
	mu          sync.Mutex
	id          string
	enquiryID   string
	quotationID string
	origin      Origin
	services    []models.EnquiryService
	form        models.FormSession
	submitting  bool
	touched     time.Time
}

// NewService wires a new drafting engine instance.
func NewService(enquiries enquiry.Client, erpClient erp.Client, notifier notify.Client, tariffs TariffSource, homeCountry string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		drafts:      NewDraftStore(),
		enquiries:   enquiries,
		erp:         erpClient,
		notifier:    notifier,
		tariffs:     tariffs,
		homeCountry: strings.ToUpper(homeCountry),
		logger:      logger,
		live:        make(map[string]*draftingSession),
	}
}

// OpenRequest starts a drafting session. QuotationID switches the session
// into edit mode; Origin selects the charge-line seeding adapter.
type OpenRequest struct {
	EnquiryID   string `json:"enquiry_id" binding:"required"`
	QuotationID string `json:"quotation_id"`
	Origin      string `json:"origin"`
}

// View is the full screen state of a drafting session.
type View struct {
	SessionID   string                  `json:"session_id"`
	EnquiryID   string                  `json:"enquiry_id"`
	QuotationID string                  `json:"quotation_id,omitempty"`
	Services    []models.EnquiryService `json:"services"`
	ActiveID    int                     `json:"active_id"`
	Form        models.FormSession      `json:"form"`
	Totals      models.QuotationTotals  `json:"totals"`
	Drafted     []int                   `json:"drafted_service_ids"`
}

// ChargeInput is one charge row as sent by the client; numeric fields
// arrive as decimal strings.
type ChargeInput struct {
	ChargeName  string `json:"charge_name"`
	Currency    string `json:"currency"`
	ROE         string `json:"roe"`
	Unit        string `json:"unit"`
	Quantity    string `json:"quantity"`
	SellPerUnit string `json:"sell_per_unit"`
	CostPerUnit string `json:"cost_per_unit"`
}

// FormUpdate replaces the live form's editable fields wholesale.
type FormUpdate struct {
	Scalars models.QuotationScalars `json:"scalars"`
	Charges []ChargeInput           `json:"charges"`
}

// Open creates a drafting session for an enquiry and activates its first
// service.
func (s *Service) Open(ctx context.Context, req OpenRequest) (*View, error) {
	services, err := s.enquiries.ListServices(ctx, req.EnquiryID)
	if err != nil {
		return nil, fmt.Errorf("open drafting session: %w", err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("enquiry %s has no services to quote", req.EnquiryID)
	}

	sess := &draftingSession{
		id:          uuid.NewString(),
		enquiryID:   req.EnquiryID,
		quotationID: req.QuotationID,
		origin:      ParseOrigin(req.Origin),
		services:    services,
		form:        models.FormSession{State: models.StateUninitialized},
		touched:     time.Now(),
	}
	sess.form = s.hydrateTarget(ctx, sess, services[0].ID)

	s.mu.Lock()
	s.live[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("drafting session opened",
		zap.String("session_id", sess.id),
		zap.String("enquiry_id", req.EnquiryID),
		zap.String("origin", string(sess.origin)),
		zap.Int("services", len(services)))

	return s.viewOf(sess), nil
}

// Select switches the live form to another service of the enquiry: the
// outgoing form is parked unconditionally (partial work is never lost),
// then the incoming one is hydrated from the draft store, the persisted
// record, or hard defaults, in that order. Selecting the already active
// service is a no-op.
func (s *Service) Select(ctx context.Context, sessionID string, targetID int) (*View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.form.EntityID == targetID {
		return s.viewOf(sess), nil
	}
	if !sess.hasService(targetID) {
		return nil, fmt.Errorf("%w: service %d", ErrUnknownService, targetID)
	}

	structuralOK := validateForm(sess.form, false) == nil
	s.drafts.Put(sess.id, sess.form.EntityID, models.DraftEntry{
		Form:         sess.form,
		HasQuotation: structuralOK,
	})

	sess.form = s.hydrateTarget(ctx, sess, targetID)
	sess.touched = time.Now()
	return s.viewOf(sess), nil
}

// UpdateForm applies an edit to the live form and recomputes the derived
// totals against the freshly committed values.
func (s *Service) UpdateForm(ctx context.Context, sessionID string, update FormUpdate) (*View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	charges, err := s.mergeCharges(sess.form.Charges, update.Charges)
	if err != nil {
		return nil, err
	}

	sess.form.Scalars = update.Scalars
	sess.form.Charges = charges
	markDirty(&sess.form)
	RecomputeCharges(sess.form.Charges)
	sess.touched = time.Now()

	return s.viewOf(sess), nil
}

// ApplyTariff hydrates the live form's charge list from a published rate
// card (the destination flow). Missing tariffs are reported, not invented.
func (s *Service) ApplyTariff(ctx context.Context, sessionID string, query models.TariffLookup) (*View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	tariff, err := s.tariffs.Lookup(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("tariff lookup: %w", err)
	}
	if tariff == nil {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoTariff, query.PortOfLoad, query.PortOfDisch)
	}

	sess.form.Charges = ChargesFromTariff(*tariff, s.homeCountry)
	if tariff.ValidUpto != "" && sess.form.Scalars.ValidUpto == "" {
		sess.form.Scalars.ValidUpto = tariff.ValidUpto
	}
	markDirty(&sess.form)
	sess.touched = time.Now()
	return s.viewOf(sess), nil
}

// ImportChat hydrates the live form's charge list from the chatbot
// hand-off format.
func (s *Service) ImportChat(ctx context.Context, sessionID, message string) (*View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	charges, err := ChargesFromChatMessage(message, s.homeCountry)
	if err != nil {
		return nil, err
	}

	sess.form.Charges = charges
	markDirty(&sess.form)
	sess.touched = time.Now()
	return s.viewOf(sess), nil
}

// View returns the current screen state of a session.
func (s *Service) View(sessionID string) (*View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewOf(sess), nil
}

// Reset discards a session and every parked snapshot it owns.
func (s *Service) Reset(sessionID string) error {
	s.mu.Lock()
	_, ok := s.live[sessionID]
	delete(s.live, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.drafts.Reset(sessionID)
	return nil
}

// SweepIdle drops sessions idle past the ttl, draft snapshots included.
func (s *Service) SweepIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	var stale []string

	s.mu.Lock()
	for id, sess := range s.live {
		if sess.touched.Before(cutoff) {
			stale = append(stale, id)
			delete(s.live, id)
		}
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.drafts.Reset(id)
	}
	s.drafts.SweepIdle(ttl)
	return len(stale)
}

func (s *Service) session(sessionID string) (*draftingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.live[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (sess *draftingSession) hasService(id int) bool {
	for _, svc := range sess.services {
		if svc.ID == id {
			return true
		}
	}
	return false
}

func (sess *draftingSession) serviceByID(id int) (models.EnquiryService, bool) {
	for _, svc := range sess.services {
		if svc.ID == id {
			return svc, true
		}
	}
	return models.EnquiryService{}, false
}

// hydrateTarget resolves the incoming service's form: parked snapshot
// first, then the persisted record in edit mode, then origin-specific
// defaults. A record fetch failure degrades to defaults so the screen
// stays usable; the error is surfaced once through the notifier.
func (s *Service) hydrateTarget(ctx context.Context, sess *draftingSession, targetID int) models.FormSession {
	if entry, ok := s.drafts.Get(sess.id, targetID); ok {
		return entry.Form
	}

	if sess.quotationID != "" {
		record, err := s.enquiries.GetQuotation(ctx, sess.quotationID, targetID)
		if err != nil {
			s.logger.Error("existing quotation fetch failed",
				zap.String("session_id", sess.id),
				zap.Int("service_id", targetID),
				zap.Error(err))
			s.notifier.Send(ctx, models.Notification{
				Type:    models.NoticeError,
				Message: fmt.Sprintf("could not load saved quotation: %v", err),
			})
		} else if record != nil {
			return hydrateForm(*record)
		}
	}

	form := defaultForm(targetID, s.homeCountry)
	if svc, ok := sess.serviceByID(targetID); ok {
		switch sess.origin {
		case OriginEnquiry:
			if lines := ChargesFromEnquiry(svc, s.homeCountry, s.logger); lines != nil {
				form.Charges = lines
				form.State = models.StateHydrated
			}
		case OriginDestination:
			query := models.TariffLookup{
				ServiceType: svc.Type,
				PortOfLoad:  svc.PortOfLoad,
				PortOfDisch: svc.PortOfDisch,
			}
			if svc.Cargo.FCL != nil {
				query.ContainerType = svc.Cargo.FCL.ContainerType
			}
			tariff, err := s.tariffs.Lookup(ctx, query)
			if err != nil {
				s.logger.Warn("tariff lookup failed during hydration", zap.Error(err))
			} else if tariff != nil {
				form.Charges = ChargesFromTariff(*tariff, s.homeCountry)
				form.State = models.StateHydrated
			}
		}
	}
	return form
}

// mergeCharges turns wire inputs into charge lines, firing the ROE
// auto-fill only for rows whose currency actually changed in this edit and
// whose rate the user did not touch at the same time.
func (s *Service) mergeCharges(previous []models.ChargeLine, inputs []ChargeInput) ([]models.ChargeLine, error) {
	charges := make([]models.ChargeLine, 0, len(inputs))

	for i, input := range inputs {
		line := models.ChargeLine{
			ChargeName: strings.TrimSpace(input.ChargeName),
			Currency:   strings.ToUpper(strings.TrimSpace(input.Currency)),
			Unit:       strings.ToUpper(strings.TrimSpace(input.Unit)),
		}
		var err error
		if line.ROE, err = parseInput(input.ROE); err != nil {
			return nil, fmt.Errorf("charge %d: bad roe %q", i, input.ROE)
		}
		if line.Quantity, err = parseInput(input.Quantity); err != nil {
			return nil, fmt.Errorf("charge %d: bad quantity %q", i, input.Quantity)
		}
		if line.SellPerUnit, err = parseInput(input.SellPerUnit); err != nil {
			return nil, fmt.Errorf("charge %d: bad sell price %q", i, input.SellPerUnit)
		}
		if line.CostPerUnit, err = parseInput(input.CostPerUnit); err != nil {
			return nil, fmt.Errorf("charge %d: bad cost price %q", i, input.CostPerUnit)
		}

		if i < len(previous) {
			prev := previous[i]
			currencyChanged := line.Currency != prev.Currency
			roeTouched := !line.ROE.Equal(prev.ROE)
			if currencyChanged && !roeTouched {
				applyCurrencyChange(&line, s.homeCountry, line.Currency)
			} else {
				line.TotalSell = prev.TotalSell
				line.TotalCost = prev.TotalCost
			}
		} else if line.ROE.IsZero() {
			// Fresh row without a typed rate: seed from the house table.
			applyCurrencyChange(&line, s.homeCountry, line.Currency)
		}

		charges = append(charges, line)
	}
	return charges, nil
}

func (s *Service) viewOf(sess *draftingSession) *View {
	entries := s.drafts.Entries(sess.id)
	drafted := make([]int, 0, len(entries))
	for _, svc := range sess.services {
		if _, ok := entries[svc.ID]; ok {
			drafted = append(drafted, svc.ID)
		}
	}

	return &View{
		SessionID:   sess.id,
		EnquiryID:   sess.enquiryID,
		QuotationID: sess.quotationID,
		Services:    sess.services,
		ActiveID:    sess.form.EntityID,
		Form:        sess.form,
		Totals:      Totals(sess.form.Charges),
		Drafted:     drafted,
	}
}

func parseInput(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
