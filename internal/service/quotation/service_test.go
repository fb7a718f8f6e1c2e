package quotation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdesk/backoffice/internal/domain/models"
	"github.com/freightdesk/backoffice/pkg/clients/erp"
)

type fakeEnquiries struct {
	services []models.EnquiryService
	records  map[int]*models.QuotationRecord
	listErr  error
	getErr   error
}

func (f *fakeEnquiries) ListServices(ctx context.Context, enquiryID string) ([]models.EnquiryService, error) {
	return f.services, f.listErr
}

func (f *fakeEnquiries) GetQuotation(ctx context.Context, quotationID string, serviceID int) (*models.QuotationRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.records[serviceID], nil
}

type fakeERP struct {
	mu      sync.Mutex
	created []models.QuotationSubmission
	updated []models.QuotationSubmission
	err     error
	block   chan struct{}
}

func (f *fakeERP) CreateQuotation(ctx context.Context, submission models.QuotationSubmission) (*erp.SubmitAck, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, submission)
	return &erp.SubmitAck{QuotationID: "QTN-001", Message: "created"}, nil
}

func (f *fakeERP) UpdateQuotation(ctx context.Context, quotationID string, submission models.QuotationSubmission) (*erp.SubmitAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.updated = append(f.updated, submission)
	return &erp.SubmitAck{QuotationID: quotationID, Message: "updated"}, nil
}

func (f *fakeERP) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []models.Notification
}

func (f *fakeNotifier) Send(ctx context.Context, notice models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, notice)
}

func (f *fakeNotifier) byType(kind models.NotificationType) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notices {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

type fakeTariffs struct {
	tariff *models.Tariff
	err    error
}

func (f *fakeTariffs) Lookup(ctx context.Context, query models.TariffLookup) (*models.Tariff, error) {
	return f.tariff, f.err
}

func twoAirServices() []models.EnquiryService {
	return []models.EnquiryService{
		{
			ID: 101, Type: models.ServiceAIR, Trade: "EXPORT",
			PortOfLoad: "BOM", PortOfDisch: "DXB",
			Cargo:    models.CargoDetail{Air: &models.AirCargo{ChargeableWeight: 250}},
			BuyRate:  "2.10", SellRate: "2.80", RateCurr: "USD",
		},
		{
			ID: 102, Type: models.ServiceAIR, Trade: "EXPORT",
			PortOfLoad: "BOM", PortOfDisch: "LHR",
			Cargo: models.CargoDetail{Air: &models.AirCargo{ChargeableWeight: 400}},
		},
	}
}

type fixture struct {
	svc       *Service
	enquiries *fakeEnquiries
	erp       *fakeERP
	notifier  *fakeNotifier
	tariffs   *fakeTariffs
}

func newFixture(services []models.EnquiryService) *fixture {
	f := &fixture{
		enquiries: &fakeEnquiries{services: services},
		erp:       &fakeERP{},
		notifier:  &fakeNotifier{},
		tariffs:   &fakeTariffs{},
	}
	f.svc = NewService(f.enquiries, f.erp, f.notifier, f.tariffs, "IN", nil)
	return f
}

func completeUpdate() FormUpdate {
	return FormUpdate{
		Scalars: models.QuotationScalars{
			Currency:  "INR",
			ValidUpto: "2026-12-31",
			Status:    "DRAFT",
		},
		Charges: []ChargeInput{{
			ChargeName:  "AIR FREIGHT",
			Currency:    "USD",
			ROE:         "88.75",
			Unit:        "KG",
			Quantity:    "250",
			SellPerUnit: "2.80",
			CostPerUnit: "2.10",
		}},
	}
}

func TestOpenActivatesFirstService(t *testing.T) {
	f := newFixture(twoAirServices())

	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	assert.Equal(t, 101, view.ActiveID)
	assert.Equal(t, "ENQ-1", view.EnquiryID)
	assert.Len(t, view.Services, 2)
	assert.Empty(t, view.Drafted)

	// The enquiry flow seeds one freight line from the service's rates.
	require.Len(t, view.Form.Charges, 1)
	line := view.Form.Charges[0]
	assert.Equal(t, "AIR FREIGHT", line.ChargeName)
	assert.Equal(t, "KG", line.Unit)
	assert.Equal(t, "250", line.Quantity.String())
	assert.Equal(t, "88.75", line.ROE.String())
	assert.Equal(t, models.StateHydrated, view.Form.State)
}

func TestOpenNoServices(t *testing.T) {
	f := newFixture(nil)
	_, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-EMPTY"})
	assert.Error(t, err)
}

func TestSelectSameServiceIsNoop(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	again, err := f.svc.Select(context.Background(), view.SessionID, 101)
	require.NoError(t, err)
	assert.Equal(t, 101, again.ActiveID)
	assert.Empty(t, again.Drafted, "re-selecting the active service must not park anything")
}

func TestSelectUnknownService(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	_, err = f.svc.Select(context.Background(), view.SessionID, 999)
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestSelectParksPartialWorkAndRestoresIt(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	// Leave the form half-filled: no valid_upto, so structurally invalid.
	update := completeUpdate()
	update.Scalars.ValidUpto = ""
	_, err = f.svc.UpdateForm(context.Background(), view.SessionID, update)
	require.NoError(t, err)

	view, err = f.svc.Select(context.Background(), view.SessionID, 102)
	require.NoError(t, err)
	assert.Equal(t, 102, view.ActiveID)
	assert.Equal(t, []int{101}, view.Drafted, "partial work is parked, never discarded")

	view, err = f.svc.Select(context.Background(), view.SessionID, 101)
	require.NoError(t, err)
	require.Len(t, view.Form.Charges, 1)
	assert.Equal(t, "AIR FREIGHT", view.Form.Charges[0].ChargeName)
	assert.Empty(t, view.Form.Scalars.ValidUpto)
}

func TestSelectHydratesFromRecordInEditMode(t *testing.T) {
	f := newFixture(twoAirServices())
	f.enquiries.records = map[int]*models.QuotationRecord{
		102: {
			ServiceID: 102,
			Scalars:   models.QuotationScalars{Currency: "INR", ValidUpto: "2026-10-01", Status: "DRAFT"},
			Charges: []models.ChargeLine{{
				ChargeName:  "AIR FREIGHT",
				Currency:    "EUR",
				ROE:         decimal.RequireFromString("96.40"),
				Unit:        "KG",
				Quantity:    decimal.NewFromInt(400),
				SellPerUnit: decimal.NewFromInt(3),
				CostPerUnit: decimal.NewFromInt(2),
			}},
		},
	}

	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1", QuotationID: "QTN-7", Origin: "edit"})
	require.NoError(t, err)

	view, err = f.svc.Select(context.Background(), view.SessionID, 102)
	require.NoError(t, err)
	assert.Equal(t, models.StateHydrated, view.Form.State)
	require.Len(t, view.Form.Charges, 1)
	assert.Equal(t, "115680.00", view.Form.Charges[0].TotalSell, "stored totals are recomputed, not trusted")
}

func TestSelectRecordFetchFailureDegradesToDefaults(t *testing.T) {
	f := newFixture(twoAirServices())
	f.enquiries.getErr = errors.New("erp down")

	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1", QuotationID: "QTN-7", Origin: "edit"})
	require.NoError(t, err)

	assert.Equal(t, models.StateDefaulted, view.Form.State)
	assert.Equal(t, "INR", view.Form.Scalars.Currency)
	require.Len(t, f.notifier.byType(models.NoticeError), 1, "fetch failure is surfaced exactly once")
}

func TestUpdateFormCurrencyChangeAutoFillsROE(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	update := completeUpdate()
	view, err = f.svc.UpdateForm(context.Background(), view.SessionID, update)
	require.NoError(t, err)

	// Switch the row to EUR without touching its rate.
	update.Charges[0].Currency = "EUR"
	view, err = f.svc.UpdateForm(context.Background(), view.SessionID, update)
	require.NoError(t, err)
	assert.Equal(t, "96.4", view.Form.Charges[0].ROE.String())
	assert.Equal(t, models.StateDirty, view.Form.State)
}

func TestUpdateFormManualROESurvivesCurrencyChange(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	update := completeUpdate()
	_, err = f.svc.UpdateForm(context.Background(), view.SessionID, update)
	require.NoError(t, err)

	// Currency and rate changed in the same edit: the typed rate wins.
	update.Charges[0].Currency = "EUR"
	update.Charges[0].ROE = "95.00"
	view, err = f.svc.UpdateForm(context.Background(), view.SessionID, update)
	require.NoError(t, err)
	assert.Equal(t, "95", view.Form.Charges[0].ROE.String())
}

func TestUpdateFormRecomputeIsStable(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	update := completeUpdate()
	first, err := f.svc.UpdateForm(context.Background(), view.SessionID, update)
	require.NoError(t, err)
	second, err := f.svc.UpdateForm(context.Background(), view.SessionID, update)
	require.NoError(t, err)

	assert.Equal(t, first.Form.Charges[0].TotalSell, second.Form.Charges[0].TotalSell)
	assert.Equal(t, first.Totals, second.Totals)
}

func TestSubmitValidationFailure(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	update := completeUpdate()
	update.Scalars.ValidUpto = "not-a-date"
	_, err = f.svc.UpdateForm(context.Background(), view.SessionID, update)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), view.SessionID, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "valid_upto")

	view, err = f.svc.View(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StateDirty, view.Form.State)
	assert.Equal(t, 0, f.erp.createCount())
}

func TestSubmitCompletenessGateReportsUnfilledIndexes(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	_, err = f.svc.UpdateForm(context.Background(), view.SessionID, completeUpdate())
	require.NoError(t, err)

	result, err := f.svc.Submit(context.Background(), view.SessionID, false)
	require.NoError(t, err)
	assert.False(t, result.Submitted)
	assert.Equal(t, []int{1}, result.UnfilledServices)
	assert.Equal(t, 0, f.erp.createCount(), "no upstream call before confirmation")
}

func TestSubmitConfirmedAggregatesAllDrafts(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	_, err = f.svc.UpdateForm(context.Background(), view.SessionID, completeUpdate())
	require.NoError(t, err)

	result, err := f.svc.Submit(context.Background(), view.SessionID, true)
	require.NoError(t, err)
	assert.True(t, result.Submitted)
	assert.Equal(t, "QTN-001", result.QuotationID)

	require.Equal(t, 1, f.erp.createCount())
	submission := f.erp.created[0]
	assert.Equal(t, "ENQ-1", submission.EnquiryID)
	require.Len(t, submission.Services, 1)
	assert.Equal(t, 101, submission.Services[0].ServiceID)
	assert.Equal(t, "62125.00", submission.Services[0].Totals.NetSell)

	require.Len(t, f.notifier.byType(models.NoticeSuccess), 1)

	view, err = f.svc.View(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StateSubmitted, view.Form.State)
	assert.Equal(t, "QTN-001", view.QuotationID)
}

func TestSubmitBothServicesInOrder(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	_, err = f.svc.UpdateForm(context.Background(), view.SessionID, completeUpdate())
	require.NoError(t, err)
	_, err = f.svc.Select(context.Background(), view.SessionID, 102)
	require.NoError(t, err)

	second := completeUpdate()
	second.Charges[0].Quantity = "400"
	_, err = f.svc.UpdateForm(context.Background(), view.SessionID, second)
	require.NoError(t, err)

	result, err := f.svc.Submit(context.Background(), view.SessionID, false)
	require.NoError(t, err)
	assert.True(t, result.Submitted, "every service drafted, no confirmation needed")

	require.Equal(t, 1, f.erp.createCount())
	submission := f.erp.created[0]
	require.Len(t, submission.Services, 2)
	assert.Equal(t, 101, submission.Services[0].ServiceID)
	assert.Equal(t, 102, submission.Services[1].ServiceID)
}

func TestSubmitFailurePreservesDrafts(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	_, err = f.svc.UpdateForm(context.Background(), view.SessionID, completeUpdate())
	require.NoError(t, err)

	f.erp.err = errors.New("erp rejected the payload")
	_, err = f.svc.Submit(context.Background(), view.SessionID, true)
	require.Error(t, err)
	require.Len(t, f.notifier.byType(models.NoticeError), 1)

	// The parked snapshot survives for a retry.
	view, err = f.svc.View(view.SessionID)
	require.NoError(t, err)
	assert.Contains(t, view.Drafted, 101)
	require.Len(t, view.Form.Charges, 1)

	f.erp.err = nil
	result, err := f.svc.Submit(context.Background(), view.SessionID, true)
	require.NoError(t, err)
	assert.True(t, result.Submitted)
}

func TestSubmitDuplicateWhileInFlight(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	_, err = f.svc.UpdateForm(context.Background(), view.SessionID, completeUpdate())
	require.NoError(t, err)

	f.erp.block = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), view.SessionID, true)
		done <- err
	}()

	// Wait for the first submission to reach the upstream call.
	require.Eventually(t, func() bool {
		sess, err := f.svc.session(view.SessionID)
		if err != nil {
			return false
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.submitting
	}, time.Second, 5*time.Millisecond)

	_, err = f.svc.Submit(context.Background(), view.SessionID, true)
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(f.erp.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.erp.createCount(), "exactly one persistence call")
}

func TestSubmitEditModeUpdatesInPlace(t *testing.T) {
	f := newFixture(twoAirServices())
	f.enquiries.records = map[int]*models.QuotationRecord{}
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1", QuotationID: "QTN-7", Origin: "edit"})
	require.NoError(t, err)

	_, err = f.svc.UpdateForm(context.Background(), view.SessionID, completeUpdate())
	require.NoError(t, err)

	result, err := f.svc.Submit(context.Background(), view.SessionID, true)
	require.NoError(t, err)
	assert.True(t, result.Submitted)
	assert.Equal(t, "QTN-7", result.QuotationID)

	f.erp.mu.Lock()
	defer f.erp.mu.Unlock()
	assert.Len(t, f.erp.updated, 1)
	assert.Empty(t, f.erp.created)
}

func TestApplyTariffMissLeavesFormUntouched(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	_, err = f.svc.ApplyTariff(context.Background(), view.SessionID, models.TariffLookup{PortOfLoad: "BOM", PortOfDisch: "DXB"})
	assert.ErrorIs(t, err, ErrNoTariff)
}

func TestResetDiscardsSessionAndDrafts(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	_, err = f.svc.Select(context.Background(), view.SessionID, 102)
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(view.SessionID))
	_, err = f.svc.View(view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, f.svc.drafts.Entries(view.SessionID))

	assert.ErrorIs(t, f.svc.Reset(view.SessionID), ErrSessionNotFound)
}

func TestSweepIdleDropsStaleSessions(t *testing.T) {
	f := newFixture(twoAirServices())
	view, err := f.svc.Open(context.Background(), OpenRequest{EnquiryID: "ENQ-1"})
	require.NoError(t, err)

	sess, err := f.svc.session(view.SessionID)
	require.NoError(t, err)
	sess.touched = time.Now().Add(-5 * time.Hour)

	assert.Equal(t, 1, f.svc.SweepIdle(4*time.Hour))
	_, err = f.svc.View(view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
