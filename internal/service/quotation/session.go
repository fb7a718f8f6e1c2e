package quotation

import (
	"fmt"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

// transitions is the explicit lifecycle of one form session. Submitted is
// terminal within a session except through re-selection, which reopens the
// form to Dirty on the next edit.
var transitions = map[models.SessionState][]models.SessionState{
	models.StateUninitialized: {models.StateDefaulted, models.StateHydrated},
	models.StateDefaulted:     {models.StateDirty, models.StateHydrated},
	models.StateHydrated:      {models.StateDirty, models.StateValidated},
	models.StateDirty:         {models.StateValidated, models.StateDirty},
	models.StateValidated:     {models.StateSubmitted, models.StateDirty},
	models.StateSubmitted:     {models.StateDirty, models.StateValidated},
}

// canTransition reports whether the lifecycle permits moving between the
// two states.
func canTransition(from, to models.SessionState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves a form to the target state or reports the illegal move.
func transition(form *models.FormSession, to models.SessionState) error {
	if form.State == to {
		return nil
	}
	if !canTransition(form.State, to) {
		return fmt.Errorf("illegal form transition %s -> %s", form.State, to)
	}
	form.State = to
	return nil
}

// markDirty records an edit. Edits are legal from every post-mount state,
// so this never fails; it simply reopens Submitted or Validated forms.
func markDirty(form *models.FormSession) {
	if form.State == models.StateUninitialized {
		form.State = models.StateDefaulted
	}
	form.State = models.StateDirty
	form.FieldErrors = nil
}

// defaultForm resets the live form to hard defaults for a service that has
// neither a parked snapshot nor a persisted record.
func defaultForm(serviceID int, homeCountry string) models.FormSession {
	currency := homeCurrencies[homeCountry]
	if currency == "" {
		currency = "USD"
	}
	return models.FormSession{
		EntityID: serviceID,
		State:    models.StateDefaulted,
		Scalars: models.QuotationScalars{
			Currency: currency,
			Status:   "DRAFT",
		},
		Charges: []models.ChargeLine{},
	}
}

// hydrateForm builds the live form from a previously persisted quotation
// record, recomputing derived totals rather than trusting stored ones.
func hydrateForm(record models.QuotationRecord) models.FormSession {
	form := models.FormSession{
		EntityID: record.ServiceID,
		State:    models.StateHydrated,
		Scalars:  record.Scalars,
		Charges:  make([]models.ChargeLine, len(record.Charges)),
	}
	copy(form.Charges, record.Charges)
	RecomputeCharges(form.Charges)
	return form
}
