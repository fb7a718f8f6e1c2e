package quotation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

func TestTransitionLifecycle(t *testing.T) {
	form := models.FormSession{State: models.StateUninitialized}

	require.NoError(t, transition(&form, models.StateDefaulted))
	require.NoError(t, transition(&form, models.StateDirty))
	require.NoError(t, transition(&form, models.StateValidated))
	require.NoError(t, transition(&form, models.StateSubmitted))

	// Editing after submission reopens the form.
	require.NoError(t, transition(&form, models.StateDirty))
	assert.Equal(t, models.StateDirty, form.State)
}

func TestTransitionRejectsIllegalMoves(t *testing.T) {
	form := models.FormSession{State: models.StateUninitialized}
	assert.Error(t, transition(&form, models.StateSubmitted))
	assert.Error(t, transition(&form, models.StateValidated))

	form.State = models.StateDefaulted
	assert.Error(t, transition(&form, models.StateSubmitted))
}

func TestTransitionSameStateIsNoop(t *testing.T) {
	form := models.FormSession{State: models.StateDirty}
	require.NoError(t, transition(&form, models.StateDirty))
	assert.Equal(t, models.StateDirty, form.State)
}

func TestMarkDirtyClearsFieldErrors(t *testing.T) {
	form := models.FormSession{
		State:       models.StateValidated,
		FieldErrors: map[string]string{"currency": "cannot be blank"},
	}
	markDirty(&form)
	assert.Equal(t, models.StateDirty, form.State)
	assert.Nil(t, form.FieldErrors)
}

func TestDefaultForm(t *testing.T) {
	form := defaultForm(7, "IN")
	assert.Equal(t, 7, form.EntityID)
	assert.Equal(t, models.StateDefaulted, form.State)
	assert.Equal(t, "INR", form.Scalars.Currency)
	assert.Equal(t, "DRAFT", form.Scalars.Status)
	assert.Empty(t, form.Charges)

	form = defaultForm(7, "ZZ")
	assert.Equal(t, "USD", form.Scalars.Currency, "unknown home country falls back to USD")
}

func TestHydrateFormRecomputesTotals(t *testing.T) {
	record := models.QuotationRecord{
		ServiceID: 3,
		Scalars:   models.QuotationScalars{Currency: "INR", ValidUpto: "2026-12-31"},
		Charges: []models.ChargeLine{{
			ChargeName:  "AIR FREIGHT",
			Currency:    "USD",
			ROE:         decimal.RequireFromString("88.75"),
			Unit:        "KG",
			Quantity:    decimal.NewFromInt(2),
			SellPerUnit: decimal.NewFromInt(500),
			CostPerUnit: decimal.NewFromInt(400),
			TotalSell:   "999.99",
			TotalCost:   "999.99",
		}},
	}

	form := hydrateForm(record)
	assert.Equal(t, models.StateHydrated, form.State)
	assert.Equal(t, "88750.00", form.Charges[0].TotalSell)
	assert.Equal(t, "71000.00", form.Charges[0].TotalCost)
}

func TestValidateFormStructuralVsFull(t *testing.T) {
	form := models.FormSession{
		Scalars: models.QuotationScalars{Currency: "INR", ValidUpto: "2026-12-31"},
		Charges: []models.ChargeLine{{
			ChargeName:  "AIR FREIGHT",
			Currency:    "USD",
			Unit:        "KG",
			Quantity:    decimal.NewFromInt(1),
			SellPerUnit: decimal.NewFromInt(2),
			CostPerUnit: decimal.NewFromInt(1),
		}},
	}

	assert.Nil(t, validateForm(form, false))

	// The full pass additionally requires a status.
	errs := validateForm(form, true)
	require.NotNil(t, errs)
	assert.Contains(t, errs, "status")
}

func TestValidateChargeLineIndexesFieldKeys(t *testing.T) {
	form := models.FormSession{
		Scalars: models.QuotationScalars{Currency: "INR", ValidUpto: "2026-12-31", Status: "DRAFT"},
		Charges: []models.ChargeLine{
			{ChargeName: "THC", Currency: "INR", Unit: "CNTR", Quantity: decimal.NewFromInt(1), SellPerUnit: decimal.NewFromInt(2), CostPerUnit: decimal.NewFromInt(1)},
			{ChargeName: "", Currency: "INR", Unit: "CNTR", Quantity: decimal.NewFromInt(1), SellPerUnit: decimal.NewFromInt(2), CostPerUnit: decimal.NewFromInt(1)},
		},
	}

	errs := validateForm(form, true)
	require.NotNil(t, errs)
	assert.Contains(t, errs, "charges[1].charge_name")
	assert.NotContains(t, errs, "charges[0].charge_name")
}

func TestFormCompleteRequiresCharges(t *testing.T) {
	form := models.FormSession{
		Scalars: models.QuotationScalars{Currency: "INR", ValidUpto: "2026-12-31", Status: "DRAFT"},
	}
	assert.False(t, formComplete(form), "an empty charge list never counts as filled")

	form.Charges = []models.ChargeLine{{
		ChargeName:  "AIR FREIGHT",
		Currency:    "USD",
		Unit:        "KG",
		Quantity:    decimal.NewFromInt(1),
		SellPerUnit: decimal.NewFromInt(2),
		CostPerUnit: decimal.NewFromInt(1),
	}}
	assert.True(t, formComplete(form))
}
