package quotation

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

const validUptoLayout = "2006-01-02"

// validateScalars checks the quotation header. Structural validation only
// requires the fields needed to park a usable snapshot; the full pass adds
// the rules enforced at submit time.
func validateScalars(scalars models.QuotationScalars, full bool) map[string]string {
	errs := make(map[string]string)

	if err := validation.Validate(scalars.Currency, validation.Required); err != nil {
		errs["currency"] = err.Error()
	}
	if err := validation.Validate(scalars.ValidUpto, validation.Required); err != nil {
		errs["valid_upto"] = err.Error()
	}

	if full {
		if scalars.ValidUpto != "" {
			if err := validation.Validate(scalars.ValidUpto, validation.Date(validUptoLayout)); err != nil {
				errs["valid_upto"] = err.Error()
			}
		}
		if err := validation.Validate(scalars.Status, validation.Required); err != nil {
			errs["status"] = err.Error()
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateChargeLine checks the required fields of a single charge row.
// Field keys are prefixed with the row index so errors land on the right
// table cell.
func validateChargeLine(index int, line models.ChargeLine) map[string]string {
	errs := make(map[string]string)
	prefix := fmt.Sprintf("charges[%d].", index)

	if err := validation.Validate(line.ChargeName, validation.Required); err != nil {
		errs[prefix+"charge_name"] = err.Error()
	}
	if err := validation.Validate(line.Currency, validation.Required); err != nil {
		errs[prefix+"currency"] = err.Error()
	}
	if err := validation.Validate(line.Unit, validation.Required); err != nil {
		errs[prefix+"unit"] = err.Error()
	}
	if line.Quantity.IsZero() {
		errs[prefix+"quantity"] = "cannot be blank"
	}
	if line.SellPerUnit.IsZero() {
		errs[prefix+"sell_per_unit"] = "cannot be blank"
	}
	if line.CostPerUnit.IsZero() {
		errs[prefix+"cost_per_unit"] = "cannot be blank"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateForm runs the structural or full pass over one form session and
// returns the accumulated field errors, nil when clean.
func validateForm(form models.FormSession, full bool) map[string]string {
	errs := validateScalars(form.Scalars, full)
	for i, line := range form.Charges {
		for key, msg := range validateChargeLine(i, line) {
			if errs == nil {
				errs = make(map[string]string)
			}
			errs[key] = msg
		}
	}
	return errs
}

// formComplete decides whether a parked or live form counts as "filled" for
// the submission gate: valid scalars, a non-empty charge list, and every
// row individually complete. An empty charge list always fails, whatever
// the scalars say.
func formComplete(form models.FormSession) bool {
	if len(form.Charges) == 0 {
		return false
	}
	return validateForm(form, false) == nil
}
