package quotation

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound means the drafting session id is unknown or expired.
	ErrSessionNotFound = errors.New("drafting session not found")
	// ErrUnknownService means the target id is not in the enquiry's service list.
	ErrUnknownService = errors.New("service not part of this enquiry")
	// ErrSubmitInFlight means a submission for this session is already running.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrNoTariff means no published rate card matches the lookup keys.
	ErrNoTariff = errors.New("no tariff published for this lane")
)

// ValidationError carries the per-field messages of a failed full
// validation pass. It blocks submission locally; no network call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("quotation form invalid: %d field error(s)", len(e.Fields))
}

// AsValidationError unwraps err into a ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
