package booking

import (
    "errors"
    "fmt"
)

// ValidationError reports user input the core refuses to accept, such as
// a guest count below a locked floor or a pick beyond a tier allowance.
// Handlers surface these immediately and block forward progress; they
// are never silently swallowed.
type ValidationError struct {
    Field  string
    Reason string
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
    var ve *ValidationError
    return errors.As(err, &ve)
}

// AsValidation unwraps err into a ValidationError when possible.
func AsValidation(err error) (*ValidationError, bool) {
    var ve *ValidationError
    if errors.As(err, &ve) {
        return ve, true
    }
    return nil, false
}

// ErrEventDateRequired is returned when a deposit-plus-monthly plan is
// requested before the event date is confirmed.  A full-payment plan
// stays available; the UI blocks progression past plan selection until
// the date exists.
var ErrEventDateRequired = errors.New("event date required to schedule installments")

// ErrTierRequired is returned when pricing or checkout runs before a
// tier has been selected.
var ErrTierRequired = errors.New("tier not selected")

// ErrChargeFailed wraps a failure reported by the payment collaborator.
var ErrChargeFailed = errors.New("payment charge failed")
