package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnauthenticated    = errors.New("not logged in")
	ErrForbidden          = errors.New("operation not permitted")
	ErrPaymentDeclined    = errors.New("payment declined")

	ErrIllegalTransition = fmt.Errorf("%w: illegal order status transition", ErrValidation)
	ErrEmptyCart         = fmt.Errorf("%w: no selected items to checkout", ErrValidation)
)

// Invalid wraps ErrValidation with a field-level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
