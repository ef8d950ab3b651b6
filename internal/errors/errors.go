package errors

import (
	"errors"
	"net/http"
)

// Business-rule failures. Retrying does not change the outcome.
var (
	ErrInsufficientSeats = errors.New("not enough seats available")
	ErrTicketUnavailable = errors.New("ticket is hidden or not approved")
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrForbidden         = errors.New("operation is forbidden")
	ErrDeparturePassed   = errors.New("departure time has already passed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
)

// ErrPaymentIncomplete is a poll state: the gateway has not seen the payment yet.
var ErrPaymentIncomplete = errors.New("payment not completed")

// ErrDuplicatePayment marks a transaction reference that was already applied.
// Callers treat it as success.
var ErrDuplicatePayment = errors.New("payment already recorded")

// ErrGatewayUnavailable is transient and may be retried with the same key.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// IsRetryable reports whether the caller may repeat the request unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable) || errors.Is(err, ErrPaymentIncomplete)
}

// HTTPStatus maps an engine error onto the status code the HTTP layer returns.
func HTTPStatus(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrDuplicatePayment):
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInsufficientSeats),
		errors.Is(err, ErrTicketUnavailable),
		errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrDeparturePassed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPaymentIncomplete):
		return http.StatusAccepted
	case errors.Is(err, ErrGatewayUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
