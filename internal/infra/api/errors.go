package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/infra/logging"
)

const (
	msgMissingDetails   = "Missing payment details"
	msgInvalidCard      = "Invalid card number"
	msgInvalidCVV       = "Invalid CVV"
	msgSessionNotFound  = "Payment session not found"
	msgAlreadyProcessed = "Payment already processed"
	msgDeclined         = "Payment declined - insufficient funds (simulated)"
	msgInvalidBody      = "Invalid request body"
	msgInvalidArgument  = "Invalid request"
	msgUnauthorized     = "Unauthorized"
	msgRateLimited      = "Too many requests"
	msgInternal         = "Internal server error"
)

// statusFor maps a domain error to the HTTP status and public message.
// Anything it does not recognise is an internal error.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingPaymentDetails):
		return http.StatusBadRequest, msgMissingDetails
	case errors.Is(err, domain.ErrInvalidCardNumber):
		return http.StatusBadRequest, msgInvalidCard
	case errors.Is(err, domain.ErrInvalidCVV):
		return http.StatusBadRequest, msgInvalidCVV
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, msgInvalidArgument
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, msgSessionNotFound
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return http.StatusBadRequest, msgAlreadyProcessed
	case errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusPaymentRequired, msgDeclined
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// writeErr answers with the mapped status; internal errors are logged in full.
func writeErr(w http.ResponseWriter, logger *zerolog.Logger, r *http.Request, err error) {
	code, msg := statusFor(err)
	if code == http.StatusInternalServerError {
		l := logging.With(r.Context(), logger)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	if code == http.StatusPaymentRequired {
		writeJSON(w, code, declineResponse{Success: false, Error: msg})
		return
	}
	writeJSON(w, code, errorResponse{Error: msg})
}
