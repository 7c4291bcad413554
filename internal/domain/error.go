package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrValidation       = errors.New("validation failed")
	ErrAlreadyProcessed = errors.New("payment already processed")
	ErrPaymentDeclined  = errors.New("payment declined")
	ErrSessionNotFound  = errors.New("payment session not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limit exceeded")

	// Persistence errors
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")
)

// Validation failures. All of them satisfy errors.Is(err, ErrValidation).
var (
	ErrInvalidArgument       = fmt.Errorf("%w: invalid argument", ErrValidation)
	ErrMissingPaymentDetails = fmt.Errorf("%w: missing payment details", ErrValidation)
	ErrInvalidCardNumber     = fmt.Errorf("%w: invalid card number", ErrValidation)
	ErrInvalidCVV            = fmt.Errorf("%w: invalid CVV", ErrValidation)
)
