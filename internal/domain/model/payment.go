package model

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"   // session created, waiting for card details
	PaymentStatusCompleted PaymentStatus = "COMPLETED" // simulated charge succeeded
	PaymentStatusFailed    PaymentStatus = "FAILED"    // simulated charge declined
)

const (
	minCardNumberLen = 13
	minCVVLen        = 3

	maskedMethodPrefix = "FAKE CARD ****"

	// amounts are stored as NUMERIC(12,2)
	amountScale = 2
)

var maxAmount = decimal.New(1, 10)

// Payment records a consultation payment made by a client to an advocate.
type Payment struct {
	ID            string          // UUID
	SessionID     string          // external reference handed to the checkout page
	Status        PaymentStatus   // see constants above
	Amount        decimal.Decimal // consultation fee
	RequestID     string          // consultation request being paid for
	ClientID      string          // paying user
	AdvocateID    string          // user id of the advocate credited with the earnings
	ProcessedAt   *time.Time      // set once the payment leaves PENDING
	PaymentMethod string          // masked card descriptor
	TransactionID string          // synthetic gateway transaction id
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPendingPayment builds a PENDING payment for the given consultation request.
func NewPendingPayment(sessionID, requestID, clientID, advocateID string, amount decimal.Decimal, now time.Time) (*Payment, error) {
	in := InitiateInput{RequestID: requestID, ClientID: clientID, AdvocateID: advocateID}
	if sessionID == "" || validate.Struct(in) != nil {
		return nil, domain.ErrInvalidArgument
	}
	if !ValidAmount(amount) {
		return nil, domain.ErrInvalidArgument
	}
	return &Payment{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Status:     PaymentStatusPending,
		Amount:     amount,
		RequestID:  requestID,
		ClientID:   clientID,
		AdvocateID: advocateID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ValidAmount reports whether amount is positive, has at most two decimal
// places and fits the amount column.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() &&
		amount.Equal(amount.Truncate(amountScale)) &&
		amount.LessThan(maxAmount)
}

func (p *Payment) IsPending() bool { return p.Status == PaymentStatusPending }

// InitiateInput carries the identifiers needed to open a payment session.
type InitiateInput struct {
	RequestID  string `validate:"required"`
	ClientID   string `validate:"required"`
	AdvocateID string `validate:"required"`
}

// CardDetails is what the checkout page submits to complete a payment session.
type CardDetails struct {
	SessionID      string `json:"session_id" validate:"required"`
	CardNumber     string `json:"card_number" validate:"required"`
	Expiry         string `json:"expiry" validate:"required"`
	CVV            string `json:"cvv" validate:"required"`
	CardholderName string `json:"cardholder_name" validate:"required"`
}

var validate = validator.New()

// Validate checks presence of every field, then the card number and CVV length.
// The expiry is only checked for presence.
func (c CardDetails) Validate() error {
	if err := validate.Struct(c); err != nil {
		return domain.ErrMissingPaymentDetails
	}
	if utf8.RuneCountInString(stripSpaces(c.CardNumber)) < minCardNumberLen {
		return domain.ErrInvalidCardNumber
	}
	if utf8.RuneCountInString(c.CVV) < minCVVLen {
		return domain.ErrInvalidCVV
	}
	return nil
}

// MaskedMethod returns the payment method descriptor stored on the payment,
// keeping only the last four characters of the card number as supplied.
func (c CardDetails) MaskedMethod() string {
	return maskedMethodPrefix + lastRunes(c.CardNumber, 4)
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
