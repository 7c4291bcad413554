package adapter

import (
	"context"

	"github.com/shopspring/decimal"
)

// Charge is what the use case asks a gateway to collect.
type Charge struct {
	SessionID  string
	Amount     decimal.Decimal
	CardNumber string
}

// Receipt is returned for an accepted charge.
type Receipt struct {
	TransactionID string
}

// PaymentGateway is the port for charging a card.
type PaymentGateway interface {
	Name() string

	// Charge collects the amount. A declined card is reported as domain.ErrPaymentDeclined.
	Charge(ctx context.Context, c Charge) (Receipt, error)
}
