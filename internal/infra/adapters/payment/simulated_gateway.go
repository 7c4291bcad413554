package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*SimulatedGateway)(nil)

// DefaultDeclineProbability is the share of charges the simulator declines.
const DefaultDeclineProbability = 0.05

const (
	txnPrefix    = "fake_txn_"
	txnSuffixLen = 9
	txnAlphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// SimulatedGateway approves or declines charges at random without talking to
// any provider. Tests pass a seeded source (or a probability of 0 or 1) to
// force either branch.
type SimulatedGateway struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	decline float64
	now     func() time.Time
}

// NewSimulatedGateway returns a gateway declining with the given probability.
// A nil src seeds from the clock.
func NewSimulatedGateway(declineProbability float64, src rand.Source) *SimulatedGateway {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	if declineProbability < 0 {
		declineProbability = 0
	}
	return &SimulatedGateway{
		rnd:     rand.New(src),
		decline: declineProbability,
		now:     time.Now,
	}
}

func (g *SimulatedGateway) Name() string { return "simulated" }

// Charge draws a uniform value in [0,1); below the decline probability the
// charge is refused with domain.ErrPaymentDeclined.
func (g *SimulatedGateway) Charge(ctx context.Context, c adapter.Charge) (adapter.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return adapter.Receipt{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rnd.Float64() < g.decline {
		return adapter.Receipt{}, fmt.Errorf("%w: insufficient funds (simulated)", domain.ErrPaymentDeclined)
	}
	return adapter.Receipt{TransactionID: g.transactionID()}, nil
}

// transactionID builds fake_txn_<unix millis>_<9 base36 chars>. Collisions are not checked.
func (g *SimulatedGateway) transactionID() string {
	suffix := make([]byte, txnSuffixLen)
	for i := range suffix {
		suffix[i] = txnAlphabet[g.rnd.Intn(len(txnAlphabet))]
	}
	return fmt.Sprintf("%s%d_%s", txnPrefix, g.now().UnixMilli(), suffix)
}
