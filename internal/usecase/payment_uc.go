// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/domain/ports/adapter"
	"advocate-payments/internal/domain/ports/repository"
	"advocate-payments/internal/infra/logging"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

const (
	sessionPrefix     = "fake_session_"
	defaultResultPath = "/payment/result"
	defaultLockTTL    = 30 * time.Second
)

type PaymentUseCase interface {
	// Initiate opens a PENDING payment session for a consultation request.
	Initiate(ctx context.Context, in InitiateRequest) (*model.Payment, error)
	// Complete charges the card for a PENDING session and, on success, grants
	// access and credits the advocate.
	Complete(ctx context.Context, card model.CardDetails) (*CompletionResult, error)
	// GetBySession returns the payment behind a session id.
	GetBySession(ctx context.Context, sessionID string) (*model.Payment, error)
}

type InitiateRequest struct {
	RequestID  string
	ClientID   string
	AdvocateID string
	Amount     decimal.Decimal
}

// CompletionResult describes a successfully completed payment.
type CompletionResult struct {
	Payment       *model.Payment
	Grant         *model.AccessGrant
	TransactionID string
	RedirectURL   string
}

// PaymentOptions tunes the completion flow. Zero values fall back to defaults.
type PaymentOptions struct {
	AccessTTL  time.Duration // lifetime of the access grant
	LockTTL    time.Duration // per-session lock lifetime
	ResultPath string        // checkout result page the client is redirected to
	Dev        bool          // log card numbers unredacted
}

func (o PaymentOptions) withDefaults() PaymentOptions {
	if o.AccessTTL <= 0 {
		o.AccessTTL = model.DefaultAccessTTL
	}
	if o.LockTTL <= 0 {
		o.LockTTL = defaultLockTTL
	}
	if o.ResultPath == "" {
		o.ResultPath = defaultResultPath
	}
	return o
}

type paymentUC struct {
	payments repository.PaymentRepository
	grants   repository.AccessGrantRepository
	monthly  repository.MonthlyEarningsRepository
	profiles repository.AdvocateProfileRepository
	gateway  adapter.PaymentGateway
	locker   adapter.Locker
	tm       repository.TransactionManager
	opts     PaymentOptions
	log      *zerolog.Logger
	now      func() time.Time
}

// NewPaymentUseCase wires the completion flow. locker and logger may be nil.
func NewPaymentUseCase(
	payments repository.PaymentRepository,
	grants repository.AccessGrantRepository,
	monthly repository.MonthlyEarningsRepository,
	profiles repository.AdvocateProfileRepository,
	gateway adapter.PaymentGateway,
	locker adapter.Locker,
	tm repository.TransactionManager,
	opts PaymentOptions,
	logger *zerolog.Logger,
) *paymentUC {
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	ucLog := logger.With().Str("component", "PaymentUseCase").Logger()
	return &paymentUC{
		payments: payments,
		grants:   grants,
		monthly:  monthly,
		profiles: profiles,
		gateway:  gateway,
		locker:   locker,
		tm:       tm,
		opts:     opts.withDefaults(),
		log:      &ucLog,
		now:      time.Now,
	}
}

func (u *paymentUC) Initiate(ctx context.Context, in InitiateRequest) (*model.Payment, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Initiate")()
	if in.AdvocateID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := u.profiles.FindByUserID(ctx, repository.NoTX, in.AdvocateID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown advocate %s", domain.ErrInvalidArgument, in.AdvocateID)
		}
		return nil, fmt.Errorf("load advocate profile: %w", err)
	}

	sessionID := sessionPrefix + ulid.Make().String()
	p, err := model.NewPendingPayment(sessionID, in.RequestID, in.ClientID, in.AdvocateID, in.Amount, u.now())
	if err != nil {
		return nil, err
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}
	u.log.Info().Str("session_id", p.SessionID).Str("payment_id", p.ID).Str("amount", p.Amount.String()).Msg("payment session created")
	return p, nil
}

func (u *paymentUC) GetBySession(ctx context.Context, sessionID string) (*model.Payment, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidArgument
	}
	p, err := u.payments.FindBySessionID(ctx, repository.NoTX, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find payment by session: %w", err)
	}
	return p, nil
}

// Complete runs validation, the PENDING check, the simulated charge and then
// the dependent writes. The status change is conditional on the row still
// being PENDING, and on success it shares one transaction with the access
// grant and both earnings updates.
func (u *paymentUC) Complete(ctx context.Context, card model.CardDetails) (*CompletionResult, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Complete")()
	if err := card.Validate(); err != nil {
		return nil, err
	}
	log := u.log.With().
		Str("session_id", card.SessionID).
		Str("card", logging.Redact(card.CardNumber, u.opts.Dev)).
		Logger()

	p, err := u.GetBySession(ctx, card.SessionID)
	if err != nil {
		return nil, err
	}
	if !p.IsPending() {
		return nil, domain.ErrAlreadyProcessed
	}

	unlock, err := u.lockSession(ctx, card.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	receipt, chargeErr := u.gateway.Charge(ctx, adapter.Charge{
		SessionID:  p.SessionID,
		Amount:     p.Amount,
		CardNumber: card.CardNumber,
	})
	now := u.now()

	if errors.Is(chargeErr, domain.ErrPaymentDeclined) {
		ok, err := u.payments.MarkFailed(ctx, repository.NoTX, p.ID, now)
		if err != nil {
			return nil, fmt.Errorf("mark payment failed: %w", err)
		}
		if !ok {
			return nil, domain.ErrAlreadyProcessed
		}
		log.Info().Str("payment_id", p.ID).Msg("simulated payment declined")
		return nil, chargeErr
	}
	if chargeErr != nil {
		return nil, fmt.Errorf("charge via %s: %w", u.gateway.Name(), chargeErr)
	}

	method := card.MaskedMethod()
	var grant *model.AccessGrant
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ok, err := u.payments.MarkCompleted(ctx, tx, p.ID, receipt.TransactionID, method, now)
		if err != nil {
			return fmt.Errorf("mark payment completed: %w", err)
		}
		if !ok {
			return domain.ErrAlreadyProcessed
		}

		grant, err = model.NewAccessGrant(p.RequestID, p.ClientID, now, u.opts.AccessTTL)
		if err != nil {
			return fmt.Errorf("build access grant: %w", err)
		}
		if err := u.grants.Create(ctx, tx, grant); err != nil {
			return fmt.Errorf("create access grant: %w", err)
		}

		year, month := model.EarningsPeriod(now)
		if err := u.monthly.Add(ctx, tx, p.AdvocateID, year, month, p.Amount); err != nil {
			return fmt.Errorf("upsert monthly earnings: %w", err)
		}
		if err := u.profiles.AddEarnings(ctx, tx, p.AdvocateID, p.Amount); err != nil {
			return fmt.Errorf("credit advocate profile: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyProcessed) {
			log.Error().Err(err).Str("payment_id", p.ID).Str("transaction_id", receipt.TransactionID).Msg("completion rolled back")
		}
		return nil, err
	}

	p.Status = model.PaymentStatusCompleted
	p.TransactionID = receipt.TransactionID
	p.PaymentMethod = method
	p.ProcessedAt = &now
	p.UpdatedAt = now

	log.Info().Str("payment_id", p.ID).Str("transaction_id", receipt.TransactionID).Msg("fake payment processed successfully")

	return &CompletionResult{
		Payment:       p,
		Grant:         grant,
		TransactionID: receipt.TransactionID,
		RedirectURL:   u.redirectURL(receipt.TransactionID, p.Amount),
	}, nil
}

func (u *paymentUC) redirectURL(transactionID string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s?success=true&transaction_id=%s&amount=%s",
		u.opts.ResultPath, url.QueryEscape(transactionID), url.QueryEscape(amount.String()))
}

// lockSession takes the per-session lock when a locker is configured.
// Contention means a duplicate submission is in flight. Other locker
// failures only lose the early guard; the conditional update still holds.
func (u *paymentUC) lockSession(ctx context.Context, sessionID string) (func(), error) {
	noop := func() {}
	if u.locker == nil {
		return noop, nil
	}
	key := "payment:session:" + sessionID
	token, err := u.locker.TryLock(ctx, key, u.opts.LockTTL)
	if err != nil {
		if errors.Is(err, adapter.ErrLockHeld) {
			return nil, domain.ErrAlreadyProcessed
		}
		u.log.Warn().Err(err).Str("session_id", sessionID).Msg("session lock unavailable, continuing without it")
		return noop, nil
	}
	return func() {
		// the request context may already be cancelled here
		uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := u.locker.Unlock(uctx, key, token); err != nil {
			u.log.Warn().Err(err).Str("session_id", sessionID).Msg("session unlock failed")
		}
	}, nil
}
