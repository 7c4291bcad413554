//go:build !integration

package api_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/domain/ports/repository"
)

//
// ---------------- in-memory infra mocks (repos/tx) ----------------
//

type monthKey struct {
	advocateID  string
	year, month int
}

type memDB struct {
	mu       sync.Mutex
	payments map[string]*model.Payment
	grants   []model.AccessGrant
	monthly  map[monthKey]model.MonthlyEarnings
	profiles map[string]model.AdvocateProfile
}

func newMemDB() *memDB {
	return &memDB{
		payments: map[string]*model.Payment{},
		monthly:  map[monthKey]model.MonthlyEarnings{},
		profiles: map[string]model.AdvocateProfile{},
	}
}

func (db *memDB) clone() *memDB {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := newMemDB()
	for k, v := range db.payments {
		p := *v
		cp.payments[k] = &p
	}
	cp.grants = append(cp.grants, db.grants...)
	for k, v := range db.monthly {
		cp.monthly[k] = v
	}
	for k, v := range db.profiles {
		cp.profiles[k] = v
	}
	return cp
}

func (db *memDB) restore(from *memDB) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.payments, db.grants, db.monthly, db.profiles = from.payments, from.grants, from.monthly, from.profiles
}

func (db *memDB) payment(sessionID string) *model.Payment {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, p := range db.payments {
		if p.SessionID == sessionID {
			cp := *p
			return &cp
		}
	}
	return nil
}

type memPaymentRepo struct{ db *memDB }

func (r memPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *p
	r.db.payments[p.ID] = &cp
	return nil
}

func (r memPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPaymentRepo) FindBySessionID(ctx context.Context, tx repository.Tx, sessionID string) (*model.Payment, error) {
	if p := r.db.payment(sessionID); p != nil {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (r memPaymentRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id, txnID, method string, at time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.payments[id]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status, p.TransactionID, p.PaymentMethod, p.ProcessedAt = model.PaymentStatusCompleted, txnID, method, &at
	return true, nil
}

func (r memPaymentRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.payments[id]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status, p.ProcessedAt = model.PaymentStatusFailed, &at
	return true, nil
}

type memGrantRepo struct{ db *memDB }

func (r memGrantRepo) Create(ctx context.Context, tx repository.Tx, g *model.AccessGrant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.grants = append(r.db.grants, *g)
	return nil
}

func (r memGrantRepo) FindActive(ctx context.Context, tx repository.Tx, requestID, userID string, now time.Time) (*model.AccessGrant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.grants {
		g := r.db.grants[i]
		if g.RequestID == requestID && g.UserID == userID && g.ValidAt(now) {
			return &g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memGrantRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	return 0, nil
}

type memMonthlyRepo struct{ db *memDB }

func (r memMonthlyRepo) Add(ctx context.Context, tx repository.Tx, advocateID string, year, month int, amount decimal.Decimal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := monthKey{advocateID, year, month}
	m, ok := r.db.monthly[k]
	if !ok {
		m = model.MonthlyEarnings{AdvocateID: advocateID, Year: year, Month: month}
	}
	m.TotalAmount = m.TotalAmount.Add(amount)
	m.ConsultationCount++
	r.db.monthly[k] = m
	return nil
}

func (r memMonthlyRepo) Find(ctx context.Context, tx repository.Tx, advocateID string, year, month int) (*model.MonthlyEarnings, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.monthly[monthKey{advocateID, year, month}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

type memProfileRepo struct{ db *memDB }

func (r memProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.AdvocateProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.profiles[p.UserID] = *p
	return nil
}

func (r memProfileRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.AdvocateProfile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r memProfileRepo) AddEarnings(ctx context.Context, tx repository.Tx, userID string, amount decimal.Decimal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.TotalEarnings = p.TotalEarnings.Add(amount)
	p.TotalConsultations++
	r.db.profiles[userID] = p
	return nil
}

// memTxManager restores the store when fn fails.
type memTxManager struct{ db *memDB }

func (m memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	snap := m.db.clone()
	if err := fn(ctx, repository.NoTX); err != nil {
		m.db.restore(snap)
		return err
	}
	return nil
}

type stubLimiter struct{ allow bool }

func (l stubLimiter) Allow(ctx context.Context, key string) (bool, error) { return l.allow, nil }
