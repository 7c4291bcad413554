//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/domain/ports/adapter"
	"advocate-payments/internal/domain/ports/repository"
)

// =============================
// In-memory store shared by the repository mocks
// =============================

type monthKey struct {
	advocateID  string
	year, month int
}

type memStore struct {
	mu       sync.Mutex
	payments map[string]*model.Payment // by id
	grants   []*model.AccessGrant
	monthly  map[monthKey]*model.MonthlyEarnings
	profiles map[string]*model.AdvocateProfile
}

func newMemStore() *memStore {
	return &memStore{
		payments: map[string]*model.Payment{},
		monthly:  map[monthKey]*model.MonthlyEarnings{},
		profiles: map[string]*model.AdvocateProfile{},
	}
}

// snapshot deep-copies the store so a transaction mock can roll back.
func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := newMemStore()
	for k, v := range s.payments {
		p := *v
		cp.payments[k] = &p
	}
	for _, g := range s.grants {
		gg := *g
		cp.grants = append(cp.grants, &gg)
	}
	for k, v := range s.monthly {
		m := *v
		cp.monthly[k] = &m
	}
	for k, v := range s.profiles {
		p := *v
		cp.profiles[k] = &p
	}
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = from.payments
	s.grants = from.grants
	s.monthly = from.monthly
	s.profiles = from.profiles
}

// ---- Payments ----

type MockPaymentRepo struct {
	store *memStore

	SaveFunc          func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	MarkCompletedFunc func(ctx context.Context, tx repository.Tx, id, txnID, method string, at time.Time) (bool, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	cp := *p
	m.store.payments[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	p, ok := m.store.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindBySessionID(ctx context.Context, tx repository.Tx, sessionID string) (*model.Payment, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, p := range m.store.payments {
		if p.SessionID == sessionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id, txnID, method string, at time.Time) (bool, error) {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, tx, id, txnID, method, at)
	}
	return m.transition(id, func(p *model.Payment) {
		p.Status = model.PaymentStatusCompleted
		p.TransactionID = txnID
		p.PaymentMethod = method
		p.ProcessedAt = &at
	})
}

func (m *MockPaymentRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	return m.transition(id, func(p *model.Payment) {
		p.Status = model.PaymentStatusFailed
		p.ProcessedAt = &at
	})
}

func (m *MockPaymentRepo) transition(id string, apply func(p *model.Payment)) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	p, ok := m.store.payments[id]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	apply(p)
	return true, nil
}

// ---- Access grants ----

type MockAccessGrantRepo struct {
	store *memStore

	CreateFunc func(ctx context.Context, tx repository.Tx, g *model.AccessGrant) error
}

var _ repository.AccessGrantRepository = (*MockAccessGrantRepo)(nil)

func (m *MockAccessGrantRepo) Create(ctx context.Context, tx repository.Tx, g *model.AccessGrant) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, g)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	cp := *g
	m.store.grants = append(m.store.grants, &cp)
	return nil
}

func (m *MockAccessGrantRepo) FindActive(ctx context.Context, tx repository.Tx, requestID, userID string, now time.Time) (*model.AccessGrant, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var found []*model.AccessGrant
	for _, g := range m.store.grants {
		if g.RequestID == requestID && g.UserID == userID && g.ValidAt(now) {
			found = append(found, g)
		}
	}
	if len(found) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ExpiresAt.After(found[j].ExpiresAt) })
	cp := *found[0]
	return &cp, nil
}

func (m *MockAccessGrantRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	n := 0
	for _, g := range m.store.grants {
		if g.IsActive && !now.Before(g.ExpiresAt) {
			g.IsActive = false
			n++
		}
	}
	return n, nil
}

// ---- Earnings ----

type MockMonthlyEarningsRepo struct {
	store *memStore
}

var _ repository.MonthlyEarningsRepository = (*MockMonthlyEarningsRepo)(nil)

func (m *MockMonthlyEarningsRepo) Add(ctx context.Context, tx repository.Tx, advocateID string, year, month int, amount decimal.Decimal) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	k := monthKey{advocateID, year, month}
	row, ok := m.store.monthly[k]
	if !ok {
		m.store.monthly[k] = &model.MonthlyEarnings{AdvocateID: advocateID, Year: year, Month: month, TotalAmount: amount, ConsultationCount: 1}
		return nil
	}
	row.TotalAmount = row.TotalAmount.Add(amount)
	row.ConsultationCount++
	return nil
}

func (m *MockMonthlyEarningsRepo) Find(ctx context.Context, tx repository.Tx, advocateID string, year, month int) (*model.MonthlyEarnings, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	row, ok := m.store.monthly[monthKey{advocateID, year, month}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

type MockProfileRepo struct {
	store *memStore

	FindByUserIDFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.AdvocateProfile, error)
}

var _ repository.AdvocateProfileRepository = (*MockProfileRepo)(nil)

func (m *MockProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.AdvocateProfile) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	cp := *p
	m.store.profiles[p.UserID] = &cp
	return nil
}

func (m *MockProfileRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.AdvocateProfile, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, tx, userID)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	p, ok := m.store.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfileRepo) AddEarnings(ctx context.Context, tx repository.Tx, userID string, amount decimal.Decimal) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	p, ok := m.store.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.TotalEarnings = p.TotalEarnings.Add(amount)
	p.TotalConsultations++
	return nil
}

// =============================
// Infra helpers for tests
// =============================

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// rollbackOnError makes the tx manager restore the store when fn fails.
func rollbackOnError(store *memStore) func(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return func(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
		snap := store.snapshot()
		if err := fn(ctx, repository.NoTX); err != nil {
			store.restore(snap)
			return err
		}
		return nil
	}
}

// ---- Gateway ----

type MockPaymentGateway struct {
	ChargeFunc func(ctx context.Context, c adapter.Charge) (adapter.Receipt, error)
	Calls      int
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (g *MockPaymentGateway) Name() string { return "mock" }

func (g *MockPaymentGateway) Charge(ctx context.Context, c adapter.Charge) (adapter.Receipt, error) {
	g.Calls++
	if g.ChargeFunc != nil {
		return g.ChargeFunc(ctx, c)
	}
	return adapter.Receipt{TransactionID: "fake_txn_1700000000000_abc123xyz"}, nil
}

// ---- In-memory Locker ----

type MockLocker struct {
	mu   sync.Mutex
	held map[string]string
}

var _ adapter.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", adapter.ErrLockHeld
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

func (l *MockLocker) IsHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key] != ""
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
