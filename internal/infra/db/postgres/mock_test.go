//go:build !integration

package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/domain/ports/repository"
	red "advocate-payments/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerProfileRepo mocks the database repository that the profile decorator wraps.
type mockInnerProfileRepo struct {
	SaveFunc         func(ctx context.Context, tx repository.Tx, p *model.AdvocateProfile) error
	FindByUserIDFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.AdvocateProfile, error)
	AddEarningsFunc  func(ctx context.Context, tx repository.Tx, userID string, amount decimal.Decimal) error
}

func (m *mockInnerProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.AdvocateProfile) error {
	return m.SaveFunc(ctx, tx, p)
}
func (m *mockInnerProfileRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.AdvocateProfile, error) {
	return m.FindByUserIDFunc(ctx, tx, userID)
}
func (m *mockInnerProfileRepo) AddEarnings(ctx context.Context, tx repository.Tx, userID string, amount decimal.Decimal) error {
	return m.AddEarningsFunc(ctx, tx, userID, amount)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc         func(ctx context.Context, key string) (string, error)
	SetFunc         func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNXFunc       func(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	DelFunc         func(ctx context.Context, keys ...string) error
	DelIfEqualsFunc func(ctx context.Context, key, value string) (bool, error)
	PingFunc        func(ctx context.Context) error
	IncrFunc        func(ctx context.Context, key string) (int64, error)
	ExpireFunc      func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc       func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return m.SetNXFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) DelIfEquals(ctx context.Context, key, value string) (bool, error) {
	return m.DelIfEqualsFunc(ctx, key, value)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
