package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/domain/ports/repository"
	"advocate-payments/internal/infra/metrics"
	red "advocate-payments/internal/infra/redis"
)

var _ repository.AdvocateProfileRepository = (*profileRepoCacheDecorator)(nil)

// profileRepoCacheDecorator caches reads that run outside a transaction.
// Reads inside a transaction and all writes go to the inner repository;
// writes drop the cached entry once their transaction has committed.
type profileRepoCacheDecorator struct {
	inner repository.AdvocateProfileRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewProfileRepoCacheDecorator(inner repository.AdvocateProfileRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.AdvocateProfileRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &profileRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func profileKey(userID string) string { return fmt.Sprintf("advocate_profile:%s", userID) }

func (d *profileRepoCacheDecorator) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.AdvocateProfile, error) {
	if tx != repository.NoTX {
		return d.inner.FindByUserID(ctx, tx, userID)
	}
	key := profileKey(userID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var p model.AdvocateProfile
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("advocate_profile", "hit")
			return &p, nil
		}
	} else if !errors.Is(err, red.Nil) {
		metrics.IncCacheRequest("advocate_profile", "error")
		d.log.Warn().Err(err).Str("key", key).Msg("profile cache read failed")
	}

	metrics.IncCacheRequest("advocate_profile", "miss")
	p, err := d.inner.FindByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		if err := d.cache.Set(ctx, key, b, d.ttl); err != nil {
			d.log.Warn().Err(err).Str("key", key).Msg("profile cache write failed")
		}
	}
	return p, nil
}

func (d *profileRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.AdvocateProfile) error {
	if err := d.inner.Save(ctx, tx, p); err != nil {
		return err
	}
	repository.AfterCommit(ctx, func(ctx context.Context) { d.invalidate(ctx, p.UserID) })
	return nil
}

func (d *profileRepoCacheDecorator) AddEarnings(ctx context.Context, tx repository.Tx, userID string, amount decimal.Decimal) error {
	if err := d.inner.AddEarnings(ctx, tx, userID, amount); err != nil {
		return err
	}
	repository.AfterCommit(ctx, func(ctx context.Context) { d.invalidate(ctx, userID) })
	return nil
}

func (d *profileRepoCacheDecorator) invalidate(ctx context.Context, userID string) {
	if err := d.cache.Del(ctx, profileKey(userID)); err != nil {
		d.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache invalidation failed")
	}
}
