package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"advocate-payments/internal/infra/metrics"
	"advocate-payments/internal/usecase"
)

// AccessExpiryWorker periodically deactivates access grants past their expiry.
type AccessExpiryWorker struct {
	interval time.Duration
	accessUC usecase.AccessUseCase
	log      *zerolog.Logger
}

func NewAccessExpiryWorker(interval time.Duration, accessUC usecase.AccessUseCase, logger *zerolog.Logger) *AccessExpiryWorker {
	exprLog := logger.With().Str("component", "AccessExpiryWorker").Logger()
	return &AccessExpiryWorker{
		interval: interval,
		accessUC: accessUC,
		log:      &exprLog,
	}
}

func (w *AccessExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting access expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping access expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *AccessExpiryWorker) tick(ctx context.Context) int {
	n, err := w.accessUC.ExpireGrants(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("access expiry worker error")
		return 0
	}
	if n > 0 {
		metrics.AddAccessGrantsExpired(n)
		w.log.Info().Int("count", n).Msg("expired access grants deactivated")
	}
	return n
}
