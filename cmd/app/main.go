// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"advocate-payments/internal/config"
	"advocate-payments/internal/domain/ports/adapter"
	"advocate-payments/internal/domain/ports/repository"
	payAdapters "advocate-payments/internal/infra/adapters/payment"
	"advocate-payments/internal/infra/api"
	pg "advocate-payments/internal/infra/db/postgres"
	"advocate-payments/internal/infra/logging"
	"advocate-payments/internal/infra/metrics"
	red "advocate-payments/internal/infra/redis"
	"advocate-payments/internal/infra/sched"
	"advocate-payments/internal/usecase"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no redaction)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Repositories ----
	payRepo := pg.NewPaymentRepo(pool)
	grantRepo := pg.NewAccessGrantRepo(pool)
	monthlyRepo := pg.NewMonthlyEarningsRepo(pool)
	var profileRepo repository.AdvocateProfileRepository = pg.NewAdvocateProfileRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Redis (optional) ----
	var (
		locker  adapter.Locker
		limiter api.RateLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()

		locker = red.NewLocker(redisClient)
		profileRepo = pg.NewProfileRepoCacheDecorator(profileRepo, redisClient, cfg.Redis.TTL, logger)
		if cfg.RateLimit.Enabled {
			limiter = red.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		}
	} else {
		logger.Warn().Msg("redis.url not set; session locks, rate limiting and profile cache disabled")
	}

	// ---- Use cases ----
	gateway := payAdapters.NewSimulatedGateway(*cfg.Payment.DeclineProbability, nil)
	paymentUC := usecase.NewPaymentUseCase(
		payRepo, grantRepo, monthlyRepo, profileRepo,
		gateway, locker, txManager,
		usecase.PaymentOptions{
			AccessTTL:  cfg.Payment.AccessTTL,
			LockTTL:    cfg.Payment.LockTTL,
			ResultPath: cfg.Payment.ResultPath,
			Dev:        cfg.Runtime.Dev,
		},
		logger,
	)
	accessUC := usecase.NewAccessUseCase(grantRepo)
	earningsUC := usecase.NewEarningsUseCase(monthlyRepo, profileRepo)

	// ---- HTTP API ----
	var auth *api.AuthManager
	if cfg.Admin.APIKey != "" {
		auth = api.NewAuthManager(cfg.Admin.APIKey, cfg.Admin.JWTKey, cfg.Admin.TokenTTL)
	}
	srv := api.NewServer(paymentUC, accessUC, earningsUC, api.Options{
		Auth:           auth,
		Limiter:        limiter,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, logger)

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// ---- Metrics listener ----
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", api.MetricsHandler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	worker := sched.NewAccessExpiryWorker(cfg.Scheduler.ExpiryInterval, accessUC, logger)

	// ---- Run until a signal or the first failure ----
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", apiServer.Addr).Msg("api listening")
		return listen(apiServer)
	})
	g.Go(func() error {
		logger.Info().Str("addr", metricsServer.Addr).Msg("metrics listening")
		return listen(metricsServer)
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown requested")
		shutdownCtx, done := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGrace)
		defer done()
		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("stopped with error")
	}
}

func listen(s *http.Server) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
