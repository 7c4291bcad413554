package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/usecase"
)

// Server exposes the payment, access and admin earnings routes.
type Server struct {
	payUC      usecase.PaymentUseCase
	accessUC   usecase.AccessUseCase
	earningsUC usecase.EarningsUseCase
	auth       *AuthManager
	limiter    RateLimiter
	timeout    time.Duration
	log        *zerolog.Logger
}

type Options struct {
	Auth           *AuthManager // nil disables the admin routes
	Limiter        RateLimiter  // nil disables rate limiting
	RequestTimeout time.Duration
}

func NewServer(
	payUC usecase.PaymentUseCase,
	accessUC usecase.AccessUseCase,
	earningsUC usecase.EarningsUseCase,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	srvLog := logger.With().Str("component", "api").Logger()
	return &Server{
		payUC:      payUC,
		accessUC:   accessUC,
		earningsUC: earningsUC,
		auth:       opts.Auth,
		limiter:    opts.Limiter,
		timeout:    opts.RequestTimeout,
		log:        &srvLog,
	}
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TraceID)
	r.Use(RequestLog(s.log))
	r.Use(Recoverer(s.log))
	r.Use(Timeout(s.timeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/payment", func(pr chi.Router) {
		pr.With(RateLimit(s.limiter, "webhook", s.log)).Post("/webhook", s.handleCompletePayment)
		pr.With(RateLimit(s.limiter, "sessions", s.log)).Post("/sessions", s.handleInitiatePayment)
		pr.Get("/sessions/{sessionID}", s.handleGetSession)
	})

	r.Get("/api/access/{requestID}", s.handleAccessCheck)

	r.Route("/api/v1", func(ar chi.Router) {
		ar.Post("/admin/login", s.handleAdminLogin)
		ar.Group(func(g chi.Router) {
			g.Use(s.requireAdmin)
			g.Get("/advocates/{advocateID}/earnings", s.handleAdvocateEarnings)
			g.Get("/advocates/{advocateID}/earnings/{year}/{month}", s.handleMonthlyEarnings)
		})
	})
	return r
}

// MetricsHandler serves Prometheus metrics for the admin listener.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			s.log.Error().Msg("admin auth is not configured")
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden"})
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			writeErr(w, s.log, r, domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
