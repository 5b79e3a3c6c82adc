package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crickex/ledger/internal/adapter/http/handler"
	"github.com/crickex/ledger/internal/adapter/http/middleware"
	"github.com/crickex/ledger/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TradeHandler      *handler.TradeHandler
	AccountHandler    *handler.AccountHandler
	SettlementHandler *handler.SettlementHandler
	HealthHandler     *handler.HealthHandler
	Metrics           *metrics.Metrics
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/trades", func(r chi.Router) {
			r.Post("/buy", cfg.TradeHandler.Buy)
			r.Post("/sell", cfg.TradeHandler.Sell)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{userID}", cfg.AccountHandler.Get)
			r.Post("/{userID}/deposit", cfg.AccountHandler.Deposit)
			r.Post("/{userID}/withdraw", cfg.AccountHandler.Withdraw)
			r.Get("/{userID}/transactions", cfg.AccountHandler.Transactions)
			r.Get("/{userID}/portfolio", cfg.TradeHandler.Portfolio)
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Post("/", cfg.SettlementHandler.Settle)
			r.Get("/{marketKey}", cfg.SettlementHandler.Get)
		})
	})

	return r
}
