package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Trading metrics
	TradesExecuted  *prometheus.CounterVec
	TradeDuration   prometheus.Histogram
	TradeErrors     *prometheus.CounterVec
	PositionsOpened prometheus.Counter
	PositionsClosed prometheus.Counter

	// Ledger metrics
	AccountsCreated prometheus.Counter
	AccountBalance  *prometheus.GaugeVec
	HoldsPlaced     prometheus.Counter
	HoldsReleased   prometheus.Counter

	// Settlement metrics
	MarketsSettled     prometheus.Counter
	PositionsSettled   prometheus.Counter
	SettlementFailures prometheus.Counter
	SettlementDuration prometheus.Histogram
	SettlementPayout   prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TradesExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crickex_trades_executed_total",
				Help: "Total number of executed trades by side",
			},
			[]string{"side"},
		),
		TradeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "crickex_trade_duration_seconds",
			Help:    "Duration of trade operations",
			Buckets: prometheus.DefBuckets,
		}),
		TradeErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crickex_trade_errors_total",
				Help: "Total number of trade errors by type",
			},
			[]string{"error_type"},
		),
		PositionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crickex_positions_opened_total",
			Help: "Total number of positions opened",
		}),
		PositionsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crickex_positions_closed_total",
			Help: "Total number of positions closed by voluntary sell",
		}),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crickex_accounts_created_total",
			Help: "Total number of accounts provisioned",
		}),
		AccountBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crickex_account_balance",
				Help: "Current free balance per account",
			},
			[]string{"user_id"},
		),
		HoldsPlaced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crickex_holds_placed_total",
			Help: "Total number of holds placed",
		}),
		HoldsReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crickex_holds_released_total",
			Help: "Total number of holds released",
		}),

		MarketsSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crickex_markets_settled_total",
			Help: "Total number of markets settled",
		}),
		PositionsSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crickex_positions_settled_total",
			Help: "Total number of positions settled",
		}),
		SettlementFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crickex_settlement_position_failures_total",
			Help: "Total number of positions skipped during settlement due to errors",
		}),
		SettlementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "crickex_settlement_duration_seconds",
			Help:    "Duration of full market settlement passes",
			Buckets: prometheus.DefBuckets,
		}),
		SettlementPayout: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "crickex_settlement_payout",
			Help:    "Total payout per settled market",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crickex_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crickex_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}
