package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
)

// Metrics holds the casino collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	RoundsSettled   *prometheus.CounterVec
	AmountWagered   *prometheus.CounterVec
	AmountPaid      *prometheus.CounterVec
	CrashPoints     prometheus.Histogram
	CrashTicks      prometheus.Counter
	ActiveSessions  prometheus.Gauge
	PersistFailures prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RoundsSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_rounds_settled_total",
				Help: "Settled rounds by game and outcome",
			},
			[]string{"game", "outcome"},
		),
		AmountWagered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_amount_wagered_total",
				Help: "Total staked on settled rounds",
			},
			[]string{"game"},
		),
		AmountPaid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_amount_paid_total",
				Help: "Total credited back to players on settled rounds",
			},
			[]string{"game"},
		),
		CrashPoints: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "casino_crash_point",
				Help:    "Revealed crash points",
				Buckets: []float64{1, 1.5, 2, 3, 5, 10, 20, 50},
			},
		),
		CrashTicks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "casino_crash_ticks_total",
				Help: "Multiplier steps advanced by the crash ticker",
			},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "casino_active_sessions",
				Help: "Open player sessions",
			},
		),
		PersistFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "casino_profile_persist_failures_total",
				Help: "Profile saves that failed",
			},
		),
	}
	m.registry.MustRegister(
		m.HTTPRequests,
		m.RoundsSettled,
		m.AmountWagered,
		m.AmountPaid,
		m.CrashPoints,
		m.CrashTicks,
		m.ActiveSessions,
		m.PersistFailures,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRound counts one settled round. Watch-only rounds pass a zero bet.
func (m *Metrics) ObserveRound(game, outcome string, bet, payout decimal.Decimal) {
	m.RoundsSettled.WithLabelValues(game, outcome).Inc()
	m.AmountWagered.WithLabelValues(game).Add(bet.InexactFloat64())
	m.AmountPaid.WithLabelValues(game).Add(payout.InexactFloat64())
}

func (m *Metrics) ObserveCrashPoint(point decimal.Decimal) {
	m.CrashPoints.Observe(point.InexactFloat64())
}
