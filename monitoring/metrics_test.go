package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRound(t *testing.T) {
	m := New()
	m.ObserveRound("blackjack", "player_win", decimal.NewFromInt(10), decimal.NewFromInt(20))
	m.ObserveRound("blackjack", "player_win", decimal.RequireFromString("2.5"), decimal.NewFromInt(5))
	m.ObserveRound("crash", "crashed", decimal.NewFromInt(7), decimal.Zero)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoundsSettled.WithLabelValues("blackjack", "player_win")))
	assert.Equal(t, 12.5, testutil.ToFloat64(m.AmountWagered.WithLabelValues("blackjack")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.AmountPaid.WithLabelValues("blackjack")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AmountPaid.WithLabelValues("crash")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.PersistFailures.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.PersistFailures))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PersistFailures))
}

func TestObserveCrashPoint(t *testing.T) {
	m := New()
	m.ObserveCrashPoint(decimal.RequireFromString("2.5"))
	m.ObserveCrashPoint(decimal.NewFromInt(1))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "casino_crash_point" {
			assert.Equal(t, uint64(2), f.GetMetric()[0].GetHistogram().GetSampleCount())
			return
		}
	}
	t.Fatal("casino_crash_point not gathered")
}
