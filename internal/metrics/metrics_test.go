package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TimerStarted()
	m.TimerStarted()
	m.TimerExpired()
	m.TickDone(0.01, nil)
	m.TickDone(0.02, errors.New("boom"))
	m.Command("tour")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TimersStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TimersExpired))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TickErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsHandled.WithLabelValues("tour")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TimerStarted()
		m.TimerStopped()
		m.TimerExpired()
		m.ReminderSent()
		m.TickDone(1, errors.New("x"))
		m.Command("help")
		m.StickyPublished()
	})

	// A Metrics without collectors is also safe.
	empty := &Metrics{}
	assert.NotPanics(t, func() {
		empty.TimerStarted()
		empty.TimerStopped()
		empty.TimerExpired()
		empty.ReminderSent()
		empty.TickDone(1, errors.New("x"))
		empty.Command("help")
		empty.StickyPublished()
	})
}

func TestActiveTimersGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	n := 3
	RegisterActiveTimers(reg, func() int { return n })

	count, err := testutil.GatherAndCount(reg, "dmotimer_active_timers")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
