// Package metrics provides the bot's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	TimersStarted   prometheus.Counter
	TimersStopped   prometheus.Counter
	TimersExpired   prometheus.Counter
	RemindersSent   prometheus.Counter
	Ticks           prometheus.Counter
	TickErrors      prometheus.Counter
	TickDuration    prometheus.Observer
	StickyPublishes prometheus.Counter
	CommandsHandled *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TimersStarted:   f.NewCounter(prometheus.CounterOpts{Name: "dmotimer_timers_started_total", Help: "Number of timers started"}),
		TimersStopped:   f.NewCounter(prometheus.CounterOpts{Name: "dmotimer_timers_stopped_total", Help: "Number of timers stopped by command"}),
		TimersExpired:   f.NewCounter(prometheus.CounterOpts{Name: "dmotimer_timers_expired_total", Help: "Number of timers that ran to zero"}),
		RemindersSent:   f.NewCounter(prometheus.CounterOpts{Name: "dmotimer_reminders_sent_total", Help: "Number of ten-minute reminders sent"}),
		Ticks:           f.NewCounter(prometheus.CounterOpts{Name: "dmotimer_ticks_total", Help: "Number of timer ticks processed"}),
		TickErrors:      f.NewCounter(prometheus.CounterOpts{Name: "dmotimer_tick_errors_total", Help: "Number of ticks that failed"}),
		TickDuration:    f.NewHistogram(prometheus.HistogramOpts{Name: "dmotimer_tick_duration_seconds", Help: "Tick duration seconds", Buckets: prometheus.DefBuckets}),
		StickyPublishes: f.NewCounter(prometheus.CounterOpts{Name: "dmotimer_sticky_publishes_total", Help: "Number of sticky messages (re)posted"}),
		CommandsHandled: f.NewCounterVec(prometheus.CounterOpts{Name: "dmotimer_commands_total", Help: "Commands handled by name"}, []string{"command"}),
	}
}

// RegisterActiveTimers exposes a gauge backed by count.
func RegisterActiveTimers(reg prometheus.Registerer, count func() int) {
	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{Name: "dmotimer_active_timers", Help: "Timers currently held in the registry"},
		func() float64 { return float64(count()) },
	)
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

func (m *Metrics) TimerStarted() {
	if m != nil {
		inc(m.TimersStarted)
	}
}

func (m *Metrics) TimerStopped() {
	if m != nil {
		inc(m.TimersStopped)
	}
}

func (m *Metrics) TimerExpired() {
	if m != nil {
		inc(m.TimersExpired)
	}
}

func (m *Metrics) ReminderSent() {
	if m != nil {
		inc(m.RemindersSent)
	}
}

func (m *Metrics) StickyPublished() {
	if m != nil {
		inc(m.StickyPublishes)
	}
}

// TickDone records one tick and its duration in seconds.
func (m *Metrics) TickDone(seconds float64, err error) {
	if m == nil {
		return
	}
	inc(m.Ticks)
	if err != nil {
		inc(m.TickErrors)
	}
	if m.TickDuration != nil {
		m.TickDuration.Observe(seconds)
	}
}

// Command counts one handled command.
func (m *Metrics) Command(name string) {
	if m != nil && m.CommandsHandled != nil {
		m.CommandsHandled.WithLabelValues(name).Inc()
	}
}
