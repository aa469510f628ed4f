package timer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/chat/chattest"
	"github.com/Reso1992/DmoTimer/internal/domain"
	"github.com/Reso1992/DmoTimer/internal/metrics"
	"github.com/Reso1992/DmoTimer/internal/registry"
	"github.com/Reso1992/DmoTimer/internal/scheduler"
	"github.com/Reso1992/DmoTimer/internal/store"
	"github.com/Reso1992/DmoTimer/internal/view"
)

type fixture struct {
	engine *Engine
	clock  *clockwork.FakeClock
	rec    *chattest.Recorder
	reg    *registry.Registry
	sched  *scheduler.Scheduler
	m      *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fc := clockwork.NewFakeClock()
	rec := chattest.NewRecorder()
	log := zap.NewNop()
	reg := registry.New(store.NewJSONFile(filepath.Join(t.TempDir(), "timers.json")), fc, log)
	sched := scheduler.New(fc, log)
	m := metrics.New(prometheus.NewRegistry())
	e := NewEngine(Options{
		Clock:     fc,
		Scheduler: sched,
		Messenger: rec,
		Notifier:  chat.NewNotifier(rec, fc, log),
		Registry:  reg,
		Metrics:   m,
		Logger:    log,
		Footer:    "Creator: Reso",
	})
	return &fixture{engine: e, clock: fc, rec: rec, reg: reg, sched: sched, m: m}
}

func (f *fixture) started(t *testing.T, hours float64, msg *string) *domain.Timer {
	t.Helper()
	ctx := context.Background()
	tm, err := f.engine.Create(domain.Owner{ID: "1", Name: "reso"}, "chan", hours, "img", msg)
	require.NoError(t, err)
	require.NoError(t, f.reg.Add(ctx, tm.Owner.ID, tm))
	require.NoError(t, f.engine.Start(ctx, tm))
	return tm
}

func statusOf(p chat.Payload) string {
	for _, fl := range p.Fields {
		if fl.Name == "Status" {
			return fl.Value
		}
	}
	return ""
}

func TestCreate_InvalidDuration(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Create(domain.Owner{ID: "1"}, "c", -2, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestStart_PostsInitialMessageAndSchedules(t *testing.T) {
	f := newFixture(t)
	tm := f.started(t, 1, nil)

	msgs := f.rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, view.StateStarted, statusOf(msgs[0].Payload))
	assert.Equal(t, "Remaining time: 01:00:00", msgs[0].Payload.Title)

	ref, ok := tm.Display()
	require.True(t, ok)
	assert.Equal(t, msgs[0].Ref, ref)
	assert.True(t, f.engine.Running(tm))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.TimersStarted))
}

func TestStart_SendFailureDoesNotSchedule(t *testing.T) {
	f := newFixture(t)
	f.rec.SendErr = errors.New("missing permissions")
	tm, err := f.engine.Create(domain.Owner{ID: "1"}, "c", 1, "", nil)
	require.NoError(t, err)
	assert.Error(t, f.engine.Start(context.Background(), tm))
	assert.False(t, f.engine.Running(tm))
}

func TestTick_EditsDisplayInPlace(t *testing.T) {
	f := newFixture(t)
	tm := f.started(t, 1, nil)
	ctx := context.Background()

	f.clock.Advance(time.Second)
	require.NoError(t, f.engine.tick(ctx, tm))
	f.clock.Advance(time.Second)
	require.NoError(t, f.engine.tick(ctx, tm))

	msgs := f.rec.Messages()
	require.Len(t, msgs, 1, "ticks edit, they do not post")
	assert.Equal(t, 2, msgs[0].Edits)
	assert.Equal(t, "Remaining time: 00:59:58", msgs[0].Payload.Title)
	assert.Empty(t, statusOf(msgs[0].Payload))
}

func TestTick_ReminderFiresOnce(t *testing.T) {
	f := newFixture(t)
	tm := f.started(t, 1, nil)
	ctx := context.Background()

	f.clock.Advance(49 * time.Minute)
	require.NoError(t, f.engine.tick(ctx, tm))
	assert.False(t, tm.Reminded())

	f.clock.Advance(time.Minute)
	require.NoError(t, f.engine.tick(ctx, tm))
	f.clock.Advance(time.Second)
	require.NoError(t, f.engine.tick(ctx, tm))

	var reminders []chattest.Message
	for _, m := range f.rec.Messages() {
		if strings.HasPrefix(m.Payload.Content, "Reminder:") {
			reminders = append(reminders, m)
		}
	}
	require.Len(t, reminders, 1)
	assert.Equal(t, "Reminder: 10m0s left!", reminders[0].Payload.Content)
	assert.Equal(t, domain.ColorWarning, tm.Color())

	display, _ := f.rec.Get(f.rec.Messages()[0].Ref.ID)
	assert.Equal(t, chat.ColorRed, display.Payload.Color)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.RemindersSent))

	// The reminder is transient.
	f.clock.Advance(chat.TransientTTL)
	assert.Eventually(t, func() bool {
		m, _ := f.rec.Get(reminders[0].Ref.ID)
		return m.Deleted
	}, time.Second, 10*time.Millisecond)
}

func TestTick_ShortTimerRemindsOnFirstTick(t *testing.T) {
	f := newFixture(t)
	tm := f.started(t, 5.0/60, nil)
	f.clock.Advance(time.Second)
	require.NoError(t, f.engine.tick(context.Background(), tm))
	assert.True(t, tm.Reminded())
}

func TestTick_ExpiryStopsAndDeregisters(t *testing.T) {
	f := newFixture(t)
	msg := "Boss spawns now!"
	tm := f.started(t, 0.5, &msg)
	ctx := context.Background()

	f.clock.Advance(30 * time.Minute)
	require.NoError(t, f.engine.tick(ctx, tm))

	assert.False(t, f.engine.Running(tm))
	assert.Empty(t, f.reg.ListActive("1"))

	msgs := f.rec.Messages()
	last := msgs[len(msgs)-1]
	assert.Equal(t, msg, statusOf(last.Payload))
	assert.Equal(t, "Remaining time: 00:00:00", last.Payload.Title)
	assert.Equal(t, "|████████████████████| 100%", last.Payload.Fields[0].Value)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.TimersExpired))
}

func TestTick_ExpiryDefaultText(t *testing.T) {
	f := newFixture(t)
	tm := f.started(t, 0.1, nil)
	f.clock.Advance(time.Hour)
	require.NoError(t, f.engine.tick(context.Background(), tm))

	msgs := f.rec.Messages()
	assert.Equal(t, view.StateExpired, statusOf(msgs[len(msgs)-1].Payload))
}

func TestTick_ExpiryDeregistersEvenIfSendFails(t *testing.T) {
	f := newFixture(t)
	tm := f.started(t, 0.1, nil)
	f.clock.Advance(time.Hour)
	f.rec.SendErr = errors.New("network down")
	f.rec.EditErr = errors.New("network down")

	err := f.engine.tick(context.Background(), tm)
	assert.Error(t, err)
	assert.False(t, f.engine.Running(tm))
	assert.Empty(t, f.reg.ListActive("1"))
}

func TestStop_Idempotent(t *testing.T) {
	f := newFixture(t)
	tm := f.started(t, 1, nil)
	f.engine.Stop(tm)
	assert.NotPanics(t, func() { f.engine.Stop(tm) })
	assert.False(t, f.engine.Running(tm))
	assert.Equal(t, 0, f.sched.Len())
}

func TestScheduledLoop_TicksEverySecond(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.sched.Run(ctx)

	tm := f.started(t, 1, nil)
	for i := 0; i < 3; i++ {
		bctx, bcancel := context.WithTimeout(ctx, time.Second)
		require.NoError(t, f.clock.BlockUntilContext(bctx, 1))
		bcancel()
		f.clock.Advance(TickPeriod)
		want := i + 1
		require.Eventually(t, func() bool {
			m, _ := f.rec.Get(f.rec.Messages()[0].Ref.ID)
			return m.Edits == want
		}, time.Second, 5*time.Millisecond)
	}
	ref, _ := tm.Display()
	m, _ := f.rec.Get(ref.ID)
	assert.Equal(t, "Remaining time: 00:59:57", m.Payload.Title)
}
