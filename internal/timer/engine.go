// Package timer drives countdowns: it posts each timer's display message,
// edits it once per tick, fires the ten-minute reminder and handles expiry.
package timer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
	"github.com/Reso1992/DmoTimer/internal/metrics"
	"github.com/Reso1992/DmoTimer/internal/scheduler"
	"github.com/Reso1992/DmoTimer/internal/view"
)

// TickPeriod is the fixed update period of every running timer.
const TickPeriod = time.Second

// Deregisterer is what the engine needs from the registry on expiry.
type Deregisterer interface {
	Remove(ctx context.Context, owner domain.OwnerID, t *domain.Timer) error
}

// Engine owns the tick loop of every started timer.
type Engine struct {
	clock    clockwork.Clock
	sched    *scheduler.Scheduler
	msg      chat.Messenger
	notifier *chat.Notifier
	registry Deregisterer
	metrics  *metrics.Metrics
	log      *zap.Logger
	footer   string
}

// Options configure an Engine.
type Options struct {
	Clock     clockwork.Clock
	Scheduler *scheduler.Scheduler
	Messenger chat.Messenger
	Notifier  *chat.Notifier
	Registry  Deregisterer
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Footer    string
}

func NewEngine(o Options) *Engine {
	return &Engine{
		clock:    o.Clock,
		sched:    o.Scheduler,
		msg:      o.Messenger,
		notifier: o.Notifier,
		registry: o.Registry,
		metrics:  o.Metrics,
		log:      o.Logger,
		footer:   o.Footer,
	}
}

// Create builds a timer that starts now. durationHours must be > 0.
func (e *Engine) Create(owner domain.Owner, channel domain.ChannelID, durationHours float64, imageRef string, customMessage *string) (*domain.Timer, error) {
	return domain.NewTimer(owner, channel, durationHours, imageRef, customMessage, e.clock.Now())
}

// Start posts the initial display message and schedules the tick loop.
// The loop is not scheduled if the post fails.
func (e *Engine) Start(ctx context.Context, t *domain.Timer) error {
	ref, err := e.msg.Send(ctx, t.Channel, e.render(t, view.StateStarted, ""))
	if err != nil {
		return fmt.Errorf("post timer message: %w", err)
	}
	t.SetDisplay(ref)

	e.sched.Every(t.ID, TickPeriod, func(ctx context.Context) {
		started := e.clock.Now()
		err := e.tick(ctx, t)
		e.metrics.TickDone(e.clock.Since(started).Seconds(), err)
		if err != nil {
			e.log.Error("timer tick failed",
				zap.Error(err),
				zap.String("timer", t.ID.String()),
				zap.String("owner", string(t.Owner.ID)),
				zap.String("channel", string(t.Channel)),
			)
		}
	})
	e.metrics.TimerStarted()
	e.log.Info("timer started",
		zap.String("timer", t.ID.String()),
		zap.String("owner", string(t.Owner.ID)),
		zap.Float64("hours", t.DurationHours),
	)
	return nil
}

// Stop cancels the tick loop. It is safe to call more than once and on
// timers that were never started.
func (e *Engine) Stop(t *domain.Timer) {
	if e.sched.Cancel(t.ID) {
		e.log.Info("timer stopped", zap.String("timer", t.ID.String()))
	}
}

// Running reports whether t still has a scheduled tick loop.
func (e *Engine) Running(t *domain.Timer) bool {
	return e.sched.Scheduled(t.ID)
}

// Now is the engine clock's current time.
func (e *Engine) Now() time.Time { return e.clock.Now() }

// View renders t now with an optional state line; taggedName is used when
// the timer does not know its owner's name.
func (e *Engine) View(t *domain.Timer, state, taggedName string) chat.Payload {
	return e.render(t, state, taggedName)
}

func (e *Engine) render(t *domain.Timer, state, taggedName string) chat.Payload {
	return view.Timer(t, e.clock.Now(), e.footer, state, taggedName)
}

// tick is one update: reminder crossing, in-place edit, expiry.
func (e *Engine) tick(ctx context.Context, t *domain.Timer) error {
	now := e.clock.Now()
	var errs []error

	if t.MarkReminded(now) {
		if _, err := e.notifier.Send(ctx, t.Channel, view.Reminder(t.Remaining(now))); err != nil {
			errs = append(errs, fmt.Errorf("send reminder: %w", err))
		} else {
			e.metrics.ReminderSent()
		}
	}

	if ref, ok := t.Display(); ok {
		if err := e.msg.Edit(ctx, ref, e.render(t, "", "")); err != nil {
			errs = append(errs, fmt.Errorf("edit timer message: %w", err))
		}
	}

	if t.Expired(now) {
		e.Stop(t)
		if _, err := e.msg.Send(ctx, t.Channel, e.render(t, t.CompletionText(view.StateExpired), "")); err != nil {
			errs = append(errs, fmt.Errorf("send expiry message: %w", err))
		}
		if err := e.registry.Remove(ctx, t.Owner.ID, t); err != nil {
			errs = append(errs, fmt.Errorf("deregister timer: %w", err))
		}
		e.metrics.TimerExpired()
		e.log.Info("timer expired", zap.String("timer", t.ID.String()), zap.String("owner", string(t.Owner.ID)))
	}

	return errors.Join(errs...)
}
