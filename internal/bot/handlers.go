package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
	"github.com/Reso1992/DmoTimer/internal/registry"
	"github.com/Reso1992/DmoTimer/internal/view"
)

// --- Generic helpers ---

func (r *Router) replyTransient(ctx context.Context, channel domain.ChannelID, text string) error {
	_, err := r.notifier.Send(ctx, channel, chat.Text(text))
	return err
}

// --- tour ---

func (r *Router) handleTour(ctx context.Context, in Incoming, cmd command) error {
	// The invoking message is removed before anything else.
	if err := r.msg.Delete(ctx, in.Message); err != nil {
		return fmt.Errorf("delete command message: %w", err)
	}
	channel := in.Message.Channel

	if cmd.arg == "" {
		return r.replyTransient(ctx, channel, fmt.Sprintf(usageText, r.prefix()))
	}
	if strings.EqualFold(cmd.arg, "stop") {
		return r.stopLast(ctx, in)
	}

	hours, err := domain.ParseDurationHours(cmd.arg)
	if err != nil {
		return r.replyTransient(ctx, channel, invalidFormatText)
	}

	var custom *string
	if cmd.rest != "" {
		custom = &cmd.rest
	}
	t, err := r.engine.Create(in.Author, channel, hours, r.imageURL, custom)
	if errors.Is(err, domain.ErrInvalidDuration) {
		return r.replyTransient(ctx, channel, invalidHoursText)
	}
	if err != nil {
		return err
	}

	// A failed persist does not block the countdown.
	var errs []error
	if err := r.registry.Add(ctx, in.Author.ID, t); err != nil {
		errs = append(errs, err)
	}
	if err := r.engine.Start(ctx, t); err != nil {
		if rerr := r.registry.Remove(ctx, in.Author.ID, t); rerr != nil {
			r.log.Warn("deregister unstarted timer failed", zap.Error(rerr))
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (r *Router) stopLast(ctx context.Context, in Incoming) error {
	channel := in.Message.Channel
	t, err := r.registry.PopLast(ctx, in.Author.ID)
	if errors.Is(err, registry.ErrNoTimer) {
		return r.replyTransient(ctx, channel, noTimerText)
	}
	if t == nil {
		return err
	}
	r.engine.Stop(t)
	r.metrics.TimerStopped()

	// err here is a persist failure; the timer is already stopped.
	_, sendErr := r.notifier.Send(ctx, channel, r.engine.View(t, view.StateStopped, in.Author.Name))
	return errors.Join(err, sendErr)
}

// --- timers ---

func (r *Router) handleTimers(ctx context.Context, in Incoming) error {
	timers := r.registry.ListActive(in.Author.ID)
	if len(timers) == 0 {
		_, err := r.msg.Send(ctx, in.Message.Channel, chat.Text(noActiveText))
		return err
	}
	lines := make([]string, 0, len(timers)+1)
	lines = append(lines, activeTitle)
	now := r.engine.Now()
	for i, t := range timers {
		lines = append(lines, fmt.Sprintf(activeLineFmt, i+1, int64(t.Remaining(now).Seconds())))
	}
	_, err := r.msg.Send(ctx, in.Message.Channel, chat.Text(strings.Join(lines, "\n")))
	return err
}

// --- help ---

func (r *Router) handleHelp(ctx context.Context, in Incoming) error {
	_, err := r.msg.Send(ctx, in.Message.Channel, chat.Text(fmt.Sprintf(helpText, r.prefix())))
	return err
}
