// Package bot implements the chat command surface: tour, timers and help.
// Platform adapters turn their events into Incoming values and call HandleMessage.
package bot

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
	"github.com/Reso1992/DmoTimer/internal/metrics"
	"github.com/Reso1992/DmoTimer/internal/registry"
	"github.com/Reso1992/DmoTimer/internal/sticky"
	"github.com/Reso1992/DmoTimer/internal/timer"
)

// Incoming is one message seen in a channel.
type Incoming struct {
	Message domain.MessageRef
	Author  domain.Owner
	FromBot bool
	Text    string
}

// Handler consumes incoming messages. Router is the production implementation.
type Handler interface {
	HandleMessage(ctx context.Context, in Incoming) error
}

// Options configure a Router.
type Options struct {
	Prefixes  []string
	Engine    *timer.Engine
	Registry  *registry.Registry
	Messenger chat.Messenger
	Notifier  *chat.Notifier
	Stickies  *sticky.Manager
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	ImageURL  string
}

// Router wires incoming messages to command handlers.
type Router struct {
	prefixes []string
	engine   *timer.Engine
	registry *registry.Registry
	msg      chat.Messenger
	notifier *chat.Notifier
	stickies *sticky.Manager
	metrics  *metrics.Metrics
	log      *zap.Logger
	imageURL string
}

func NewRouter(o Options) *Router {
	prefixes := o.Prefixes
	if len(prefixes) == 0 {
		prefixes = []string{"."}
	}
	return &Router{
		prefixes: prefixes,
		engine:   o.Engine,
		registry: o.Registry,
		msg:      o.Messenger,
		notifier: o.Notifier,
		stickies: o.Stickies,
		metrics:  o.Metrics,
		log:      o.Logger,
		imageURL: o.ImageURL,
	}
}

// command is a parsed invocation: ".tour 2h boss" -> {name: "tour", arg: "2h", rest: "boss"}.
type command struct {
	name string
	arg  string
	rest string
}

// parse strips a known prefix and splits the command line.
func (r *Router) parse(text string) (command, bool) {
	text = strings.TrimSpace(text)
	for _, p := range r.prefixes {
		if p == "" || !strings.HasPrefix(text, p) {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(text, p))
		name, tail := cut(body)
		if name == "" {
			return command{}, false
		}
		arg, rest := cut(tail)
		return command{name: strings.ToLower(name), arg: arg, rest: rest}, true
	}
	return command{}, false
}

// cut splits s at the first run of whitespace.
func cut(s string) (head, tail string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' })
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// HandleMessage feeds the sticky manager, then dispatches a command if the text is one.
// Platform failures are returned to the caller; user input errors are answered in-channel.
func (r *Router) HandleMessage(ctx context.Context, in Incoming) error {
	var errs []error
	if err := r.stickies.OnIncomingMessage(ctx, in.Message); err != nil {
		errs = append(errs, err)
	}
	if in.FromBot {
		return errors.Join(errs...)
	}

	cmd, ok := r.parse(in.Text)
	if !ok {
		return errors.Join(errs...)
	}

	var err error
	switch cmd.name {
	case "tour", "t":
		err = r.handleTour(ctx, in, cmd)
	case "timers":
		err = r.handleTimers(ctx, in)
	case "help":
		err = r.handleHelp(ctx, in)
	default:
		// Unknown command: ignore silently
		return errors.Join(errs...)
	}
	r.metrics.Command(cmd.name)
	if err != nil {
		r.log.Error("command failed",
			zap.Error(err),
			zap.String("command", cmd.name),
			zap.String("owner", string(in.Author.ID)),
			zap.String("channel", string(in.Message.Channel)),
		)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (r *Router) prefix() string { return r.prefixes[0] }
