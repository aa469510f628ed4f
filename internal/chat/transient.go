package chat

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Reso1992/DmoTimer/internal/domain"
)

// TransientTTL is how long notifications and error replies stay visible.
const TransientTTL = 10 * time.Second

// Notifier sends messages that remove themselves after a delay.
type Notifier struct {
	m     Messenger
	clock clockwork.Clock
	log   *zap.Logger
	ttl   time.Duration
}

func NewNotifier(m Messenger, clock clockwork.Clock, log *zap.Logger) *Notifier {
	return &Notifier{m: m, clock: clock, log: log, ttl: TransientTTL}
}

// Send posts p and schedules its deletion after the TTL. Only the send error
// is returned; a failed deletion is logged.
func (n *Notifier) Send(ctx context.Context, channel domain.ChannelID, p Payload) (domain.MessageRef, error) {
	ref, err := n.m.Send(ctx, channel, p)
	if err != nil {
		return domain.MessageRef{}, err
	}
	n.clock.AfterFunc(n.ttl, func() {
		// The triggering request may be long gone; deletion gets its own context.
		dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.m.Delete(dctx, ref); err != nil {
			n.log.Warn("delete transient message failed",
				zap.Error(err),
				zap.String("channel", string(ref.Channel)),
				zap.String("message", ref.ID),
			)
		}
	})
	return ref, nil
}
