// Package sticky keeps one announcement at the bottom of a channel by
// re-posting it whenever someone else writes there.
package sticky

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
	"github.com/Reso1992/DmoTimer/internal/metrics"
	"github.com/Reso1992/DmoTimer/internal/view"
)

// Sticky is one channel's sticky message. At most one copy is visible.
type Sticky struct {
	def     domain.StickyDef
	m       chat.Messenger
	metrics *metrics.Metrics
	log     *zap.Logger

	// mu is held across delete+send, so an echo of our own post cannot
	// trigger a re-publish before its id is recorded.
	mu      sync.Mutex
	current *domain.MessageRef
	// posted holds ids of recent copies; gateway echoes can arrive after
	// a newer copy replaced them.
	posted map[string]struct{}
	order  []string
}

// postedMemory bounds how many past copies are recognised as our own.
const postedMemory = 32

func New(def domain.StickyDef, m chat.Messenger, mt *metrics.Metrics, log *zap.Logger) *Sticky {
	return &Sticky{def: def, m: m, metrics: mt, log: log, posted: make(map[string]struct{}, postedMemory)}
}

// Channel is where the sticky lives.
func (s *Sticky) Channel() domain.ChannelID { return s.def.Channel }

// Render builds the payload.
func (s *Sticky) Render() chat.Payload { return view.Sticky(s.def) }

// Current returns the visible sticky message, if any.
func (s *Sticky) Current() (domain.MessageRef, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.MessageRef{}, false
	}
	return *s.current, true
}

// Publish deletes the previous copy, if any, then posts a new one.
// If the delete fails nothing is posted.
func (s *Sticky) Publish(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publishLocked(ctx)
}

func (s *Sticky) publishLocked(ctx context.Context) error {
	if s.current != nil {
		if err := s.m.Delete(ctx, *s.current); err != nil {
			return fmt.Errorf("delete sticky message: %w", err)
		}
		s.current = nil
	}
	ref, err := s.m.Send(ctx, s.def.Channel, s.Render())
	if err != nil {
		return fmt.Errorf("send sticky message: %w", err)
	}
	s.current = &ref
	s.rememberLocked(ref.ID)
	s.metrics.StickyPublished()
	s.log.Debug("sticky published", zap.String("channel", string(ref.Channel)), zap.String("message", ref.ID))
	return nil
}

func (s *Sticky) rememberLocked(id string) {
	if len(s.order) == postedMemory {
		delete(s.posted, s.order[0])
		s.order = s.order[1:]
	}
	s.order = append(s.order, id)
	s.posted[id] = struct{}{}
}

// OnIncomingMessage re-publishes when msg is in this channel and is not one
// of the sticky's own posts.
func (s *Sticky) OnIncomingMessage(ctx context.Context, msg domain.MessageRef) error {
	if msg.Channel != s.def.Channel {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, own := s.posted[msg.ID]; own {
		return nil
	}
	return s.publishLocked(ctx)
}
