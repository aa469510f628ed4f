package sticky

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
	"github.com/Reso1992/DmoTimer/internal/metrics"
)

// File is the YAML layout of STICKY_CONFIG:
//
//	stickies:
//	  - channel: "123456789"
//	    title: Rules
//	    description: Read the pins.
//	    color: 0x3498db
//	    image_url: https://example.com/banner.png
//	    footer: Mods
type File struct {
	Stickies []domain.StickyDef `yaml:"stickies"`
}

// LoadFile reads sticky definitions from path.
func LoadFile(path string) ([]domain.StickyDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sticky config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sticky config: %w", err)
	}
	seen := make(map[domain.ChannelID]bool, len(f.Stickies))
	for i, d := range f.Stickies {
		if d.Channel == "" {
			return nil, fmt.Errorf("sticky %d: channel is required", i)
		}
		if d.Title == "" && d.Description == "" {
			return nil, fmt.Errorf("sticky %d: title or description is required", i)
		}
		if seen[d.Channel] {
			return nil, fmt.Errorf("sticky %d: duplicate channel %s", i, d.Channel)
		}
		seen[d.Channel] = true
	}
	return f.Stickies, nil
}

// Manager routes incoming messages to the sticky of their channel.
type Manager struct {
	byChannel map[domain.ChannelID]*Sticky
	log       *zap.Logger
}

func NewManager(defs []domain.StickyDef, m chat.Messenger, mt *metrics.Metrics, log *zap.Logger) *Manager {
	mgr := &Manager{byChannel: make(map[domain.ChannelID]*Sticky, len(defs)), log: log}
	for _, d := range defs {
		mgr.byChannel[d.Channel] = New(d, m, mt, log)
	}
	return mgr
}

// Len is the number of configured stickies.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byChannel)
}

// Get returns the sticky for channel.
func (m *Manager) Get(channel domain.ChannelID) (*Sticky, bool) {
	if m == nil {
		return nil, false
	}
	s, ok := m.byChannel[channel]
	return s, ok
}

// PublishAll posts every sticky once. Failures are collected, not fatal to the others.
func (m *Manager) PublishAll(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var errs []error
	for ch, s := range m.byChannel {
		if err := s.Publish(ctx); err != nil {
			m.log.Error("publish sticky failed", zap.Error(err), zap.String("channel", string(ch)))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnIncomingMessage forwards msg to its channel's sticky, if one is configured.
func (m *Manager) OnIncomingMessage(ctx context.Context, msg domain.MessageRef) error {
	s, ok := m.Get(msg.Channel)
	if !ok {
		return nil
	}
	return s.OnIncomingMessage(ctx, msg)
}
