// Package chat defines the platform-neutral messaging capability the bot core
// calls: rich payloads and the send/edit/delete primitives every adapter provides.
package chat

import (
	"context"

	"github.com/Reso1992/DmoTimer/internal/domain"
)

// Embed colors, RGB.
const (
	ColorBlue uint32 = 0x3498db
	ColorRed  uint32 = 0xe74c3c
)

// Field is one named block in a rich payload.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Payload is a renderable message. Content is plain text shown above the rich part;
// a payload with only Content is a plain message.
type Payload struct {
	Content     string
	Title       string
	Description string
	Color       uint32
	ImageURL    string
	Fields      []Field
	Footer      string
}

// Rich reports whether the payload carries anything besides plain text.
func (p Payload) Rich() bool {
	return p.Title != "" || p.Description != "" || p.ImageURL != "" || len(p.Fields) > 0 || p.Footer != ""
}

// Text builds a plain-text payload.
func Text(s string) Payload { return Payload{Content: s} }

// Messenger is implemented by each platform adapter.
type Messenger interface {
	Send(ctx context.Context, channel domain.ChannelID, p Payload) (domain.MessageRef, error)
	Edit(ctx context.Context, ref domain.MessageRef, p Payload) error
	Delete(ctx context.Context, ref domain.MessageRef) error
}
