// Package chattest provides an in-memory chat.Messenger for tests.
package chattest

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
)

var ErrUnknownMessage = errors.New("unknown message")

// Message is one posted message and its current content.
type Message struct {
	Ref     domain.MessageRef
	Payload chat.Payload
	Edits   int
	Deleted bool
}

// Recorder keeps every message in post order.
type Recorder struct {
	mu     sync.Mutex
	nextID int
	msgs   []*Message
	byID   map[string]*Message

	// Optional failure injection.
	SendErr   error
	EditErr   error
	DeleteErr error
}

func NewRecorder() *Recorder {
	return &Recorder{byID: make(map[string]*Message)}
}

func (r *Recorder) Send(_ context.Context, channel domain.ChannelID, p chat.Payload) (domain.MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SendErr != nil {
		return domain.MessageRef{}, r.SendErr
	}
	r.nextID++
	m := &Message{Ref: domain.MessageRef{Channel: channel, ID: strconv.Itoa(r.nextID)}, Payload: p}
	r.msgs = append(r.msgs, m)
	r.byID[m.Ref.ID] = m
	return m.Ref, nil
}

func (r *Recorder) Edit(_ context.Context, ref domain.MessageRef, p chat.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.EditErr != nil {
		return r.EditErr
	}
	m, ok := r.byID[ref.ID]
	if !ok || m.Deleted {
		return ErrUnknownMessage
	}
	m.Payload = p
	m.Edits++
	return nil
}

func (r *Recorder) Delete(_ context.Context, ref domain.MessageRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	m, ok := r.byID[ref.ID]
	if !ok || m.Deleted {
		return ErrUnknownMessage
	}
	m.Deleted = true
	return nil
}

// Register records a message posted by someone else, so it can be deleted later.
func (r *Recorder) Register(ref domain.MessageRef, p chat.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := &Message{Ref: ref, Payload: p}
	r.msgs = append(r.msgs, m)
	r.byID[ref.ID] = m
}

// Messages returns copies of all messages in post order.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = *m
	}
	return out
}

// Visible returns messages not yet deleted.
func (r *Recorder) Visible() []Message {
	var out []Message
	for _, m := range r.Messages() {
		if !m.Deleted {
			out = append(out, m)
		}
	}
	return out
}

// Get returns the current state of a message.
func (r *Recorder) Get(id string) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return Message{}, false
	}
	return *m, true
}
