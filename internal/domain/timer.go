package domain

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ReminderThreshold is the remaining time at which the one-shot reminder fires.
const ReminderThreshold = 10 * time.Minute

// Color is the display state of a timer.
type Color int

const (
	ColorNormal Color = iota
	ColorWarning
)

// Timer is one running or completed countdown.
// End is fixed at construction; everything mutable is guarded by mu.
type Timer struct {
	ID            uuid.UUID
	Owner         Owner
	Channel       ChannelID
	DurationHours float64
	ImageRef      string
	CustomMessage *string
	Start         time.Time
	End           time.Time

	mu       sync.Mutex
	color    Color
	reminded bool
	display  *MessageRef
	dormant  bool
}

// NewTimer validates durationHours and builds a timer starting at now.
func NewTimer(owner Owner, channel ChannelID, durationHours float64, imageRef string, customMessage *string, now time.Time) (*Timer, error) {
	if err := ValidateHours(durationHours); err != nil {
		return nil, err
	}
	return &Timer{
		ID:            uuid.New(),
		Owner:         owner,
		Channel:       channel,
		DurationHours: durationHours,
		ImageRef:      imageRef,
		CustomMessage: customMessage,
		Start:         now,
		End:           now.Add(hoursToDuration(durationHours)),
	}, nil
}

// RestoreTimer rebuilds a timer from persisted configuration. The result is
// dormant: it has no channel and no display message and is never ticked.
func RestoreTimer(owner OwnerID, durationHours float64, imageRef string, customMessage *string, now time.Time) *Timer {
	return &Timer{
		ID:            uuid.New(),
		Owner:         Owner{ID: owner},
		DurationHours: durationHours,
		ImageRef:      imageRef,
		CustomMessage: customMessage,
		Start:         now,
		End:           now.Add(hoursToDuration(durationHours)),
		dormant:       true,
	}
}

// Total is the configured countdown length.
func (t *Timer) Total() time.Duration {
	return t.End.Sub(t.Start)
}

// Remaining returns max(End-now, 0).
func (t *Timer) Remaining(now time.Time) time.Duration {
	if d := t.End.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Expired reports whether nothing remains at now.
func (t *Timer) Expired(now time.Time) bool {
	return t.Remaining(now) == 0
}

// Progress is elapsed/total clamped to [0,1]. It is exactly 1 once Remaining is 0.
func (t *Timer) Progress(now time.Time) float64 {
	rem := t.Remaining(now)
	if rem == 0 {
		return 1
	}
	total := t.Total()
	if total <= 0 {
		return 1
	}
	p := float64(total-rem) / float64(total)
	return math.Max(0, math.Min(1, p))
}

// MarkReminded flips the reminder flag and switches to the warning color the
// first time remaining time is at or below ReminderThreshold. It returns true
// only for that first crossing.
func (t *Timer) MarkReminded(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.reminded || t.Remaining(now) > ReminderThreshold {
		return false
	}
	t.reminded = true
	t.color = ColorWarning
	return true
}

func (t *Timer) Reminded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reminded
}

func (t *Timer) Color() Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.color
}

// Display returns the live display message, if one was posted.
func (t *Timer) Display() (MessageRef, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.display == nil {
		return MessageRef{}, false
	}
	return *t.display, true
}

// SetDisplay records the one live display message. A second call replaces the first.
func (t *Timer) SetDisplay(ref MessageRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.display = &ref
}

// Dormant reports whether the timer was restored from storage and never started.
func (t *Timer) Dormant() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dormant
}

// CompletionText is the custom message or fallback when none was given.
func (t *Timer) CompletionText(fallback string) string {
	if t.CustomMessage != nil && *t.CustomMessage != "" {
		return *t.CustomMessage
	}
	return fallback
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
