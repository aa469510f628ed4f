// Package view renders timers and sticky definitions into chat payloads.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
)

const barWidth = 20

// UI texts.
const (
	StateStarted  = "Timer started!"
	StateStopped  = "Timer stopped!"
	StateExpired  = "The timer has expired!"
	titleFmt      = "Remaining time: %s"
	fieldProgress = "Progress"
	fieldStatus   = "Status"
	fieldUser     = "User"
	reminderFmt   = "Reminder: %s left!"
)

// Timer renders the countdown view. state is optional.
// The "User" tag falls back to taggedName when the timer does not know its owner's name.
func Timer(t *domain.Timer, now time.Time, footer, state, taggedName string) chat.Payload {
	color := chat.ColorBlue
	if t.Color() == domain.ColorWarning {
		color = chat.ColorRed
	}
	fields := []chat.Field{{Name: fieldProgress, Value: ProgressBar(t.Progress(now))}}
	if state != "" {
		fields = append(fields, chat.Field{Name: fieldStatus, Value: state})
	}
	name := t.Owner.Name
	if name == "" {
		name = taggedName
	}
	fields = append(fields, chat.Field{Name: fieldUser, Value: "@" + name})

	return chat.Payload{
		Title:    fmt.Sprintf(titleFmt, HMS(t.Remaining(now))),
		Color:    color,
		ImageURL: t.ImageRef,
		Fields:   fields,
		Footer:   footer,
	}
}

// Reminder is the transient notice sent once when a timer enters its last ten minutes.
func Reminder(remaining time.Duration) chat.Payload {
	return chat.Text(fmt.Sprintf(reminderFmt, remaining.Truncate(time.Second)))
}

// Sticky renders a sticky definition. Image and footer are optional.
func Sticky(d domain.StickyDef) chat.Payload {
	color := d.Color
	if color == 0 {
		color = chat.ColorBlue
	}
	return chat.Payload{
		Title:       d.Title,
		Description: d.Description,
		Color:       color,
		ImageURL:    d.ImageURL,
		Footer:      d.Footer,
	}
}

// HMS formats d as HH:MM:SS; hours are not wrapped at 24.
func HMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// ProgressBar renders p in [0,1] as "|████----| 40%".
func ProgressBar(p float64) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(barWidth * p)
	return fmt.Sprintf("|%s%s| %d%%", strings.Repeat("█", filled), strings.Repeat("-", barWidth-filled), int(p*100))
}
