package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
)

func TestHMS(t *testing.T) {
	assert.Equal(t, "00:00:00", HMS(0))
	assert.Equal(t, "00:00:00", HMS(-time.Second))
	assert.Equal(t, "01:30:05", HMS(90*time.Minute+5*time.Second+400*time.Millisecond))
	assert.Equal(t, "26:00:00", HMS(26*time.Hour))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "|--------------------| 0%", ProgressBar(0))
	assert.Equal(t, "|██████████----------| 50%", ProgressBar(0.5))
	assert.Equal(t, "|████████████████████| 100%", ProgressBar(1))
	assert.Equal(t, "|████████████████████| 100%", ProgressBar(1.7))
}

func TestTimerView(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tm, err := domain.NewTimer(domain.Owner{ID: "1", Name: "reso"}, "c", 1, "https://img", nil, start)
	require.NoError(t, err)

	p := Timer(tm, start.Add(30*time.Minute), "footer", StateStarted, "")
	assert.Equal(t, "Remaining time: 00:30:00", p.Title)
	assert.Equal(t, chat.ColorBlue, p.Color)
	assert.Equal(t, "https://img", p.ImageURL)
	assert.Equal(t, "footer", p.Footer)
	require.Len(t, p.Fields, 3)
	assert.Equal(t, "|██████████----------| 50%", p.Fields[0].Value)
	assert.Equal(t, StateStarted, p.Fields[1].Value)
	assert.Equal(t, "@reso", p.Fields[2].Value)

	tm.MarkReminded(start.Add(55 * time.Minute))
	p = Timer(tm, start.Add(55*time.Minute), "", "", "")
	assert.Equal(t, chat.ColorRed, p.Color)
	assert.Len(t, p.Fields, 2, "no status field without a state")
}

func TestTimerView_DormantFallbackName(t *testing.T) {
	now := time.Now()
	tm := domain.RestoreTimer("9", 1, "", nil, now)
	p := Timer(tm, now, "", StateStopped, "someone")
	assert.Equal(t, "@someone", p.Fields[len(p.Fields)-1].Value)
}

func TestStickyView(t *testing.T) {
	p := Sticky(domain.StickyDef{Title: "Rules", Description: "be nice"})
	assert.Equal(t, chat.ColorBlue, p.Color)
	assert.Empty(t, p.ImageURL)
	assert.Empty(t, p.Footer)

	p = Sticky(domain.StickyDef{Title: "Rules", Color: 0xff0000, ImageURL: "u", Footer: "f"})
	assert.Equal(t, uint32(0xff0000), p.Color)
	assert.Equal(t, "u", p.ImageURL)
	assert.Equal(t, "f", p.Footer)
}

func TestReminder(t *testing.T) {
	assert.Equal(t, "Reminder: 9m59s left!", Reminder(9*time.Minute+59*time.Second+300*time.Millisecond).Content)
}
