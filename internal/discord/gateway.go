package discord

import (
	"context"
	"fmt"

	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"go.uber.org/zap"

	"github.com/Reso1992/DmoTimer/internal/bot"
	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
)

// Bot is a Discord gateway session plus its REST messenger.
type Bot struct {
	s   *state.State
	m   *Messenger
	log *zap.Logger
}

// New prepares a session for token. Nothing is dialed until Open.
func New(token string, log *zap.Logger) *Bot {
	s := state.New("Bot " + token)
	s.AddIntents(gateway.IntentGuildMessages | gateway.IntentDirectMessages | gateway.IntentMessageContent)
	return &Bot{s: s, m: NewMessenger(s), log: log}
}

func (b *Bot) Messenger() chat.Messenger { return b.m }

// Open registers h for message events and connects to the gateway.
// Events are handled with ctx until Close.
func (b *Bot) Open(ctx context.Context, h bot.Handler) error {
	b.s.AddHandler(func(ev *gateway.MessageCreateEvent) {
		in := incoming(ev)
		if err := h.HandleMessage(ctx, in); err != nil {
			b.log.Warn("handle message failed",
				zap.Error(err),
				zap.String("channel", string(in.Message.Channel)),
				zap.String("message", in.Message.ID),
			)
		}
	})
	if err := b.s.Open(ctx); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	if me, err := b.s.Me(); err == nil {
		b.log.Info("discord connected", zap.String("user", me.Username), zap.String("id", me.ID.String()))
	}
	return nil
}

func (b *Bot) Close() error {
	return b.s.Close()
}

func incoming(ev *gateway.MessageCreateEvent) bot.Incoming {
	// Guild nick, then global display name, then username.
	name := ev.Author.Username
	if ev.Author.DisplayName != "" {
		name = ev.Author.DisplayName
	}
	if ev.Member != nil && ev.Member.Nick != "" {
		name = ev.Member.Nick
	}
	return bot.Incoming{
		Message: domain.MessageRef{Channel: domain.ChannelID(ev.ChannelID.String()), ID: ev.ID.String()},
		Author:  domain.Owner{ID: domain.OwnerID(ev.Author.ID.String()), Name: name},
		FromBot: ev.Author.Bot,
		Text:    ev.Content,
	}
}
