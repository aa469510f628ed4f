package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Reso1992/DmoTimer/internal/bot"
	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
)

// Bot is a long-polling Telegram client plus its messenger.
type Bot struct {
	api *tgbotapi.BotAPI
	m   *Messenger
	log *zap.Logger
}

// New authenticates with token.
func New(token string, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	api.Debug = false
	return &Bot{api: api, m: NewMessenger(api), log: log}, nil
}

func (b *Bot) Messenger() chat.Messenger { return b.m }

// Open starts long polling. Updates are handled one at a time until ctx is
// done or Close is called.
func (b *Bot) Open(ctx context.Context, h bot.Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := b.api.GetUpdatesChan(u)
	b.log.Info("telegram connected", zap.String("user", b.api.Self.UserName))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updCh:
				if !ok {
					return
				}
				in, ok := incoming(upd, b.api.Self.UserName)
				if !ok {
					continue
				}
				if err := h.HandleMessage(ctx, in); err != nil {
					b.log.Warn("handle message failed",
						zap.Error(err),
						zap.String("chat", string(in.Message.Channel)),
						zap.String("message", in.Message.ID),
					)
				}
			}
		}
	}()
	return nil
}

func (b *Bot) Close() error {
	b.api.StopReceivingUpdates()
	return nil
}

// incoming converts a message update. Updates without a message are skipped.
func incoming(upd tgbotapi.Update, botName string) (bot.Incoming, bool) {
	msg := upd.Message
	if msg == nil {
		msg = upd.ChannelPost
	}
	if msg == nil || msg.Chat == nil {
		return bot.Incoming{}, false
	}
	in := bot.Incoming{
		Message: domain.MessageRef{
			Channel: domain.ChannelID(strconv.FormatInt(msg.Chat.ID, 10)),
			ID:      strconv.Itoa(msg.MessageID),
		},
		Text: commandText(msg.Text, botName),
	}
	if msg.From == nil {
		// Channel posts have no author and never issue commands.
		in.FromBot = true
		return in, true
	}
	name := msg.From.UserName
	if name == "" {
		name = msg.From.FirstName
	}
	in.Author = domain.Owner{ID: domain.OwnerID(strconv.FormatInt(msg.From.ID, 10)), Name: name}
	in.FromBot = msg.From.IsBot
	return in, true
}

// commandText drops this bot's "@name" suffix from a command and maps the
// /start greeting onto help.
func commandText(text, botName string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	head, tail, _ := strings.Cut(text, " ")
	if name, target, ok := strings.Cut(head, "@"); ok && strings.EqualFold(target, botName) {
		head = name
	}
	if head == "/start" {
		head = "/help"
	}
	if tail == "" {
		return head
	}
	return head + " " + tail
}
