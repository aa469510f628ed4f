// Package telegram adapts the chat surface to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
)

// botAPI is the subset of *tgbotapi.BotAPI the messenger uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Messenger implements chat.Messenger with HTML-formatted text messages.
type Messenger struct {
	api botAPI
}

func NewMessenger(api botAPI) *Messenger { return &Messenger{api: api} }

func (m *Messenger) Send(_ context.Context, channel domain.ChannelID, p chat.Payload) (domain.MessageRef, error) {
	chatID, err := parseChat(channel)
	if err != nil {
		return domain.MessageRef{}, err
	}
	msg := tgbotapi.NewMessage(chatID, renderHTML(p))
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := m.api.Send(msg)
	if err != nil {
		return domain.MessageRef{}, err
	}
	return domain.MessageRef{Channel: channel, ID: strconv.Itoa(sent.MessageID)}, nil
}

func (m *Messenger) Edit(_ context.Context, ref domain.MessageRef, p chat.Payload) error {
	chatID, msgID, err := parseRef(ref)
	if err != nil {
		return err
	}
	cfg := tgbotapi.NewEditMessageText(chatID, msgID, renderHTML(p))
	cfg.ParseMode = tgbotapi.ModeHTML
	if _, err := m.api.Request(cfg); err != nil && !notModified(err) {
		return err
	}
	return nil
}

func (m *Messenger) Delete(_ context.Context, ref domain.MessageRef) error {
	chatID, msgID, err := parseRef(ref)
	if err != nil {
		return err
	}
	_, err = m.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID))
	return err
}

// notModified matches the API error returned when an edit leaves the text unchanged.
func notModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

func parseChat(channel domain.ChannelID) (int64, error) {
	id, err := strconv.ParseInt(string(channel), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("chat id %q: %w", channel, err)
	}
	return id, nil
}

func parseRef(ref domain.MessageRef) (int64, int, error) {
	chatID, err := parseChat(ref.Channel)
	if err != nil {
		return 0, 0, err
	}
	msgID, err := strconv.Atoi(ref.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("message id %q: %w", ref.ID, err)
	}
	return chatID, msgID, nil
}
