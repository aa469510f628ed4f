// Package discord adapts the chat surface to Discord through arikawa.
package discord

import (
	"context"
	"fmt"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"

	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/domain"
)

// client is the subset of the arikawa REST client the messenger uses.
type client interface {
	SendMessage(channelID discord.ChannelID, content string, embeds ...discord.Embed) (*discord.Message, error)
	EditText(channelID discord.ChannelID, messageID discord.MessageID, content string) (*discord.Message, error)
	EditEmbeds(channelID discord.ChannelID, messageID discord.MessageID, embeds ...discord.Embed) (*discord.Message, error)
	DeleteMessage(channelID discord.ChannelID, messageID discord.MessageID, reason api.AuditLogReason) error
}

// Messenger implements chat.Messenger on a Discord REST client.
type Messenger struct {
	c client
}

func NewMessenger(c client) *Messenger { return &Messenger{c: c} }

func (m *Messenger) Send(_ context.Context, channel domain.ChannelID, p chat.Payload) (domain.MessageRef, error) {
	chID, err := parseChannel(channel)
	if err != nil {
		return domain.MessageRef{}, err
	}
	var msg *discord.Message
	if p.Rich() {
		msg, err = m.c.SendMessage(chID, p.Content, toEmbed(p))
	} else {
		msg, err = m.c.SendMessage(chID, p.Content)
	}
	if err != nil {
		return domain.MessageRef{}, err
	}
	return domain.MessageRef{Channel: channel, ID: msg.ID.String()}, nil
}

func (m *Messenger) Edit(_ context.Context, ref domain.MessageRef, p chat.Payload) error {
	chID, msgID, err := parseRef(ref)
	if err != nil {
		return err
	}
	if p.Rich() {
		_, err = m.c.EditEmbeds(chID, msgID, toEmbed(p))
	} else {
		_, err = m.c.EditText(chID, msgID, p.Content)
	}
	return err
}

func (m *Messenger) Delete(_ context.Context, ref domain.MessageRef) error {
	chID, msgID, err := parseRef(ref)
	if err != nil {
		return err
	}
	return m.c.DeleteMessage(chID, msgID, "")
}

func toEmbed(p chat.Payload) discord.Embed {
	e := discord.Embed{
		Title:       p.Title,
		Description: p.Description,
		Color:       discord.Color(p.Color),
	}
	if p.ImageURL != "" {
		e.Image = &discord.EmbedImage{URL: p.ImageURL}
	}
	if p.Footer != "" {
		e.Footer = &discord.EmbedFooter{Text: p.Footer}
	}
	for _, f := range p.Fields {
		e.Fields = append(e.Fields, discord.EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return e
}

func parseChannel(channel domain.ChannelID) (discord.ChannelID, error) {
	sf, err := discord.ParseSnowflake(string(channel))
	if err != nil {
		return 0, fmt.Errorf("channel id %q: %w", channel, err)
	}
	return discord.ChannelID(sf), nil
}

func parseRef(ref domain.MessageRef) (discord.ChannelID, discord.MessageID, error) {
	chID, err := parseChannel(ref.Channel)
	if err != nil {
		return 0, 0, err
	}
	sf, err := discord.ParseSnowflake(ref.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("message id %q: %w", ref.ID, err)
	}
	return chID, discord.MessageID(sf), nil
}
