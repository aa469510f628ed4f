package domain

// OwnerID is the opaque platform user id a timer belongs to.
type OwnerID string

// Owner is the user who started a timer.
type Owner struct {
	ID   OwnerID
	Name string // display name, used for the "@name" tag
}

// ChannelID is the opaque platform channel (or chat) id.
type ChannelID string

// MessageRef identifies one posted message.
type MessageRef struct {
	Channel ChannelID
	ID      string
}

func (r MessageRef) IsZero() bool { return r.ID == "" }
