package domain

// StickyDef fully describes one sticky announcement.
type StickyDef struct {
	Channel     ChannelID `yaml:"channel"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Color       uint32    `yaml:"color"`
	ImageURL    string    `yaml:"image_url"`
	Footer      string    `yaml:"footer"`
}
