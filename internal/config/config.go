package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported chat platforms.
const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"
)

const defaultImageURL = "https://github.com/Reso1992/DmoTimer/raw/main/bandicam%202024-09-25%2022-51-53-515.jpg"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Platform      string `envconfig:"PLATFORM" default:"discord"` // discord|telegram
	DiscordToken  string `envconfig:"DISCORD_BOT_TOKEN"`
	TelegramToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	CommandPrefix string `envconfig:"COMMAND_PREFIX" default:"."`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"json"` // json|sqlite
	StatePath   string `envconfig:"STATE_PATH" default:"timers.json"`
	DBPath      string `envconfig:"DB_PATH" default:"./data/timers.db"`

	TimerImageURL string `envconfig:"TIMER_IMAGE_URL"`
	TimerFooter   string `envconfig:"TIMER_FOOTER" default:"Creator: Reso"`
	StickyConfig  string `envconfig:"STICKY_CONFIG"` // YAML; empty disables stickies

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"` // healthz + metrics
}

// Load reads an optional .env file, then environment variables into Config.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if cfg.TimerImageURL == "" {
		cfg.TimerImageURL = defaultImageURL
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints envconfig cannot express.
func (c Config) Validate() error {
	switch c.Platform {
	case PlatformDiscord:
		if c.DiscordToken == "" {
			return errors.New("DISCORD_BOT_TOKEN is required for platform discord")
		}
	case PlatformTelegram:
		if c.TelegramToken == "" {
			return errors.New("TELEGRAM_BOT_TOKEN is required for platform telegram")
		}
	default:
		return fmt.Errorf("unknown PLATFORM %q", c.Platform)
	}
	switch c.StoreDriver {
	case "json", "sqlite":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX must not be empty")
	}
	return nil
}

// StorePath is the path used by the selected store driver.
func (c Config) StorePath() string {
	if c.StoreDriver == "sqlite" {
		return c.DBPath
	}
	return c.StatePath
}
