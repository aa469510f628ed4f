package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "secret")
	t.Chdir(t.TempDir()) // no stray .env

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, PlatformDiscord, cfg.Platform)
	assert.Equal(t, ".", cfg.CommandPrefix)
	assert.Equal(t, "json", cfg.StoreDriver)
	assert.Equal(t, "timers.json", cfg.StorePath())
	assert.Equal(t, defaultImageURL, cfg.TimerImageURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Chdir(t.TempDir())
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Platform: PlatformTelegram, TelegramToken: "x", StoreDriver: "sqlite", CommandPrefix: "!", DBPath: "db"}
	require.NoError(t, base.Validate())
	assert.Equal(t, "db", base.StorePath())

	bad := base
	bad.Platform = "irc"
	assert.Error(t, bad.Validate())

	bad = base
	bad.TelegramToken = ""
	assert.Error(t, bad.Validate())

	bad = base
	bad.StoreDriver = "redis"
	assert.Error(t, bad.Validate())

	bad = base
	bad.CommandPrefix = ""
	assert.Error(t, bad.Validate())
}
