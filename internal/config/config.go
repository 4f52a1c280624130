// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration. Every field has an environment
// binding; only the Discord token and Gemini API key are required.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	BotPrefix    string `env:"BOT_PREFIX" envDefault:"!"`

	GeminiAPIKey    string `env:"GEMINI_API_KEY,required"`
	GeminiModel     string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiMaxTokens int    `env:"GEMINI_MAX_TOKENS" envDefault:"1024"`
	GeminiRPM       int    `env:"GEMINI_REQUESTS_PER_MINUTE" envDefault:"30"`

	AutoResponseChannels []string `env:"AUTO_RESPONSE_CHANNELS" envSeparator:","`
	EnableMentions       bool     `env:"ENABLE_MENTION_RESPONSES" envDefault:"true"`
	EnableDMs            bool     `env:"ENABLE_DIRECT_MESSAGE_RESPONSES" envDefault:"true"`

	// CooldownSeconds is the base user cooldown window for ambient
	// responses; the channel and user+channel windows derive from it.
	CooldownSeconds int `env:"AUTO_RESPONSE_COOLDOWN" envDefault:"10"`

	MaxConversationHistory int `env:"MAX_CONVERSATION_HISTORY" envDefault:"10"`
	MemoryExpirySeconds    int `env:"CONVERSATION_MEMORY_EXPIRY" envDefault:"3600"`
	CleanupIntervalSeconds int `env:"MEMORY_CLEANUP_INTERVAL" envDefault:"3600"`
	PreviewLength          int `env:"CONVERSATION_PREVIEW_LENGTH" envDefault:"3"`

	MoodChangeProbability     float64 `env:"MOOD_CHANGE_PROBABILITY" envDefault:"0.2"`
	DefaultPersonality        string  `env:"DEFAULT_PERSONALITY" envDefault:"balanced"`
	EnableMoodIndicator       bool    `env:"ENABLE_MOOD_INDICATOR" envDefault:"true"`
	EnableEnergyMeter         bool    `env:"ENABLE_ENERGY_METER" envDefault:"true"`
	UserSelectablePersonality bool    `env:"USER_SELECTABLE_PERSONALITY" envDefault:"true"`

	// DatabasePath enables SQLite persistence; empty keeps everything in
	// memory.
	DatabasePath  string `env:"DATABASE_PATH"`
	RetentionDays int    `env:"DB_RETENTION_DAYS" envDefault:"30"`

	// CatalogPath points at an optional YAML mood/personality override.
	CatalogPath string `env:"CATALOG_PATH"`

	// HTTPAddr enables the /health and /status endpoints when set, e.g.
	// ":8080".
	HTTPAddr string `env:"HTTP_ADDR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads .env (when present) and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.CooldownSeconds < 0 {
		return nil, fmt.Errorf("AUTO_RESPONSE_COOLDOWN must not be negative")
	}
	if cfg.MoodChangeProbability < 0 || cfg.MoodChangeProbability > 1 {
		return nil, fmt.Errorf("MOOD_CHANGE_PROBABILITY must be in [0,1]")
	}
	if cfg.PreviewLength < 1 {
		return nil, fmt.Errorf("CONVERSATION_PREVIEW_LENGTH must be positive")
	}
	return &cfg, nil
}

// Cooldown returns the base cooldown window as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// MemoryExpiry returns the conversation idle expiry as a duration.
func (c *Config) MemoryExpiry() time.Duration {
	return time.Duration(c.MemoryExpirySeconds) * time.Second
}

// CleanupInterval returns the sweep spacing as a duration.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

// SlogLevel maps the configured level name onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
