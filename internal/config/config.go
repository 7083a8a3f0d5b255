// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Trigger modes.
const (
	TriggerModeSimulated = "simulated"
	TriggerModeFeed      = "feed"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Scheduling and history
	TickSchedule string // cron expression or descriptor, e.g. "@every 5m"
	Timezone     string
	MaxHistory   int

	// Seeding
	SeedFile       string
	SeedSampleData bool

	// Triggers
	TriggerMode        string // "simulated" or "feed"
	NewPostProbability float64
	KeywordProbability float64

	// Posting
	PostFailureRate float64
	PostMinDelay    time.Duration
	PostMaxDelay    time.Duration
	PostTimeout     time.Duration

	// Valkey (Redis-compatible) seen-item set; disabled when host is empty
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI provider settings
	AIProvider     string // "openai", "gemini", "claude", "mistral"
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	GeminiKey      string
	GeminiModel    string
	GeminiBaseURL  string
	ClaudeKey      string
	ClaudeModel    string
	ClaudeBaseURL  string
	MistralKey     string
	MistralModel   string
	MistralBaseURL string

	// Error notifications
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SMTPFrom         string
	TelegramBotToken string
	TelegramChatID   string

	// Dashboard API
	RunNowLimit int // run-now requests per client per minute
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Malformed numeric, boolean or duration
// values are reported together.
func Load() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		TickSchedule: envOrDefault("TICK_SCHEDULE", "@every 5m"),
		Timezone:     envOrDefault("TIMEZONE", "Local"),
		MaxHistory:   p.int("MAX_HISTORY", 1000),

		SeedFile: os.Getenv("SEED_FILE"),

		TriggerMode:        envOrDefault("TRIGGER_MODE", TriggerModeSimulated),
		NewPostProbability: p.float("NEW_POST_PROBABILITY", 0.3),
		KeywordProbability: p.float("KEYWORD_PROBABILITY", 0.2),

		PostFailureRate: p.float("POST_FAILURE_RATE", 0.1),
		PostMinDelay:    p.duration("POST_MIN_DELAY", 500*time.Millisecond),
		PostMaxDelay:    p.duration("POST_MAX_DELAY", 1500*time.Millisecond),
		PostTimeout:     p.duration("POST_TIMEOUT", 30*time.Second),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider:     envOrDefault("AI_PROVIDER", "openai"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:  os.Getenv("GEMINI_BASE_URL"),
		ClaudeKey:      os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:    envOrDefault("CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		ClaudeBaseURL:  os.Getenv("CLAUDE_BASE_URL"),
		MistralKey:     os.Getenv("MISTRAL_API_KEY"),
		MistralModel:   envOrDefault("MISTRAL_MODEL", "mistral-small-latest"),
		MistralBaseURL: envOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),

		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         p.int("SMTP_PORT", 587),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		SMTPFrom:         envOrDefault("SMTP_FROM", "replybot@localhost"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		RunNowLimit: p.int("RUN_NOW_LIMIT", 6),
	}
	cfg.SeedSampleData = p.bool("SEED_SAMPLE_DATA", cfg.IsDev())

	if err := errors.Join(append(p.errs, cfg.validate()...)...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks cross-field constraints.
func (c *Config) validate() []error {
	var errs []error
	switch c.TriggerMode {
	case TriggerModeSimulated, TriggerModeFeed:
	default:
		errs = append(errs, fmt.Errorf("TRIGGER_MODE must be %q or %q, got %q",
			TriggerModeSimulated, TriggerModeFeed, c.TriggerMode))
	}
	for name, v := range map[string]float64{
		"NEW_POST_PROBABILITY": c.NewPostProbability,
		"KEYWORD_PROBABILITY":  c.KeywordProbability,
		"POST_FAILURE_RATE":    c.PostFailureRate,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", name, v))
		}
	}
	if c.PostMaxDelay < c.PostMinDelay {
		errs = append(errs, fmt.Errorf("POST_MAX_DELAY (%s) is shorter than POST_MIN_DELAY (%s)",
			c.PostMaxDelay, c.PostMinDelay))
	}
	if c.MaxHistory < 1 {
		errs = append(errs, fmt.Errorf("MAX_HISTORY must be positive, got %d", c.MaxHistory))
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == "" {
		errs = append(errs, errors.New("TELEGRAM_CHAT_ID must be set when TELEGRAM_BOT_TOKEN is"))
	}
	return errs
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyEnabled reports whether a Valkey host is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// SMTPEnabled reports whether email notifications can be sent.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// TelegramEnabled reports whether Telegram notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser reads typed environment variables, collecting parse errors.
type parser struct {
	errs []error
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return fallback
	}
	return f
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return fallback
	}
	return d
}

func (p *parser) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return fallback
	}
	return b
}
