// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"replybot/internal/ai"
	"replybot/internal/cache"
	"replybot/internal/config"
	"replybot/internal/engine"
	"replybot/internal/guard"
	"replybot/internal/notifier"
	"replybot/internal/pipeline"
	"replybot/internal/poster"
	"replybot/internal/seed"
	"replybot/internal/source"
	"replybot/internal/store"
	"replybot/internal/trigger"
)

// feedBatchSize is how many candidate items the simulated feed yields per
// fetch.
const feedBatchSize = 5

// components holds everything the commands need.
type components struct {
	store     *store.Store
	engine    *engine.Engine
	poster    poster.Poster
	registry  *ai.Registry
	generator *ai.Generator
	notifier  *notifier.Notifier
	pipeline  *pipeline.Pipeline
	evaluator trigger.Evaluator

	valkey *redis.Client
}

// Close releases external connections.
func (c *components) Close() {
	if c.valkey != nil {
		if err := c.valkey.Close(); err != nil {
			slog.Warn("close valkey", "error", err)
		}
	}
}

// build wires the store, collaborators and pipeline from cfg.
func build(ctx context.Context, cfg *config.Config) (*components, error) {
	c := &components{
		store:  store.New(store.WithMaxHistory(cfg.MaxHistory)),
		engine: engine.New(),
	}

	if err := loadSeed(c.store, cfg); err != nil {
		return nil, err
	}

	evaluator, err := c.buildEvaluator(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.evaluator = evaluator

	c.poster = poster.NewSimulated(poster.SimulatedConfig{
		FailureRate: cfg.PostFailureRate,
		MinDelay:    cfg.PostMinDelay,
		MaxDelay:    cfg.PostMaxDelay,
	})

	c.registry = ai.NewRegistry(ctx, cfg.AIProvider, providerConfigs(cfg))
	c.generator = ai.NewGenerator(c.registry, 0)
	slog.Info("ai providers initialized",
		"active", c.registry.ActiveName(),
		"available", c.registry.Available(),
	)

	c.notifier, err = buildNotifier(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	pcfg := pipeline.Config{
		Store:       c.store,
		Guard:       guard.New(c.store),
		Evaluator:   evaluator,
		Engine:      c.engine,
		Poster:      c.poster,
		Notifier:    c.notifier,
		PostTimeout: cfg.PostTimeout,
	}
	// Leave the interface nil rather than holding an unusable generator.
	if c.generator.Available() {
		pcfg.Generator = c.generator
	}
	c.pipeline = pipeline.New(pcfg)

	return c, nil
}

// loadSeed fills the store with sample data and the configured seed file.
func loadSeed(st *store.Store, cfg *config.Config) error {
	if cfg.SeedSampleData {
		if err := seed.Apply(st, seed.Samples()); err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
		slog.Info("sample data seeded")
	}
	if cfg.SeedFile != "" {
		f, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := seed.Apply(st, f); err != nil {
			return fmt.Errorf("apply seed file %s: %w", cfg.SeedFile, err)
		}
		slog.Info("seed file applied", "path", cfg.SeedFile,
			"templates", len(f.Templates), "rules", len(f.Rules))
	}
	return nil
}

// buildEvaluator returns the trigger evaluator for the configured mode.
// Feed mode remembers answered items in Valkey when it is reachable and in
// memory otherwise.
func (c *components) buildEvaluator(ctx context.Context, cfg *config.Config) (trigger.Evaluator, error) {
	switch cfg.TriggerMode {
	case config.TriggerModeSimulated:
		return trigger.NewSimulated(trigger.SimulatedConfig{
			NewPostProbability: cfg.NewPostProbability,
			KeywordProbability: cfg.KeywordProbability,
		}), nil

	case config.TriggerModeFeed:
		var seen cache.SeenSet = cache.NewMemorySeenSet()
		if cfg.ValkeyEnabled() {
			client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
			if err != nil {
				slog.Warn("valkey unavailable, remembering answered items in memory", "error", err)
			} else {
				c.valkey = client
				seen = cache.NewValkeySeenSet(client, cache.DefaultSeenTTL)
			}
		}

		src := source.NewSimulated(source.SimulatedConfig{
			BatchSize:   feedBatchSize,
			KeywordRate: cfg.KeywordProbability,
			Keywords:    c.ruleKeywords,
		})
		return trigger.NewFeed(src, seen), nil
	}
	return nil, fmt.Errorf("unknown trigger mode %q", cfg.TriggerMode)
}

// ruleKeywords collects the keywords of every enabled rule.
func (c *components) ruleKeywords() []string {
	var out []string
	for _, r := range c.store.EnabledRules() {
		out = append(out, r.TriggerKeywords...)
	}
	return out
}

// providerConfigs maps the per-provider settings to registry configs.
func providerConfigs(cfg *config.Config) map[string]ai.ProviderConfig {
	return map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini":  {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	}
}

// buildNotifier creates the error notifier from the configured channels.
func buildNotifier(cfg *config.Config) (*notifier.Notifier, error) {
	var senders []notifier.Sender
	if cfg.SMTPEnabled() {
		senders = append(senders, notifier.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom))
	}
	if cfg.TelegramEnabled() {
		tg, err := notifier.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram notifier: %w", err)
		}
		senders = append(senders, tg)
	}
	n := notifier.New(senders...)
	slog.Info("notifier initialized", "channels", n.Channels())
	return n, nil
}
