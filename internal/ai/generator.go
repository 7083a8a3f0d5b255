// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// replyPrompt asks for a short, upbeat reply to a post.
const replyPrompt = `You are a helpful and encouraging assistant. Read the post below and write a kind and thoughtful comment in reply.

Post: "%s"

Comment (keep it short, friendly, and insightful):`

// errorPrefix marks a generation failure that is returned inline.
const errorPrefix = "[Error generating comment]"

const (
	replyMaxTokens   = 60
	replyTemperature = 0.8
)

// TextGenerator produces a reply for a post.
type TextGenerator interface {
	Generate(ctx context.Context, sourceText string) string
}

// Generator writes replies through a Registry. Failures never surface as
// errors; the reply text itself carries the error message.
type Generator struct {
	registry *Registry
	timeout  time.Duration
}

// NewGenerator creates a reply generator. A zero timeout means 30s.
func NewGenerator(r *Registry, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{registry: r, timeout: timeout}
}

// Available reports whether the active provider is configured.
func (g *Generator) Available() bool {
	_, err := g.registry.Active()
	return err == nil
}

// Generate returns a reply to sourceText, or "[Error generating comment] ..."
// if the provider fails.
func (g *Generator) Generate(ctx context.Context, sourceText string) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.registry.Generate(ctx, Request{
		Prompt:      fmt.Sprintf(replyPrompt, sourceText),
		MaxTokens:   replyMaxTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		slog.Warn("reply generation failed", "provider", g.registry.ActiveName(), "error", err)
		return errorPrefix + " " + err.Error()
	}
	return strings.TrimSpace(text)
}

// IsError reports whether a generated reply is an inline error.
func IsError(reply string) bool {
	return strings.HasPrefix(reply, errorPrefix)
}
