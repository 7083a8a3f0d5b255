// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pipeline runs one posting tick: it checks the global switches,
// walks the enabled rules and records every attempt in the history log.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"replybot/internal/ai"
	"replybot/internal/engine"
	"replybot/internal/guard"
	"replybot/internal/metrics"
	"replybot/internal/models"
	"replybot/internal/notifier"
	"replybot/internal/poster"
	"replybot/internal/trigger"
)

// AIReplyVar is the template variable filled with a generated reply.
const AIReplyVar = "ai_reply"

// DefaultPostTimeout bounds a single call to the poster.
const DefaultPostTimeout = 30 * time.Second

// Whole-tick skip reasons.
const (
	SkipDisabled    = "disabled"
	SkipRateLimited = "rate_limited"
)

// Per-rule skip reasons, used as metric labels.
const (
	skipCooldown        = "cooldown"
	skipMissingTemplate = "missing_template"
	skipUnknownTrigger  = "unknown_trigger"
	skipNotTriggered    = "not_triggered"
)

// Store is the subset of the entity store the pipeline uses.
type Store interface {
	Settings() models.Settings
	EnabledRules() []models.Rule
	Template(id string) *models.Template
	AddHistoryEntry(e models.HistoryEntry) models.HistoryEntry
}

// Config wires the pipeline's collaborators. Generator and Notifier are
// optional.
type Config struct {
	Store       Store
	Guard       *guard.Guard
	Evaluator   trigger.Evaluator
	Engine      *engine.Engine
	Poster      poster.Poster
	Generator   ai.TextGenerator
	Notifier    *notifier.Notifier
	PostTimeout time.Duration
}

// Summary reports what a tick did.
type Summary struct {
	Considered int           `json:"considered"`
	Posted     int           `json:"posted"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	SkipReason string        `json:"skip_reason,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// String renders the summary for logs and CLI output.
func (s Summary) String() string {
	if s.SkipReason != "" {
		return "tick skipped: " + s.SkipReason
	}
	return fmt.Sprintf("%d rules considered, %d posted, %d failed, %d skipped",
		s.Considered, s.Posted, s.Failed, s.Skipped)
}

// Pipeline executes ticks. Concurrent Tick calls run one at a time.
type Pipeline struct {
	mu  sync.Mutex
	cfg Config
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Engine == nil {
		cfg.Engine = engine.New()
	}
	if cfg.PostTimeout <= 0 {
		cfg.PostTimeout = DefaultPostTimeout
	}
	return &Pipeline{cfg: cfg}
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomePosted
	outcomeFailed
)

// Tick runs one pass over the enabled rules. It never fails; per-rule
// problems end up in the history log. A tick that has started runs to
// completion: cancelling ctx does not stop it, only POST_TIMEOUT bounds
// each post.
func (p *Pipeline) Tick(ctx context.Context) Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	sum := p.tick(ctx)
	sum.Duration = time.Since(start)

	metrics.TickDuration.Observe(sum.Duration.Seconds())
	switch {
	case sum.SkipReason != "":
		metrics.TicksTotal.WithLabelValues(sum.SkipReason).Inc()
	default:
		metrics.TicksTotal.WithLabelValues("completed").Inc()
	}
	slog.Info("tick finished", "summary", sum.String(), "duration", sum.Duration)
	return sum
}

func (p *Pipeline) tick(ctx context.Context) Summary {
	settings := p.cfg.Store.Settings()
	if !settings.Enabled {
		slog.Info("bot is disabled, skipping tick")
		return Summary{SkipReason: SkipDisabled}
	}

	if d := p.cfg.Guard.CheckRate(settings); !d.Allowed {
		slog.Warn("hourly comment limit reached, skipping tick", "count", d.Count, "limit", d.Limit)
		return Summary{SkipReason: SkipRateLimited}
	}

	var sum Summary
	for _, rule := range p.cfg.Store.EnabledRules() {
		sum.Considered++
		switch p.runRule(ctx, rule, settings) {
		case outcomePosted:
			sum.Posted++
		case outcomeFailed:
			sum.Failed++
		default:
			sum.Skipped++
		}
	}
	return sum
}

// runRule processes one rule, turning a panic into an error entry.
func (p *Pipeline) runRule(ctx context.Context, rule models.Rule, settings models.Settings) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			metrics.PanicsRecovered.WithLabelValues("rule").Inc()
			slog.Error("rule processing panicked", "rule_id", rule.ID, "panic", r)
			p.record(ctx, rule, settings, models.HistoryEntry{
				RuleID:       rule.ID,
				TemplateID:   rule.TemplateID,
				Status:       models.StatusError,
				ErrorMessage: fmt.Sprintf("panic: %v", r),
			})
			out = outcomeFailed
		}
	}()
	return p.processRule(ctx, rule, settings)
}

func skip(reason string) outcome {
	metrics.RulesSkipped.WithLabelValues(reason).Inc()
	return outcomeSkipped
}

func (p *Pipeline) processRule(ctx context.Context, rule models.Rule, settings models.Settings) outcome {
	log := slog.With("rule_id", rule.ID, "rule", rule.Name)

	if d := p.cfg.Guard.CheckCooldown(rule); !d.Allowed {
		log.Debug("rule on cooldown", "remaining", d.Remaining.Round(time.Second))
		return skip(skipCooldown)
	}

	tpl := p.cfg.Store.Template(rule.TemplateID)
	if tpl == nil {
		log.Error("template not found", "template_id", rule.TemplateID)
		return skip(skipMissingTemplate)
	}

	res, err := p.cfg.Evaluator.Evaluate(ctx, rule)
	if errors.Is(err, trigger.ErrUnknownTrigger) {
		log.Warn("unknown trigger type", "trigger_type", rule.TriggerType)
		return skip(skipUnknownTrigger)
	}
	if err != nil {
		log.Error("trigger evaluation failed", "error", err)
		p.record(ctx, rule, settings, models.HistoryEntry{
			RuleID:       rule.ID,
			TemplateID:   tpl.ID,
			Status:       models.StatusError,
			ErrorMessage: err.Error(),
		})
		return outcomeFailed
	}
	if res == nil {
		return skip(skipNotTriggered)
	}
	log.Info("trigger fired", "post_id", res.Item.ID, "keyword", res.MatchedKeyword)

	values := res.Values
	if values == nil {
		values = make(map[string]any)
	}
	p.injectAIReply(ctx, tpl, values, res.Item.Text)

	content, unfilled := p.cfg.Engine.RenderTemplate(tpl, values)
	metrics.UnfilledVariables.Add(float64(len(unfilled)))

	entry := p.post(ctx, poster.PostRequest{
		PostID:     res.Item.ID,
		Content:    content,
		RuleID:     rule.ID,
		TemplateID: tpl.ID,
	})

	if rec, ok := p.cfg.Evaluator.(trigger.ItemRecorder); ok && res.Item.ID != "" {
		rec.MarkAnswered(ctx, rule.ID, res.Item.ID)
	}

	p.record(ctx, rule, settings, entry)
	if entry.Status == models.StatusError {
		return outcomeFailed
	}
	return outcomePosted
}

// injectAIReply fills {ai_reply} when the template uses it and the rule
// does not already supply a value.
func (p *Pipeline) injectAIReply(ctx context.Context, tpl *models.Template, values map[string]any, text string) {
	if p.cfg.Generator == nil || !engine.Uses(tpl.Content, AIReplyVar) {
		return
	}
	if _, ok := values[AIReplyVar]; ok {
		return
	}

	reply := p.cfg.Generator.Generate(ctx, text)
	if ai.IsError(reply) {
		metrics.AIReplies.WithLabelValues("error").Inc()
	} else {
		metrics.AIReplies.WithLabelValues("ok").Inc()
	}
	values[AIReplyVar] = reply
}

// post calls the poster under the per-post timeout and builds the history
// entry describing the result.
func (p *Pipeline) post(ctx context.Context, req poster.PostRequest) models.HistoryEntry {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.PostTimeout)
	defer cancel()

	entry := models.HistoryEntry{
		PostID:     req.PostID,
		RuleID:     req.RuleID,
		TemplateID: req.TemplateID,
		Content:    req.Content,
		Platform:   p.cfg.Poster.Platform(),
	}

	start := time.Now()
	res, err := p.cfg.Poster.Post(ctx, req)
	metrics.PostDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Error("failed to post comment", "post_id", req.PostID, "rule_id", req.RuleID, "error", err)
		entry.Status = models.StatusError
		entry.ErrorMessage = err.Error()
		return entry
	}

	entry.Status = models.StatusSuccess
	entry.CommentID = res.CommentID
	entry.Engagement = &models.Engagement{}
	return entry
}

// record appends the entry and, for failures, notifies the operator.
func (p *Pipeline) record(ctx context.Context, rule models.Rule, settings models.Settings, e models.HistoryEntry) {
	if e.Platform == "" && p.cfg.Poster != nil {
		e.Platform = p.cfg.Poster.Platform()
	}
	stored := p.cfg.Store.AddHistoryEntry(e)
	metrics.CommentsTotal.WithLabelValues(string(stored.Status)).Inc()

	if stored.Status != models.StatusError || !settings.ErrorNotification || !p.cfg.Notifier.Enabled() {
		return
	}
	if err := p.cfg.Notifier.NotifyError(ctx, settings.NotificationEmail, stored, rule.Name); err != nil {
		metrics.NotificationsSent.WithLabelValues("error").Inc()
		return
	}
	metrics.NotificationsSent.WithLabelValues("ok").Inc()
}
