// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the replybot dashboard.
// Handlers are grouped by concern (JSON API, HTML pages) and receive their
// dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"replybot/internal/ai"
	"replybot/internal/engine"
	"replybot/internal/metrics"
	"replybot/internal/models"
	"replybot/internal/pipeline"
	"replybot/internal/poster"
	"replybot/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Ticker runs one pipeline tick.
type Ticker interface {
	Tick(ctx context.Context) pipeline.Summary
}

// API groups the dashboard's JSON endpoints and their dependencies.
type API struct {
	store     *store.Store
	engine    *engine.Engine
	ticker    Ticker
	poster    poster.Poster
	generator *ai.Generator

	onRuleDeleted func(ctx context.Context, ruleID string)
}

// OnRuleDeleted registers fn to run after a rule is deleted.
func (a *API) OnRuleDeleted(fn func(ctx context.Context, ruleID string)) {
	a.onRuleDeleted = fn
}

// NewAPI creates the JSON API handler group. generator may be nil when no
// AI provider is configured.
func NewAPI(st *store.Store, eng *engine.Engine, ticker Ticker, p poster.Poster, generator *ai.Generator) *API {
	if eng == nil {
		eng = engine.New()
	}
	return &API{
		store:     st,
		engine:    eng,
		ticker:    ticker,
		poster:    p,
		generator: generator,
	}
}

// --- Response helpers ---

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode json response", "error", err)
	}
}

// writeOK writes {"success":true} merged with extra fields.
func writeOK(w http.ResponseWriter, extra map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// writeFail reports a failed operation. Failures are HTTP 200 with
// success=false; only malformed requests use 4xx.
func writeFail(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": msg})
}

// decodeJSON reads the request body into dst. On failure it writes a 400
// and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   fmt.Sprintf("invalid JSON body: %v", err),
		})
		return false
	}
	return true
}

// storeError maps store sentinel errors to user-facing messages.
func storeError(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "Not found."
	case errors.Is(err, store.ErrTemplateInUse):
		return "Template is used by one or more rules."
	case errors.Is(err, store.ErrTemplateNotFound):
		return "Template does not exist."
	}
	return err.Error()
}

// --- Templates ---

// templateRequest is the body of template create and update calls.
type templateRequest struct {
	Name      string   `json:"name"`
	Content   string   `json:"content"`
	Variables []string `json:"variables"`
}

func (req templateRequest) model() models.Template {
	return models.Template{
		Name:      strings.TrimSpace(req.Name),
		Content:   req.Content,
		Variables: req.Variables,
	}
}

// ListTemplates returns every template in insertion order.
func (a *API) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Templates())
}

// CreateTemplate adds a template and returns its id.
func (a *API) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTemplate(req.Name, req.Content); msg != "" {
		writeFail(w, msg)
		return
	}

	id := a.store.AddTemplate(req.model())
	slog.Info("template created", "template_id", id, "name", req.Name)
	writeOK(w, map[string]any{"id": id})
}

// UpdateTemplate replaces a template's fields.
func (a *API) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTemplate(req.Name, req.Content); msg != "" {
		writeFail(w, msg)
		return
	}

	if err := a.store.UpdateTemplate(id, req.model()); err != nil {
		writeFail(w, storeError(err))
		return
	}
	a.engine.InvalidateTemplate(id)
	slog.Info("template updated", "template_id", id)
	writeOK(w, nil)
}

// DeleteTemplate removes a template unless a rule still references it.
func (a *API) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.store.DeleteTemplate(id); err != nil {
		slog.Warn("delete template rejected", "template_id", id, "error", err)
		writeFail(w, storeError(err))
		return
	}
	a.engine.InvalidateTemplate(id)
	slog.Info("template deleted", "template_id", id)
	writeOK(w, nil)
}

// --- Rules ---

// ruleRequest is the body of rule create and update calls. Enabled
// defaults to true when omitted.
type ruleRequest struct {
	Name            string             `json:"name"`
	TemplateID      string             `json:"template_id"`
	TriggerType     models.TriggerType `json:"trigger_type"`
	TriggerKeywords []string           `json:"trigger_keywords"`
	VariableValues  map[string]any     `json:"variable_values"`
	Enabled         *bool              `json:"enabled"`
	CooldownMinutes int                `json:"cooldown_minutes"`
}

func (req ruleRequest) model() models.Rule {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return models.Rule{
		Name:            strings.TrimSpace(req.Name),
		TemplateID:      req.TemplateID,
		TriggerType:     req.TriggerType,
		TriggerKeywords: cleanKeywords(req.TriggerKeywords),
		VariableValues:  req.VariableValues,
		Enabled:         enabled,
		CooldownMinutes: req.CooldownMinutes,
	}
}

// ListRules returns every rule in insertion order.
func (a *API) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Rules())
}

// CreateRule adds a rule and returns its id.
func (a *API) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rule := req.model()
	if msg := validateRule(rule); msg != "" {
		writeFail(w, msg)
		return
	}

	a.defaultRuleName(&rule)

	id, err := a.store.AddRule(rule)
	if err != nil {
		writeFail(w, storeError(err))
		return
	}
	slog.Info("rule created", "rule_id", id, "name", rule.Name, "trigger", rule.TriggerType)
	writeOK(w, map[string]any{"id": id})
}

// UpdateRule replaces a rule's fields.
func (a *API) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ruleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rule := req.model()
	if msg := validateRule(rule); msg != "" {
		writeFail(w, msg)
		return
	}

	a.defaultRuleName(&rule)

	if err := a.store.UpdateRule(id, rule); err != nil {
		writeFail(w, storeError(err))
		return
	}
	slog.Info("rule updated", "rule_id", id)
	writeOK(w, nil)
}

// defaultRuleName names an unnamed rule after its template.
func (a *API) defaultRuleName(rule *models.Rule) {
	if strings.TrimSpace(rule.Name) != "" {
		return
	}
	if t := a.store.Template(rule.TemplateID); t != nil {
		rule.Name = t.Name
	}
}

// DeleteRule removes a rule.
func (a *API) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.store.DeleteRule(id); err != nil {
		writeFail(w, storeError(err))
		return
	}
	if a.onRuleDeleted != nil {
		a.onRuleDeleted(r.Context(), id)
	}
	slog.Info("rule deleted", "rule_id", id)
	writeOK(w, nil)
}

// --- Settings ---

// GetSettings returns the current settings.
func (a *API) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Settings())
}

// UpdateSettings shallow-merges the given fields into the settings.
func (a *API) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if msg := validateSettings(patch); msg != "" {
		writeFail(w, msg)
		return
	}

	settings := a.store.UpdateSettings(patch)
	slog.Info("settings updated",
		"enabled", settings.Enabled,
		"max_comments_per_hour", settings.MaxCommentsPerHour,
		"error_notification", settings.ErrorNotification,
	)
	writeOK(w, map[string]any{"settings": settings})
}

// --- Analytics and history ---

// Analytics returns the seven-day analytics summary.
func (a *API) Analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Analytics())
}

// Stats returns the dashboard counters.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.DashboardStats())
}

// History returns history entries newest first. An optional ?limit=N
// keeps only the N newest.
func (a *API) History(w http.ResponseWriter, r *http.Request) {
	entries := a.store.History()
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "limit must be a non-negative integer",
			})
			return
		}
		if n < len(entries) {
			entries = entries[:n]
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

// engagementRequest is the body of an engagement update.
type engagementRequest struct {
	Likes   int `json:"likes"`
	Replies int `json:"replies"`
}

// UpdateEngagement records likes and replies for a posted comment.
func (a *API) UpdateEngagement(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")
	var req engagementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Likes < 0 || req.Replies < 0 {
		writeFail(w, "Likes and replies cannot be negative.")
		return
	}

	if err := a.store.UpdateEngagement(commentID, req.Likes, req.Replies); err != nil {
		writeFail(w, storeError(err))
		return
	}
	writeOK(w, nil)
}

// DeleteComment removes a posted comment from the platform and marks its
// history entry as deleted.
func (a *API) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")

	if err := a.poster.Delete(r.Context(), commentID); err != nil {
		slog.Error("delete comment failed", "comment_id", commentID, "error", err)
		writeFail(w, err.Error())
		return
	}
	if err := a.store.MarkDeleted(commentID); err != nil {
		writeFail(w, storeError(err))
		return
	}
	slog.Info("comment deleted", "comment_id", commentID, "platform", a.poster.Platform())
	writeOK(w, nil)
}

// --- Actions ---

// RunNow runs one pipeline tick synchronously. A panic is reported as a
// failed run rather than a server error.
func (a *API) RunNow(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.PanicsRecovered.WithLabelValues("run_now").Inc()
			slog.Error("run-now panicked", "error", rec, "stack", string(debug.Stack()))
			writeJSON(w, http.StatusOK, map[string]any{
				"success": false,
				"message": fmt.Sprintf("Run failed: %v", rec),
			})
		}
	}()

	// A client that disconnects does not abandon the remaining rules.
	summary := a.ticker.Tick(context.WithoutCancel(r.Context()))
	slog.Info("manual run finished", "summary", summary.String())
	writeOK(w, map[string]any{
		"message": "Run completed: " + summary.String(),
		"summary": summary,
	})
}

// previewRequest is the body of a render preview.
type previewRequest struct {
	Content        string         `json:"content"`
	TemplateID     string         `json:"template_id"`
	VariableValues map[string]any `json:"variable_values"`
}

// Preview renders template content against variable values without
// posting. A stored template can be referenced by id instead of content.
func (a *API) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	content := req.Content
	if content == "" && req.TemplateID != "" {
		t := a.store.Template(req.TemplateID)
		if t == nil {
			writeFail(w, "Template does not exist.")
			return
		}
		content = t.Content
	}

	text, unfilled := engine.Render(content, req.VariableValues)
	if unfilled == nil {
		unfilled = []string{}
	}
	writeOK(w, map[string]any{"content": text, "unfilled": unfilled})
}

// generateRequest is the body of a reply generation call.
type generateRequest struct {
	Text string `json:"text"`
}

// Generate writes a reply to the given post text with the active AI
// provider.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeFail(w, "Text is required.")
		return
	}
	if a.generator == nil || !a.generator.Available() {
		writeFail(w, ai.ErrNoProvider.Error())
		return
	}

	reply := a.generator.Generate(r.Context(), req.Text)
	if ai.IsError(reply) {
		metrics.AIReplies.WithLabelValues("error").Inc()
		writeFail(w, reply)
		return
	}
	metrics.AIReplies.WithLabelValues("ok").Inc()
	writeOK(w, map[string]any{"reply": reply})
}
