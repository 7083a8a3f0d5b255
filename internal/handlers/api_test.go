// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"replybot/internal/ai"
	"replybot/internal/guard"
	"replybot/internal/models"
	"replybot/internal/pipeline"
	"replybot/internal/poster"
	"replybot/internal/store"
	"replybot/internal/trigger"
)

// fakeTicker returns a canned summary or panics.
type fakeTicker struct {
	summary pipeline.Summary
	panics  bool
	calls   int
	ctxErr  error
}

func (f *fakeTicker) Tick(ctx context.Context) pipeline.Summary {
	f.calls++
	f.ctxErr = ctx.Err()
	if f.panics {
		panic("boom")
	}
	return f.summary
}

// fakePoster records deletions.
type fakePoster struct {
	deleted   []string
	deleteErr error
}

func (f *fakePoster) Post(_ context.Context, _ poster.PostRequest) (poster.PostResult, error) {
	return poster.PostResult{}, errors.New("not used")
}

func (f *fakePoster) Delete(_ context.Context, commentID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, commentID)
	return nil
}

func (f *fakePoster) Platform() string { return "fake" }

// fakeProvider is a canned AI provider.
type fakeProvider struct {
	reply string
	err   error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, _ ai.Request) (string, error) {
	return f.reply, f.err
}

// apiEnv bundles the handler under test and its collaborators.
type apiEnv struct {
	store  *store.Store
	ticker *fakeTicker
	poster *fakePoster
	api    *API
	router chi.Router
}

func newAPIEnv(t *testing.T, generator *ai.Generator) *apiEnv {
	t.Helper()
	env := &apiEnv{
		store:  store.New(),
		ticker: &fakeTicker{summary: pipeline.Summary{Considered: 1, Posted: 1}},
		poster: &fakePoster{},
	}
	api := NewAPI(env.store, nil, env.ticker, env.poster, generator)
	env.api = api

	r := chi.NewRouter()
	r.Get("/api/templates", api.ListTemplates)
	r.Post("/api/templates", api.CreateTemplate)
	r.Put("/api/templates/{id}", api.UpdateTemplate)
	r.Delete("/api/templates/{id}", api.DeleteTemplate)
	r.Get("/api/rules", api.ListRules)
	r.Post("/api/rules", api.CreateRule)
	r.Put("/api/rules/{id}", api.UpdateRule)
	r.Delete("/api/rules/{id}", api.DeleteRule)
	r.Get("/api/settings", api.GetSettings)
	r.Put("/api/settings", api.UpdateSettings)
	r.Get("/api/analytics", api.Analytics)
	r.Get("/api/stats", api.Stats)
	r.Get("/api/history", api.History)
	r.Put("/api/history/{commentID}/engagement", api.UpdateEngagement)
	r.Delete("/api/history/{commentID}", api.DeleteComment)
	r.Post("/api/run-now", api.RunNow)
	r.Post("/api/preview", api.Preview)
	r.Post("/api/generate", api.Generate)
	env.router = r
	return env
}

// do sends a request and decodes the JSON response into out (if non-nil).
func (e *apiEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if out != nil {
		if err := json.NewDecoder(rr.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return rr.Code
}

// result is the common {success, id, error, message} response shape.
type result struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e *apiEnv) createTemplate(t *testing.T, name, content string) string {
	t.Helper()
	var res result
	e.do(t, http.MethodPost, "/api/templates", map[string]any{"name": name, "content": content}, &res)
	if !res.Success || res.ID == "" {
		t.Fatalf("create template: %+v", res)
	}
	return res.ID
}

func (e *apiEnv) createRule(t *testing.T, templateID string) string {
	t.Helper()
	var res result
	e.do(t, http.MethodPost, "/api/rules", map[string]any{
		"name":             "Greeter",
		"template_id":      templateID,
		"trigger_type":     "keyword",
		"trigger_keywords": []string{" help ", ""},
		"variable_values":  map[string]any{"name": "friend", "count": 3},
		"cooldown_minutes": 30,
	}, &res)
	if !res.Success || res.ID == "" {
		t.Fatalf("create rule: %+v", res)
	}
	return res.ID
}

func TestTemplateCRUD(t *testing.T) {
	env := newAPIEnv(t, nil)
	id := env.createTemplate(t, "Thanks", "Thanks {name}!")

	var list []models.Template
	env.do(t, http.MethodGet, "/api/templates", nil, &list)
	if len(list) != 1 || list[0].ID != id {
		t.Fatalf("list = %+v", list)
	}
	if got := strings.Join(list[0].Variables, ","); got != "name" {
		t.Errorf("derived variables = %q, want name", got)
	}

	var res result
	env.do(t, http.MethodPut, "/api/templates/"+id, map[string]any{"name": "Thanks v2", "content": "Cheers {who}"}, &res)
	if !res.Success {
		t.Fatalf("update: %+v", res)
	}
	if got := env.store.Template(id); got.Name != "Thanks v2" || got.Variables[0] != "who" {
		t.Errorf("after update: %+v", got)
	}

	env.do(t, http.MethodDelete, "/api/templates/"+id, nil, &res)
	if !res.Success {
		t.Fatalf("delete: %+v", res)
	}
	if env.store.Template(id) != nil {
		t.Error("template still present after delete")
	}
}

func TestTemplateValidation(t *testing.T) {
	env := newAPIEnv(t, nil)

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"long name", map[string]any{"name": strings.Repeat("n", 201), "content": "hi"}, "too long"},
		{"long content", map[string]any{"name": "x", "content": strings.Repeat("c", 10_001)}, "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res result
			code := env.do(t, http.MethodPost, "/api/templates", tt.body, &res)
			if code != http.StatusOK || res.Success {
				t.Fatalf("code=%d res=%+v, want 200 with success=false", code, res)
			}
			if !strings.Contains(res.Error, tt.want) {
				t.Errorf("error = %q, want it to contain %q", res.Error, tt.want)
			}
		})
	}
}

func TestTemplateWithoutNameOrContent(t *testing.T) {
	env := newAPIEnv(t, nil)

	var res result
	env.do(t, http.MethodPost, "/api/templates", map[string]any{}, &res)
	if !res.Success || res.ID == "" {
		t.Fatalf("create empty template: %+v", res)
	}
	if got := env.store.Template(res.ID); got == nil || got.Name != "" || got.Content != "" {
		t.Errorf("stored = %+v", got)
	}
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	env := newAPIEnv(t, nil)

	for _, path := range []string{"/api/templates", "/api/rules", "/api/preview"} {
		var res result
		code := env.do(t, http.MethodPost, path, "{not json", &res)
		if code != http.StatusBadRequest || res.Success || res.Error == "" {
			t.Errorf("%s: code=%d res=%+v, want 400 failure", path, code, res)
		}
	}
}

func TestUpdateMissingTemplate(t *testing.T) {
	env := newAPIEnv(t, nil)
	var res result
	env.do(t, http.MethodPut, "/api/templates/nope", map[string]any{"name": "x", "content": "y"}, &res)
	if res.Success || res.Error != "Not found." {
		t.Errorf("res = %+v", res)
	}
}

func TestDeleteReferencedTemplate(t *testing.T) {
	env := newAPIEnv(t, nil)
	tid := env.createTemplate(t, "Thanks", "Thanks {name}!")
	rid := env.createRule(t, tid)

	var res result
	env.do(t, http.MethodDelete, "/api/templates/"+tid, nil, &res)
	if res.Success || !strings.Contains(res.Error, "used by") {
		t.Fatalf("delete referenced template: %+v", res)
	}

	env.do(t, http.MethodDelete, "/api/rules/"+rid, nil, &res)
	if !res.Success {
		t.Fatalf("delete rule: %+v", res)
	}
	env.do(t, http.MethodDelete, "/api/templates/"+tid, nil, &res)
	if !res.Success {
		t.Errorf("delete after rule removal: %+v", res)
	}
}

func TestRuleCRUD(t *testing.T) {
	env := newAPIEnv(t, nil)
	tid := env.createTemplate(t, "Thanks", "Thanks {name}!")
	rid := env.createRule(t, tid)

	rule := env.store.Rule(rid)
	if rule == nil {
		t.Fatal("rule not stored")
	}
	if !rule.Enabled {
		t.Error("rule should default to enabled")
	}
	if len(rule.TriggerKeywords) != 1 || rule.TriggerKeywords[0] != "help" {
		t.Errorf("keywords = %q, want [help]", rule.TriggerKeywords)
	}
	if rule.VariableValues["count"] != float64(3) {
		t.Errorf("count = %#v", rule.VariableValues["count"])
	}

	var res result
	env.do(t, http.MethodPut, "/api/rules/"+rid, map[string]any{
		"name": "Greeter", "template_id": tid, "trigger_type": "scheduled", "enabled": false,
	}, &res)
	if !res.Success {
		t.Fatalf("update: %+v", res)
	}
	if got := env.store.Rule(rid); got.Enabled || got.TriggerType != models.TriggerScheduled {
		t.Errorf("after update: %+v", got)
	}

	var list []models.Rule
	env.do(t, http.MethodGet, "/api/rules", nil, &list)
	if len(list) != 1 {
		t.Errorf("list len = %d", len(list))
	}
}

func TestRuleValidation(t *testing.T) {
	env := newAPIEnv(t, nil)
	tid := env.createTemplate(t, "Thanks", "Thanks!")

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"unknown template", map[string]any{"name": "r", "template_id": "ghost", "trigger_type": "new_post"}, "Template does not exist"},
		{"bad trigger", map[string]any{"name": "r", "template_id": tid, "trigger_type": "hourly"}, "Trigger type"},
		{"negative cooldown", map[string]any{"name": "r", "template_id": tid, "trigger_type": "new_post", "cooldown_minutes": -1}, "Cooldown"},
		{"object variable", map[string]any{"name": "r", "template_id": tid, "trigger_type": "new_post", "variable_values": map[string]any{"x": []int{1}}}, "Variable x"},
		{"missing template", map[string]any{"name": "r", "trigger_type": "new_post"}, "template is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res result
			env.do(t, http.MethodPost, "/api/rules", tt.body, &res)
			if res.Success || !strings.Contains(res.Error, tt.want) {
				t.Errorf("res = %+v, want failure containing %q", res, tt.want)
			}
		})
	}

	if n := len(env.store.Rules()); n != 0 {
		t.Errorf("%d rules stored after rejected creates", n)
	}
}

// An unnamed scheduled rule created through the API is stored, named after
// its template, and posts the rendered content on the next tick.
func TestUnnamedScheduledRuleEndToEnd(t *testing.T) {
	env := newAPIEnv(t, nil)
	tid := env.createTemplate(t, "T1", "Hi {x}")

	var res result
	env.do(t, http.MethodPost, "/api/rules", map[string]any{
		"template_id":      tid,
		"trigger_type":     "scheduled",
		"variable_values":  map[string]any{"x": "there"},
		"cooldown_minutes": 0,
		"enabled":          true,
	}, &res)
	if !res.Success || res.ID == "" {
		t.Fatalf("create rule: %+v", res)
	}
	rule := env.store.Rule(res.ID)
	if rule == nil || rule.Name != "T1" || !rule.Enabled {
		t.Fatalf("stored rule = %+v", rule)
	}

	p := pipeline.New(pipeline.Config{
		Store:     env.store,
		Guard:     guard.New(env.store),
		Evaluator: trigger.NewSimulated(trigger.SimulatedConfig{}),
		Poster:    poster.NewSimulated(poster.SimulatedConfig{MinDelay: time.Millisecond, MaxDelay: time.Millisecond}),
	})
	if sum := p.Tick(context.Background()); sum.Posted != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	h := env.store.History()
	if len(h) != 1 || h[0].Content != "Hi there" || h[0].Status != models.StatusSuccess {
		t.Errorf("history = %+v", h)
	}
}

func TestDeleteRuleRunsHook(t *testing.T) {
	env := newAPIEnv(t, nil)
	tid := env.createTemplate(t, "T1", "Hi")
	rid := env.createRule(t, tid)

	var forgotten []string
	env.api.OnRuleDeleted(func(_ context.Context, ruleID string) {
		forgotten = append(forgotten, ruleID)
	})

	var res result
	env.do(t, http.MethodDelete, "/api/rules/missing", nil, &res)
	env.do(t, http.MethodDelete, "/api/rules/"+rid, nil, &res)
	if !res.Success {
		t.Fatalf("delete: %+v", res)
	}
	if len(forgotten) != 1 || forgotten[0] != rid {
		t.Errorf("hook calls = %q, want [%s]", forgotten, rid)
	}
}

func TestUpdateRuleKeepsExplicitName(t *testing.T) {
	env := newAPIEnv(t, nil)
	tid := env.createTemplate(t, "T1", "Hi")
	rid := env.createRule(t, tid)

	var res result
	env.do(t, http.MethodPut, "/api/rules/"+rid, map[string]any{
		"name": "Renamed", "template_id": tid, "trigger_type": "scheduled",
	}, &res)
	if !res.Success || env.store.Rule(rid).Name != "Renamed" {
		t.Errorf("res = %+v, rule = %+v", res, env.store.Rule(rid))
	}

	env.do(t, http.MethodPut, "/api/rules/"+rid, map[string]any{
		"template_id": tid, "trigger_type": "scheduled",
	}, &res)
	if !res.Success || env.store.Rule(rid).Name != "T1" {
		t.Errorf("blank name not defaulted: %+v", env.store.Rule(rid))
	}
}

func TestSettings(t *testing.T) {
	env := newAPIEnv(t, nil)

	var got models.Settings
	env.do(t, http.MethodGet, "/api/settings", nil, &got)
	if got != models.DefaultSettings() {
		t.Errorf("initial settings = %+v", got)
	}

	var res result
	env.do(t, http.MethodPut, "/api/settings", map[string]any{"max_comments_per_hour": 5}, &res)
	if !res.Success {
		t.Fatalf("update: %+v", res)
	}
	s := env.store.Settings()
	if s.MaxCommentsPerHour != 5 || !s.Enabled || !s.ErrorNotification {
		t.Errorf("partial update should keep other fields: %+v", s)
	}

	env.do(t, http.MethodPut, "/api/settings", map[string]any{"max_comments_per_hour": -1}, &res)
	if res.Success {
		t.Error("negative cap should be rejected")
	}
	env.do(t, http.MethodPut, "/api/settings", map[string]any{"notification_email": "not-an-email"}, &res)
	if res.Success {
		t.Error("bad email should be rejected")
	}
}

func TestHistoryEngagementAndDelete(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.store.AddHistoryEntry(models.HistoryEntry{CommentID: "c1", Content: "one", Status: models.StatusSuccess})
	env.store.AddHistoryEntry(models.HistoryEntry{CommentID: "c2", Content: "two", Status: models.StatusSuccess})

	var entries []models.HistoryEntry
	env.do(t, http.MethodGet, "/api/history", nil, &entries)
	if len(entries) != 2 || entries[0].CommentID != "c2" {
		t.Fatalf("history should be newest first: %+v", entries)
	}

	env.do(t, http.MethodGet, "/api/history?limit=1", nil, &entries)
	if len(entries) != 1 {
		t.Errorf("limit=1 returned %d entries", len(entries))
	}
	if code := env.do(t, http.MethodGet, "/api/history?limit=x", nil, nil); code != http.StatusBadRequest {
		t.Errorf("bad limit code = %d", code)
	}

	var res result
	env.do(t, http.MethodPut, "/api/history/c1/engagement", map[string]any{"likes": 4, "replies": 1}, &res)
	if !res.Success {
		t.Fatalf("engagement: %+v", res)
	}
	env.do(t, http.MethodPut, "/api/history/missing/engagement", map[string]any{"likes": 1}, &res)
	if res.Success {
		t.Error("engagement on unknown comment should fail")
	}

	env.do(t, http.MethodDelete, "/api/history/c1", nil, &res)
	if !res.Success {
		t.Fatalf("delete: %+v", res)
	}
	if len(env.poster.deleted) != 1 || env.poster.deleted[0] != "c1" {
		t.Errorf("poster deletions = %v", env.poster.deleted)
	}

	env.do(t, http.MethodGet, "/api/history", nil, &entries)
	c1 := entries[1]
	if c1.Status != models.StatusDeleted || c1.Engagement == nil || c1.Engagement.Likes != 4 {
		t.Errorf("c1 = %+v", c1)
	}

	env.poster.deleteErr = errors.New("platform down")
	env.do(t, http.MethodDelete, "/api/history/c2", nil, &res)
	if res.Success || res.Error != "platform down" {
		t.Errorf("delete with poster failure: %+v", res)
	}
}

func TestAnalyticsAndStats(t *testing.T) {
	env := newAPIEnv(t, nil)

	var a models.Analytics
	env.do(t, http.MethodGet, "/api/analytics", nil, &a)
	if a.TotalComments != 0 || a.SuccessRate != 100 || len(a.DailyCounts) != 7 {
		t.Errorf("empty analytics = %+v", a)
	}

	env.createTemplate(t, "Thanks", "Thanks!")
	var s models.DashboardStats
	env.do(t, http.MethodGet, "/api/stats", nil, &s)
	if s.TotalTemplates != 1 || s.SuccessRate != 100 {
		t.Errorf("stats = %+v", s)
	}
}

func TestRunNow(t *testing.T) {
	env := newAPIEnv(t, nil)

	var res result
	env.do(t, http.MethodPost, "/api/run-now", nil, &res)
	if !res.Success || !strings.Contains(res.Message, "1 posted") {
		t.Errorf("run-now = %+v", res)
	}
	if env.ticker.calls != 1 {
		t.Errorf("ticks = %d", env.ticker.calls)
	}
}

func TestRunNowSurvivesClientDisconnect(t *testing.T) {
	env := newAPIEnv(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/run-now", nil).WithContext(ctx)
	env.router.ServeHTTP(httptest.NewRecorder(), req)

	if env.ticker.calls != 1 {
		t.Fatalf("ticks = %d", env.ticker.calls)
	}
	if env.ticker.ctxErr != nil {
		t.Errorf("tick context error = %v, want nil", env.ticker.ctxErr)
	}
}

func TestRunNowRecoversPanic(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.ticker.panics = true

	var res result
	code := env.do(t, http.MethodPost, "/api/run-now", nil, &res)
	if code != http.StatusOK || res.Success || !strings.Contains(res.Message, "boom") {
		t.Errorf("code=%d res=%+v", code, res)
	}
}

func TestPreview(t *testing.T) {
	env := newAPIEnv(t, nil)

	var out struct {
		Success  bool     `json:"success"`
		Content  string   `json:"content"`
		Unfilled []string `json:"unfilled"`
	}
	env.do(t, http.MethodPost, "/api/preview", map[string]any{
		"content":         "Hi {name}, {x}",
		"variable_values": map[string]any{"name": "Ana"},
	}, &out)
	if out.Content != "Hi Ana, [x]" || len(out.Unfilled) != 1 || out.Unfilled[0] != "x" {
		t.Errorf("preview = %+v", out)
	}

	tid := env.createTemplate(t, "T", "Hello {who}")
	env.do(t, http.MethodPost, "/api/preview", map[string]any{
		"template_id":     tid,
		"variable_values": map[string]any{"who": "world"},
	}, &out)
	if out.Content != "Hello world" || out.Unfilled == nil || len(out.Unfilled) != 0 {
		t.Errorf("preview by template = %+v", out)
	}
}

func TestGenerate(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		env := newAPIEnv(t, nil)
		var res result
		env.do(t, http.MethodPost, "/api/generate", map[string]any{"text": "hello"}, &res)
		if res.Success || !strings.Contains(res.Error, "no provider") {
			t.Errorf("res = %+v", res)
		}
	})

	t.Run("reply", func(t *testing.T) {
		reg := ai.NewRegistry(context.Background(), "fake", nil)
		reg.Register("fake", &fakeProvider{reply: "  Great point!  "})
		env := newAPIEnv(t, ai.NewGenerator(reg, 0))

		var out struct {
			Success bool   `json:"success"`
			Reply   string `json:"reply"`
		}
		env.do(t, http.MethodPost, "/api/generate", map[string]any{"text": "I shipped it"}, &out)
		if !out.Success || out.Reply != "Great point!" {
			t.Errorf("out = %+v", out)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		reg := ai.NewRegistry(context.Background(), "fake", nil)
		reg.Register("fake", &fakeProvider{err: errors.New("quota")})
		env := newAPIEnv(t, ai.NewGenerator(reg, 0))

		var res result
		env.do(t, http.MethodPost, "/api/generate", map[string]any{"text": "hi"}, &res)
		if res.Success || !strings.Contains(res.Error, "quota") {
			t.Errorf("res = %+v", res)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		env := newAPIEnv(t, nil)
		var res result
		env.do(t, http.MethodPost, "/api/generate", map[string]any{"text": " "}, &res)
		if res.Success {
			t.Error("empty text should fail")
		}
	})
}
