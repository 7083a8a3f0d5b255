// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"replybot/internal/models"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return rn
}

func TestNewParsesAllPages(t *testing.T) {
	rn := newRenderer(t)
	for _, name := range []string{"dashboard", "templates", "rules", "analytics", "settings"} {
		if !rn.Has(name) {
			t.Errorf("page %q not parsed", name)
		}
	}
	if rn.Has("base") {
		t.Error("base layout should not be a page")
	}
}

func samplePages() map[string]*PageData {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tmpl := models.Template{ID: "t1", Name: "Thanks", Content: "Thanks {name}!", Variables: []string{"name"}, UpdatedAt: now}
	rule := models.Rule{
		ID: "r1", Name: "Greeter", TemplateID: "t1", TriggerType: models.TriggerKeyword,
		TriggerKeywords: []string{"help"}, Enabled: true, CooldownMinutes: 60,
	}
	entry := models.HistoryEntry{
		ID: "h1", CommentID: "comment_1", Content: "Thanks friend!", Status: models.StatusSuccess,
		Engagement: &models.Engagement{Likes: 3}, Timestamp: now,
	}
	return map[string]*PageData{
		"dashboard": {Title: "Dashboard", Section: "dashboard", Data: map[string]any{
			"Stats":    models.DashboardStats{TotalTemplates: 1, SuccessRate: 100},
			"Settings": models.DefaultSettings(),
			"History":  []models.HistoryEntry{entry},
			"NextRun":  "in 5m",
		}},
		"templates": {Title: "Templates", Section: "templates", Data: map[string]any{
			"Templates": []models.Template{tmpl},
		}},
		"rules": {Title: "Rules", Section: "rules", Data: map[string]any{
			"Rules":         []models.Rule{rule},
			"Templates":     []models.Template{tmpl},
			"TemplateNames": map[string]string{"t1": "Thanks"},
		}},
		"analytics": {Title: "Analytics", Section: "analytics", Data: map[string]any{
			"Analytics": models.Analytics{
				TotalComments: 1, SuccessRate: 100,
				DailyCounts:   []models.DailyCount{{Date: "2026-03-01", Success: 1}},
				TemplateStats: []models.TemplateUsage{{ID: "t1", Name: "Thanks", Count: 1}},
			},
		}},
		"settings": {Title: "Settings", Section: "settings", Data: map[string]any{
			"Settings":    models.DefaultSettings(),
			"Platform":    "simulated",
			"TriggerMode": "simulated",
			"Schedule":    "@every 5m",
			"AIProvider":  "openai",
			"Notifiers":   []string{"smtp"},
		}},
	}
}

func TestPageFullLayout(t *testing.T) {
	rn := newRenderer(t)

	want := map[string][]string{
		"dashboard": {"Recent activity", "Thanks friend!", "3 likes", "/api/history/comment_1"},
		"templates": {"Thanks {name}!", "/api/templates/t1"},
		"rules":     {"Greeter", "help", "60 min", "/api/rules/r1"},
		"analytics": {"2026-03-01", "100.0%"},
		"settings":  {"simulated", "@every 5m", "smtp", "/api/generate"},
	}

	for name, data := range samplePages() {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()
			rn.Page(rr, req, name, data)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
			}
			body := rr.Body.String()
			if !strings.Contains(body, "<!DOCTYPE html>") {
				t.Error("full page should include the base layout")
			}
			if !strings.Contains(body, `class="nav-link active">`+data.Title) {
				t.Errorf("nav should mark %s active", data.Title)
			}
			for _, s := range want[name] {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
		})
	}
}

func TestPageHTMXPartial(t *testing.T) {
	rn := newRenderer(t)

	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	rn.Page(rr, req, "templates", samplePages()["templates"])

	body := rr.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") || strings.Contains(body, `class="nav"`) {
		t.Error("partial should not include the layout")
	}
	if !strings.Contains(body, "<h1>Templates</h1>") {
		t.Errorf("partial missing content: %s", body)
	}
}

func TestPageEscapesContent(t *testing.T) {
	rn := newRenderer(t)
	data := &PageData{Title: "Templates", Section: "templates", Data: map[string]any{
		"Templates": []models.Template{{ID: "x", Name: "<script>alert(1)</script>", Content: "hi"}},
	}}

	rr := httptest.NewRecorder()
	rn.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil), "templates", data)

	if strings.Contains(rr.Body.String(), "<script>alert(1)</script>") {
		t.Error("template names must be HTML-escaped")
	}
}

func TestPageUnknownTemplate(t *testing.T) {
	rn := newRenderer(t)
	rr := httptest.NewRecorder()
	rn.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil), "nope", &PageData{})

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestPageExecutionErrorWritesNothingPartial(t *testing.T) {
	rn := newRenderer(t)
	// Stats of the wrong type makes the dashboard template fail mid-way.
	data := &PageData{Title: "Dashboard", Section: "dashboard", Data: map[string]any{
		"Stats": "not stats",
	}}

	rr := httptest.NewRecorder()
	rn.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil), "dashboard", data)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "<!DOCTYPE html>") {
		t.Error("a failed render should not leak a partial page")
	}
}

func TestFuncs(t *testing.T) {
	truncate := funcMap["truncate"].(func(string, int) string)
	if got := truncate("hello world", 5); got != "hello…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("hi", 5); got != "hi" {
		t.Errorf("truncate short = %q", got)
	}

	pct := funcMap["pct"].(func(float64) string)
	if got := pct(66.6666); got != "66.7%" {
		t.Errorf("pct = %q", got)
	}

	fmtTime := funcMap["fmtTime"].(func(time.Time) string)
	if got := fmtTime(time.Time{}); got != "-" {
		t.Errorf("fmtTime(zero) = %q", got)
	}
}
