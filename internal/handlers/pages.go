// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"time"

	"replybot/internal/render"
	"replybot/internal/store"
)

// dashboardHistoryLimit is how many recent entries the dashboard lists.
const dashboardHistoryLimit = 20

// PageInfo describes the running configuration shown on the settings page.
type PageInfo struct {
	Platform    string
	TriggerMode string
	Schedule    string
	AIProvider  string   // empty when no provider is configured
	Notifiers   []string // configured notification channels
	// NextRun returns the next scheduled tick; nil or a zero time hides it.
	NextRun func() time.Time
}

// Pages groups the server-rendered dashboard pages.
type Pages struct {
	renderer *render.Renderer
	store    *store.Store
	info     PageInfo
}

// NewPages creates the page handler group.
func NewPages(renderer *render.Renderer, st *store.Store, info PageInfo) *Pages {
	return &Pages{renderer: renderer, store: st, info: info}
}

// Dashboard renders the overview with stats and recent activity.
func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	history := p.store.History()
	if len(history) > dashboardHistoryLimit {
		history = history[:dashboardHistoryLimit]
	}

	p.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"Stats":    p.store.DashboardStats(),
			"Settings": p.store.Settings(),
			"History":  history,
			"NextRun":  p.nextRun(),
		},
	})
}

// Templates renders the template management page.
func (p *Pages) Templates(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "templates", &render.PageData{
		Title:   "Templates",
		Section: "templates",
		Data: map[string]any{
			"Templates": p.store.Templates(),
		},
	})
}

// Rules renders the rule management page.
func (p *Pages) Rules(w http.ResponseWriter, r *http.Request) {
	templates := p.store.Templates()
	names := make(map[string]string, len(templates))
	for _, t := range templates {
		names[t.ID] = t.Name
	}

	p.renderer.Page(w, r, "rules", &render.PageData{
		Title:   "Rules",
		Section: "rules",
		Data: map[string]any{
			"Rules":         p.store.Rules(),
			"Templates":     templates,
			"TemplateNames": names,
		},
	})
}

// Analytics renders the seven-day analytics page.
func (p *Pages) Analytics(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "analytics", &render.PageData{
		Title:   "Analytics",
		Section: "analytics",
		Data: map[string]any{
			"Analytics": p.store.Analytics(),
		},
	})
}

// Settings renders the settings form and integration status.
func (p *Pages) Settings(w http.ResponseWriter, r *http.Request) {
	data := &render.PageData{
		Title:   "Settings",
		Section: "settings",
		Data: map[string]any{
			"Settings":    p.store.Settings(),
			"Platform":    p.info.Platform,
			"TriggerMode": p.info.TriggerMode,
			"Schedule":    p.info.Schedule,
			"AIProvider":  p.info.AIProvider,
			"Notifiers":   p.info.Notifiers,
		},
	}
	if s := p.store.Settings(); s.ErrorNotification && s.NotificationEmail == "" && len(p.info.Notifiers) == 0 {
		data.Flashes = append(data.Flashes, render.Flash{
			Type:    "warning",
			Message: "Error notifications are on but no notification channel is configured.",
		})
	}
	p.renderer.Page(w, r, "settings", data)
}

// nextRun formats the next scheduled tick relative to now.
func (p *Pages) nextRun() string {
	if p.info.NextRun == nil {
		return "not scheduled"
	}
	next := p.info.NextRun()
	if next.IsZero() {
		return "not scheduled"
	}
	return next.Format("15:04:05") + " (in " + time.Until(next).Round(time.Second).String() + ")"
}
