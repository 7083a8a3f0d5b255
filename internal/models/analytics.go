// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// DailyCount is the per-day outcome tally shown on the analytics page.
type DailyCount struct {
	Date    string `json:"date"` // YYYY-MM-DD, local time
	Success int    `json:"success"`
	Error   int    `json:"error"`
}

// TemplateUsage counts how many history entries reference a template.
type TemplateUsage struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Analytics is the summary served by /api/analytics.
type Analytics struct {
	TotalComments int             `json:"total_comments"`
	SuccessRate   float64         `json:"success_rate"`
	DailyCounts   []DailyCount    `json:"daily_counts"`
	TemplateStats []TemplateUsage `json:"template_stats"`
}

// DashboardStats backs the dashboard landing page.
type DashboardStats struct {
	TotalTemplates int     `json:"total_templates"`
	TotalRules     int     `json:"total_rules"`
	ActiveRules    int     `json:"active_rules"`
	CommentsToday  int     `json:"comments_today"`
	TotalComments  int     `json:"total_comments"`
	SuccessRate    float64 `json:"success_rate"`
}

// SuccessRate returns successes/(total)*100, or 100 when total is zero.
func SuccessRate(successes, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(successes) / float64(total) * 100
}
