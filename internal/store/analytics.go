// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"sort"
	"time"

	"replybot/internal/models"
)

// analyticsDays is how many calendar days the daily breakdown covers.
const analyticsDays = 7

// unknownTemplate labels usage of templates that have since been deleted.
const unknownTemplate = "Unknown Template"

// startOfDay returns local midnight of t's calendar day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Analytics computes the per-day breakdown for the last seven days, the
// overall success rate over that window and per-template usage.
func (s *Store) Analytics() models.Analytics {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := startOfDay(now)

	daily := make([]models.DailyCount, 0, analyticsDays)
	var successes, errs int
	for i := 0; i < analyticsDays; i++ {
		start := today.AddDate(0, 0, -i)
		end := start.AddDate(0, 0, 1)

		dc := models.DailyCount{Date: start.Format("2006-01-02")}
		for _, e := range s.history {
			if e.Timestamp.Before(start) || !e.Timestamp.Before(end) {
				continue
			}
			switch e.Status {
			case models.StatusSuccess:
				dc.Success++
			case models.StatusError:
				dc.Error++
			}
		}
		successes += dc.Success
		errs += dc.Error
		daily = append(daily, dc)
	}

	return models.Analytics{
		TotalComments: len(s.history),
		SuccessRate:   models.SuccessRate(successes, successes+errs),
		DailyCounts:   daily,
		TemplateStats: s.templateUsageLocked(),
	}
}

// templateUsageLocked counts history entries per template, most used
// first. Caller holds s.mu.
func (s *Store) templateUsageLocked() []models.TemplateUsage {
	counts := make(map[string]int)
	for _, e := range s.history {
		if e.TemplateID != "" {
			counts[e.TemplateID]++
		}
	}

	stats := make([]models.TemplateUsage, 0, len(counts))
	for id, n := range counts {
		name := unknownTemplate
		if t, ok := s.templates[id]; ok {
			name = t.Name
		}
		stats = append(stats, models.TemplateUsage{ID: id, Name: name, Count: n})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		if stats[i].Name != stats[j].Name {
			return stats[i].Name < stats[j].Name
		}
		return stats[i].ID < stats[j].ID
	})
	return stats
}

// DashboardStats summarizes entity counts and the last 24 hours of posting.
func (s *Store) DashboardStats() models.DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := startOfDay(now)
	dayAgo := now.Add(-24 * time.Hour)

	stats := models.DashboardStats{
		TotalTemplates: len(s.templates),
		TotalRules:     len(s.rules),
		TotalComments:  len(s.history),
	}
	for _, r := range s.rules {
		if r.Enabled {
			stats.ActiveRules++
		}
	}

	var recent, recentOK int
	for _, e := range s.history {
		if !e.Timestamp.Before(today) {
			stats.CommentsToday++
		}
		if e.Timestamp.After(dayAgo) {
			recent++
			if e.Status == models.StatusSuccess {
				recentOK++
			}
		}
	}
	stats.SuccessRate = models.SuccessRate(recentOK, recent)
	return stats
}
