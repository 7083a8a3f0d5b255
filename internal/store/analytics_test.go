// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"

	"replybot/internal/models"
)

func TestAnalyticsEmpty(t *testing.T) {
	s, clock := testStore(t)

	a := s.Analytics()
	if a.TotalComments != 0 {
		t.Errorf("TotalComments = %d", a.TotalComments)
	}
	if a.SuccessRate != 100 {
		t.Errorf("SuccessRate = %v, want 100", a.SuccessRate)
	}
	if len(a.DailyCounts) != 7 {
		t.Fatalf("DailyCounts len = %d, want 7", len(a.DailyCounts))
	}
	if a.DailyCounts[0].Date != clock.Now().Format("2006-01-02") {
		t.Errorf("first day = %q", a.DailyCounts[0].Date)
	}
	if a.DailyCounts[6].Date != clock.Now().AddDate(0, 0, -6).Format("2006-01-02") {
		t.Errorf("last day = %q", a.DailyCounts[6].Date)
	}
	if len(a.TemplateStats) != 0 {
		t.Errorf("TemplateStats = %+v", a.TemplateStats)
	}
}

func TestAnalyticsCounts(t *testing.T) {
	s, clock := testStore(t)
	tid := s.AddTemplate(models.Template{Name: "Kept", Content: "x"})

	// Two days ago: one success on a template that will be deleted.
	clock.Advance(-48 * time.Hour)
	gone := s.AddTemplate(models.Template{Name: "Gone", Content: "y"})
	s.AddHistoryEntry(models.HistoryEntry{TemplateID: gone, Status: models.StatusSuccess})
	clock.Advance(48 * time.Hour)

	s.AddHistoryEntry(models.HistoryEntry{TemplateID: tid, Status: models.StatusSuccess})
	s.AddHistoryEntry(models.HistoryEntry{TemplateID: tid, Status: models.StatusSuccess})
	s.AddHistoryEntry(models.HistoryEntry{TemplateID: tid, Status: models.StatusError})
	if err := s.DeleteTemplate(gone); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}

	a := s.Analytics()
	if a.TotalComments != 4 {
		t.Errorf("TotalComments = %d, want 4", a.TotalComments)
	}
	if a.DailyCounts[0].Success != 2 || a.DailyCounts[0].Error != 1 {
		t.Errorf("today = %+v", a.DailyCounts[0])
	}
	if a.DailyCounts[2].Success != 1 {
		t.Errorf("two days ago = %+v", a.DailyCounts[2])
	}
	if a.SuccessRate != 75 {
		t.Errorf("SuccessRate = %v, want 75", a.SuccessRate)
	}

	if len(a.TemplateStats) != 2 {
		t.Fatalf("TemplateStats = %+v", a.TemplateStats)
	}
	if a.TemplateStats[0].Name != "Kept" || a.TemplateStats[0].Count != 3 {
		t.Errorf("top template = %+v", a.TemplateStats[0])
	}
	if a.TemplateStats[1].Name != "Unknown Template" || a.TemplateStats[1].Count != 1 {
		t.Errorf("deleted template = %+v", a.TemplateStats[1])
	}
}

func TestAnalyticsIgnoresOlderThanWeek(t *testing.T) {
	s, clock := testStore(t)

	clock.Advance(-10 * 24 * time.Hour)
	s.AddHistoryEntry(models.HistoryEntry{Status: models.StatusError})
	clock.Advance(10 * 24 * time.Hour)

	a := s.Analytics()
	if a.TotalComments != 1 {
		t.Errorf("TotalComments = %d", a.TotalComments)
	}
	if a.SuccessRate != 100 {
		t.Errorf("SuccessRate = %v, want 100", a.SuccessRate)
	}
}

func TestDashboardStats(t *testing.T) {
	s, clock := testStore(t)
	tid := s.AddTemplate(models.Template{Name: "T", Content: "x"})
	s.AddTemplate(models.Template{Name: "U", Content: "y"})
	s.AddRule(models.Rule{Name: "on", TemplateID: tid, Enabled: true})
	s.AddRule(models.Rule{Name: "off", TemplateID: tid})

	clock.Advance(-30 * time.Hour)
	s.AddHistoryEntry(models.HistoryEntry{Status: models.StatusError})
	clock.Advance(30 * time.Hour)
	s.AddHistoryEntry(models.HistoryEntry{Status: models.StatusSuccess})
	s.AddHistoryEntry(models.HistoryEntry{Status: models.StatusError})

	st := s.DashboardStats()
	if st.TotalTemplates != 2 || st.TotalRules != 2 || st.ActiveRules != 1 {
		t.Errorf("counts = %+v", st)
	}
	if st.TotalComments != 3 {
		t.Errorf("TotalComments = %d", st.TotalComments)
	}
	if st.CommentsToday != 2 {
		t.Errorf("CommentsToday = %d, want 2", st.CommentsToday)
	}
	if st.SuccessRate != 50 {
		t.Errorf("SuccessRate = %v, want 50", st.SuccessRate)
	}
}
