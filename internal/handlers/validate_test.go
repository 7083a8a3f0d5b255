// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"testing"

	"replybot/internal/models"
)

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name, tmplName, content string
		wantErr                 bool
	}{
		{"valid", "Thanks", "Thanks {name}!", false},
		{"empty name", "  ", "x", false},
		{"empty content", "Thanks", "", false},
		{"long name", strings.Repeat("n", maxNameLen+1), "x", true},
		{"long content", "Thanks", strings.Repeat("c", maxTemplateContentLen+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateTemplate(tt.tmplName, tt.content); (got != "") != tt.wantErr {
				t.Errorf("validateTemplate() = %q, wantErr %v", got, tt.wantErr)
			}
		})
	}
}

func TestValidateRule(t *testing.T) {
	valid := models.Rule{Name: "r", TemplateID: "t", TriggerType: models.TriggerKeyword, CooldownMinutes: 60}
	if msg := validateRule(valid); msg != "" {
		t.Fatalf("valid rule rejected: %s", msg)
	}

	tests := []struct {
		name   string
		mutate func(*models.Rule)
	}{
		{"no template", func(r *models.Rule) { r.TemplateID = "" }},
		{"long name", func(r *models.Rule) { r.Name = strings.Repeat("n", maxNameLen+1) }},
		{"bad trigger", func(r *models.Rule) { r.TriggerType = "weekly" }},
		{"cooldown too long", func(r *models.Rule) { r.CooldownMinutes = maxCooldownMinutes + 1 }},
		{"too many keywords", func(r *models.Rule) { r.TriggerKeywords = make([]string, maxKeywords+1) }},
		{"map variable", func(r *models.Rule) { r.VariableValues = map[string]any{"m": map[string]any{}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid.Clone()
			tt.mutate(&r)
			if validateRule(r) == "" {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestValidateRuleAllowsBlankName(t *testing.T) {
	r := models.Rule{TemplateID: "t", TriggerType: models.TriggerScheduled}
	if msg := validateRule(r); msg != "" {
		t.Errorf("blank name rejected: %s", msg)
	}
}

func TestCleanKeywords(t *testing.T) {
	got := cleanKeywords([]string{" help", "", "  ", "question "})
	if len(got) != 2 || got[0] != "help" || got[1] != "question" {
		t.Errorf("cleanKeywords() = %q", got)
	}
}
