// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// TriggerType classifies what condition activates a rule.
type TriggerType string

const (
	TriggerNewPost   TriggerType = "new_post"
	TriggerKeyword   TriggerType = "keyword"
	TriggerScheduled TriggerType = "scheduled"
)

// Valid reports whether t is one of the known trigger kinds.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerNewPost, TriggerKeyword, TriggerScheduled:
		return true
	}
	return false
}

// Rule ties a template to a trigger condition and a cooldown window.
type Rule struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	TemplateID      string         `json:"template_id"`
	TriggerType     TriggerType    `json:"trigger_type"`
	TriggerKeywords []string       `json:"trigger_keywords"`
	VariableValues  map[string]any `json:"variable_values"`
	Enabled         bool           `json:"enabled"`
	CooldownMinutes int            `json:"cooldown_minutes"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Cooldown returns the rule's cooldown window as a duration.
func (r Rule) Cooldown() time.Duration {
	return time.Duration(r.CooldownMinutes) * time.Minute
}

// MatchKeyword returns the first declared keyword contained in text,
// compared case-insensitively.
func (r Rule) MatchKeyword(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range r.TriggerKeywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the rule.
func (r Rule) Clone() Rule {
	r.TriggerKeywords = append([]string(nil), r.TriggerKeywords...)
	if r.VariableValues != nil {
		values := make(map[string]any, len(r.VariableValues))
		for k, v := range r.VariableValues {
			values[k] = v
		}
		r.VariableValues = values
	}
	return r
}
