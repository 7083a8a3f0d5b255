// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"

	"replybot/internal/models"
)

// Validation limits for template and rule fields.
const (
	maxNameLen            = 200
	maxTemplateContentLen = 10_000
	maxKeywords           = 50
	maxKeywordLen         = 100
	maxCooldownMinutes    = 7 * 24 * 60
	maxCommentsPerHour    = 1000
)

// validateTemplate checks template inputs and returns the first error found.
// Empty names and bodies are accepted.
func validateTemplate(name, content string) string {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > maxNameLen {
		return "Template name is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(content) > maxTemplateContentLen {
		return "Template content is too long (max 10,000 characters)."
	}
	return ""
}

// validateRule checks rule inputs and returns the first error found.
// Template existence is checked by the store; a blank name is filled in by
// the handler.
func validateRule(r models.Rule) string {
	if utf8.RuneCountInString(strings.TrimSpace(r.Name)) > maxNameLen {
		return "Rule name is too long (max 200 characters)."
	}
	if r.TemplateID == "" {
		return "A template is required."
	}
	if !r.TriggerType.Valid() {
		return "Trigger type must be new_post, keyword or scheduled."
	}
	if len(r.TriggerKeywords) > maxKeywords {
		return "Too many trigger keywords (max 50)."
	}
	for _, kw := range r.TriggerKeywords {
		if utf8.RuneCountInString(kw) > maxKeywordLen {
			return "Trigger keyword is too long (max 100 characters)."
		}
	}
	if r.CooldownMinutes < 0 || r.CooldownMinutes > maxCooldownMinutes {
		return "Cooldown must be between 0 and 10080 minutes."
	}
	for k, v := range r.VariableValues {
		switch v.(type) {
		case nil, string, float64, bool:
		default:
			return "Variable " + k + " must be a string, number, boolean or null."
		}
	}
	return ""
}

// validateSettings checks a partial settings update.
func validateSettings(p models.SettingsPatch) string {
	if p.MaxCommentsPerHour != nil {
		if n := *p.MaxCommentsPerHour; n < 0 || n > maxCommentsPerHour {
			return "Max comments per hour must be between 0 and 1000."
		}
	}
	if p.NotificationEmail != nil {
		email := strings.TrimSpace(*p.NotificationEmail)
		if email != "" && !strings.Contains(email, "@") {
			return "Notification email is not a valid address."
		}
	}
	return ""
}

// cleanKeywords trims keywords and drops empty ones.
func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
