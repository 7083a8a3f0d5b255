// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seed populates a store with starter data, either the built-in
// samples or a TOML seed file.
package seed

import (
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"replybot/internal/models"
	"replybot/internal/slug"
	"replybot/internal/store"
)

// File is the on-disk seed layout.
//
//	[settings]
//	max_comments_per_hour = 5
//
//	[[templates]]
//	key = "thanks"
//	name = "Thank You Template"
//	content = "Thank you for your post!"
//
//	[[rules]]
//	name = "New Post Response"
//	template = "thanks"
//	trigger_type = "new_post"
type File struct {
	Settings  *SettingsSeed  `toml:"settings,omitempty"`
	Templates []TemplateSeed `toml:"templates"`
	Rules     []RuleSeed     `toml:"rules"`
}

// SettingsSeed overrides individual settings; unset fields keep defaults.
type SettingsSeed struct {
	Enabled            *bool   `toml:"enabled,omitempty"`
	MaxCommentsPerHour *int    `toml:"max_comments_per_hour,omitempty"`
	NotificationEmail  *string `toml:"notification_email,omitempty"`
	ErrorNotification  *bool   `toml:"error_notification,omitempty"`
}

// TemplateSeed describes one template. Key is how rules refer to it and
// defaults to the name.
type TemplateSeed struct {
	Key       string   `toml:"key,omitempty"`
	Name      string   `toml:"name"`
	Content   string   `toml:"content"`
	Variables []string `toml:"variables,omitempty"`
}

// RuleSeed describes one rule. Template is a template key.
type RuleSeed struct {
	Name            string         `toml:"name"`
	Template        string         `toml:"template"`
	TriggerType     string         `toml:"trigger_type"`
	TriggerKeywords []string       `toml:"trigger_keywords,omitempty"`
	VariableValues  map[string]any `toml:"variable_values,omitempty"`
	Enabled         *bool          `toml:"enabled,omitempty"`
	CooldownMinutes int            `toml:"cooldown_minutes"`
}

// ErrUnknownTemplateKey is returned when a seeded rule names a template
// key that the same file does not define.
var ErrUnknownTemplateKey = errors.New("seed: rule references unknown template key")

// Samples returns the built-in starter data: two templates and one
// new-post rule.
func Samples() *File {
	enabled := true
	return &File{
		Templates: []TemplateSeed{
			{
				Key:       "thanks",
				Name:      "Thank You Template",
				Content:   "Thank you for your post! This is really interesting.",
				Variables: []string{},
			},
			{
				Key:       "question",
				Name:      "Question Response",
				Content:   "Great question! Have you considered {suggestion}?",
				Variables: []string{"suggestion"},
			},
		},
		Rules: []RuleSeed{
			{
				Name:            "New Post Response",
				Template:        "thanks",
				TriggerType:     string(models.TriggerNewPost),
				TriggerKeywords: []string{"help", "question"},
				VariableValues:  map[string]any{},
				Enabled:         &enabled,
				CooldownMinutes: 60,
			},
		},
	}
}

// LoadFile decodes a TOML seed file.
func LoadFile(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return &f, nil
}

// Decode reads a TOML seed document from r.
func Decode(r io.Reader) (*File, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &f, nil
}

// Apply inserts the file's templates and rules into st and merges its
// settings. It stops at the first invalid rule.
func Apply(st *store.Store, f *File) error {
	if f.Settings != nil {
		st.UpdateSettings(models.SettingsPatch{
			Enabled:            f.Settings.Enabled,
			MaxCommentsPerHour: f.Settings.MaxCommentsPerHour,
			NotificationEmail:  f.Settings.NotificationEmail,
			ErrorNotification:  f.Settings.ErrorNotification,
		})
	}

	ids := make(map[string]string, len(f.Templates))
	for _, ts := range f.Templates {
		key := ts.Key
		if key == "" {
			key = ts.Name
		}
		ids[key] = st.AddTemplate(models.Template{
			Name:      ts.Name,
			Content:   ts.Content,
			Variables: ts.Variables,
		})
	}

	for _, rs := range f.Rules {
		tid, ok := ids[rs.Template]
		if !ok {
			return fmt.Errorf("rule %q -> %q: %w", rs.Name, rs.Template, ErrUnknownTemplateKey)
		}
		tt := models.TriggerType(rs.TriggerType)
		if !tt.Valid() {
			return fmt.Errorf("rule %q: invalid trigger type %q", rs.Name, rs.TriggerType)
		}
		enabled := true
		if rs.Enabled != nil {
			enabled = *rs.Enabled
		}
		if _, err := st.AddRule(models.Rule{
			Name:            rs.Name,
			TemplateID:      tid,
			TriggerType:     tt,
			TriggerKeywords: rs.TriggerKeywords,
			VariableValues:  rs.VariableValues,
			Enabled:         enabled,
			CooldownMinutes: rs.CooldownMinutes,
		}); err != nil {
			return fmt.Errorf("seed rule %q: %w", rs.Name, err)
		}
	}
	return nil
}

// Export writes the store's current templates, rules and settings as a
// seed document that Apply can load back.
func Export(w io.Writer, st *store.Store) error {
	settings := st.Settings()
	f := File{
		Settings: &SettingsSeed{
			Enabled:            &settings.Enabled,
			MaxCommentsPerHour: &settings.MaxCommentsPerHour,
			NotificationEmail:  &settings.NotificationEmail,
			ErrorNotification:  &settings.ErrorNotification,
		},
	}
	keys := slug.NewSet("template")
	byID := make(map[string]string)
	for _, t := range st.Templates() {
		key := keys.Key(t.Name)
		byID[t.ID] = key
		f.Templates = append(f.Templates, TemplateSeed{
			Key:       key,
			Name:      t.Name,
			Content:   t.Content,
			Variables: t.Variables,
		})
	}
	for _, r := range st.Rules() {
		enabled := r.Enabled
		f.Rules = append(f.Rules, RuleSeed{
			Name:            r.Name,
			Template:        byID[r.TemplateID],
			TriggerType:     string(r.TriggerType),
			TriggerKeywords: r.TriggerKeywords,
			VariableValues:  r.VariableValues,
			Enabled:         &enabled,
			CooldownMinutes: r.CooldownMinutes,
		})
	}

	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("encode seed: %w", err)
	}
	return nil
}
