// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Settings is the singleton runtime configuration edited from the dashboard.
type Settings struct {
	Enabled            bool   `json:"enabled"`
	MaxCommentsPerHour int    `json:"max_comments_per_hour"`
	NotificationEmail  string `json:"notification_email"`
	ErrorNotification  bool   `json:"error_notification"`
}

// DefaultSettings returns the settings a fresh process starts with.
func DefaultSettings() Settings {
	return Settings{
		Enabled:            true,
		MaxCommentsPerHour: 10,
		NotificationEmail:  "",
		ErrorNotification:  true,
	}
}

// SettingsPatch is a partial update. Nil fields are left untouched.
type SettingsPatch struct {
	Enabled            *bool   `json:"enabled,omitempty"`
	MaxCommentsPerHour *int    `json:"max_comments_per_hour,omitempty"`
	NotificationEmail  *string `json:"notification_email,omitempty"`
	ErrorNotification  *bool   `json:"error_notification,omitempty"`
}

// Apply shallow-merges the patch into s.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.MaxCommentsPerHour != nil {
		s.MaxCommentsPerHour = *p.MaxCommentsPerHour
	}
	if p.NotificationEmail != nil {
		s.NotificationEmail = *p.NotificationEmail
	}
	if p.ErrorNotification != nil {
		s.ErrorNotification = *p.ErrorNotification
	}
	return s
}
