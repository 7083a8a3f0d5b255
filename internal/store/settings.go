// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import "replybot/internal/models"

// Settings returns a copy of the current settings.
func (s *Store) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings merges the non-nil fields of p into the settings and
// returns the result.
func (s *Store) UpdateSettings(p models.SettingsPatch) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = p.Apply(s.settings)
	return s.settings
}
