// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the entities shared by the store, the posting
// pipeline and the dashboard: templates, rules, settings and history.
package models

import "time"

// Template is a reusable reply body. Content holds {name} placeholders that
// the engine fills from a rule's variable values.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Variables []string  `json:"variables"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (t Template) Clone() Template {
	t.Variables = append([]string(nil), t.Variables...)
	return t
}
