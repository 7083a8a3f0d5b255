// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"

	"replybot/internal/engine"
	"replybot/internal/models"
)

// Templates returns all templates in insertion order.
func (s *Store) Templates() []models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Template, 0, len(s.templateOrder))
	for _, id := range s.templateOrder {
		out = append(out, s.templates[id].Clone())
	}
	return out
}

// Template retrieves a template by ID. Returns nil if not found.
func (s *Store) Template(id string) *models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return nil
	}
	c := t.Clone()
	return &c
}

// AddTemplate inserts a template with a fresh ID and timestamps. When no
// variables are declared they are derived from the body.
func (s *Store) AddTemplate(t models.Template) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t = t.Clone()
	t.ID = s.newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Variables == nil {
		t.Variables = engine.Placeholders(t.Content)
	}

	s.templates[t.ID] = &t
	s.templateOrder = append(s.templateOrder, t.ID)
	return t.ID
}

// UpdateTemplate replaces a template, keeping its original creation time.
func (s *Store) UpdateTemplate(id string, t models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.templates[id]
	if !ok {
		return fmt.Errorf("update template %s: %w", id, ErrNotFound)
	}

	t = t.Clone()
	t.ID = id
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = s.now()
	if t.Variables == nil {
		t.Variables = engine.Placeholders(t.Content)
	}
	s.templates[id] = &t
	return nil
}

// DeleteTemplate removes a template. Deletion is rejected while any rule
// references it; rules are never removed implicitly.
func (s *Store) DeleteTemplate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return fmt.Errorf("delete template %s: %w", id, ErrNotFound)
	}
	for _, r := range s.rules {
		if r.TemplateID == id {
			return fmt.Errorf("delete template %s (rule %s): %w", id, r.ID, ErrTemplateInUse)
		}
	}

	delete(s.templates, id)
	s.templateOrder = removeID(s.templateOrder, id)
	return nil
}
