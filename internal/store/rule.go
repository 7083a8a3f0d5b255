// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"

	"replybot/internal/models"
)

// Rules returns all rules in insertion order.
func (s *Store) Rules() []models.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Rule, 0, len(s.ruleOrder))
	for _, id := range s.ruleOrder {
		out = append(out, s.rules[id].Clone())
	}
	return out
}

// EnabledRules returns only the rules with Enabled set, in insertion order.
func (s *Store) EnabledRules() []models.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Rule
	for _, id := range s.ruleOrder {
		if r := s.rules[id]; r.Enabled {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Rule retrieves a rule by ID. Returns nil if not found.
func (s *Store) Rule(id string) *models.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[id]
	if !ok {
		return nil
	}
	c := r.Clone()
	return &c
}

// AddRule inserts a rule. The referenced template must exist.
func (s *Store) AddRule(r models.Rule) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[r.TemplateID]; !ok {
		return "", fmt.Errorf("add rule (template %q): %w", r.TemplateID, ErrTemplateNotFound)
	}

	now := s.now()
	r = r.Clone()
	r.ID = s.newID()
	r.CreatedAt = now
	r.UpdatedAt = now

	s.rules[r.ID] = &r
	s.ruleOrder = append(s.ruleOrder, r.ID)
	return r.ID, nil
}

// UpdateRule replaces a rule, keeping its original creation time.
func (s *Store) UpdateRule(id string, r models.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rules[id]
	if !ok {
		return fmt.Errorf("update rule %s: %w", id, ErrNotFound)
	}
	if _, ok := s.templates[r.TemplateID]; !ok {
		return fmt.Errorf("update rule %s (template %q): %w", id, r.TemplateID, ErrTemplateNotFound)
	}

	r = r.Clone()
	r.ID = id
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.now()
	s.rules[id] = &r
	return nil
}

// DeleteRule removes a rule.
func (s *Store) DeleteRule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return fmt.Errorf("delete rule %s: %w", id, ErrNotFound)
	}
	delete(s.rules, id)
	s.ruleOrder = removeID(s.ruleOrder, id)
	return nil
}
