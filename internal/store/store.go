// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store is the single source of truth for templates, rules,
// settings and comment history. Everything lives in memory behind one
// store-wide mutex; callers only ever receive copies.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"replybot/internal/models"
)

// DefaultMaxHistory is how many history entries are retained.
const DefaultMaxHistory = 1000

var (
	// ErrNotFound is returned when an update or delete targets an unknown ID.
	ErrNotFound = errors.New("store: not found")

	// ErrTemplateInUse is returned when deleting a template that a rule
	// still references.
	ErrTemplateInUse = errors.New("store: template is referenced by a rule")

	// ErrTemplateNotFound is returned when a rule references a template
	// that does not exist.
	ErrTemplateNotFound = errors.New("store: referenced template does not exist")
)

// Store holds all entity collections. All methods are safe for concurrent
// use; each takes the same lock for its whole duration.
type Store struct {
	mu sync.Mutex

	templates     map[string]*models.Template
	templateOrder []string
	rules         map[string]*models.Rule
	ruleOrder     []string
	settings      models.Settings
	history       []models.HistoryEntry

	maxHistory int
	now        func() time.Time
	newID      func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMaxHistory sets the history cap. Values below 1 are ignored.
func WithMaxHistory(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// New creates an empty store with default settings.
func New(opts ...Option) *Store {
	s := &Store{
		templates:  make(map[string]*models.Template),
		rules:      make(map[string]*models.Rule),
		settings:   models.DefaultSettings(),
		maxHistory: DefaultMaxHistory,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time. Components that compare against
// history timestamps use it so tests can drive a single clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// removeID deletes id from an order slice in place.
func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
