// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"sort"
	"time"

	"replybot/internal/models"
)

// AddHistoryEntry stamps an ID and timestamp on e and appends it. Once the
// log grows past the cap, the oldest inserted entries are dropped.
func (s *Store) AddHistoryEntry(e models.HistoryEntry) models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e = e.Clone()
	e.ID = s.newID()
	e.Timestamp = s.now()
	s.history = append(s.history, e)

	if n := len(s.history); n > s.maxHistory {
		s.history = append([]models.HistoryEntry(nil), s.history[n-s.maxHistory:]...)
	}
	return e.Clone()
}

// History returns every entry, newest first. Entries with equal timestamps
// come out in reverse insertion order.
func (s *Store) History() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HistoryEntry, 0, len(s.history))
	for i := len(s.history) - 1; i >= 0; i-- {
		out = append(out, s.history[i].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// RecentHistory returns the entries stamped within window of now, in
// insertion order.
func (s *Store) RecentHistory(window time.Duration) []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-window)
	var out []models.HistoryEntry
	for _, e := range s.history {
		if e.Timestamp.After(cutoff) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// CountRecent returns how many entries were stamped within window of now.
func (s *Store) CountRecent(window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countSinceLocked(s.now().Add(-window))
}

// countSinceLocked counts entries after cutoff. Caller holds s.mu.
func (s *Store) countSinceLocked(cutoff time.Time) int {
	n := 0
	for _, e := range s.history {
		if e.Timestamp.After(cutoff) {
			n++
		}
	}
	return n
}

// LastRuleEntry returns the most recent entry recorded for a rule,
// regardless of status.
func (s *Store) LastRuleEntry(ruleID string) (models.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last *models.HistoryEntry
	for i := range s.history {
		e := &s.history[i]
		if e.RuleID != ruleID {
			continue
		}
		if last == nil || !e.Timestamp.Before(last.Timestamp) {
			last = e
		}
	}
	if last == nil {
		return models.HistoryEntry{}, false
	}
	return last.Clone(), true
}

// UpdateEngagement sets the platform counters on the entry for commentID.
func (s *Store) UpdateEngagement(commentID string, likes, replies int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findCommentLocked(commentID)
	if e == nil {
		return fmt.Errorf("update engagement %s: %w", commentID, ErrNotFound)
	}
	e.Engagement = &models.Engagement{Likes: likes, Replies: replies}
	now := s.now()
	e.UpdatedAt = &now
	return nil
}

// MarkDeleted flags the entry for commentID as deleted on the platform.
func (s *Store) MarkDeleted(commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findCommentLocked(commentID)
	if e == nil {
		return fmt.Errorf("mark deleted %s: %w", commentID, ErrNotFound)
	}
	e.Status = models.StatusDeleted
	now := s.now()
	e.UpdatedAt = &now
	return nil
}

// findCommentLocked returns the entry carrying commentID. Caller holds s.mu.
func (s *Store) findCommentLocked(commentID string) *models.HistoryEntry {
	if commentID == "" {
		return nil
	}
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].CommentID == commentID {
			return &s.history[i]
		}
	}
	return nil
}
