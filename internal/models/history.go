// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// HistoryStatus is the outcome recorded for a posting attempt.
type HistoryStatus string

const (
	StatusSuccess HistoryStatus = "success"
	StatusError   HistoryStatus = "error"
	StatusDeleted HistoryStatus = "deleted"
)

// Engagement holds the platform counters for a posted comment.
type Engagement struct {
	Likes   int `json:"likes"`
	Replies int `json:"replies"`
}

// HistoryEntry is one attempted or completed post. The store stamps ID and
// Timestamp on insert.
type HistoryEntry struct {
	ID           string        `json:"id"`
	PostID       string        `json:"post_id,omitempty"`
	CommentID    string        `json:"comment_id,omitempty"`
	RuleID       string        `json:"rule_id,omitempty"`
	TemplateID   string        `json:"template_id,omitempty"`
	Content      string        `json:"content"`
	Status       HistoryStatus `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Platform     string        `json:"platform,omitempty"`
	Engagement   *Engagement   `json:"engagement,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
}

// Clone returns a copy that does not share pointers with e.
func (e HistoryEntry) Clone() HistoryEntry {
	if e.Engagement != nil {
		eng := *e.Engagement
		e.Engagement = &eng
	}
	if e.UpdatedAt != nil {
		ts := *e.UpdatedAt
		e.UpdatedAt = &ts
	}
	return e
}
