// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package guard enforces the global hourly posting cap and per-rule
// cooldowns, both derived from the history log.
package guard

import (
	"time"

	"replybot/internal/models"
)

// rateWindow is the window the hourly cap applies to.
const rateWindow = time.Hour

// History is the subset of the store the guard reads.
type History interface {
	CountRecent(window time.Duration) int
	LastRuleEntry(ruleID string) (models.HistoryEntry, bool)
	Now() time.Time
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed bool
	// Count is the number of entries in the last hour (rate checks).
	Count int
	// Limit is the configured hourly cap (rate checks).
	Limit int
	// Remaining is how long the rule stays on cooldown.
	Remaining time.Duration
}

// Guard evaluates rate and cooldown limits.
type Guard struct {
	history History
}

// New creates a guard reading from h.
func New(h History) *Guard {
	return &Guard{history: h}
}

// CheckRate blocks the whole tick once the last hour holds at least
// max_comments_per_hour entries of any status.
func (g *Guard) CheckRate(s models.Settings) Decision {
	n := g.history.CountRecent(rateWindow)
	return Decision{
		Allowed: n < s.MaxCommentsPerHour,
		Count:   n,
		Limit:   s.MaxCommentsPerHour,
	}
}

// CheckCooldown blocks a rule while its most recent entry, success or
// error, is younger than the rule's cooldown.
func (g *Guard) CheckCooldown(r models.Rule) Decision {
	last, ok := g.history.LastRuleEntry(r.ID)
	if !ok {
		return Decision{Allowed: true}
	}

	elapsed := g.history.Now().Sub(last.Timestamp)
	if cd := r.Cooldown(); elapsed < cd {
		return Decision{Allowed: false, Remaining: cd - elapsed}
	}
	return Decision{Allowed: true}
}
