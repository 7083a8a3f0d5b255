// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// seenKeyPrefix is the Valkey key prefix for per-rule seen sets.
	seenKeyPrefix = "seen:"

	// DefaultSeenTTL is how long a rule remembers an answered item.
	DefaultSeenTTL = 7 * 24 * time.Hour
)

// SeenSet records which items each rule has already answered.
type SeenSet interface {
	Seen(ctx context.Context, ruleID, itemID string) bool
	MarkSeen(ctx context.Context, ruleID, itemID string)
	Forget(ctx context.Context, ruleID string)
}

// ValkeySeenSet keeps one Valkey set per rule. Errors are logged and
// treated as "not seen".
type ValkeySeenSet struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeySeenSet creates a seen set backed by the given Valkey client.
func NewValkeySeenSet(client *redis.Client, ttl time.Duration) *ValkeySeenSet {
	if ttl == 0 {
		ttl = DefaultSeenTTL
	}
	return &ValkeySeenSet{client: client, ttl: ttl}
}

// Seen reports whether ruleID already answered itemID.
func (s *ValkeySeenSet) Seen(ctx context.Context, ruleID, itemID string) bool {
	ok, err := s.client.SIsMember(ctx, seenKeyPrefix+ruleID, itemID).Result()
	if err != nil {
		slog.Warn("seen set lookup error", "rule_id", ruleID, "item_id", itemID, "error", err)
		return false
	}
	return ok
}

// MarkSeen records itemID for ruleID and refreshes the set's TTL.
func (s *ValkeySeenSet) MarkSeen(ctx context.Context, ruleID, itemID string) {
	key := seenKeyPrefix + ruleID
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, itemID)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("seen set mark error", "rule_id", ruleID, "item_id", itemID, "error", err)
	}
}

// Forget drops everything recorded for a rule.
func (s *ValkeySeenSet) Forget(ctx context.Context, ruleID string) {
	if err := s.client.Del(ctx, seenKeyPrefix+ruleID).Err(); err != nil {
		slog.Warn("seen set forget error", "rule_id", ruleID, "error", err)
	}
}

// MemorySeenSet is the in-process fallback used when Valkey is not
// configured.
type MemorySeenSet struct {
	mu    sync.Mutex
	items map[string]map[string]struct{}
}

// NewMemorySeenSet creates an empty in-memory seen set.
func NewMemorySeenSet() *MemorySeenSet {
	return &MemorySeenSet{items: make(map[string]map[string]struct{})}
}

func (s *MemorySeenSet) Seen(_ context.Context, ruleID, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[ruleID][itemID]
	return ok
}

func (s *MemorySeenSet) MarkSeen(_ context.Context, ruleID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.items[ruleID]
	if !ok {
		set = make(map[string]struct{})
		s.items[ruleID] = set
	}
	set[itemID] = struct{}{}
}

// Forget drops everything recorded for a rule.
func (s *MemorySeenSet) Forget(_ context.Context, ruleID string) {
	s.mu.Lock()
	delete(s.items, ruleID)
	s.mu.Unlock()
}
