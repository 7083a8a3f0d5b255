// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package source defines where candidate items (posts that a rule might
// answer) come from, plus a simulated feed for running without a real
// platform.
package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Item is a post on the platform that a rule may reply to.
type Item struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	ReplyTargetID string    `json:"reply_target_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsReply reports whether the item is itself a reply to another post.
func (i Item) IsReply() bool {
	return i.ReplyTargetID != ""
}

// ItemSource lists candidate items newer than a cursor. An empty cursor
// means "from the beginning". The returned cursor is passed to the next
// call.
type ItemSource interface {
	FetchCandidateItems(ctx context.Context, sinceCursor string) ([]Item, string, error)
}

// SimulatedConfig tunes the simulated feed.
type SimulatedConfig struct {
	// BatchSize is how many items each fetch produces.
	BatchSize int
	// KeywordRate is the probability that an item mentions a keyword.
	KeywordRate float64
	// ReplyRate is the probability that an item is a reply.
	ReplyRate float64
	// Keywords returns the words to sprinkle into items, usually the
	// keywords of the currently enabled rules.
	Keywords func() []string
	// Seed makes the feed deterministic when non-zero.
	Seed int64
	Now  func() time.Time
}

// Simulated is an ItemSource that invents posts with gofakeit.
type Simulated struct {
	mu    sync.Mutex
	cfg   SimulatedConfig
	faker *gofakeit.Faker
	seq   int64
}

// NewSimulated creates a simulated feed.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Keywords == nil {
		cfg.Keywords = func() []string { return nil }
	}
	return &Simulated{cfg: cfg, faker: gofakeit.New(cfg.Seed)}
}

// FetchCandidateItems produces a fresh batch. The cursor is the sequence
// number of the last item handed out; items are never repeated.
func (s *Simulated) FetchCandidateItems(ctx context.Context, sinceCursor string) ([]Item, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, sinceCursor, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sinceCursor != "" {
		since, err := strconv.ParseInt(sinceCursor, 10, 64)
		if err != nil {
			return nil, sinceCursor, fmt.Errorf("parse cursor %q: %w", sinceCursor, err)
		}
		if since > s.seq {
			s.seq = since
		}
	}

	keywords := s.cfg.Keywords()
	now := s.cfg.Now()
	items := make([]Item, 0, s.cfg.BatchSize)
	for i := 0; i < s.cfg.BatchSize; i++ {
		s.seq++
		item := Item{
			ID:        fmt.Sprintf("post_%d_%d", now.Unix(), s.seq),
			Text:      s.faker.Sentence(10),
			CreatedAt: now,
		}
		if len(keywords) > 0 && s.faker.Float64() < s.cfg.KeywordRate {
			kw := keywords[s.faker.Number(0, len(keywords)-1)]
			item.Text = strings.TrimSuffix(item.Text, ".") + " " + kw + "?"
		}
		if s.faker.Float64() < s.cfg.ReplyRate {
			item.ReplyTargetID = fmt.Sprintf("post_%d", s.faker.Number(1, int(s.seq)))
		}
		items = append(items, item)
	}

	return items, strconv.FormatInt(s.seq, 10), nil
}
