// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package poster publishes rendered comments to the social platform.
// Only a simulated platform ships; real integrations implement Poster.
package poster

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"
)

// PlatformSimulated is recorded on history entries written for the
// simulated poster.
const PlatformSimulated = "simulated"

// PostRequest is one comment to publish.
type PostRequest struct {
	PostID     string
	Content    string
	RuleID     string
	TemplateID string
}

// PostResult describes a published comment.
type PostResult struct {
	CommentID string
	Message   string
}

// Poster publishes and removes comments.
type Poster interface {
	Post(ctx context.Context, req PostRequest) (PostResult, error)
	Delete(ctx context.Context, commentID string) error
	Platform() string
}

// APIError is a failure reported by the platform. Its message is shown
// verbatim in the history log.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }

// simulatedFailure mimics the platform refusing a post.
const simulatedFailure = "Simulated API error: Rate limit exceeded"

// SimulatedConfig tunes the simulated poster.
type SimulatedConfig struct {
	FailureRate float64
	MinDelay    time.Duration
	MaxDelay    time.Duration
	Rand        *rand.Rand
	Now         func() time.Time
}

// DefaultSimulatedConfig returns the stock latency and failure settings.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		FailureRate: 0.1,
		MinDelay:    500 * time.Millisecond,
		MaxDelay:    1500 * time.Millisecond,
	}
}

// Simulated pretends to post after a random delay and fails some
// fraction of the time.
type Simulated struct {
	mu  sync.Mutex
	rng *rand.Rand
	cfg SimulatedConfig
}

// NewSimulated creates a simulated poster.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	return &Simulated{rng: cfg.Rand, cfg: cfg}
}

func (s *Simulated) Platform() string { return PlatformSimulated }

// delay returns a uniform duration in [min, max].
func (s *Simulated) delay(min, max time.Duration) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if max <= min {
		return min
	}
	return min + time.Duration(s.rng.Int63n(int64(max-min)+1))
}

func (s *Simulated) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Simulated) suffix() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 1000 + s.rng.Intn(9000)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// preview shortens s to at most n runes for logging.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// Post simulates API latency, then either fails with a rate-limit error or
// returns a fresh comment ID.
func (s *Simulated) Post(ctx context.Context, req PostRequest) (PostResult, error) {
	slog.Debug("posting comment", "post_id", req.PostID, "content", preview(req.Content, 50))

	if err := sleep(ctx, s.delay(s.cfg.MinDelay, s.cfg.MaxDelay)); err != nil {
		return PostResult{}, fmt.Errorf("post to %s: %w", req.PostID, err)
	}

	if s.roll() < s.cfg.FailureRate {
		slog.Error("failed to post comment", "post_id", req.PostID, "error", simulatedFailure)
		return PostResult{}, &APIError{Message: simulatedFailure}
	}

	id := fmt.Sprintf("comment_%d_%d", s.cfg.Now().Unix(), s.suffix())
	slog.Info("comment posted", "post_id", req.PostID, "comment_id", id)
	return PostResult{
		CommentID: id,
		Message:   "Comment posted successfully. ID: " + id,
	}, nil
}

// Delete simulates removing a comment from the platform.
func (s *Simulated) Delete(ctx context.Context, commentID string) error {
	if err := sleep(ctx, s.delay(s.cfg.MinDelay*3/5, s.cfg.MaxDelay*2/3)); err != nil {
		return fmt.Errorf("delete %s: %w", commentID, err)
	}
	slog.Info("comment deleted", "comment_id", commentID)
	return nil
}
