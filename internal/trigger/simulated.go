// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"replybot/internal/models"
	"replybot/internal/source"
)

// simulatedPostText is the body of every synthesized new post.
const simulatedPostText = "This is a simulated new post that matches trigger criteria"

// Default firing probabilities for the simulated evaluator.
const (
	DefaultNewPostProbability = 0.3
	DefaultKeywordProbability = 0.2
)

// SimulatedConfig tunes the simulated evaluator.
type SimulatedConfig struct {
	NewPostProbability float64
	KeywordProbability float64
	// Rand is the randomness source. Defaults to a time-seeded generator.
	Rand *rand.Rand
	Now  func() time.Time
}

// Simulated fires triggers at random instead of watching a real platform.
type Simulated struct {
	mu  sync.Mutex
	rng *rand.Rand
	cfg SimulatedConfig
}

// NewSimulated creates a simulated evaluator. Zero probabilities are kept
// as zero; use the Default constants for the stock behaviour.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Simulated{rng: cfg.Rand, cfg: cfg}
}

func (s *Simulated) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Simulated) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Evaluate rolls the dice for the rule's trigger kind.
func (s *Simulated) Evaluate(_ context.Context, rule models.Rule) (*Result, error) {
	now := s.cfg.Now()

	switch rule.TriggerType {
	case models.TriggerNewPost:
		if s.float() >= s.cfg.NewPostProbability {
			return nil, nil
		}
		item := source.Item{
			ID:        fmt.Sprintf("post_%d", now.Unix()),
			Text:      simulatedPostText,
			CreatedAt: now,
		}
		res := &Result{Item: item, Values: values(rule)}
		if len(rule.TriggerKeywords) > 0 {
			kw, ok := rule.MatchKeyword(item.Text)
			if !ok {
				slog.Debug("new post lacks required keywords",
					"rule_id", rule.ID, "post_id", item.ID, "keywords", rule.TriggerKeywords)
				return nil, nil
			}
			res.MatchedKeyword = kw
		}
		return res, nil

	case models.TriggerKeyword:
		if s.float() >= s.cfg.KeywordProbability {
			return nil, nil
		}
		kw := defaultKeyword
		if n := len(rule.TriggerKeywords); n > 0 {
			kw = rule.TriggerKeywords[s.intn(n)]
		}
		v := values(rule)
		v[KeywordVar] = kw
		return &Result{
			Item: source.Item{
				ID:        fmt.Sprintf("post_%d", now.Unix()),
				Text:      fmt.Sprintf("A simulated post mentioning %s", kw),
				CreatedAt: now,
			},
			MatchedKeyword: kw,
			Values:         v,
		}, nil

	case models.TriggerScheduled:
		return &Result{
			Item: source.Item{
				ID:        fmt.Sprintf("scheduled_%d", now.Unix()),
				CreatedAt: now,
			},
			Values: values(rule),
		}, nil
	}

	return nil, unknown(rule)
}
