// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"replybot/internal/cache"
	"replybot/internal/models"
	"replybot/internal/source"
)

// DefaultFeedWindow is how many recent items the feed evaluator keeps.
const DefaultFeedWindow = 200

// Feed fires triggers on items pulled from an ItemSource. Each rule
// answers an item at most once.
type Feed struct {
	src    source.ItemSource
	seen   cache.SeenSet
	now    func() time.Time
	window int

	mu     sync.Mutex
	cursor string
	items  []source.Item
}

// NewFeed creates a feed-backed evaluator.
func NewFeed(src source.ItemSource, seen cache.SeenSet) *Feed {
	return &Feed{src: src, seen: seen, now: time.Now, window: DefaultFeedWindow}
}

// refresh pulls new items from the source and appends them to the window.
func (f *Feed) refresh(ctx context.Context) ([]source.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, next, err := f.src.FetchCandidateItems(ctx, f.cursor)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate items: %w", err)
	}
	f.cursor = next
	for _, it := range items {
		if it.IsReply() {
			continue
		}
		f.items = append(f.items, it)
	}
	if n := len(f.items); n > f.window {
		f.items = append([]source.Item(nil), f.items[n-f.window:]...)
	}
	return append([]source.Item(nil), f.items...), nil
}

// Evaluate looks for the first unseen item the rule should answer.
func (f *Feed) Evaluate(ctx context.Context, rule models.Rule) (*Result, error) {
	switch rule.TriggerType {
	case models.TriggerScheduled:
		now := f.now()
		return &Result{
			Item:   source.Item{ID: fmt.Sprintf("scheduled_%d", now.Unix()), CreatedAt: now},
			Values: values(rule),
		}, nil
	case models.TriggerNewPost, models.TriggerKeyword:
	default:
		return nil, unknown(rule)
	}

	items, err := f.refresh(ctx)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if f.seen.Seen(ctx, rule.ID, it.ID) {
			continue
		}

		kw, matched := rule.MatchKeyword(it.Text)
		switch rule.TriggerType {
		case models.TriggerNewPost:
			if len(rule.TriggerKeywords) > 0 && !matched {
				continue
			}
			return &Result{Item: it, MatchedKeyword: kw, Values: values(rule)}, nil

		case models.TriggerKeyword:
			if len(rule.TriggerKeywords) == 0 {
				kw, matched = defaultKeyword, true
			}
			if !matched {
				continue
			}
			v := values(rule)
			v[KeywordVar] = kw
			return &Result{Item: it, MatchedKeyword: kw, Values: v}, nil
		}
	}

	slog.Debug("no unseen matching item", "rule_id", rule.ID, "candidates", len(items))
	return nil, nil
}

// ForgetRule drops the answered items recorded for a deleted rule.
func (f *Feed) ForgetRule(ctx context.Context, ruleID string) {
	f.seen.Forget(ctx, ruleID)
}

// MarkAnswered records that rule ruleID has replied to itemID.
func (f *Feed) MarkAnswered(ctx context.Context, ruleID, itemID string) {
	f.seen.MarkSeen(ctx, ruleID, itemID)
}
