// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package trigger decides whether a rule fires on this tick and, if so,
// which item it answers and with which variable values.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"replybot/internal/models"
	"replybot/internal/source"
)

// KeywordVar is the reserved variable the matched keyword is injected
// under. It overrides any value the rule supplies.
const KeywordVar = "keyword"

// defaultKeyword is injected when a keyword rule declares no keywords.
const defaultKeyword = "default"

// ErrUnknownTrigger is returned for a rule whose trigger type is not one
// of the supported kinds.
var ErrUnknownTrigger = errors.New("trigger: unknown trigger type")

// Result describes a fired trigger.
type Result struct {
	Item           source.Item
	MatchedKeyword string
	// Values is the rule's variable mapping after trigger injection.
	Values map[string]any
}

// Evaluator decides whether a rule fires. A nil Result with a nil error
// means the trigger did not fire.
type Evaluator interface {
	Evaluate(ctx context.Context, rule models.Rule) (*Result, error)
}

// ItemRecorder is implemented by evaluators that track which items a rule
// has answered. The pipeline calls it after every post attempt.
type ItemRecorder interface {
	MarkAnswered(ctx context.Context, ruleID, itemID string)
}

// values copies the rule's variables so injection never touches the rule.
func values(rule models.Rule) map[string]any {
	v := make(map[string]any, len(rule.VariableValues)+1)
	maps.Copy(v, rule.VariableValues)
	return v
}

func unknown(rule models.Rule) error {
	return fmt.Errorf("rule %s: %q: %w", rule.ID, rule.TriggerType, ErrUnknownTrigger)
}
