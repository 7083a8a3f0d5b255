// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notifier tells the operator when a comment fails to post.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"replybot/internal/models"
)

// Message is one notification.
type Message struct {
	// To is the recipient address. Senders with a fixed destination
	// ignore it.
	To      string
	Subject string
	Body    string
}

// Sender delivers a message over one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// Notifier fans a message out to every configured sender.
type Notifier struct {
	senders []Sender
}

// New creates a notifier. Nil senders are dropped.
func New(senders ...Sender) *Notifier {
	n := &Notifier{}
	for _, s := range senders {
		if s != nil {
			n.senders = append(n.senders, s)
		}
	}
	return n
}

// Enabled reports whether any sender is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && len(n.senders) > 0
}

// Channels returns the names of the configured senders.
func (n *Notifier) Channels() []string {
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.senders))
	for _, s := range n.senders {
		names = append(names, s.Name())
	}
	return names
}

// NotifyError reports a failed posting attempt. Every sender is tried;
// the returned error joins the individual failures.
func (n *Notifier) NotifyError(ctx context.Context, to string, e models.HistoryEntry, ruleName string) error {
	if !n.Enabled() {
		return nil
	}

	msg := Message{
		To:      to,
		Subject: fmt.Sprintf("replybot: comment failed for rule %q", ruleName),
		Body:    errorBody(e, ruleName),
	}

	var errs []error
	for _, s := range n.senders {
		if err := s.Send(ctx, msg); err != nil {
			slog.Warn("notification failed", "sender", s.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func errorBody(e models.HistoryEntry, ruleName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A comment could not be posted.\n\n")
	fmt.Fprintf(&b, "Rule: %s (%s)\n", ruleName, e.RuleID)
	if e.PostID != "" {
		fmt.Fprintf(&b, "Post: %s\n", e.PostID)
	}
	fmt.Fprintf(&b, "Time: %s\n", e.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Error: %s\n", e.ErrorMessage)
	if e.Content != "" {
		fmt.Fprintf(&b, "\nContent:\n%s\n", e.Content)
	}
	return b.String()
}
