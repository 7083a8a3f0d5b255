// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package poster

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
	"time"
	"unicode/utf8"
)

var commentIDRe = regexp.MustCompile(`^comment_1700000000_[1-9]\d{3}$`)

func instant(failure float64, seed int64) *Simulated {
	return NewSimulated(SimulatedConfig{
		FailureRate: failure,
		Rand:        rand.New(rand.NewSource(seed)),
		Now:         func() time.Time { return time.Unix(1_700_000_000, 0) },
	})
}

func TestSimulatedPostSuccess(t *testing.T) {
	p := instant(0, 1)

	for i := 0; i < 50; i++ {
		res, err := p.Post(context.Background(), PostRequest{PostID: "post_1", Content: "hi"})
		if err != nil {
			t.Fatalf("Post: %v", err)
		}
		if !commentIDRe.MatchString(res.CommentID) {
			t.Errorf("comment id = %q", res.CommentID)
		}
		if res.Message == "" {
			t.Error("empty message")
		}
	}
	if p.Platform() != "simulated" {
		t.Errorf("Platform = %q", p.Platform())
	}
}

func TestSimulatedPostFailure(t *testing.T) {
	p := instant(1, 1)

	_, err := p.Post(context.Background(), PostRequest{PostID: "post_1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if err.Error() != "Simulated API error: Rate limit exceeded" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestSimulatedFailureRate(t *testing.T) {
	p := instant(0.1, 5)
	failed := 0
	const n = 3000
	for i := 0; i < n; i++ {
		if _, err := p.Post(context.Background(), PostRequest{}); err != nil {
			failed++
		}
	}
	if rate := float64(failed) / n; rate < 0.07 || rate > 0.13 {
		t.Errorf("failure rate = %.3f, want about 0.1", rate)
	}
}

func TestSimulatedPostHonoursContext(t *testing.T) {
	p := NewSimulated(SimulatedConfig{MinDelay: time.Hour, MaxDelay: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Post(ctx, PostRequest{PostID: "p"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Post ignored cancellation")
	}
}

func TestSimulatedDelayBounds(t *testing.T) {
	p := NewSimulated(SimulatedConfig{
		MinDelay: 500 * time.Millisecond,
		MaxDelay: 1500 * time.Millisecond,
		Rand:     rand.New(rand.NewSource(3)),
	})
	for i := 0; i < 1000; i++ {
		d := p.delay(p.cfg.MinDelay, p.cfg.MaxDelay)
		if d < 500*time.Millisecond || d > 1500*time.Millisecond {
			t.Fatalf("delay %v out of bounds", d)
		}
	}
}

func TestSimulatedDelete(t *testing.T) {
	p := instant(0, 1)
	if err := p.Delete(context.Background(), "comment_1"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestPreviewKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "hello", 50, "hello"},
		{"ascii cut", "abcdef", 3, "abc..."},
		{"multibyte cut", "héllo wörld", 2, "hé..."},
		{"emoji cut", "👍👍👍", 1, "👍..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preview(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("preview(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("preview(%q, %d) is not valid UTF-8", tt.in, tt.n)
			}
		})
	}
}
