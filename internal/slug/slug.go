// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.


// Package slug derives short readable keys from template names. Seed
// exports use them so rules can reference templates by name instead of
// by generated ID.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	invalid = regexp.MustCompile(`[^a-z0-9]+`)
	dashes  = regexp.MustCompile(`-{2,}`)
)

// Generate lowercases s and replaces every run of characters outside
// [a-z0-9] with a single hyphen. "Thanks, Fan!" becomes "thanks-fan".
func Generate(s string) string {
	out := invalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	out = dashes.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// Set hands out keys that are unique within one export.
type Set struct {
	fallback string
	taken    map[string]bool
}

// NewSet returns an empty Set. Names that slug to nothing use fallback.
func NewSet(fallback string) *Set {
	return &Set{fallback: fallback, taken: make(map[string]bool)}
}

// Key returns the slug of name, suffixed with -2, -3 and so on when an
// earlier call already returned it.
func (s *Set) Key(name string) string {
	base := Generate(name)
	if base == "" {
		base = s.fallback
	}
	key := base
	for n := 2; s.taken[key]; n++ {
		key = base + "-" + strconv.Itoa(n)
	}
	s.taken[key] = true
	return key
}
