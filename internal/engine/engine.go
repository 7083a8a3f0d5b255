// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine fills reply templates. A template body contains {name}
// placeholders; rendering substitutes the supplied values in one pass and
// turns any placeholder left without a value into a visible [name] marker.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"replybot/internal/models"
)

// placeholderRe matches {name} where name contains no braces.
var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// segment is one piece of a compiled body: either literal text or a
// placeholder name.
type segment struct {
	text  string
	name  string
	isVar bool
}

// compiled is a template body split into segments.
type compiled []segment

// compile splits body into literal and placeholder segments.
func compile(body string) compiled {
	var out compiled
	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(body, -1) {
		if loc[0] > last {
			out = append(out, segment{text: body[last:loc[0]]})
		}
		out = append(out, segment{name: body[loc[2]:loc[3]], isVar: true})
		last = loc[1]
	}
	if last < len(body) {
		out = append(out, segment{text: body[last:]})
	}
	return out
}

// execute renders the segments against values. Substituted values are
// written verbatim and never re-scanned for placeholders.
func (c compiled) execute(values map[string]any) (string, []string) {
	var b strings.Builder
	var unfilled []string
	seen := make(map[string]bool)

	for _, seg := range c {
		if !seg.isVar {
			b.WriteString(seg.text)
			continue
		}
		if v, ok := values[seg.name]; ok {
			b.WriteString(stringify(v))
			continue
		}
		b.WriteString("[" + seg.name + "]")
		if !seen[seg.name] {
			seen[seg.name] = true
			unfilled = append(unfilled, seg.name)
		}
	}
	return b.String(), unfilled
}

// stringify formats a variable value. JSON numbers decode as float64 and
// are printed in plain decimal, so 3 renders as "3" and 1e20 in full.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// Render fills body with values and returns the text together with the
// names of placeholders that had no value, in order of first appearance.
func Render(body string, values map[string]any) (string, []string) {
	return compile(body).execute(values)
}

// Placeholders returns the distinct placeholder names used in body.
func Placeholders(body string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Uses reports whether body references the placeholder name.
func Uses(body, name string) bool {
	return strings.Contains(body, "{"+name+"}")
}

// Engine renders stored templates, keeping compiled bodies in an in-memory
// cache keyed by template ID and update time.
type Engine struct {
	cache *templateCache
}

// New creates an engine with an empty cache.
func New() *Engine {
	return &Engine{cache: newTemplateCache()}
}

// RenderTemplate renders t with values and logs a warning when some
// placeholders had no value.
func (e *Engine) RenderTemplate(t *models.Template, values map[string]any) (string, []string) {
	c := e.cache.get(t.ID, t.UpdatedAt)
	if c == nil {
		c = compile(t.Content)
		e.cache.put(t.ID, t.UpdatedAt, c)
	}

	text, unfilled := c.execute(values)
	if len(unfilled) > 0 {
		slog.Warn("template has unfilled variables",
			"template_id", t.ID,
			"variables", unfilled,
		)
	}
	return text, unfilled
}

// InvalidateTemplate drops every cached version of a template. Called after
// a template is updated or deleted.
func (e *Engine) InvalidateTemplate(id string) {
	e.cache.invalidate(id)
}
