// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache.go keeps compiled template bodies so the placeholder scan runs once
// per template version. Entries are keyed by ID and update time, so an
// update produces a cache miss even before invalidate is called.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// cacheKey uniquely identifies a compiled template version.
type cacheKey struct {
	id      string
	version int64 // UpdatedAt in unix nanoseconds
}

// templateCache is a concurrency-safe map of compiled bodies.
type templateCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]compiled
}

func newTemplateCache() *templateCache {
	return &templateCache{
		entries: make(map[cacheKey]compiled),
	}
}

// get returns the compiled body for a template version, or nil on miss.
func (c *templateCache) get(id string, updated time.Time) compiled {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[cacheKey{id: id, version: updated.UnixNano()}]
}

func (c *templateCache) put(id string, updated time.Time, body compiled) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{id: id, version: updated.UnixNano()}] = body
	slog.Debug("template cached", "id", id, "size", len(c.entries))
}

// invalidate removes all cached versions for a template ID.
func (c *templateCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id {
			delete(c.entries, k)
		}
	}
	slog.Debug("template cache invalidated", "id", id)
}

// size returns the number of cached entries.
func (c *templateCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
