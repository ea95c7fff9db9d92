// Copyright (C) 2025 Jeff Rose
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package resolver

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	addrs  []string
	err    error
	expiry time.Time
}

// Cache decorates a Resolver with positive and negative caching under a
// single TTL. Failed lookups are cached for the same duration as
// successful ones. Constructed once at startup, before any worker runs.
type Cache struct {
	mu      sync.Mutex
	next    Resolver
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// WithCache wraps next in a TTL cache. A TTL of zero disables caching and
// returns next unchanged, so every call hits the live resolver.
func WithCache(next Resolver, ttl time.Duration) Resolver {
	if ttl <= 0 {
		return next
	}
	return &Cache{
		next:    next,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *Cache) LookupHost(ctx context.Context, domain string) ([]string, error) {
	c.mu.Lock()
	if e, ok := c.entries[domain]; ok && c.now().Before(e.expiry) {
		addrs := make([]string, len(e.addrs))
		copy(addrs, e.addrs)
		c.mu.Unlock()
		return addrs, e.err
	}
	c.mu.Unlock()

	addrs, err := c.next.LookupHost(ctx, domain)

	c.mu.Lock()
	c.entries[domain] = cacheEntry{addrs: addrs, err: err, expiry: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return addrs, err
}
