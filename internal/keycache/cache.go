// Package keycache holds resolved provider credentials for a short window so
// repeated generation calls do not hit the database every time. Capacity is
// fixed; least-recently-used entries are evicted when it fills.
package keycache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type Entry struct {
	Secret    string
	Provider  string
	FetchedAt time.Time
}

type Cache struct {
	ttl time.Duration
	lru *lru.Cache[string, Entry]
}

func New(capacity int, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be > 0")
	}
	l, err := lru.New[string, Entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("new lru: %w", err)
	}
	return &Cache{ttl: ttl, lru: l}, nil
}

// Get returns the entry for id if it exists and is younger than the TTL at
// now. A stale entry is removed and reported as a miss.
func (c *Cache) Get(id string, now time.Time) (Entry, bool) {
	e, ok := c.lru.Get(id)
	if !ok {
		return Entry{}, false
	}
	if now.Sub(e.FetchedAt) >= c.ttl {
		c.lru.Remove(id)
		return Entry{}, false
	}
	return e, true
}

// Put overwrites any prior entry for id. Concurrent refreshes for the same id
// are last-write-wins with equivalent data.
func (c *Cache) Put(id string, e Entry) {
	c.lru.Add(id, e)
}

func (c *Cache) Len() int {
	return c.lru.Len()
}
