package mockdata

import (
	"strings"
	"sync"
	"time"
)

const allChannelsKey = "*"

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// cache keeps fetched values until they are older than staleTime.
type cache struct {
	mu        sync.Mutex
	entries   map[string]cacheEntry
	staleTime time.Duration
	now       func() time.Time
}

func newCache(staleTime time.Duration, now func() time.Time) *cache {
	return &cache{
		entries:   make(map[string]cacheEntry),
		staleTime: staleTime,
		now:       now,
	}
}

func (c *cache) get(key string) (any, bool) {
	if c.staleTime <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if c.now().Sub(e.fetchedAt) >= c.staleTime {
		delete(c.entries, key)

		return nil, false
	}

	return e.value, true
}

func (c *cache) set(key string, value any) {
	if c.staleTime <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{value: value, fetchedAt: c.now()}
}

func (c *cache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}

func cacheKey(kind string, channelID *string, extra string) string {
	channel := allChannelsKey
	if channelID != nil {
		channel = *channelID
	}

	return strings.Join([]string{kind, channel, extra}, ":")
}
