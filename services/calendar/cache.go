package calendar

import (
	"time"

	"calbook/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// availabilityCache memoizes provider pages for a short TTL. Any write
// through the service purges it.
type availabilityCache struct {
	lru *expirable.LRU[string, models.EventPage]
}

func newAvailabilityCache(size int, ttl time.Duration) *availabilityCache {
	if size <= 0 || ttl <= 0 {
		return nil
	}
	return &availabilityCache{lru: expirable.NewLRU[string, models.EventPage](size, nil, ttl)}
}

func cacheKey(window models.Window, pageToken string) string {
	return window.Start.UTC().Format(time.RFC3339Nano) + "|" +
		window.End.UTC().Format(time.RFC3339Nano) + "|" + pageToken
}

func (c *availabilityCache) get(window models.Window, pageToken string) (models.EventPage, bool) {
	if c == nil {
		return models.EventPage{}, false
	}
	return c.lru.Get(cacheKey(window, pageToken))
}

func (c *availabilityCache) add(window models.Window, pageToken string, page models.EventPage) {
	if c == nil {
		return
	}
	c.lru.Add(cacheKey(window, pageToken), page)
}

func (c *availabilityCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}
