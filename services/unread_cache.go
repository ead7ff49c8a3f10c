package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var cacheContext = context.Background()

const unreadTTL = 5 * time.Minute

// UnreadCache keeps per-user unread badges in Redis so inbox polling does not
// hit the store on every request. A nil cache (or nil client) disables
// caching; every method is safe to call on it.
type UnreadCache struct {
	rdb *redis.Client
}

func NewUnreadCache(rdb *redis.Client) *UnreadCache {
	if rdb == nil {
		return nil
	}
	return &UnreadCache{rdb: rdb}
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("unread:%d", userID)
}

// Get returns the cached badge for a user and whether the cache was warm.
func (c *UnreadCache) Get(userID uint) (int64, bool) {
	if c == nil {
		return 0, false
	}
	val, err := c.rdb.Get(cacheContext, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Set stores a freshly computed badge.
func (c *UnreadCache) Set(userID uint, count int64) {
	if c == nil {
		return
	}
	c.rdb.Set(cacheContext, unreadKey(userID), strconv.FormatInt(count, 10), unreadTTL)
}

// Invalidate drops a user's cached badge after a compose, reply or read flip
// that affects them.
func (c *UnreadCache) Invalidate(userID uint) {
	if c == nil {
		return
	}
	c.rdb.Del(cacheContext, unreadKey(userID))
}
