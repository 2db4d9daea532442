package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfi-backend/internal/model"
	"github.com/d60-Lab/socialfi-backend/pkg/logger"
)

// Cache is the Redis-backed projection of the relational store: entity
// snapshots, per-viewer feed snapshots and follow membership sets.
//
// It is strictly best-effort. Every read error degrades to a miss and every
// write error is logged and swallowed; callers must treat the relational
// store as the only authority. Each operation runs under its own bounded
// timeout so a slow Redis can never fail or stall a request.
type Cache struct {
	rdb       *redis.Client
	entityTTL time.Duration
	feedTTL   time.Duration
	opTimeout time.Duration
}

func New(rdb *redis.Client, entityTTL, feedTTL, opTimeout time.Duration) *Cache {
	if entityTTL <= 0 {
		entityTTL = time.Hour
	}
	if feedTTL <= 0 {
		feedTTL = 5 * time.Minute
	}
	if opTimeout <= 0 {
		opTimeout = 200 * time.Millisecond
	}
	return &Cache{rdb: rdb, entityTTL: entityTTL, feedTTL: feedTTL, opTimeout: opTimeout}
}

// FeedTTL reports the feed snapshot staleness bound.
func (c *Cache) FeedTTL() time.Duration { return c.feedTTL }

func (c *Cache) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.opTimeout)
}

func (c *Cache) getJSON(ctx context.Context, key string, out interface{}) bool {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("cache payload corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cache) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()
	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) del(ctx context.Context, keys ...string) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("cache del failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// GetUser returns the cached user snapshot, or ok=false on miss or any
// cache-layer error.
func (c *Cache) GetUser(ctx context.Context, id int64) (*model.User, bool) {
	var u model.User
	if !c.getJSON(ctx, userKey(id), &u) {
		return nil, false
	}
	return &u, true
}

// SetUser stores a user snapshot with the entity TTL. Best-effort.
func (c *Cache) SetUser(ctx context.Context, u *model.User) {
	c.setJSON(ctx, userKey(u.ID), u, c.entityTTL)
}

// DelUser drops the user snapshot.
func (c *Cache) DelUser(ctx context.Context, id int64) {
	c.del(ctx, userKey(id))
}

// GetPost returns the cached post snapshot, or ok=false on miss.
func (c *Cache) GetPost(ctx context.Context, id int64) (*model.Post, bool) {
	var p model.Post
	if !c.getJSON(ctx, postKey(id), &p) {
		return nil, false
	}
	return &p, true
}

// SetPost stores a post snapshot with the entity TTL. Best-effort.
func (c *Cache) SetPost(ctx context.Context, p *model.Post) {
	c.setJSON(ctx, postKey(p.ID), p, c.entityTTL)
}

// DelPost drops the post snapshot.
func (c *Cache) DelPost(ctx context.Context, id int64) {
	c.del(ctx, postKey(id))
}

// GetFeed returns the viewer's cached first feed page, or ok=false on miss.
// Only page 1 is ever cached; deeper pages always hit the store.
func (c *Cache) GetFeed(ctx context.Context, viewerID int64) ([]model.Post, bool) {
	var posts []model.Post
	if !c.getJSON(ctx, feedKey(viewerID), &posts) {
		return nil, false
	}
	return posts, true
}

// SetFeed stores the first feed page with the feed TTL. Callers only invoke
// this for non-empty page-1 results; expiry is the sole invalidation path.
func (c *Cache) SetFeed(ctx context.Context, viewerID int64, posts []model.Post) {
	c.setJSON(ctx, feedKey(viewerID), posts, c.feedTTL)
}

// DelFeed drops the viewer's feed snapshot.
func (c *Cache) DelFeed(ctx context.Context, viewerID int64) {
	c.del(ctx, feedKey(viewerID))
}

// RecordFollow adds b to a's following set and a to b's followers set.
// The two single-key writes are not atomic as a pair; if one fails the
// structure is left asymmetric and heals on the next IsFollowing fall-through
// to the relational store.
func (c *Cache) RecordFollow(ctx context.Context, followerID, followingID int64) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	if err := c.rdb.SAdd(ctx, followingKey(followerID), strconv.FormatInt(followingID, 10)).Err(); err != nil {
		logger.Warn("cache sadd failed", zap.Int64("follower", followerID), zap.Error(err))
	}
	if err := c.rdb.SAdd(ctx, followersKey(followingID), strconv.FormatInt(followerID, 10)).Err(); err != nil {
		logger.Warn("cache sadd failed", zap.Int64("following", followingID), zap.Error(err))
	}
}

// RemoveFollow is the symmetric removal, with the same partial-failure
// tolerance as RecordFollow.
func (c *Cache) RemoveFollow(ctx context.Context, followerID, followingID int64) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	if err := c.rdb.SRem(ctx, followingKey(followerID), strconv.FormatInt(followingID, 10)).Err(); err != nil {
		logger.Warn("cache srem failed", zap.Int64("follower", followerID), zap.Error(err))
	}
	if err := c.rdb.SRem(ctx, followersKey(followingID), strconv.FormatInt(followerID, 10)).Err(); err != nil {
		logger.Warn("cache srem failed", zap.Int64("following", followingID), zap.Error(err))
	}
}

// IsFollowing checks a's following set. Membership proves "following";
// anything else (absent member, missing key, error) is unknown and the caller
// must fall through to the relational store. Negative results are never
// cached, so a fresh follow is visible immediately.
func (c *Cache) IsFollowing(ctx context.Context, followerID, followingID int64) (following, known bool) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	ok, err := c.rdb.SIsMember(ctx, followingKey(followerID), strconv.FormatInt(followingID, 10)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("cache sismember failed", zap.Int64("follower", followerID), zap.Error(err))
		}
		return false, false
	}
	if !ok {
		return false, false
	}
	return true, true
}
