package cache

import "context"

// MutationKind names a committed relational write.
type MutationKind string

const (
	MutationPostCreated    MutationKind = "post.created"
	MutationPostUpdated    MutationKind = "post.updated"
	MutationPostDeleted    MutationKind = "post.deleted"
	MutationPostViewed     MutationKind = "post.viewed"
	MutationPostLiked      MutationKind = "post.liked"
	MutationPostUnliked    MutationKind = "post.unliked"
	MutationCommentCreated MutationKind = "comment.created"
	MutationFollowCreated  MutationKind = "follow.created"
	MutationFollowRemoved  MutationKind = "follow.removed"
	MutationUserUpdated    MutationKind = "user.updated"
)

// Mutation carries the ids a kind needs; unused fields stay zero.
type Mutation struct {
	Kind        MutationKind
	PostID      int64
	UserID      int64
	FollowerID  int64
	FollowingID int64
}

// Invalidator is the single place that maps a committed mutation to its cache
// effects. Write paths call Apply synchronously after the relational commit
// and before publishing the event, so the next read from this process cannot
// observe a snapshot the write just made stale.
type Invalidator struct {
	cache *Cache
}

func NewInvalidator(c *Cache) *Invalidator { return &Invalidator{cache: c} }

// Apply runs the cache effects for one mutation. Kinds without an entry are
// deliberate no-ops: post creation has no snapshot to drop yet, and bookmark
// reads never consult the cache. Feed snapshots of other viewers are never
// touched; their staleness is bounded by the feed TTL alone.
func (iv *Invalidator) Apply(ctx context.Context, m Mutation) {
	switch m.Kind {
	case MutationPostUpdated, MutationPostDeleted, MutationPostViewed,
		MutationPostLiked, MutationPostUnliked, MutationCommentCreated:
		iv.cache.DelPost(ctx, m.PostID)

	case MutationFollowCreated:
		iv.cache.RecordFollow(ctx, m.FollowerID, m.FollowingID)
		iv.cache.DelUser(ctx, m.FollowerID)
		iv.cache.DelUser(ctx, m.FollowingID)
		// Only the follower's feed composition changed.
		iv.cache.DelFeed(ctx, m.FollowerID)

	case MutationFollowRemoved:
		iv.cache.RemoveFollow(ctx, m.FollowerID, m.FollowingID)
		iv.cache.DelUser(ctx, m.FollowerID)
		iv.cache.DelUser(ctx, m.FollowingID)
		iv.cache.DelFeed(ctx, m.FollowerID)

	case MutationUserUpdated:
		iv.cache.DelUser(ctx, m.UserID)
	}
}
