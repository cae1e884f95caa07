package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	// AllPostsKey caches the public listing of approved posts.
	AllPostsKey = "all-posts"

	postKeyPrefix = "post:%d"

	// PostTTL applies to both the all-posts listing and per-post entries.
	// The legacy 120 second expiry is superseded.
	PostTTL = 24 * time.Hour
)

func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// Invalidate deletes the given keys. It is a no-op when the cache is down and
// must only be called after the authoritative mutation has committed.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidatePost clears the per-post entry and the public listing.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID), AllPostsKey)
}

// InvalidatePostsList clears only the public listing.
func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, AllPostsKey)
}
