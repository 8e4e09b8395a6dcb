// Package cache provides the region-keyed result cache used by the service
// layer. A region is a named class of query results ("users", "posts:all");
// entries are addressed by (region, key) and a whole region can be
// invalidated at once after a write.
package cache

import (
	"context"
	"time"
)

// Well-known cache regions. Any write that can leave a stale view in one of
// these regions must evict the affected keys or invalidate the region.
const (
	RegionUsers     = "users"
	RegionUsersAll  = "users:all"
	RegionPosts     = "posts"
	RegionPostsAll  = "posts:all"
	RegionPostsUser = "posts:user"
)

// DefaultTTL bounds the lifetime of cached entries when the store does not
// evict them sooner.
const DefaultTTL = 5 * time.Minute

// Cache is a concurrency-safe region-keyed store. Implementations must fail
// safe: a broken backend behaves like a miss on reads and a no-op on writes,
// never surfacing an error into the request path.
type Cache interface {
	// Get unmarshals the entry for (region, key) into dest and reports
	// whether it was present.
	Get(ctx context.Context, region, key string, dest any) bool
	// Set stores value under (region, key).
	Set(ctx context.Context, region, key string, value any)
	// Delete removes individual keys from a region.
	Delete(ctx context.Context, region string, keys ...string)
	// InvalidateRegion drops every entry in the region.
	InvalidateRegion(ctx context.Context, region string)
}
