package cache

import (
	"sync"
	"time"

	"github.com/smallbiznis/sathi/internal/clock"
	"github.com/smallbiznis/sathi/internal/config"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
)

const defaultSnapshotTTL = 5 * time.Second

// ResourceSnapshotCache holds read-only candidate lists per resource type
// for ranking. Writers invalidate the type they touched.
//
// Loaders read Generation before querying the store and pass it to Set. A
// load that raced with Invalidate carries a stale generation and is dropped.
type ResourceSnapshotCache interface {
	Get(resourceType resourcedomain.ResourceType) ([]resourcedomain.Resource, bool)
	Generation(resourceType resourcedomain.ResourceType) uint64
	Set(resourceType resourcedomain.ResourceType, generation uint64, resources []resourcedomain.Resource) bool
	Invalidate(resourceType resourcedomain.ResourceType)
}

type resourceSnapshotCache struct {
	snapshots Cache[resourcedomain.ResourceType, []resourcedomain.Resource]
	ttl       time.Duration

	mu          sync.Mutex
	generations map[resourcedomain.ResourceType]uint64
}

func NewResourceSnapshotCache(cfg config.Config, clk clock.Clock) ResourceSnapshotCache {
	ttl := cfg.ResourceCacheTTL
	if ttl < 0 {
		ttl = defaultSnapshotTTL
	}
	return &resourceSnapshotCache{
		snapshots:   NewTTLCacheWithClock[resourcedomain.ResourceType, []resourcedomain.Resource](clk),
		ttl:         ttl,
		generations: make(map[resourcedomain.ResourceType]uint64),
	}
}

// Get returns a copy so callers cannot mutate the shared snapshot.
func (c *resourceSnapshotCache) Get(resourceType resourcedomain.ResourceType) ([]resourcedomain.Resource, bool) {
	items, ok := c.snapshots.Get(resourceType)
	if !ok {
		return nil, false
	}
	return cloneResources(items), true
}

func (c *resourceSnapshotCache) Generation(resourceType resourcedomain.ResourceType) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[resourceType]
}

// Set stores the snapshot unless the type was invalidated after generation
// was read. It reports whether the snapshot was kept.
func (c *resourceSnapshotCache) Set(resourceType resourcedomain.ResourceType, generation uint64, resources []resourcedomain.Resource) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[resourceType] != generation {
		return false
	}
	c.snapshots.Set(resourceType, cloneResources(resources), c.ttl)
	return true
}

func (c *resourceSnapshotCache) Invalidate(resourceType resourcedomain.ResourceType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[resourceType]++
	c.snapshots.Delete(resourceType)
}

func cloneResources(in []resourcedomain.Resource) []resourcedomain.Resource {
	out := make([]resourcedomain.Resource, len(in))
	copy(out, in)
	return out
}
