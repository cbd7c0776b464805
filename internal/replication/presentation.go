package replication

import "github.com/udisondev/beastmind/internal/model"

type override struct {
	value   int32
	expires uint64
}

// PresentationCache layers short-lived local overrides (client-side
// prediction, animation hints) over a Mirror. Only presentation code reads it;
// gameplay reads the Mirror. Not safe for concurrent use.
type PresentationCache struct {
	mirror    *Mirror
	overrides map[model.Field]override
}

// NewPresentationCache creates a cache over mirror.
func NewPresentationCache(mirror *Mirror) *PresentationCache {
	return &PresentationCache{
		mirror:    mirror,
		overrides: make(map[model.Field]override),
	}
}

// Override shows v for f until tick now+ttl.
func (c *PresentationCache) Override(f model.Field, v int32, now uint64, ttl uint64) {
	if ttl == 0 {
		return
	}
	c.overrides[f] = override{value: v, expires: now + ttl}
}

// Value returns the presented value of f at tick now. Expired overrides and
// overrides the mirror already agrees with are dropped.
func (c *PresentationCache) Value(f model.Field, now uint64) int32 {
	authoritative := c.mirror.Value(f)
	o, ok := c.overrides[f]
	if !ok {
		return authoritative
	}
	if now >= o.expires || o.value == authoritative {
		delete(c.overrides, f)
		return authoritative
	}
	return o.value
}

// Prune drops every override expired at tick now and returns how many remain.
func (c *PresentationCache) Prune(now uint64) int {
	for f, o := range c.overrides {
		if now >= o.expires {
			delete(c.overrides, f)
		}
	}
	return len(c.overrides)
}

// Clear drops every override.
func (c *PresentationCache) Clear() {
	clear(c.overrides)
}
