package world

import (
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/model"
)

// Region holds the objects whose position falls into one grid column.
type Region struct {
	key RegionKey

	mu      sync.RWMutex
	objects map[uuid.UUID]*model.WorldObject
}

// NewRegion creates an empty region.
func NewRegion(key RegionKey) *Region {
	return &Region{
		key:     key,
		objects: make(map[uuid.UUID]*model.WorldObject),
	}
}

// Key returns the region coordinates.
func (r *Region) Key() RegionKey {
	return r.key
}

// Add inserts obj (concurrent-safe).
func (r *Region) Add(obj *model.WorldObject) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[obj.ID()] = obj
}

// Remove deletes obj by id (concurrent-safe).
func (r *Region) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
}

// Len returns the object count.
func (r *Region) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// ForEach iterates over a snapshot of the region's objects.
// If fn returns false, iteration stops.
func (r *Region) ForEach(fn func(*model.WorldObject) bool) bool {
	r.mu.RLock()
	snapshot := make([]*model.WorldObject, 0, len(r.objects))
	for _, obj := range r.objects {
		snapshot = append(snapshot, obj)
	}
	r.mu.RUnlock()

	for _, obj := range snapshot {
		if !fn(obj) {
			return false
		}
	}
	return true
}
