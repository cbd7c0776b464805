package world

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/model"
)

// World is an in-memory world: region grid of objects plus a simple terrain
// (column heights, solid boxes, liquids, hazards). It implements View and is
// safe for concurrent readers while Step runs between ticks.
type World struct {
	mu      sync.RWMutex
	regions map[RegionKey]*Region
	objects map[uuid.UUID]*model.WorldObject
	where   map[uuid.UUID]RegionKey

	groundLevel float64
	heights     map[[2]int32]float64
	obstacles   []Box
	liquids     []Box
	hazards     []Box

	weather atomic.Int32
	daytime atomic.Bool
}

// New creates a flat world with ground at groundLevel, clear weather, daytime.
func New(groundLevel float64) *World {
	w := &World{
		regions:     make(map[RegionKey]*Region),
		objects:     make(map[uuid.UUID]*model.WorldObject),
		where:       make(map[uuid.UUID]RegionKey),
		groundLevel: groundLevel,
		heights:     make(map[[2]int32]float64),
	}
	w.daytime.Store(true)
	return w
}

var _ View = (*World)(nil)

// AddObject adds object to world and its region.
// Returns error if an object with the same id is already present.
func (w *World) AddObject(obj *model.WorldObject) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.objects[obj.ID()]; exists {
		return fmt.Errorf("object %s already in world", obj.ID())
	}

	pos := obj.Position()
	key := CoordToRegion(pos.X(), pos.Z())
	w.objects[obj.ID()] = obj
	w.where[obj.ID()] = key
	w.regionLocked(key).Add(obj)
	return nil
}

// RemoveObject removes object from world and its region.
func (w *World) RemoveObject(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.objects[id]; !ok {
		return
	}
	if key, ok := w.where[id]; ok {
		if r := w.regions[key]; r != nil {
			r.Remove(id)
		}
	}
	delete(w.objects, id)
	delete(w.where, id)
}

// GetObject returns object by ID.
func (w *World) GetObject(id uuid.UUID) (*model.WorldObject, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	obj, ok := w.objects[id]
	return obj, ok
}

// Lookup implements View. Removed objects are not found; dead ones are.
func (w *World) Lookup(id uuid.UUID) (model.Entity, bool) {
	obj, ok := w.GetObject(id)
	if !ok {
		return nil, false
	}
	return obj, true
}

// ObjectCount returns total number of objects in world.
func (w *World) ObjectCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.objects)
}

// Nearby implements View.
func (w *World) Nearby(center model.Vec3, radius float64, kind model.Kind, fn func(model.Entity) bool) {
	radiusSq := radius * radius

	for _, key := range RegionsInRadius(center.X(), center.Z(), radius) {
		w.mu.RLock()
		region := w.regions[key]
		w.mu.RUnlock()
		if region == nil {
			continue
		}

		cont := region.ForEach(func(obj *model.WorldObject) bool {
			if kind != model.KindUnknown && obj.Kind() != kind {
				return true
			}
			if !obj.Alive() {
				return true
			}
			if model.DistanceSquared(obj.Position(), center) > radiusSq {
				return true
			}
			return fn(obj)
		})
		if !cont {
			return
		}
	}
}

// Weather implements View.
func (w *World) Weather() model.Weather {
	return model.Weather(w.weather.Load())
}

// SetWeather changes the weather.
func (w *World) SetWeather(weather model.Weather) {
	w.weather.Store(int32(weather))
}

// IsDaytime implements View.
func (w *World) IsDaytime() bool {
	return w.daytime.Load()
}

// SetDaytime switches day/night.
func (w *World) SetDaytime(day bool) {
	w.daytime.Store(day)
}

// regionLocked returns the region for key, creating it. Caller holds w.mu.
func (w *World) regionLocked(key RegionKey) *Region {
	r := w.regions[key]
	if r == nil {
		r = NewRegion(key)
		w.regions[key] = r
	}
	return r
}

// relocate moves obj into the region matching its current position.
func (w *World) relocate(obj *model.WorldObject) {
	pos := obj.Position()
	key := CoordToRegion(pos.X(), pos.Z())

	w.mu.Lock()
	defer w.mu.Unlock()

	old, ok := w.where[obj.ID()]
	if !ok || old == key {
		return
	}
	if r := w.regions[old]; r != nil {
		r.Remove(obj.ID())
	}
	w.where[obj.ID()] = key
	w.regionLocked(key).Add(obj)
}
