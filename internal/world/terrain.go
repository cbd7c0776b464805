package world

import (
	"math"

	"github.com/udisondev/beastmind/internal/model"
)

// raycastStep is the sampling distance along a ray in blocks.
const raycastStep = 0.25

// shelterHeight is how far above a position a roof is searched for.
const shelterHeight = 16.0

// Box is an axis-aligned box in world coordinates.
type Box struct {
	Min, Max model.Vec3
}

// Contains reports whether p lies inside the box (inclusive).
func (b Box) Contains(p model.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

func (b Box) containsColumn(x, z float64) bool {
	return x >= b.Min.X() && x <= b.Max.X() && z >= b.Min.Z() && z <= b.Max.Z()
}

// SetColumnHeight overrides the ground height of the block column at (x, z).
func (w *World) SetColumnHeight(x, z int32, height float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.heights[[2]int32{x, z}] = height
}

// AddObstacle adds a solid box.
func (w *World) AddObstacle(b Box) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.obstacles = append(w.obstacles, b)
}

// AddLiquid adds a liquid volume.
func (w *World) AddLiquid(b Box) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.liquids = append(w.liquids, b)
}

// AddHazard adds a dangerous volume (lava, fire, void).
func (w *World) AddHazard(b Box) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hazards = append(w.hazards, b)
}

// GroundHeight implements View.
func (w *World) GroundHeight(x, z float64) float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.groundHeightLocked(x, z)
}

func (w *World) groundHeightLocked(x, z float64) float64 {
	if h, ok := w.heights[[2]int32{int32(math.Floor(x)), int32(math.Floor(z))}]; ok {
		return h
	}
	return w.groundLevel
}

// solidLocked reports whether p is below ground or inside an obstacle.
func (w *World) solidLocked(p model.Vec3) bool {
	if p.Y() < w.groundHeightLocked(p.X(), p.Z()) {
		return true
	}
	for _, b := range w.obstacles {
		if b.Contains(p) {
			return true
		}
	}
	return false
}

// Solid reports whether p is inside terrain.
func (w *World) Solid(p model.Vec3) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.solidLocked(p)
}

// Raycast implements View.
func (w *World) Raycast(from, to model.Vec3) (float64, bool) {
	seg := to.Sub(from)
	length := seg.Len()
	if length == 0 {
		return 1, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	steps := int(math.Ceil(length / raycastStep))
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if w.solidLocked(from.Add(seg.Mul(t))) {
			return float64(i-1) / float64(steps), true
		}
	}
	return 1, false
}

// LineOfSight implements View.
func (w *World) LineOfSight(from, to model.Vec3) bool {
	_, hit := w.Raycast(from, to)
	return !hit
}

// IsLiquid implements View.
func (w *World) IsLiquid(pos model.Vec3) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, b := range w.liquids {
		if b.Contains(pos) {
			return true
		}
	}
	return false
}

// DangerBelow implements View: a hazard volume within depth under pos.
func (w *World) DangerBelow(pos model.Vec3, depth float64) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, b := range w.hazards {
		if !b.containsColumn(pos.X(), pos.Z()) {
			continue
		}
		if b.Max.Y() <= pos.Y()+0.5 && b.Max.Y() >= pos.Y()-depth {
			return true
		}
		if b.Contains(pos) {
			return true
		}
	}
	return false
}

// IsSheltered implements View: a solid obstacle directly above pos.
func (w *World) IsSheltered(pos model.Vec3) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, b := range w.obstacles {
		if !b.containsColumn(pos.X(), pos.Z()) {
			continue
		}
		if b.Min.Y() > pos.Y() && b.Min.Y() <= pos.Y()+shelterHeight {
			return true
		}
	}
	return false
}
