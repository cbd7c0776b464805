package world

import (
	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/model"
)

// View is the world query surface the behavior core consumes.
// Implementations must be safe for concurrent readers.
type View interface {
	Weather() model.Weather
	IsDaytime() bool
	GroundHeight(x, z float64) float64

	// Raycast traces from→to and returns the clear fraction of the segment
	// (1 when nothing was hit).
	Raycast(from, to model.Vec3) (fraction float64, hit bool)
	LineOfSight(from, to model.Vec3) bool

	IsLiquid(pos model.Vec3) bool
	DangerBelow(pos model.Vec3, depth float64) bool
	IsSheltered(pos model.Vec3) bool

	// Nearby calls fn for every live entity of kind within radius of center.
	// KindUnknown matches every kind. fn returning false stops the scan.
	Nearby(center model.Vec3, radius float64, kind model.Kind, fn func(model.Entity) bool)
	Lookup(id uuid.UUID) (model.Entity, bool)
}
