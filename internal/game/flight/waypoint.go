package flight

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/world"
)

// SelectWaypoint picks a point ahead of yaw at ground height + altitude.
// A candidate is accepted when the ray from pos clears at least
// MinClearFraction of the distance. When every candidate fails it returns
// the point straight above pos and false.
func SelectWaypoint(view world.View, rnd ai.Rand, cfg Config, pos model.Vec3, yaw, altitude float64) (model.Vec3, bool) {
	spread := mgl64.DegToRad(cfg.WaypointSpread)

	for range cfg.WaypointCandidates {
		heading := yaw + (rnd.Float64()*2-1)*spread
		dist := cfg.WaypointDistance * (0.5 + 0.5*rnd.Float64())

		p := pos.Add(model.DirectionOf(heading, 0).Mul(dist))
		p = model.Vec3{p.X(), view.GroundHeight(p.X(), p.Z()) + altitude, p.Z()}

		if frac, _ := view.Raycast(pos, p); frac >= cfg.MinClearFraction {
			return p, true
		}
	}
	return pos.Add(model.Up.Mul(altitude)), false
}
