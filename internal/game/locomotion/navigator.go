package locomotion

import (
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/world"
)

// Path is a route produced by a Navigator. Points are ordered from the first
// waypoint to the destination.
type Path struct {
	Points []model.Vec3
}

// Len returns the number of waypoints.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Points)
}

// Final returns the destination point.
func (p *Path) Final() (model.Vec3, bool) {
	if p.Len() == 0 {
		return model.Vec3{}, false
	}
	return p.Points[len(p.Points)-1], true
}

// Navigator is the path/navigation service. The core decides when to move
// and how fast; the navigator decides the route.
type Navigator interface {
	// MoveTo starts navigating to target. Returns false if the request was refused.
	MoveTo(target model.Vec3, speed float64) bool
	Stop()
	IsDone() bool
	IsStuck() bool
	// CreatePath returns a path that ends within radius of target, or nil.
	CreatePath(target model.Vec3, radius float64) *Path
	// Steer returns the point to head for this tick from pos.
	// Returns false when nothing is being navigated.
	Steer(pos model.Vec3) (model.Vec3, bool)
}

// DirectNavigator steers straight at the target. Ground mode clamps targets
// onto the terrain; air mode refuses targets behind terrain.
type DirectNavigator struct {
	view   world.View
	air    bool
	arrive float64
	// giveUp is the number of ticks without progress after which IsStuck reports true.
	giveUp int

	active   bool
	done     bool
	target   model.Vec3
	speed    float64
	bestDist float64
	idle     int
}

// NewGroundNavigator returns a navigator for walking bodies.
func NewGroundNavigator(view world.View, arrive float64, giveUpTicks int) *DirectNavigator {
	return &DirectNavigator{view: view, arrive: arrive, giveUp: giveUpTicks}
}

// NewAirNavigator returns a navigator for flying bodies.
func NewAirNavigator(view world.View, arrive float64, giveUpTicks int) *DirectNavigator {
	return &DirectNavigator{view: view, air: true, arrive: arrive, giveUp: giveUpTicks}
}

// MoveTo implements Navigator.
func (n *DirectNavigator) MoveTo(target model.Vec3, speed float64) bool {
	if speed <= 0 {
		return false
	}
	if !n.air {
		if n.view.IsLiquid(target) {
			return false
		}
		target = model.Vec3{target.X(), n.view.GroundHeight(target.X(), target.Z()), target.Z()}
	}

	if !n.active || model.DistanceSquared(n.target, target) > n.arrive*n.arrive {
		n.bestDist = -1
		n.idle = 0
	}
	n.active = true
	n.done = false
	n.target = target
	n.speed = speed
	return true
}

// Stop implements Navigator.
func (n *DirectNavigator) Stop() {
	n.active = false
	n.idle = 0
	n.bestDist = -1
}

// IsDone implements Navigator.
func (n *DirectNavigator) IsDone() bool {
	return n.done || !n.active
}

// IsStuck implements Navigator.
func (n *DirectNavigator) IsStuck() bool {
	return n.active && n.giveUp > 0 && n.idle >= n.giveUp
}

// CreatePath implements Navigator.
func (n *DirectNavigator) CreatePath(target model.Vec3, radius float64) *Path {
	if !n.air {
		if n.view.IsLiquid(target) {
			return nil
		}
		target = model.Vec3{target.X(), n.view.GroundHeight(target.X(), target.Z()), target.Z()}
	}
	return &Path{Points: []model.Vec3{target}}
}

// Steer implements Navigator.
func (n *DirectNavigator) Steer(pos model.Vec3) (model.Vec3, bool) {
	if !n.active || n.done {
		return model.Vec3{}, false
	}

	var dist float64
	if n.air {
		dist = model.DistanceSquared(pos, n.target)
	} else {
		dist = model.HorizontalDistanceSquared(pos, n.target)
	}
	if dist <= n.arrive*n.arrive {
		n.done = true
		return model.Vec3{}, false
	}

	// progress is measured against the best distance reached so far
	const minProgress = 0.01
	if n.bestDist < 0 || dist < n.bestDist-minProgress {
		n.bestDist = dist
		n.idle = 0
	} else {
		n.idle++
	}
	return n.target, true
}

// Target returns the current navigation target.
func (n *DirectNavigator) Target() (model.Vec3, bool) {
	return n.target, n.active
}
