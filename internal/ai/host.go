package ai

import (
	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/game/locomotion"
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/world"
)

// Host is the agent a behavior acts for (non-owning back-reference).
type Host interface {
	ID() uuid.UUID
	Species() string

	Body() model.Body
	State() *model.ReplicatedState
	Timers() *model.AgentTimers
	Motion() *locomotion.Controller
	World() world.View
	Rand() Rand

	// Animate fires a named animation/sound trigger.
	Animate(trigger string)

	Owner() (model.Entity, bool)
	Target() (model.Entity, bool)
	SetTarget(e model.Entity)
	ClearTarget()
	LastAttacker() (model.Entity, bool)

	SitOrdered() bool
	Ridden() bool
	CanFly() bool
}

// TargetAlive returns the host's target if it still exists and is alive.
func TargetAlive(h Host) (model.Entity, bool) {
	t, ok := h.Target()
	if !ok || t == nil || !t.Alive() {
		return nil, false
	}
	return t, true
}

// OwnerAlive returns the host's owner if it still exists and is alive.
func OwnerAlive(h Host) (model.Entity, bool) {
	o, ok := h.Owner()
	if !ok || o == nil || !o.Alive() {
		return nil, false
	}
	return o, true
}

// EyePosition returns the point line-of-sight checks are made from.
func EyePosition(e model.Entity) model.Vec3 {
	return e.Position().Add(model.Up.Mul(e.Radius()))
}
