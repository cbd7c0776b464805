package testutil

import (
	"testing"

	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/game/locomotion"
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/world"
)

// Host is an ai.Host backed by a real in-memory world, for behavior tests.
type Host struct {
	Env    *world.World
	Object *model.WorldObject

	state  *model.ReplicatedState
	timers *model.AgentTimers
	motion *locomotion.Controller
	rnd    ai.Rand

	species  string
	owner    model.Entity
	target   model.Entity
	attacker model.Entity

	sitOrdered bool
	ridden     bool
	canFly     bool

	triggers []string
}

var _ ai.Host = (*Host)(nil)

// NewHost spawns a creature at pos into w and returns its host.
// A nil world creates a flat one at height 0.
func NewHost(tb testing.TB, w *world.World, pos model.Vec3) *Host {
	tb.Helper()
	if w == nil {
		w = world.New(0)
	}

	obj := model.NewWorldObject(uuid.New(), model.KindCreature, "creature", pos, 0.5, 20)
	if err := w.AddObject(obj); err != nil {
		tb.Fatalf("adding creature: %v", err)
	}

	cfg := locomotion.DefaultConfig()
	state := model.NewReplicatedState()
	return &Host{
		Env:     w,
		Object:  obj,
		state:   state,
		timers:  &model.AgentTimers{},
		species: "test",
		rnd:     ai.NewFixedRand(0),
		motion: locomotion.NewController(obj, state, cfg, locomotion.PoweredProfile(),
			locomotion.NewGroundNavigator(w, cfg.ArriveRadius, cfg.GiveUpTicks),
			locomotion.NewAirNavigator(w, cfg.ArriveRadius, cfg.GiveUpTicks)),
	}
}

// Spawn adds another object of kind at pos and returns it.
func Spawn(tb testing.TB, w *world.World, kind model.Kind, pos model.Vec3) *model.WorldObject {
	tb.Helper()
	obj := model.NewWorldObject(uuid.New(), kind, kind.String(), pos, 0.5, 20)
	if err := w.AddObject(obj); err != nil {
		tb.Fatalf("spawning %s: %v", kind, err)
	}
	return obj
}

func (h *Host) ID() uuid.UUID                  { return h.Object.ID() }
func (h *Host) Species() string                { return h.species }
func (h *Host) Body() model.Body               { return h.Object }
func (h *Host) State() *model.ReplicatedState  { return h.state }
func (h *Host) Timers() *model.AgentTimers     { return h.timers }
func (h *Host) Motion() *locomotion.Controller { return h.motion }
func (h *Host) World() world.View             { return h.Env }
func (h *Host) Rand() ai.Rand                  { return h.rnd }

// Animate records the trigger.
func (h *Host) Animate(trigger string) {
	h.triggers = append(h.triggers, trigger)
}

// Triggers returns every fired trigger in order.
func (h *Host) Triggers() []string {
	return h.triggers
}

func (h *Host) Owner() (model.Entity, bool)        { return h.owner, h.owner != nil }
func (h *Host) Target() (model.Entity, bool)       { return h.target, h.target != nil }
func (h *Host) SetTarget(e model.Entity)           { h.target = e }
func (h *Host) ClearTarget()                       { h.target = nil }
func (h *Host) LastAttacker() (model.Entity, bool) { return h.attacker, h.attacker != nil }
func (h *Host) SitOrdered() bool                   { return h.sitOrdered }
func (h *Host) Ridden() bool                       { return h.ridden }
func (h *Host) CanFly() bool                       { return h.canFly }

// SetRand replaces the randomness source.
func (h *Host) SetRand(r ai.Rand) { h.rnd = r }

// SetSpecies sets the species name.
func (h *Host) SetSpecies(s string) { h.species = s }

// SetOwner sets (or clears with nil) the owner.
func (h *Host) SetOwner(e model.Entity) { h.owner = e }

// SetAttacker records the last attacker and marks the host hurt.
func (h *Host) SetAttacker(e model.Entity, hurtTicks int) {
	h.attacker = e
	h.timers.HurtRecently = hurtTicks
}

// OrderSit sets the sit order.
func (h *Host) OrderSit(v bool) { h.sitOrdered = v }

// SetRidden marks the host as ridden.
func (h *Host) SetRidden(v bool) { h.ridden = v }

// SetCanFly marks the species as flying.
func (h *Host) SetCanFly(v bool) { h.canFly = v }

// Step advances timers, applies motion, derives state and steps physics by one tick.
func (h *Host) Step() {
	h.timers.Tick()
	h.motion.Apply()
	h.motion.DeriveState()
	h.Env.Step()
}
