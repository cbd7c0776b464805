package creature

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/config"
	"github.com/udisondev/beastmind/internal/game/combat"
	"github.com/udisondev/beastmind/internal/game/dodge"
	"github.com/udisondev/beastmind/internal/game/flight"
	"github.com/udisondev/beastmind/internal/game/locomotion"
	"github.com/udisondev/beastmind/internal/game/rider"
	"github.com/udisondev/beastmind/internal/game/sleep"
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/replication"
	"github.com/udisondev/beastmind/internal/world"
)

// Scheduler ranks. Lower wins: attack, sleep and dodge outrank every
// ordinary behavior.
const (
	PriorityAttack    = 1
	PrioritySleep     = 2
	PriorityDodge     = 3
	PriorityFlight    = 4
	PriorityPanic     = 5
	PrioritySit       = 6
	PriorityFlee      = 7
	PriorityMelee     = 8
	PriorityRanged    = 9
	PriorityFollow    = 10
	PriorityBreed     = 11
	PriorityWander    = 12
	PriorityRetaliate = 13
)

// Options configure a new Agent.
type Options struct {
	// ID defaults to a random UUID.
	ID       uuid.UUID
	Species  config.Species
	World    *world.World
	Position model.Vec3
	Yaw      float64

	// Seed feeds the agent's PCG source. Rand overrides it (tests).
	Seed uint64
	Rand ai.Rand

	Animator       model.Animator
	Sink           replication.Sink
	ResyncInterval int

	// Activate is called on the first Active tick of every attack.
	Activate combat.ActivateFunc
	// Mates finds breeding partners; nil disables breeding.
	Mates ai.MateFunc
	// OnBreed is called when two partners bred.
	OnBreed ai.BreedFunc
}

// Agent is one simulated creature: body, replicated state, timers, scheduler
// and every behavior machine, ticked by the TickManager.
type Agent struct {
	mu sync.Mutex

	id      uuid.UUID
	species config.Species
	world   *world.World
	body    *model.WorldObject

	state    *model.ReplicatedState
	timers   *model.AgentTimers
	motion   *locomotion.Controller
	sched    *ai.Scheduler
	rnd      ai.Rand
	animator model.Animator

	abilities *combat.Abilities
	attack    *combat.Machine
	sleep     *sleep.Machine
	dodge     *dodge.Reactor
	flight    *flight.Decision
	rider     *rider.Layer
	publisher *replication.Publisher

	owner        model.Entity
	target       model.Entity
	lastAttacker model.Entity
	sitOrdered   bool

	tick   uint64
	dead   bool
	inLove atomic.Bool
}

var (
	_ ai.Host       = (*Agent)(nil)
	_ ai.Controller = (*Agent)(nil)
	_ ai.Mate       = (*Agent)(nil)
)

// New spawns an agent into opts.World.
func New(opts Options) (*Agent, error) {
	sp := opts.Species
	if opts.World == nil {
		return nil, errors.New("creating agent: world is required")
	}
	if err := sp.Validate(); err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}
	profile, err := sp.FlightProfile()
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}

	id := opts.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	body := model.NewWorldObject(id, model.KindCreature, sp.Name, opts.Position, sp.Radius, sp.MaxHealth)
	body.SetYaw(opts.Yaw)

	a := &Agent{
		id:       id,
		species:  sp,
		world:    opts.World,
		body:     body,
		state:    model.NewReplicatedState(),
		timers:   &model.AgentTimers{},
		sched:    ai.NewScheduler(id.String(), sp.Behaviors.Scheduler.EvaluateInterval),
		rnd:      opts.Rand,
		animator: opts.Animator,
	}
	if a.rnd == nil {
		a.rnd = ai.NewRand(opts.Seed)
	}
	if a.animator == nil {
		a.animator = model.NopAnimator{}
	}

	mv := sp.Movement
	a.motion = locomotion.NewController(body, a.state, mv, profile,
		locomotion.NewGroundNavigator(opts.World, mv.ArriveRadius, mv.GiveUpTicks),
		locomotion.NewAirNavigator(opts.World, mv.ArriveRadius, mv.GiveUpTicks))

	if err := a.assemble(opts); err != nil {
		return nil, err
	}

	a.publisher = replication.NewPublisher(id, a.state, opts.Sink, opts.ResyncInterval)
	if err := opts.World.AddObject(body); err != nil {
		return nil, fmt.Errorf("spawning agent %s: %w", id, err)
	}
	return a, nil
}

// assemble builds the machines and registers every behavior.
func (a *Agent) assemble(opts Options) error {
	sp := a.species
	bc := sp.Behaviors

	table, err := combat.NewTable(sp.Combat.Attacks)
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}
	a.abilities = combat.NewAbilities(opts.Activate)
	a.attack = combat.NewMachine(a, table, a.abilities)
	a.sched.Add(PriorityAttack, a.attack)

	melee, err := combat.NewMeleeApproach(a, a.attack, sp.Combat)
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}
	a.sched.Add(PriorityMelee, melee)

	if sp.Combat.Ranged.Enabled {
		ranged, err := combat.NewRangedCoordinate(a, a.attack, sp.Combat)
		if err != nil {
			return fmt.Errorf("creating agent: %w", err)
		}
		a.sched.Add(PriorityRanged, ranged)
	}

	// Interfaces stay nil for absent machines.
	var (
		waker rider.Waker
		fl    rider.Flight
	)
	if sp.Sleep.Enabled {
		a.sleep = sleep.NewMachine(a, sp.Sleep)
		a.sched.Add(PrioritySleep, a.sleep)
		waker = a.sleep
	}
	if sp.Dodge.Enabled {
		a.dodge = dodge.NewReactor(a, sp.Dodge)
		a.sched.Add(PriorityDodge, a.dodge)
	}
	if sp.CanFly && sp.Flight.Enabled {
		a.flight = flight.NewDecision(a, sp.Flight)
		a.sched.Add(PriorityFlight, a.flight)
		fl = a.flight
	}
	a.rider = rider.NewLayer(a, a.sched, sp.Rider, a.attack, waker, fl)

	a.sched.Add(PrioritySit, ai.NewSit(a))
	if bc.Panic.Enabled {
		a.sched.Add(PriorityPanic, ai.NewPanic(a, bc.Panic))
	}
	if bc.Flee.Enabled {
		a.sched.Add(PriorityFlee, ai.NewFlee(a, bc.Flee))
	}
	if bc.Follow.Enabled {
		a.sched.Add(PriorityFollow, ai.NewFollowOwner(a, bc.Follow))
	}
	if bc.Breed.Enabled && opts.Mates != nil {
		a.sched.Add(PriorityBreed, ai.NewBreed(a, bc.Breed, opts.Mates, opts.OnBreed))
	}
	if bc.Wander.Enabled {
		a.sched.Add(PriorityWander, ai.NewWander(a, bc.Wander))
	}
	if bc.Retaliate.Enabled {
		a.sched.Add(PriorityRetaliate, ai.NewRetaliate(a, bc.Retaliate))
	}
	return nil
}

// Start implements ai.Controller.
func (a *Agent) Start() {
	slog.Info("agent started", "agent", a.id, "species", a.species.Name, "behaviors", a.sched.Len())
}

// Stop implements ai.Controller. Every machine is put into its safe state.
func (a *Agent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.rider.Dismount()
	a.sched.StopAll()
	a.motion.Stop()
	slog.Info("agent stopped", "agent", a.id)
}

// Tick implements ai.Controller. Order: death, timers, rider, scheduler,
// motion, replication.
func (a *Agent) Tick() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tick++
	if a.dead {
		return
	}
	if !a.body.Alive() {
		a.die("body died")
		a.publisher.Publish(a.tick)
		return
	}

	a.timers.Tick()
	a.abilities.Tick()
	a.rider.Tick()
	a.sched.Tick()
	a.motion.Apply()
	a.motion.DeriveState()

	a.inLove.Store(a.timers.InLove > 0)
	a.publisher.Publish(a.tick)
}

// die forces every machine into its safe state. Nothing ticks afterwards.
func (a *Agent) die(reason string) {
	a.dead = true
	a.rider.Dismount()
	a.attack.Cancel()
	if a.sleep != nil {
		a.sleep.WakeNow("death")
	}
	if a.flight != nil {
		a.flight.ForceGround()
	}
	a.sched.StopAll()
	a.motion.Stop()
	a.motion.CancelBias()
	a.state.SetSitting(false)
	a.target = nil
	a.inLove.Store(false)

	slog.Info("agent died", "agent", a.id, "reason", reason)
}

// ai.Host

func (a *Agent) ID() uuid.UUID                  { return a.id }
func (a *Agent) Species() string                { return a.species.Name }
func (a *Agent) Body() model.Body               { return a.body }
func (a *Agent) State() *model.ReplicatedState  { return a.state }
func (a *Agent) Timers() *model.AgentTimers     { return a.timers }
func (a *Agent) Motion() *locomotion.Controller { return a.motion }
func (a *Agent) World() world.View              { return a.world }
func (a *Agent) Rand() ai.Rand                  { return a.rnd }
func (a *Agent) SitOrdered() bool               { return a.sitOrdered }
func (a *Agent) Ridden() bool                   { return a.rider.Ridden() }
func (a *Agent) CanFly() bool                   { return a.species.CanFly }

func (a *Agent) Animate(trigger string) {
	a.animator.Fire(a.id, trigger)
}

func (a *Agent) Owner() (model.Entity, bool)        { return a.owner, a.owner != nil }
func (a *Agent) Target() (model.Entity, bool)       { return a.target, a.target != nil }
func (a *Agent) SetTarget(e model.Entity)           { a.target = e }
func (a *Agent) ClearTarget()                       { a.target = nil }
func (a *Agent) LastAttacker() (model.Entity, bool) { return a.lastAttacker, a.lastAttacker != nil }

// ai.Mate and model.Entity, readable from other agents' ticks.

func (a *Agent) Kind() model.Kind     { return model.KindCreature }
func (a *Agent) Position() model.Vec3 { return a.body.Position() }
func (a *Agent) Velocity() model.Vec3 { return a.body.Velocity() }
func (a *Agent) Radius() float64      { return a.body.Radius() }
func (a *Agent) Alive() bool          { return a.body.Alive() }
func (a *Agent) InLove() bool         { return a.inLove.Load() }

// Scheduler exposes the agent's scheduler for inspection.
func (a *Agent) Scheduler() *ai.Scheduler { return a.sched }

// Config returns the species tuning the agent was built with.
func (a *Agent) Config() config.Species { return a.species }

// Ticks returns the number of ticks processed.
func (a *Agent) Ticks() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tick
}

// Dead reports whether the agent died.
func (a *Agent) Dead() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dead
}

// FlightPhase returns the flight machine phase; grounded species report
// PhaseGrounded.
func (a *Agent) FlightPhase() flight.Phase {
	if a.flight == nil {
		return flight.PhaseGrounded
	}
	return a.flight.Phase()
}

// Abilities exposes the cooldown table.
func (a *Agent) Abilities() *combat.Abilities { return a.abilities }

// SetYoung marks the agent as a juvenile; fliers stay near juveniles.
func (a *Agent) SetYoung(young bool) {
	a.body.SetYoung(young)
}
