package flight

import (
	"log/slog"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/game/locomotion"
	"github.com/udisondev/beastmind/internal/model"
)

// Phase is the flight decision state.
type Phase int

const (
	PhaseGrounded Phase = iota
	PhaseTakeoff
	PhaseAirborne
	PhaseLanding
)

func (p Phase) String() string {
	switch p {
	case PhaseGrounded:
		return "grounded"
	case PhaseTakeoff:
		return "takeoff"
	case PhaseAirborne:
		return "airborne"
	case PhaseLanding:
		return "landing"
	default:
		return "unknown"
	}
}

// Decision is the flight state machine: Grounded → Takeoff →
// Airborne(Glide|Powered|Hover) → Landing → Grounded.
//
// It owns flying, takeoff, landing, hovering and flightMode. It holds MOVE
// only while off the ground; while grounded it just rolls for takeoff from
// CanStart. A preempted flight keeps its phase and resumes when the
// behavior starts again.
type Decision struct {
	host ai.Host
	cfg  Config

	phase  Phase
	reason string

	takeoffRequested bool
	landingRequested bool

	decideIn   int
	waypointIn int
	waypoint   bool
	hoverLeft  int
	stuck      int
}

// NewDecision creates a grounded flight decision behavior.
// The first roll is jittered so that agents spawned together do not decide in lockstep.
func NewDecision(host ai.Host, cfg Config) *Decision {
	return &Decision{
		host:     host,
		cfg:      cfg,
		decideIn: host.Rand().IntN(cfg.DecisionInterval + cfg.DecisionJitter + 1),
	}
}

func (d *Decision) Name() string                  { return "flight" }
func (d *Decision) Flags() ai.Flag                { return ai.FlagMove }
func (d *Decision) RequiresUpdateEveryTick() bool { return true }

// Phase returns the current phase.
func (d *Decision) Phase() Phase {
	return d.phase
}

// Stuck returns the waypoint stuck counter.
func (d *Decision) Stuck() int {
	return d.stuck
}

// SetStuck restores the waypoint stuck counter.
func (d *Decision) SetStuck(n int) {
	d.stuck = max(n, 0)
}

// HoverLeft returns the remaining ticks of the current hover, zero when not
// hovering.
func (d *Decision) HoverLeft() int {
	return d.hoverLeft
}

// SetHoverLeft narrows a hover resumed by Restore to n remaining ticks.
// Ignored when not hovering.
func (d *Decision) SetHoverLeft(n int) {
	if d.hoverLeft > 0 && n > 0 {
		d.hoverLeft = min(n, d.cfg.HoverTicks)
	}
}

// RequestTakeoff asks for a takeoff on the next evaluation (rider, command).
// Ignored unless grounded.
func (d *Decision) RequestTakeoff() {
	if d.phase == PhaseGrounded {
		d.takeoffRequested = true
	}
}

// RequestLanding asks an airborne creature to land.
func (d *Decision) RequestLanding() {
	if d.phase == PhaseAirborne || d.phase == PhaseTakeoff {
		d.landingRequested = true
	}
}

func (d *Decision) CanStart() bool {
	if d.phase != PhaseGrounded {
		return !d.host.Ridden()
	}

	requested := d.takeoffRequested
	d.takeoffRequested = false
	if !d.mayTakeOff() {
		return false
	}

	pos := d.host.Body().Position()
	switch {
	case requested:
		d.reason = "request"
		return true
	case d.host.World().DangerBelow(pos, d.cfg.DangerDepth):
		d.reason = "danger"
		return true
	}

	weather := d.host.World().Weather()
	timers := d.host.Timers()
	if left := d.cfg.LandingCooldownFor(weather); timers.LandingCooldown > left {
		timers.LandingCooldown = left
	}
	if timers.LandingCooldown > 0 {
		return false
	}

	if d.ownerFar() {
		d.reason = "owner"
		return true
	}

	d.decideIn--
	if d.decideIn > 0 {
		return false
	}
	interval := d.nextDecision()
	chance := d.cfg.TakeoffChance * float64(interval) * d.cfg.Weather(weather).TakeoffBias
	if d.host.Rand().Float64() > 1-chance {
		d.reason = "roll"
		return true
	}
	return false
}

func (d *Decision) mayTakeOff() bool {
	h := d.host
	state := h.State()
	return h.CanFly() &&
		!h.Ridden() &&
		!h.SitOrdered() &&
		!state.Sitting() &&
		state.SleepPhase() == model.SleepAwake &&
		state.AttackPhase() == model.AttackIdle
}

func (d *Decision) ownerFar() bool {
	if d.cfg.OwnerTakeoffDistance <= 0 {
		return false
	}
	owner, ok := ai.OwnerAlive(d.host)
	if !ok {
		return false
	}
	limit := d.cfg.OwnerTakeoffDistance
	return model.HorizontalDistanceSquared(owner.Position(), d.host.Body().Position()) > limit*limit
}

// nextDecision rearms the decision countdown and returns the interval used.
func (d *Decision) nextDecision() int {
	interval := d.cfg.DecisionInterval + d.host.Rand().IntN(d.cfg.DecisionJitter+1)
	d.decideIn = interval
	return interval
}

func (d *Decision) CanContinue() bool {
	return d.phase != PhaseGrounded && !d.host.Ridden()
}

func (d *Decision) Start() {
	if d.phase == PhaseGrounded {
		d.takeoff(false)
		return
	}
	// resuming after preemption
	d.host.Motion().Sync()
	d.waypointIn = 0
	if d.phase == PhaseLanding {
		d.descend()
	}
}

func (d *Decision) Stop() {
	d.host.Motion().Stop()
	d.waypoint = false
}

func (d *Decision) Tick() {
	d.advance(false)
}

// TickRidden advances the machine while a rider drives the body. The rider
// layer calls it instead of the scheduler; no waypoints are chosen.
func (d *Decision) TickRidden() {
	if d.phase == PhaseGrounded {
		requested := d.takeoffRequested
		d.takeoffRequested = false
		if requested && d.host.CanFly() {
			d.reason = "rider"
			d.takeoff(true)
		}
		return
	}
	d.advance(true)
}

func (d *Decision) advance(ridden bool) {
	timers := d.host.Timers()

	switch d.phase {
	case PhaseGrounded:
		return

	case PhaseTakeoff:
		timers.FlightStateTicks++
		if d.landingRequested {
			d.land(ridden, "request")
			return
		}
		if timers.FlightStateTicks >= d.cfg.TakeoffTicks || (!ridden && d.host.Motion().IsDone()) {
			d.enterAirborne()
		}

	case PhaseAirborne:
		if reason, ok := d.shouldLand(ridden); ok {
			d.land(ridden, reason)
			return
		}
		if ridden {
			d.updateMode()
			return
		}
		d.fly()

	case PhaseLanding:
		if d.host.Body().OnGround() {
			timers.FlightStateTicks++
		} else {
			timers.FlightStateTicks = 0
		}
		if timers.FlightStateTicks >= d.cfg.SettleTicks {
			d.touchdown()
		}
	}
}

func (d *Decision) takeoff(ridden bool) {
	h := d.host
	state := h.State()

	state.SetFlying(true)
	state.SetTakeoff(true)
	state.SetFlightMode(model.FlightTakeoff)
	h.Motion().SwitchToAir()
	h.Timers().FlightStateTicks = 0

	d.phase = PhaseTakeoff
	d.landingRequested = false
	d.waypoint = false
	d.hoverLeft = 0

	if !ridden {
		climb := h.Body().Position().Add(model.Up.Mul(d.cfg.TakeoffClimb))
		h.Motion().MoveTo(climb, h.Motion().Profile().CruiseSpeed)
	}
	h.Animate("takeoff")

	if ai.IsDebugEnabled() {
		slog.Debug("takeoff", "agent", h.ID(), "reason", d.reason)
	}
}

func (d *Decision) enterAirborne() {
	d.host.State().SetTakeoff(false)
	d.host.Timers().FlightStateTicks = 0
	d.phase = PhaseAirborne
	d.waypointIn = 0
	d.waypoint = false
	d.decideIn = d.cfg.DecisionInterval
	d.updateMode()
}

// shouldLand evaluates the landing conditions. The continue roll only happens
// on decision ticks.
func (d *Decision) shouldLand(ridden bool) (string, bool) {
	h := d.host
	if d.landingRequested {
		return "request", true
	}
	if ridden {
		// the rider brought the body down
		if h.Body().OnGround() {
			return "ground", true
		}
		return "", false
	}
	if h.SitOrdered() {
		return "sit", true
	}
	if !h.CanFly() {
		return "grounded species", true
	}

	pos := h.Body().Position()
	danger := h.World().DangerBelow(pos, d.cfg.DangerDepth)
	if !danger && d.youngNearby(pos) {
		return "young", true
	}

	d.decideIn--
	if d.decideIn > 0 {
		return "", false
	}
	d.nextDecision()
	if danger || d.ownerFar() {
		return "", false
	}
	if h.Rand().Float64() >= d.cfg.Weather(h.World().Weather()).ContinueChance {
		return "roll", true
	}
	return "", false
}

func (d *Decision) youngNearby(pos model.Vec3) bool {
	if d.cfg.ProtectRadius <= 0 {
		return false
	}
	found := false
	d.host.World().Nearby(pos, d.cfg.ProtectRadius, model.KindCreature, func(e model.Entity) bool {
		if e.ID() == d.host.ID() {
			return true
		}
		if y, ok := e.(model.Young); ok && y.IsYoung() {
			found = true
			return false
		}
		return true
	})
	return found
}

func (d *Decision) fly() {
	h := d.host
	motion := h.Motion()

	if d.hoverLeft > 0 {
		d.hoverLeft--
		if d.hoverLeft > 0 {
			return
		}
		h.State().SetHovering(false)
		d.waypointIn = 0
	}

	switch {
	case motion.IsStuck():
		d.stuck++
		motion.ClearStuck()
		d.waypointIn = 0
	case d.waypoint && motion.IsDone():
		d.stuck = 0
		d.waypoint = false
		if motion.Profile().MinSpeedFactor == 0 && d.cfg.HoverTicks > 0 {
			d.hover()
			return
		}
		d.waypointIn = 0
	}
	d.updateMode()

	d.waypointIn--
	if d.waypointIn > 0 {
		return
	}
	d.waypointIn = d.waypointInterval()

	point := d.nextWaypoint()
	if motion.MoveTo(point, motion.Profile().CruiseSpeed) {
		d.waypoint = true
	}
}

// waypointInterval shrinks with the stuck counter.
func (d *Decision) waypointInterval() int {
	return max(d.cfg.MinWaypointInterval, d.cfg.WaypointInterval/(1+d.stuck))
}

func (d *Decision) nextWaypoint() model.Vec3 {
	h := d.host
	body := h.Body()
	pos := body.Position()
	altitude := d.cfg.CruiseAltitude * d.cfg.Weather(h.World().Weather()).AltitudeScale

	if d.ownerFar() {
		owner, _ := ai.OwnerAlive(h)
		o := owner.Position()
		return model.Vec3{o.X(), h.World().GroundHeight(o.X(), o.Z()) + altitude, o.Z()}
	}

	point, ok := SelectWaypoint(h.World(), h.Rand(), d.cfg, pos, body.Yaw(), altitude)
	if !ok {
		d.stuck++
		if ai.IsDebugEnabled() {
			slog.Debug("no clear waypoint, climbing", "agent", h.ID(), "stuck", d.stuck)
		}
	}
	return point
}

func (d *Decision) hover() {
	d.hoverLeft = d.cfg.HoverTicks
	d.host.Motion().Stop()
	d.host.State().SetHovering(true)
	d.host.State().SetFlightMode(model.FlightHover)
}

// updateMode reports glide while sinking and powered flight otherwise.
func (d *Decision) updateMode() {
	h := d.host
	if d.hoverLeft > 0 {
		return
	}
	mode := model.FlightPowered
	if h.Motion().Profile().Name == locomotion.ProfileGlider || h.Body().Velocity().Y() < -d.cfg.SinkRate {
		mode = model.FlightGlide
	}
	h.State().SetFlightMode(mode)
}

func (d *Decision) land(ridden bool, reason string) {
	h := d.host
	state := h.State()

	state.SetLanding(true)
	if state.FlightMode() == model.FlightTakeoff || state.FlightMode() == model.FlightHover {
		state.SetFlightMode(model.FlightPowered)
	}
	h.Timers().FlightStateTicks = 0
	d.phase = PhaseLanding
	d.landingRequested = false
	d.hoverLeft = 0
	d.waypoint = false

	if !ridden {
		d.descend()
	}

	if ai.IsDebugEnabled() {
		slog.Debug("landing", "agent", h.ID(), "reason", reason)
	}
}

// descend drops the body straight down under gravity, steering to a point
// below the terrain so the navigator never arrives before ground contact.
func (d *Decision) descend() {
	h := d.host
	body := h.Body()
	pos := body.Position()
	ground := h.World().GroundHeight(pos.X(), pos.Z())

	body.SetNoGravity(false)
	h.Motion().MoveTo(model.Vec3{pos.X(), ground - 1, pos.Z()}, h.Motion().Profile().CruiseSpeed)
}

func (d *Decision) touchdown() {
	h := d.host
	state := h.State()

	state.SetFlying(false)
	state.SetLanding(false)
	h.Motion().Stop()
	h.Motion().SwitchToGround()
	h.Timers().FlightStateTicks = 0
	h.Timers().LandingCooldown = d.cfg.LandingCooldownFor(h.World().Weather())

	d.phase = PhaseGrounded
	d.waypoint = false
	d.stuck = 0
	h.Animate("land")
}

// ForceGround puts the machine into its safe grounded state synchronously
// (death, mount). The body falls under gravity.
func (d *Decision) ForceGround() {
	h := d.host
	state := h.State()

	state.SetLanding(false)
	state.SetFlying(false)
	h.Motion().Stop()
	h.Motion().SwitchToGround()
	h.Timers().FlightStateTicks = 0

	d.phase = PhaseGrounded
	d.takeoffRequested = false
	d.landingRequested = false
	d.waypoint = false
	d.hoverLeft = 0
}

// Restore normalizes a loaded flight state. Takeoff and landing never resume:
// they become grounded with a landing cooldown. Airborne flight persists, and
// a hover resumes with a full HoverTicks budget until SetHoverLeft narrows it.
func (d *Decision) Restore() {
	h := d.host
	state := h.State()

	switch {
	case !state.Flying():
		d.ForceGround()
	case state.Takeoff() || state.Landing() || state.FlightMode() == model.FlightTakeoff:
		d.ForceGround()
		h.Timers().LandingCooldown = d.cfg.LandingCooldown
	default:
		d.phase = PhaseAirborne
		d.hoverLeft = 0
		d.waypointIn = 0
		d.waypoint = false
		h.Motion().SwitchToAir()
		if state.Hovering() && d.cfg.HoverTicks > 0 {
			d.hover()
			return
		}
		state.SetHovering(false)
		d.updateMode()
	}
}
