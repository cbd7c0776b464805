package locomotion

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/beastmind/internal/model"
)

// Mode is the active navigation mode.
type Mode int

const (
	ModeGround Mode = iota
	ModeAir
)

func (m Mode) String() string {
	if m == ModeAir {
		return "air"
	}
	return "ground"
}

// Lock reasons.
const (
	LockAttack = "attack"
	LockRider  = "rider"
)

type intent struct {
	active bool
	target model.Vec3
	speed  float64
}

type lookIntent struct {
	active bool
	point  model.Vec3
}

type manualDrive struct {
	active   bool
	velocity model.Vec3
	yaw      float64
}

// Controller owns the ground and air navigation handles and applies the
// current movement intent to the body once per tick.
//
// It is the only writer of running and groundMoveLevel.
type Controller struct {
	body  model.Body
	state *model.ReplicatedState
	cfg   Config

	ground, air Navigator
	groundApply *GroundApplier
	airApply    *AirApplier
	mode        Mode

	move   intent
	look   lookIntent
	manual manualDrive
	locks  map[string]struct{}

	bias      model.Vec3
	biasTicks int
	biasTotal int

	collisionTicks int
	stuck          bool
}

// NewController creates a controller in ground mode.
func NewController(body model.Body, state *model.ReplicatedState, cfg Config, profile FlightProfile, ground, air Navigator) *Controller {
	return &Controller{
		body:        body,
		state:       state,
		cfg:         cfg,
		ground:      ground,
		air:         air,
		groundApply: NewGroundApplier(cfg),
		airApply:    NewAirApplier(profile),
		mode:        ModeGround,
		locks:       make(map[string]struct{}),
	}
}

// Config returns ground tuning.
func (c *Controller) Config() Config {
	return c.cfg
}

// Profile returns the flight profile.
func (c *Controller) Profile() FlightProfile {
	return c.airApply.Profile()
}

// SetProfile swaps the flight profile.
func (c *Controller) SetProfile(p FlightProfile) {
	c.airApply = NewAirApplier(p)
}

// Mode returns the active navigation mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

func (c *Controller) nav() Navigator {
	if c.mode == ModeAir {
		return c.air
	}
	return c.ground
}

func (c *Controller) applier() Applier {
	if c.mode == ModeAir {
		return c.airApply
	}
	return c.groundApply
}

// SwitchToAir activates the air navigator and applier. Idempotent.
func (c *Controller) SwitchToAir() {
	c.switchTo(ModeAir)
}

// SwitchToGround activates the ground navigator and applier. Idempotent.
func (c *Controller) SwitchToGround() {
	c.switchTo(ModeGround)
}

func (c *Controller) switchTo(m Mode) {
	if c.mode == m {
		return
	}
	c.nav().Stop()
	c.mode = m
	c.body.SetNoGravity(m == ModeAir)
	c.resetStuck()

	if c.move.active && !c.Locked() {
		if !c.nav().MoveTo(c.move.target, c.move.speed) {
			c.move.active = false
		}
	}
}

// Sync makes the navigation mode follow ReplicatedState.flying.
func (c *Controller) Sync() {
	if c.state.Flying() {
		c.SwitchToAir()
	} else {
		c.SwitchToGround()
	}
}

// MoveTo sets the intent "move toward target at speed". Refused while locked
// or when the navigator rejects the target.
func (c *Controller) MoveTo(target model.Vec3, speed float64) bool {
	if c.Locked() {
		return false
	}
	if !c.nav().MoveTo(target, speed) {
		return false
	}
	if c.move.active && model.DistanceSquared(c.move.target, target) > c.cfg.ArriveRadius*c.cfg.ArriveRadius {
		c.resetStuck()
	}
	c.move = intent{active: true, target: target, speed: speed}
	return true
}

// Stop clears the movement intent.
func (c *Controller) Stop() {
	c.move = intent{}
	c.nav().Stop()
}

// Moving reports whether a movement intent is set.
func (c *Controller) Moving() bool {
	return c.move.active
}

// Target returns the current movement target.
func (c *Controller) Target() (model.Vec3, bool) {
	return c.move.target, c.move.active
}

// IsDone reports whether the current intent was reached or there is none.
func (c *Controller) IsDone() bool {
	return !c.move.active || c.nav().IsDone()
}

// CreatePath asks the active navigator for a path.
func (c *Controller) CreatePath(target model.Vec3, radius float64) *Path {
	return c.nav().CreatePath(target, radius)
}

// LookAt rotates toward point this tick. Must be re-issued every tick by the
// LOOK holder.
func (c *Controller) LookAt(point model.Vec3) {
	c.look = lookIntent{active: true, point: point}
}

// Lock forbids navigation until every lock is released.
func (c *Controller) Lock(reason string) {
	if _, ok := c.locks[reason]; ok {
		return
	}
	c.locks[reason] = struct{}{}
	c.Stop()
}

// Unlock releases a lock.
func (c *Controller) Unlock(reason string) {
	delete(c.locks, reason)
}

// Locked reports whether any hard lock is held.
func (c *Controller) Locked() bool {
	return len(c.locks) > 0
}

// Locks returns held lock reasons, sorted.
func (c *Controller) Locks() []string {
	return slices.Sorted(maps.Keys(c.locks))
}

// ApplyBias adds impulse to velocity for the next ticks, fading out linearly.
func (c *Controller) ApplyBias(impulse model.Vec3, ticks int) {
	if ticks <= 0 {
		return
	}
	c.bias = impulse
	c.biasTicks = ticks
	c.biasTotal = ticks
}

// Bursting reports whether a velocity bias is still being applied.
func (c *Controller) Bursting() bool {
	return c.biasTicks > 0
}

// CancelBias drops the remaining bias.
func (c *Controller) CancelBias() {
	c.bias = model.Vec3{}
	c.biasTicks = 0
	c.biasTotal = 0
}

// Drive substitutes manual velocity and yaw for this tick, bypassing the
// navigators. Used by the rider layer.
func (c *Controller) Drive(velocity model.Vec3, yaw float64) {
	c.manual = manualDrive{active: true, velocity: velocity, yaw: yaw}
}

// IsStuck reports whether the controller gave up reaching its target.
func (c *Controller) IsStuck() bool {
	return c.stuck
}

// ClearStuck resets stuck detection.
func (c *Controller) ClearStuck() {
	c.resetStuck()
}

func (c *Controller) resetStuck() {
	c.stuck = false
	c.collisionTicks = 0
}

// Apply runs the active applier for this tick. Called once per agent tick
// after the scheduler.
func (c *Controller) Apply() {
	switch {
	case c.manual.active:
		c.body.SetYaw(c.manual.yaw)
		c.body.SetVelocity(c.manual.velocity)
		c.manual = manualDrive{}

	case c.Locked():
		c.nav().Stop()
		c.applier().Apply(c.body, model.Vec3{}, 0, false)

	default:
		c.applyIntent()
	}

	if c.look.active {
		c.applyLook()
		c.look = lookIntent{}
	}

	if c.biasTicks > 0 {
		fade := float64(c.biasTicks) / float64(c.biasTotal)
		c.body.SetVelocity(c.body.Velocity().Add(c.bias.Mul(fade)))
		c.biasTicks--
		if c.biasTicks == 0 {
			c.CancelBias()
		}
	}
}

func (c *Controller) applyIntent() {
	if !c.move.active {
		c.applier().Apply(c.body, model.Vec3{}, 0, false)
		return
	}

	nav := c.nav()
	point, ok := nav.Steer(c.body.Position())
	if !ok {
		c.applier().Apply(c.body, model.Vec3{}, 0, false)
		return
	}
	c.applier().Apply(c.body, point, c.move.speed, true)
	c.detectStuck(nav)
}

func (c *Controller) detectStuck(nav Navigator) {
	if c.body.HorizontalCollision() {
		c.collisionTicks++
	} else {
		c.collisionTicks = 0
	}

	if c.stuck {
		return
	}
	if (c.cfg.StuckTicks > 0 && c.collisionTicks >= c.cfg.StuckTicks) || nav.IsStuck() {
		c.stuck = true
		if debugLoggingEnabled.Load() {
			slog.Debug("locomotion stuck",
				"mode", c.mode,
				"collisionTicks", c.collisionTicks,
				"target", c.move.target)
		}
	}
}

func (c *Controller) applyLook() {
	to := c.look.point.Sub(c.body.Position())
	dir, ok := model.SafeNormalize(to)
	if !ok {
		return
	}

	yawStep := mgl64.DegToRad(c.cfg.MaxYawStep)
	pitchStep := yawStep
	if c.mode == ModeAir {
		p := c.airApply.Profile()
		yawStep = p.yawStep()
		pitchStep = p.pitchStep()
	}
	c.body.SetYaw(model.ApproachAngle(c.body.Yaw(), model.YawOf(dir), yawStep))
	c.body.SetPitch(model.ApproachAngle(c.body.Pitch(), model.PitchOf(dir), pitchStep))
}

// DeriveState writes running and groundMoveLevel from the body's horizontal speed.
func (c *Controller) DeriveState() {
	if c.mode == ModeAir || c.state.Flying() {
		c.state.SetGroundMoveLevel(model.GroundIdle)
		c.state.SetRunning(false)
		return
	}

	speed := model.Horizontal(c.body.Velocity()).Len()
	level := model.GroundIdle
	switch {
	case speed >= c.cfg.RunThreshold:
		level = model.GroundRun
	case speed >= c.cfg.WalkThreshold:
		level = model.GroundWalk
	}
	if c.state.Sitting() {
		level = model.GroundIdle
	}

	c.state.SetGroundMoveLevel(level)
	c.state.SetRunning(level == model.GroundRun)
}
