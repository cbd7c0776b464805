package rider

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/game/locomotion"
	"github.com/udisondev/beastmind/internal/model"
)

// Input is the controlling agent's movement input for one tick.
type Input struct {
	Forward float64 // -1..1
	Strafe  float64 // -1..1, positive to the right
	Yaw     float64 // rider look direction, radians
	Sprint  bool
	Jump    bool
	Ascend  bool
	Descend bool
}

// Rider is the controlling agent. The layer keeps a non-owning reference
// and re-validates it every tick.
type Rider interface {
	model.Entity
	Input() Input
}

// AttackCanceler forces the attack machine idle.
type AttackCanceler interface {
	Cancel()
}

// Waker forces the sleep machine awake.
type Waker interface {
	WakeNow(reason string) bool
}

// Flight is the part of the flight decision the rider drives.
type Flight interface {
	ForceGround()
	RequestTakeoff()
	TickRidden()
}

// Config tunes the rider layer.
type Config struct {
	InputLockTicks int     `yaml:"input_lock_ticks"`
	StrafeFactor   float64 `yaml:"strafe_factor"`
	ClimbSpeed     float64 `yaml:"climb_speed"`
}

// DefaultConfig returns rider defaults.
func DefaultConfig() Config {
	return Config{
		InputLockTicks: 10,
		StrafeFactor:   0.5,
		ClimbSpeed:     0.2,
	}
}

// Validate checks rider tuning.
func (c Config) Validate() error {
	if c.InputLockTicks < 0 {
		return fmt.Errorf("rider: input_lock_ticks must be >= 0, got %d", c.InputLockTicks)
	}
	if c.StrafeFactor < 0 || c.StrafeFactor > 1 {
		return fmt.Errorf("rider: strafe_factor must be in [0, 1], got %v", c.StrafeFactor)
	}
	if c.ClimbSpeed <= 0 {
		return fmt.Errorf("rider: climb_speed must be > 0, got %v", c.ClimbSpeed)
	}
	return nil
}

// riderFlags are disabled in the scheduler while ridden.
const riderFlags = ai.FlagMove | ai.FlagLook | ai.FlagJump

// Layer substitutes the rider's input for AI-driven motion while mounted.
// Attack, sleep and flight are optional.
type Layer struct {
	host   ai.Host
	sched  *ai.Scheduler
	cfg    Config
	attack AttackCanceler
	sleep  Waker
	flight Flight

	rider Rider
}

// NewLayer creates an unmounted rider layer.
func NewLayer(host ai.Host, sched *ai.Scheduler, cfg Config, attack AttackCanceler, sleep Waker, flight Flight) *Layer {
	return &Layer{
		host:   host,
		sched:  sched,
		cfg:    cfg,
		attack: attack,
		sleep:  sleep,
		flight: flight,
	}
}

// Ridden reports whether a rider is mounted.
func (l *Layer) Ridden() bool {
	return l.rider != nil
}

// Rider returns the mounted rider.
func (l *Layer) Rider() (Rider, bool) {
	return l.rider, l.rider != nil
}

// Mount puts r in control. Every machine is forced into its safe state
// within the call. Returns false if already ridden or r is not alive.
func (l *Layer) Mount(r Rider) bool {
	if l.rider != nil || r == nil || !r.Alive() || r.ID() == l.host.ID() {
		return false
	}

	if l.attack != nil {
		l.attack.Cancel()
	}
	if l.sleep != nil {
		l.sleep.WakeNow("mounted")
	}
	if l.flight != nil {
		l.flight.ForceGround()
	}
	l.sched.StopAll()
	l.sched.DisableFlags(riderFlags)

	motion := l.host.Motion()
	motion.Stop()
	motion.CancelBias()
	motion.Lock(locomotion.LockRider)

	l.host.State().Reset()
	l.host.Timers().RiderInputLock = l.cfg.InputLockTicks
	l.rider = r

	slog.Info("creature mounted", "agent", l.host.ID(), "rider", r.ID())
	return true
}

// Dismount releases control back to the AI.
func (l *Layer) Dismount() {
	if l.rider == nil {
		return
	}
	riderID := l.rider.ID()
	l.rider = nil

	if l.flight != nil {
		l.flight.ForceGround()
	}
	l.sched.EnableFlags(riderFlags)
	l.host.Motion().Unlock(locomotion.LockRider)
	l.host.Motion().Stop()
	l.host.State().Reset()
	l.host.Timers().RiderInputLock = 0

	slog.Info("creature dismounted", "agent", l.host.ID(), "rider", riderID)
}

// Tick applies the rider's input. Returns false when nobody rides.
// A dead or removed rider is dismounted.
func (l *Layer) Tick() bool {
	if l.rider == nil {
		return false
	}
	if !l.rider.Alive() {
		l.Dismount()
		return false
	}
	if _, ok := l.host.World().Lookup(l.rider.ID()); !ok {
		l.Dismount()
		return false
	}

	if l.host.Timers().RiderInputLock > 0 {
		if l.flight != nil {
			l.flight.TickRidden()
		}
		return true
	}

	in := l.rider.Input()
	if in.Jump && l.flight != nil && l.host.CanFly() && !l.host.State().Flying() {
		l.flight.RequestTakeoff()
	}
	if l.flight != nil {
		l.flight.TickRidden()
	}
	vel, yaw := l.velocity(in)
	l.host.Motion().Drive(vel, yaw)
	return true
}

func (l *Layer) velocity(in Input) (model.Vec3, float64) {
	h := l.host
	state := h.State()
	motion := h.Motion()
	body := h.Body()

	forward := model.DirectionOf(in.Yaw, 0)
	right := model.DirectionOf(in.Yaw+math.Pi/2, 0)
	dir := forward.Mul(clampUnit(in.Forward)).Add(right.Mul(clampUnit(in.Strafe) * l.cfg.StrafeFactor))
	dir = model.ClampLength(dir, 1)

	if !state.Flying() {
		speed := motion.Config().WalkSpeed
		if in.Sprint {
			speed = motion.Config().RunSpeed
		}
		v := dir.Mul(speed)
		return model.Vec3{v.X(), body.Velocity().Y(), v.Z()}, in.Yaw
	}

	p := motion.Profile()
	speed := p.CruiseSpeed
	if in.Sprint {
		speed *= p.MaxSpeedFactor
	}
	v := dir.Mul(speed)

	climb := 0.0
	switch {
	case state.Landing():
		climb = body.Velocity().Y()
	case state.Takeoff() || in.Ascend:
		climb = l.cfg.ClimbSpeed
	case in.Descend:
		climb = -l.cfg.ClimbSpeed
	}
	return model.Vec3{v.X(), climb, v.Z()}, in.Yaw
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
