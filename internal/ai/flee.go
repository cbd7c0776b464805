package ai

import (
	"github.com/udisondev/beastmind/internal/model"
)

// Flee runs away from nearby players, or plays dead instead when the roll says so.
// Only untamed creatures flee.
type Flee struct {
	host Host
	cfg  FleeConfig

	threat    model.Entity
	playDead  bool
	deadTicks int
	cooldown  int
}

// NewFlee creates a Flee behavior.
func NewFlee(host Host, cfg FleeConfig) *Flee {
	return &Flee{host: host, cfg: cfg}
}

func (f *Flee) Name() string { return "flee" }
func (f *Flee) Flags() Flag  { return FlagMove | FlagLook | FlagJump }

// PlayingDead reports whether the creature is currently playing dead.
func (f *Flee) PlayingDead() bool {
	return f.playDead && f.deadTicks > 0
}

func (f *Flee) CanStart() bool {
	if f.cooldown > 0 {
		f.cooldown--
		return false
	}
	if _, owned := f.host.Owner(); owned || f.host.State().Flying() {
		return false
	}

	pos := f.host.Body().Position()
	var nearest model.Entity
	best := f.cfg.DetectRadius * f.cfg.DetectRadius
	f.host.World().Nearby(pos, f.cfg.DetectRadius, model.KindPlayer, func(e model.Entity) bool {
		if d := model.DistanceSquared(e.Position(), pos); d <= best {
			best = d
			nearest = e
		}
		return true
	})
	if nearest == nil {
		return false
	}
	f.threat = nearest
	return true
}

func (f *Flee) CanContinue() bool {
	if f.playDead {
		return f.deadTicks > 0
	}
	if f.threat == nil || !f.threat.Alive() {
		return false
	}
	d := model.DistanceSquared(f.threat.Position(), f.host.Body().Position())
	return d < f.cfg.SafeRadius*f.cfg.SafeRadius
}

func (f *Flee) Start() {
	f.playDead = f.cfg.PlayDeadChance > 0 && f.host.Rand().Float64() < f.cfg.PlayDeadChance
	if f.playDead {
		f.deadTicks = f.cfg.PlayDeadTicks
		f.host.Motion().Stop()
		f.host.Animate("play_dead")
		return
	}
	f.runAway()
}

func (f *Flee) Stop() {
	f.host.Motion().Stop()
	f.threat = nil
	f.playDead = false
	f.deadTicks = 0
	f.cooldown = f.cfg.Cooldown
}

func (f *Flee) Tick() {
	if f.playDead {
		f.deadTicks--
		return
	}
	if f.host.Motion().IsDone() || f.host.Motion().IsStuck() {
		f.host.Motion().ClearStuck()
		f.runAway()
	}
}

func (f *Flee) runAway() {
	if f.threat == nil {
		return
	}
	pos := f.host.Body().Position()
	away, ok := model.SafeNormalize(model.Horizontal(pos.Sub(f.threat.Position())))
	if !ok {
		away = model.DirectionOf(f.host.Body().Yaw(), 0)
	}
	dest := pos.Add(away.Mul(f.cfg.SafeRadius))
	f.host.Motion().MoveTo(dest, f.host.Motion().Config().RunSpeed)
}
