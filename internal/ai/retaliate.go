package ai

import (
	"log/slog"

	"github.com/udisondev/beastmind/internal/model"
)

// Retaliate targets whoever hurt the creature last.
type Retaliate struct {
	host  Host
	cfg   RetaliateConfig
	ticks int
}

// NewRetaliate creates a Retaliate behavior.
func NewRetaliate(host Host, cfg RetaliateConfig) *Retaliate {
	return &Retaliate{host: host, cfg: cfg}
}

func (r *Retaliate) Name() string { return "retaliate" }
func (r *Retaliate) Flags() Flag  { return FlagTarget }

func (r *Retaliate) CanStart() bool {
	if r.host.Timers().HurtRecently <= 0 {
		return false
	}
	attacker, ok := r.host.LastAttacker()
	if !ok || !attacker.Alive() || attacker.ID() == r.host.ID() {
		return false
	}
	if owner, ok := r.host.Owner(); ok && owner.ID() == attacker.ID() {
		return false
	}
	return r.inRange(attacker)
}

func (r *Retaliate) inRange(e model.Entity) bool {
	return model.DistanceSquared(e.Position(), r.host.Body().Position()) <= r.cfg.ForgetRadius*r.cfg.ForgetRadius
}

func (r *Retaliate) CanContinue() bool {
	target, ok := TargetAlive(r.host)
	if !ok {
		return false
	}
	if r.cfg.ForgetTicks > 0 && r.ticks >= r.cfg.ForgetTicks {
		return false
	}
	return r.inRange(target)
}

func (r *Retaliate) Start() {
	r.ticks = 0
	attacker, ok := r.host.LastAttacker()
	if !ok {
		return
	}
	r.host.SetTarget(attacker)

	if IsDebugEnabled() {
		slog.Debug("retaliating", "agent", r.host.ID(), "target", attacker.ID())
	}
}

func (r *Retaliate) Stop() {
	r.host.ClearTarget()
}

func (r *Retaliate) Tick() {
	r.ticks++
	// a fresh hit by the same attacker refreshes the grudge
	if r.host.Timers().HurtRecently > 0 {
		if a, ok := r.host.LastAttacker(); ok {
			if t, ok := r.host.Target(); ok && t.ID() == a.ID() {
				r.ticks = 0
			}
		}
	}
}
