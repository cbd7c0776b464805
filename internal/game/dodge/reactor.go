package dodge

import (
	"log/slog"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/model"
)

// Reactor scans for incoming projectiles and hands a short velocity bias
// burst to locomotion. It claims MOVE and JUMP for the burst.
type Reactor struct {
	host ai.Host
	cfg  Config

	scanIn int
	empty  int
	scans  int
	threat model.ThreatCandidate
}

// NewReactor creates a dodge reactor. The first scan happens on the first evaluation.
func NewReactor(host ai.Host, cfg Config) *Reactor {
	return &Reactor{host: host, cfg: cfg}
}

func (r *Reactor) Name() string   { return "dodge" }
func (r *Reactor) Flags() ai.Flag { return ai.FlagMove | ai.FlagJump }

// Scans returns how many scans were made.
func (r *Reactor) Scans() int {
	return r.scans
}

// Threat returns the candidate of the current or last dodge.
func (r *Reactor) Threat() model.ThreatCandidate {
	return r.threat
}

func (r *Reactor) CanStart() bool {
	if r.host.Timers().DodgeCooldown > 0 || r.host.Ridden() {
		return false
	}
	r.scanIn--
	if r.scanIn > 0 {
		return false
	}

	threat, ok := r.Scan()
	if !ok {
		r.empty++
		r.scanIn = r.cfg.Backoff[min(r.empty, len(r.cfg.Backoff))-1]
		return false
	}
	r.empty = 0
	r.scanIn = r.cfg.Backoff[0]
	r.threat = threat
	return true
}

// Scan returns the most threatening projectile: highest alignment, with
// line-of-sight candidates preferred over hidden ones.
func (r *Reactor) Scan() (model.ThreatCandidate, bool) {
	r.scans++
	body := r.host.Body()
	pos := body.Position()
	eye := ai.EyePosition(body)
	view := r.host.World()

	var best model.ThreatCandidate
	found := false
	view.Nearby(pos, r.cfg.ScanRadius, model.KindProjectile, func(e model.Entity) bool {
		vel := e.Velocity()
		speed := vel.Len()
		if speed < r.cfg.MinSpeed {
			return true
		}
		toAgent, ok := model.SafeNormalize(pos.Sub(e.Position()))
		if !ok {
			return true
		}
		dot := vel.Mul(1 / speed).Dot(toAgent)
		if dot <= r.cfg.Threshold {
			return true
		}

		c := model.ThreatCandidate{
			Projectile:     e,
			Alignment:      dot,
			PredictedSpeed: speed,
			LineOfSight:    view.LineOfSight(e.Position(), eye),
		}
		if !found || better(c, best) {
			best = c
			found = true
		}
		return true
	})
	return best, found
}

func better(a, b model.ThreatCandidate) bool {
	if a.LineOfSight != b.LineOfSight {
		return a.LineOfSight
	}
	return a.Alignment > b.Alignment
}

// Evasion computes the dodge impulse for threat: the component of the
// agent's offset perpendicular to the projectile's heading, plus a vertical
// bias, clamped to MaxImpulse. An exactly collinear approach picks a side at random.
func Evasion(threat model.ThreatCandidate, pos model.Vec3, rnd ai.Rand, cfg Config) model.Vec3 {
	p := threat.Projectile
	heading, ok := model.SafeNormalize(p.Velocity())
	if !ok {
		return model.Vec3{}
	}

	offset := pos.Sub(p.Position())
	perp := offset.Sub(heading.Mul(offset.Dot(heading)))
	side, ok := model.SafeNormalize(model.Horizontal(perp))
	if !ok {
		side, ok = model.SafeNormalize(model.Vec3{-heading.Z(), 0, heading.X()})
		if !ok {
			// falling straight down: any horizontal direction will do
			side = model.Vec3{1, 0, 0}
		}
		if rnd.Float64() < 0.5 {
			side = side.Mul(-1)
		}
	}

	impulse := side.Mul(cfg.LateralImpulse).Add(model.Up.Mul(cfg.VerticalBias))
	return model.ClampLength(impulse, cfg.MaxImpulse)
}

func (r *Reactor) CanContinue() bool {
	return r.host.Motion().Bursting()
}

func (r *Reactor) Start() {
	h := r.host
	impulse := Evasion(r.threat, h.Body().Position(), h.Rand(), r.cfg)
	h.Motion().Stop()
	h.Motion().ApplyBias(impulse, r.cfg.BurstTicks)
	h.Animate("dodge")

	if ai.IsDebugEnabled() {
		slog.Debug("dodging",
			"agent", h.ID(),
			"projectile", r.threat.Projectile.ID(),
			"alignment", r.threat.Alignment,
			"impulse", impulse)
	}
}

func (r *Reactor) Stop() {
	r.host.Motion().CancelBias()
	r.host.Timers().DodgeCooldown = r.cfg.CooldownTicks
}

func (r *Reactor) Tick() {}
