package ai

import (
	"math"

	"github.com/udisondev/beastmind/internal/model"
)

// Wander walks to random nearby ground points while idle.
type Wander struct {
	host Host
	cfg  WanderConfig
}

// NewWander creates a Wander behavior.
func NewWander(host Host, cfg WanderConfig) *Wander {
	return &Wander{host: host, cfg: cfg}
}

func (w *Wander) Name() string { return "wander" }
func (w *Wander) Flags() Flag  { return FlagMove }

func (w *Wander) CanStart() bool {
	st := w.host.State()
	if st.Sitting() || st.Flying() || w.host.SitOrdered() {
		return false
	}
	if w.host.Rand().Float64() >= w.cfg.Chance {
		return false
	}

	point, ok := w.pick()
	if !ok {
		return false
	}
	return w.host.Motion().MoveTo(point, w.host.Motion().Config().WalkSpeed)
}

func (w *Wander) pick() (model.Vec3, bool) {
	view := w.host.World()
	pos := w.host.Body().Position()
	rnd := w.host.Rand()

	for range max(w.cfg.Attempts, 1) {
		angle := rnd.Float64() * 2 * math.Pi
		dist := w.cfg.Radius * (0.3 + 0.7*rnd.Float64())
		x := pos.X() + math.Cos(angle)*dist
		z := pos.Z() + math.Sin(angle)*dist
		p := model.Vec3{x, view.GroundHeight(x, z), z}
		if view.IsLiquid(p) || view.DangerBelow(p, 2) {
			continue
		}
		return p, true
	}
	return model.Vec3{}, false
}

func (w *Wander) CanContinue() bool {
	m := w.host.Motion()
	return !m.IsDone() && !m.IsStuck() && !w.host.State().Sitting() && !w.host.SitOrdered()
}

func (w *Wander) Start() {}

func (w *Wander) Stop() {
	w.host.Motion().Stop()
	w.host.Motion().ClearStuck()
}

func (w *Wander) Tick() {}
