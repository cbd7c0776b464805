package ai

import (
	"math"

	"github.com/udisondev/beastmind/internal/model"
)

// Panic runs to random points while the creature was hurt recently and has
// nobody to fight back against.
type Panic struct {
	host Host
	cfg  PanicConfig
}

// NewPanic creates a Panic behavior.
func NewPanic(host Host, cfg PanicConfig) *Panic {
	return &Panic{host: host, cfg: cfg}
}

func (p *Panic) Name() string { return "panic" }
func (p *Panic) Flags() Flag  { return FlagMove }

func (p *Panic) CanStart() bool {
	if p.host.Timers().HurtRecently <= 0 || p.host.State().Flying() {
		return false
	}
	if _, ok := TargetAlive(p.host); ok {
		return false
	}
	return p.run()
}

func (p *Panic) run() bool {
	pos := p.host.Body().Position()
	rnd := p.host.Rand()
	view := p.host.World()

	angle := rnd.Float64() * 2 * math.Pi
	x := pos.X() + math.Cos(angle)*p.cfg.Radius
	z := pos.Z() + math.Sin(angle)*p.cfg.Radius
	return p.host.Motion().MoveTo(model.Vec3{x, view.GroundHeight(x, z), z}, p.host.Motion().Config().RunSpeed)
}

func (p *Panic) CanContinue() bool {
	return p.host.Timers().HurtRecently > 0 && !p.host.State().Flying()
}

func (p *Panic) Start() {}

func (p *Panic) Stop() {
	p.host.Motion().Stop()
}

func (p *Panic) Tick() {
	m := p.host.Motion()
	if m.IsDone() || m.IsStuck() {
		m.ClearStuck()
		p.run()
	}
}
