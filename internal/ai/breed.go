package ai

import (
	"log/slog"

	"github.com/udisondev/beastmind/internal/model"
)

// Mate is another agent a creature in love may breed with.
type Mate interface {
	model.Entity
	Species() string
	InLove() bool
}

// MateFunc finds a candidate mate for host within radius.
// Injected to avoid an import cycle with the agent package.
type MateFunc func(host Host, radius float64) (Mate, bool)

// BreedFunc is called once both partners stayed close long enough.
type BreedFunc func(a Host, b Mate)

// Breed approaches a mate while in love and triggers breeding next to it.
type Breed struct {
	host     Host
	cfg      BreedConfig
	findMate MateFunc
	breed    BreedFunc

	mate  Mate
	close int
	timer int
}

// NewBreed creates a Breed behavior.
func NewBreed(host Host, cfg BreedConfig, findMate MateFunc, breed BreedFunc) *Breed {
	return &Breed{host: host, cfg: cfg, findMate: findMate, breed: breed}
}

func (b *Breed) Name() string { return "breed" }
func (b *Breed) Flags() Flag  { return FlagMove | FlagLook }

func (b *Breed) CanStart() bool {
	if b.findMate == nil || b.host.Timers().InLove <= 0 || b.host.State().Flying() {
		return false
	}
	mate, ok := b.findMate(b.host, b.cfg.MateRadius)
	if !ok || mate.ID() == b.host.ID() || mate.Species() != b.host.Species() {
		return false
	}
	b.mate = mate
	return true
}

func (b *Breed) CanContinue() bool {
	return b.host.Timers().InLove > 0 && b.mate != nil && b.mate.Alive() && b.mate.InLove()
}

func (b *Breed) Start() {
	b.close = 0
	b.timer = 0
}

func (b *Breed) Stop() {
	b.host.Motion().Stop()
	b.mate = nil
	b.close = 0
}

func (b *Breed) Tick() {
	if b.mate == nil {
		return
	}
	motion := b.host.Motion()
	motion.LookAt(EyePosition(b.mate))

	rng := b.cfg.BreedRange + b.host.Body().Radius() + b.mate.Radius()
	if model.DistanceSquared(b.mate.Position(), b.host.Body().Position()) > rng*rng {
		b.close = 0
		b.timer--
		if b.timer <= 0 || motion.IsDone() {
			b.timer = b.cfg.RepathTicks
			motion.MoveTo(b.mate.Position(), motion.Config().WalkSpeed)
		}
		return
	}

	motion.Stop()
	b.close++
	if b.close < b.cfg.BreedTicks {
		return
	}

	b.host.Timers().InLove = 0
	if b.breed != nil {
		b.breed(b.host, b.mate)
	}
	slog.Info("creatures bred", "agent", b.host.ID(), "mate", b.mate.ID(), "species", b.host.Species())
}
