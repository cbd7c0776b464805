package creature

import (
	"bytes"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/model"
)

// Directory resolves world entities back to agents. It backs mate lookup,
// which needs the partner's love state rather than its body.
type Directory struct {
	agents sync.Map // map[uuid.UUID]*Agent
	count  atomic.Int32

	// bred remembers the tick a pair last bred, so the partner's own
	// completion does not spawn a second offspring.
	mu   sync.Mutex
	bred map[[2]uuid.UUID]uint64
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{bred: make(map[[2]uuid.UUID]uint64)}
}

// Add registers a.
func (d *Directory) Add(a *Agent) {
	if _, loaded := d.agents.LoadOrStore(a.ID(), a); !loaded {
		d.count.Add(1)
	}
}

// Remove forgets the agent with id.
func (d *Directory) Remove(id uuid.UUID) {
	if _, ok := d.agents.LoadAndDelete(id); ok {
		d.count.Add(-1)
	}
}

// Get returns the agent with id.
func (d *Directory) Get(id uuid.UUID) (*Agent, bool) {
	v, ok := d.agents.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Agent), true
}

// Len returns the number of agents.
func (d *Directory) Len() int {
	return int(d.count.Load())
}

// Range calls fn for every agent until fn returns false.
func (d *Directory) Range(fn func(*Agent) bool) {
	d.agents.Range(func(_, v any) bool {
		return fn(v.(*Agent))
	})
}

// FindMate returns the nearest living agent of the host's species within
// radius that is in love. It implements ai.MateFunc.
func (d *Directory) FindMate(host ai.Host, radius float64) (ai.Mate, bool) {
	pos := host.Body().Position()

	var (
		best   *Agent
		bestSq = radius * radius
	)
	host.World().Nearby(pos, radius, model.KindCreature, func(e model.Entity) bool {
		if e.ID() == host.ID() || !e.Alive() {
			return true
		}
		other, ok := d.Get(e.ID())
		if !ok || other.Species() != host.Species() || !other.InLove() {
			return true
		}
		if dSq := model.DistanceSquared(pos, e.Position()); dSq <= bestSq {
			best, bestSq = other, dSq
		}
		return true
	})
	if best == nil {
		return nil, false
	}
	return best, true
}

// Breeder wraps spawn into an ai.BreedFunc that fires once per pair and
// love cycle, whichever partner completes first.
func (d *Directory) Breeder(spawn func(a, b *Agent)) ai.BreedFunc {
	return func(host ai.Host, mate ai.Mate) {
		a, ok := d.Get(host.ID())
		if !ok {
			return
		}
		b, ok := d.Get(mate.ID())
		if !ok {
			return
		}

		// a.tick is safe to read: breeding runs inside a's own tick.
		if !d.claim(pairKey(a.id, b.id), a.tick, a.species.LoveTicks) {
			return
		}

		slog.Info("offspring conceived", "species", a.Species(), "parent_a", a.id, "parent_b", b.id)
		if spawn != nil {
			spawn(a, b)
		}
	}
}

// claim records a breeding of key at tick unless one happened within window.
func (d *Directory) claim(key [2]uuid.UUID, tick uint64, window int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.bred[key]; ok {
		diff := int64(tick) - int64(last)
		if diff < 0 {
			diff = -diff
		}
		if diff < int64(max(window, 1)) {
			return false
		}
	}
	d.bred[key] = tick
	return true
}

func pairKey(a, b uuid.UUID) [2]uuid.UUID {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return [2]uuid.UUID{a, b}
}
