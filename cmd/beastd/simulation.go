package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/config"
	"github.com/udisondev/beastmind/internal/creature"
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/replication"
	"github.com/udisondev/beastmind/internal/snapshot"
	"github.com/udisondev/beastmind/internal/world"
)

// Demo damage dealt by melee activations. Ranged kinds launch projectiles.
var meleeDamage = map[model.AttackKind]float64{
	model.AttackBite:      4,
	model.AttackClaw:      5,
	model.AttackTailSwipe: 7,
}

const projectileSpeed = 1.2

// batchSaver is implemented by stores that persist many records in one round trip.
type batchSaver interface {
	SaveBatch(ctx context.Context, recs []snapshot.Record) error
}

type hit struct {
	attacker *creature.Agent
	victim   uuid.UUID
	amount   float64
}

// simulation wires agents to the world, the replication hub and the
// snapshot stores. Cross-agent effects (damage, offspring) are queued during
// the parallel tick and applied in afterTick, when no agent is ticking.
type simulation struct {
	cfg      config.Server
	registry *config.Registry
	world    *world.World
	hub      *replication.Hub
	dir      *creature.Directory
	mgr      *ai.TickManager
	stores   []snapshot.Store
	rnd      *rand.Rand

	mu        sync.Mutex
	hits      []hit
	offspring [][2]*creature.Agent

	saves chan []snapshot.Record
}

func newSimulation(cfg config.Server, registry *config.Registry, w *world.World, stores []snapshot.Store) *simulation {
	return &simulation{
		cfg:      cfg,
		registry: registry,
		world:    w,
		hub:      replication.NewHub(),
		dir:      creature.NewDirectory(),
		mgr:      ai.NewTickManager(cfg.TickInterval, cfg.Workers),
		stores:   stores,
		rnd:      ai.NewRand(uint64(cfg.World.DayLengthTicks) + 1),
		saves:    make(chan []snapshot.Record, 1),
	}
}

// spawn creates an agent of species at pos and registers it everywhere.
// A non-nil rec is restored before the agent starts ticking.
func (s *simulation) spawn(sp config.Species, id uuid.UUID, pos model.Vec3, rec *snapshot.Record) (*creature.Agent, error) {
	var agent *creature.Agent
	a, err := creature.New(creature.Options{
		ID:             id,
		Species:        sp,
		World:          s.world,
		Position:       pos,
		Yaw:            s.rnd.Float64() * 2 * math.Pi,
		Seed:           s.rnd.Uint64(),
		Sink:           s.hub,
		ResyncInterval: s.cfg.ResyncInterval,
		Animator: model.AnimatorFunc(func(id uuid.UUID, trigger string) {
			if ai.IsDebugEnabled() {
				slog.Debug("animation", "agent", id, "trigger", trigger)
			}
		}),
		Activate: func(kind model.AttackKind) bool {
			return s.activate(agent, kind)
		},
		Mates:   s.dir.FindMate,
		OnBreed: s.dir.Breeder(s.queueOffspring),
	})
	if err != nil {
		return nil, err
	}
	agent = a

	if rec != nil {
		if err := a.Restore(*rec); err != nil {
			s.world.RemoveObject(a.ID())
			return nil, err
		}
		if a.Dead() {
			s.world.RemoveObject(a.ID())
			return nil, nil
		}
	}
	s.dir.Add(a)
	s.mgr.Register(a)
	return a, nil
}

// activate resolves an attack. It runs inside the attacker's tick, so it
// only reads the attacker and queues effects on others.
func (s *simulation) activate(a *creature.Agent, kind model.AttackKind) bool {
	if a == nil {
		return false
	}
	target, ok := ai.TargetAlive(a)
	if !ok {
		return false
	}

	if dmg, melee := meleeDamage[kind]; melee {
		s.mu.Lock()
		s.hits = append(s.hits, hit{attacker: a, victim: target.ID(), amount: dmg})
		s.mu.Unlock()
		return true
	}

	from := ai.EyePosition(a)
	dir, ok := model.SafeNormalize(ai.EyePosition(target).Sub(from))
	if !ok {
		return false
	}
	p := model.NewWorldObject(uuid.New(), model.KindProjectile, kind.String(), from.Add(dir.Mul(a.Radius()+0.5)), 0.2, 1)
	p.SetVelocity(dir.Mul(projectileSpeed))
	if err := s.world.AddObject(p); err != nil {
		slog.Warn("launching projectile", "agent", a.ID(), "error", err)
		return false
	}
	return true
}

func (s *simulation) queueOffspring(a, b *creature.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offspring = append(s.offspring, [2]*creature.Agent{a, b})
}

// afterTick runs on the tick loop once every agent was ticked.
func (s *simulation) afterTick(tick uint64) {
	s.mu.Lock()
	hits, births := s.hits, s.offspring
	s.hits, s.offspring = nil, nil
	s.mu.Unlock()

	for _, h := range hits {
		if victim, ok := s.dir.Get(h.victim); ok {
			victim.OnDamaged(h.attacker, h.amount)
			continue
		}
		if obj, ok := s.world.GetObject(h.victim); ok {
			hp, _ := obj.Health()
			obj.SetHealth(hp - h.amount)
		}
	}
	for _, pair := range births {
		s.birth(pair[0], pair[1])
	}

	s.world.Step()
	s.reap()

	if n := s.cfg.World.DayLengthTicks; n > 0 && tick%uint64(n) == 0 {
		s.world.SetDaytime(!s.world.IsDaytime())
		slog.Info("day cycle", "tick", tick, "daytime", s.world.IsDaytime())
	}
	if n := s.cfg.Snapshot.IntervalTicks; n > 0 && len(s.stores) > 0 && tick%uint64(n) == 0 {
		select {
		case s.saves <- s.collect():
		default:
			slog.Warn("snapshot save still running, skipping", "tick", tick)
		}
	}
}

func (s *simulation) birth(a, b *creature.Agent) {
	sp, err := s.registry.Get(a.Species())
	if err != nil {
		slog.Warn("offspring of unknown species", "species", a.Species(), "error", err)
		return
	}
	pos := a.Position().Add(b.Position()).Mul(0.5)
	child, err := s.spawn(sp, uuid.Nil, pos, nil)
	if err != nil {
		slog.Error("spawning offspring", "species", sp.Name, "error", err)
		return
	}
	child.SetYoung(true)
	slog.Info("offspring born", "agent", child.ID(), "species", sp.Name)
}

// reap removes dead agents from the tick loop and the world.
func (s *simulation) reap() {
	var dead []uuid.UUID
	s.dir.Range(func(a *creature.Agent) bool {
		if a.Dead() {
			dead = append(dead, a.ID())
		}
		return true
	})
	for _, id := range dead {
		s.mgr.Unregister(id)
		s.dir.Remove(id)
		s.hub.Remove(id)
		s.world.RemoveObject(id)
	}
}

func (s *simulation) collect() []snapshot.Record {
	recs := make([]snapshot.Record, 0, s.dir.Len())
	s.dir.Range(func(a *creature.Agent) bool {
		recs = append(recs, a.Snapshot())
		return true
	})
	return recs
}

// persist writes queued snapshot batches until ctx is done.
func (s *simulation) persist(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case recs := <-s.saves:
			if err := s.save(ctx, recs); err != nil {
				slog.Error("saving snapshots", "error", err)
			}
		}
	}
}

func (s *simulation) save(ctx context.Context, recs []snapshot.Record) error {
	var errs []error
	for _, store := range s.stores {
		if bs, ok := store.(batchSaver); ok {
			errs = append(errs, bs.SaveBatch(ctx, recs))
			continue
		}
		for _, rec := range recs {
			if err := store.Save(ctx, rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	slog.Info("snapshots saved", "agents", len(recs), "stores", len(s.stores))
	return nil
}

// restore respawns every persisted agent. The first store holding a record wins.
func (s *simulation) restore(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	seen := make(map[uuid.UUID]bool)

	for _, store := range s.stores {
		ids, err := s.listIDs(ctx, store)
		if err != nil {
			return counts, err
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			rec, err := store.Load(ctx, id)
			if err != nil {
				slog.Warn("skipping unreadable snapshot", "agent", id, "error", err)
				continue
			}
			seen[id] = true

			sp, err := s.registry.Get(rec.Species)
			if err != nil {
				slog.Warn("skipping snapshot of unknown species", "agent", id, "species", rec.Species)
				continue
			}
			a, err := s.spawn(sp, id, model.Vec3(rec.Position), &rec)
			if err != nil {
				return counts, fmt.Errorf("restoring agent %s: %w", id, err)
			}
			if a != nil {
				counts[sp.Name]++
			}
		}
	}
	return counts, nil
}

func (s *simulation) listIDs(ctx context.Context, store snapshot.Store) ([]uuid.UUID, error) {
	switch st := store.(type) {
	case interface{ List() ([]uuid.UUID, error) }:
		return st.List()
	case interface {
		ListBySpecies(ctx context.Context, species string) ([]uuid.UUID, error)
	}:
		var out []uuid.UUID
		for _, name := range s.registry.Names() {
			ids, err := st.ListBySpecies(ctx, name)
			if err != nil {
				return nil, err
			}
			out = append(out, ids...)
		}
		return out, nil
	default:
		return nil, nil
	}
}

// populate tops every configured species up to its spawn count.
func (s *simulation) populate(existing map[string]int) error {
	for _, sc := range s.cfg.Spawns {
		sp, err := s.registry.Get(sc.Species)
		if err != nil {
			return fmt.Errorf("spawning %s: %w", sc.Species, err)
		}
		for range sc.Count - existing[sc.Species] {
			angle := s.rnd.Float64() * 2 * math.Pi
			dist := sc.Radius * math.Sqrt(s.rnd.Float64())
			x, z := math.Cos(angle)*dist, math.Sin(angle)*dist
			pos := model.Vec3{x, s.world.GroundHeight(x, z), z}
			if _, err := s.spawn(sp, uuid.Nil, pos, nil); err != nil {
				return fmt.Errorf("spawning %s: %w", sc.Species, err)
			}
		}
	}
	return nil
}
