package combat

import (
	"fmt"
	"math"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/model"
)

// MeleeApproach closes in on the target and picks the attack whose distance
// band the target is in.
type MeleeApproach struct {
	host    ai.Host
	machine *Machine
	cfg     Config
	bands   []band
	// rangedMinDSq hands far targets over to RangedCoordinate; 0 means melee only.
	rangedMinDSq float64
	timer        int
}

// NewMeleeApproach creates the melee coordinator.
func NewMeleeApproach(host ai.Host, machine *Machine, cfg Config) (*MeleeApproach, error) {
	bands, err := resolveBands(machine.table, cfg.MeleeBands)
	if err != nil {
		return nil, fmt.Errorf("creating melee approach: %w", err)
	}
	m := &MeleeApproach{host: host, machine: machine, cfg: cfg, bands: bands}
	if cfg.Ranged.Enabled {
		m.rangedMinDSq = cfg.Ranged.MinDistance * cfg.Ranged.MinDistance
	}
	return m, nil
}

func (m *MeleeApproach) Name() string   { return "melee_approach" }
func (m *MeleeApproach) Flags() ai.Flag { return ai.FlagMove | ai.FlagLook }

func (m *MeleeApproach) engaged() (model.Entity, float64, bool) {
	if len(m.bands) == 0 || m.host.Ridden() {
		return nil, 0, false
	}
	target, ok := ai.TargetAlive(m.host)
	if !ok {
		return nil, 0, false
	}
	dSq := model.DistanceSquared(target.Position(), m.host.Body().Position())
	if dSq > m.cfg.ChaseRadius*m.cfg.ChaseRadius {
		return nil, 0, false
	}
	if m.rangedMinDSq > 0 && dSq >= m.rangedMinDSq {
		return nil, 0, false
	}
	return target, dSq, true
}

func (m *MeleeApproach) CanStart() bool {
	_, _, ok := m.engaged()
	return ok
}

func (m *MeleeApproach) CanContinue() bool {
	_, _, ok := m.engaged()
	return ok
}

func (m *MeleeApproach) Start() {
	m.timer = 0
}

func (m *MeleeApproach) Stop() {
	m.host.Motion().Stop()
}

// Select returns the attack for a squared distance, nearest band first.
func (m *MeleeApproach) Select(dSq float64) (model.AttackKind, bool) {
	for _, b := range m.bands {
		if dSq <= b.maxDSq {
			return b.kind, true
		}
	}
	return model.AttackNone, false
}

func (m *MeleeApproach) Tick() {
	target, dSq, ok := m.engaged()
	if !ok {
		return
	}
	motion := m.host.Motion()
	motion.LookAt(ai.EyePosition(target))

	if kind, ok := m.Select(dSq); ok {
		motion.Stop()
		if m.machine.Idle() && m.machine.CanAttack(kind) {
			m.machine.Request(kind)
		}
		return
	}

	m.timer--
	if m.timer > 0 && !motion.IsDone() {
		return
	}
	m.timer = m.cfg.RepathTicks
	motion.MoveTo(target.Position(), motion.Config().RunSpeed)
}

// RangedCoordinate keeps the target inside the ranged band and fires the
// ranged attack when there is line of sight.
type RangedCoordinate struct {
	host    ai.Host
	machine *Machine
	cfg     RangedConfig
	chase   float64
	repath  int
	kind    model.AttackKind
	timer   int
}

// NewRangedCoordinate creates the ranged coordinator.
func NewRangedCoordinate(host ai.Host, machine *Machine, cfg Config) (*RangedCoordinate, error) {
	kind, ok := model.ParseAttackKind(cfg.Ranged.Kind)
	if !ok {
		return nil, fmt.Errorf("creating ranged coordinate: unknown attack kind %q", cfg.Ranged.Kind)
	}
	if _, ok := machine.table.Lookup(kind); !ok {
		return nil, fmt.Errorf("creating ranged coordinate: attack %q is not in the attack table", cfg.Ranged.Kind)
	}
	return &RangedCoordinate{
		host:    host,
		machine: machine,
		cfg:     cfg.Ranged,
		chase:   cfg.ChaseRadius,
		repath:  cfg.RepathTicks,
		kind:    kind,
	}, nil
}

func (r *RangedCoordinate) Name() string   { return "ranged_coordinate" }
func (r *RangedCoordinate) Flags() ai.Flag { return ai.FlagMove | ai.FlagLook }

func (r *RangedCoordinate) engaged() (model.Entity, float64, bool) {
	if !r.cfg.Enabled || r.host.Ridden() {
		return nil, 0, false
	}
	target, ok := ai.TargetAlive(r.host)
	if !ok {
		return nil, 0, false
	}
	dSq := model.DistanceSquared(target.Position(), r.host.Body().Position())
	if dSq > r.chase*r.chase {
		return nil, 0, false
	}
	return target, dSq, true
}

func (r *RangedCoordinate) CanStart() bool {
	_, dSq, ok := r.engaged()
	return ok && dSq >= r.cfg.MinDistance*r.cfg.MinDistance
}

func (r *RangedCoordinate) CanContinue() bool {
	_, _, ok := r.engaged()
	return ok
}

func (r *RangedCoordinate) Start() {
	r.timer = 0
}

func (r *RangedCoordinate) Stop() {
	r.host.Motion().Stop()
}

func (r *RangedCoordinate) Tick() {
	target, dSq, ok := r.engaged()
	if !ok {
		return
	}
	motion := r.host.Motion()
	pos := r.host.Body().Position()
	motion.LookAt(ai.EyePosition(target))

	minDSq := r.cfg.MinDistance * r.cfg.MinDistance
	maxDSq := r.cfg.MaxDistance * r.cfg.MaxDistance

	switch {
	case dSq < minDSq:
		// back off to the inner edge of the band
		away, ok := model.SafeNormalize(model.Horizontal(pos.Sub(target.Position())))
		if !ok {
			away = model.DirectionOf(r.host.Body().Yaw()+math.Pi, 0)
		}
		motion.MoveTo(pos.Add(away.Mul(r.cfg.MinDistance)), motion.Config().WalkSpeed)

	case dSq > maxDSq:
		r.timer--
		if r.timer > 0 && !motion.IsDone() {
			return
		}
		r.timer = r.repath
		motion.MoveTo(target.Position(), motion.Config().RunSpeed)

	default:
		motion.Stop()
		if r.machine.Idle() && r.machine.CanAttack(r.kind) {
			r.machine.Request(r.kind)
		}
	}
}
