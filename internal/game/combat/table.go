package combat

import (
	"fmt"

	"github.com/udisondev/beastmind/internal/model"
)

// AttackConfig is the YAML form of an AttackDescriptor.
type AttackConfig struct {
	Kind          string  `yaml:"kind"`
	Reach         float64 `yaml:"reach"`
	WindupTicks   int     `yaml:"windup_ticks"`
	ActiveTicks   int     `yaml:"active_ticks"`
	RecoveryTicks int     `yaml:"recovery_ticks"`
	CooldownTicks int     `yaml:"cooldown_ticks"`
	TrackUntil    int     `yaml:"track_until"`
	Ranged        bool    `yaml:"ranged"`
}

// Table maps attack kinds to their descriptors.
type Table map[model.AttackKind]model.AttackDescriptor

// Lookup returns the descriptor of kind.
func (t Table) Lookup(kind model.AttackKind) (model.AttackDescriptor, bool) {
	d, ok := t[kind]
	return d, ok
}

// NewTable builds a table from config entries.
func NewTable(entries []AttackConfig) (Table, error) {
	t := make(Table, len(entries))
	for _, e := range entries {
		kind, ok := model.ParseAttackKind(e.Kind)
		if !ok || kind == model.AttackNone {
			return nil, fmt.Errorf("unknown attack kind %q", e.Kind)
		}
		if _, dup := t[kind]; dup {
			return nil, fmt.Errorf("duplicate attack kind %q", e.Kind)
		}
		if e.Reach <= 0 {
			return nil, fmt.Errorf("attack %s: reach must be positive", e.Kind)
		}
		if e.WindupTicks < 1 || e.ActiveTicks < 1 || e.RecoveryTicks < 0 || e.CooldownTicks < 0 {
			return nil, fmt.Errorf("attack %s: invalid phase ticks", e.Kind)
		}
		t[kind] = model.AttackDescriptor{
			Kind:          kind,
			Reach:         e.Reach,
			WindupTicks:   e.WindupTicks,
			ActiveTicks:   e.ActiveTicks,
			RecoveryTicks: e.RecoveryTicks,
			CooldownTicks: e.CooldownTicks,
			TrackUntil:    e.TrackUntil,
			Ranged:        e.Ranged,
		}
	}
	return t, nil
}

// DefaultAttacks returns the built-in attack set.
func DefaultAttacks() []AttackConfig {
	return []AttackConfig{
		{Kind: "bite", Reach: 2.5, WindupTicks: 8, ActiveTicks: 3, RecoveryTicks: 6, CooldownTicks: 20, TrackUntil: 5},
		{Kind: "claw", Reach: 3, WindupTicks: 10, ActiveTicks: 4, RecoveryTicks: 8, CooldownTicks: 30, TrackUntil: 6},
		{Kind: "tail_swipe", Reach: 4, WindupTicks: 14, ActiveTicks: 5, RecoveryTicks: 10, CooldownTicks: 60, TrackUntil: 8},
		{Kind: "spit", Reach: 14, WindupTicks: 12, ActiveTicks: 2, RecoveryTicks: 8, CooldownTicks: 50, TrackUntil: 10, Ranged: true},
		{Kind: "breath", Reach: 10, WindupTicks: 20, ActiveTicks: 20, RecoveryTicks: 14, CooldownTicks: 200, TrackUntil: 12, Ranged: true},
	}
}

// DefaultTable returns the table of DefaultAttacks.
func DefaultTable() Table {
	t, err := NewTable(DefaultAttacks())
	if err != nil {
		panic(err)
	}
	return t
}
