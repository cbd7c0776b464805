package combat

import (
	"fmt"
	"slices"

	"github.com/udisondev/beastmind/internal/model"
)

// Band maps a distance band to the attack used inside it.
type Band struct {
	Kind        string  `yaml:"kind"`
	MaxDistance float64 `yaml:"max_distance"`
}

// RangedConfig tunes RangedCoordinate.
type RangedConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Kind        string  `yaml:"kind"`
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
}

// Config holds the combat tuning of a species.
type Config struct {
	Attacks     []AttackConfig `yaml:"attacks"`
	MeleeBands  []Band         `yaml:"melee_bands"`
	Ranged      RangedConfig   `yaml:"ranged"`
	ChaseRadius float64        `yaml:"chase_radius"`
	RepathTicks int            `yaml:"repath_ticks"`
}

// DefaultConfig returns a melee-only setup: bite up close, tail swipe a bit further.
func DefaultConfig() Config {
	return Config{
		Attacks: DefaultAttacks(),
		MeleeBands: []Band{
			{Kind: "bite", MaxDistance: 3.5},
			{Kind: "tail_swipe", MaxDistance: 5},
		},
		Ranged:      RangedConfig{Enabled: false, Kind: "spit", MinDistance: 6, MaxDistance: 14},
		ChaseRadius: 24,
		RepathTicks: 10,
	}
}

type band struct {
	kind   model.AttackKind
	maxDSq float64
}

// resolveBands validates bands against the table and sorts them nearest first.
func resolveBands(t Table, bands []Band) ([]band, error) {
	out := make([]band, 0, len(bands))
	for _, b := range bands {
		kind, ok := model.ParseAttackKind(b.Kind)
		if !ok {
			return nil, fmt.Errorf("melee band: unknown attack kind %q", b.Kind)
		}
		if _, ok := t[kind]; !ok {
			return nil, fmt.Errorf("melee band: attack %q is not in the attack table", b.Kind)
		}
		out = append(out, band{kind: kind, maxDSq: b.MaxDistance * b.MaxDistance})
	}
	slices.SortFunc(out, func(a, b band) int {
		switch {
		case a.maxDSq < b.maxDSq:
			return -1
		case a.maxDSq > b.maxDSq:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// Validate checks that every referenced attack exists.
func (c Config) Validate() error {
	t, err := NewTable(c.Attacks)
	if err != nil {
		return err
	}
	if _, err := resolveBands(t, c.MeleeBands); err != nil {
		return err
	}
	if c.Ranged.Enabled {
		kind, ok := model.ParseAttackKind(c.Ranged.Kind)
		if !ok {
			return fmt.Errorf("ranged: unknown attack kind %q", c.Ranged.Kind)
		}
		if _, ok := t[kind]; !ok {
			return fmt.Errorf("ranged: attack %q is not in the attack table", c.Ranged.Kind)
		}
		if c.Ranged.MinDistance >= c.Ranged.MaxDistance {
			return fmt.Errorf("ranged: min_distance must be below max_distance")
		}
	}
	return nil
}
