package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/game/combat"
	"github.com/udisondev/beastmind/internal/game/dodge"
	"github.com/udisondev/beastmind/internal/game/flight"
	"github.com/udisondev/beastmind/internal/game/locomotion"
	"github.com/udisondev/beastmind/internal/game/rider"
	"github.com/udisondev/beastmind/internal/game/sleep"
)

// Species is the full tuning of one creature type.
type Species struct {
	Name      string  `yaml:"name"`
	CanFly    bool    `yaml:"can_fly"`
	Radius    float64 `yaml:"radius"`
	MaxHealth float64 `yaml:"max_health"`
	// HurtTicks is how long a hit counts as recent (panic, sleep suppression).
	HurtTicks int `yaml:"hurt_ticks"`
	// LoveTicks is how long a fed creature stays in love.
	LoveTicks int `yaml:"love_ticks"`

	Behaviors ai.BehaviorConfig `yaml:"behaviors"`
	Movement  locomotion.Config `yaml:"movement"`
	Flight    flight.Config     `yaml:"flight"`
	Sleep     sleep.Config      `yaml:"sleep"`
	Dodge     dodge.Config      `yaml:"dodge"`
	Combat    combat.Config     `yaml:"combat"`
	Rider     rider.Config      `yaml:"rider"`
}

// DefaultSpecies returns a grounded, tameable melee creature named name.
func DefaultSpecies(name string) Species {
	fl := flight.DefaultConfig()
	fl.Enabled = false
	return Species{
		Name:      name,
		Radius:    0.6,
		MaxHealth: 20,
		HurtTicks: 100,
		LoveTicks: 600,
		Behaviors: ai.DefaultBehaviorConfig(),
		Movement:  locomotion.DefaultConfig(),
		Flight:    fl,
		Sleep:     sleep.DefaultConfig(),
		Dodge:     dodge.DefaultConfig(),
		Combat:    combat.DefaultConfig(),
		Rider:     rider.DefaultConfig(),
	}
}

// FlightProfile resolves the configured flight profile.
func (s Species) FlightProfile() (locomotion.FlightProfile, error) {
	return locomotion.ProfileByName(s.Flight.Profile)
}

// Validate checks every section and reports all problems at once.
func (s Species) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if s.Radius <= 0 || s.MaxHealth <= 0 {
		errs = append(errs, errors.New("radius and max_health must be positive"))
	}
	if s.Behaviors.Scheduler.EvaluateInterval < 1 {
		errs = append(errs, errors.New("behaviors.scheduler.evaluate_interval must be >= 1"))
	}
	if s.Flight.Enabled && !s.CanFly {
		errs = append(errs, errors.New("flight enabled for a species that cannot fly"))
	}
	if p, err := s.FlightProfile(); err != nil {
		errs = append(errs, err)
	} else if err := p.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, v := range []interface{ Validate() error }{s.Flight, s.Sleep, s.Dodge, s.Combat, s.Rider} {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("species %q: %w", s.Name, err)
	}
	return nil
}

// LoadSpecies loads one species file over DefaultSpecies. The name defaults
// to the file name without extension.
func LoadSpecies(path string) (Species, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s := DefaultSpecies(name)

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading species %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing species %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("loading species %s: %w", path, err)
	}
	return s, nil
}

// LoadSpeciesDir loads every *.yaml / *.yml file in dir.
func LoadSpeciesDir(dir string) (map[string]Species, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading species dir %s: %w", dir, err)
	}

	out := make(map[string]Species)
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		s, err := LoadSpecies(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := out[s.Name]; dup {
			return nil, fmt.Errorf("species %q defined twice in %s", s.Name, dir)
		}
		out[s.Name] = s
	}
	return out, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
