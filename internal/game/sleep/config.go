package sleep

import "fmt"

// Schedules.
const (
	ScheduleNight = "night"
	ScheduleDay   = "day"
	ScheduleAny   = "any"
)

// Config tunes the sleep machine of a species.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
	// Chance is the probability per evaluation pass to fall asleep once every
	// precondition holds.
	Chance         float64 `yaml:"chance"`
	RequireShelter bool    `yaml:"require_shelter"`
	StormAverse    bool    `yaml:"storm_averse"`
	// WakeWithOwner wakes the creature when its sleeping owner wakes up.
	WakeWithOwner bool `yaml:"wake_with_owner"`

	SitTicks   int `yaml:"sit_ticks"`
	EnterTicks int `yaml:"enter_ticks"`
	ExitTicks  int `yaml:"exit_ticks"`

	// SuppressTicks blocks falling asleep again after a forced wake.
	SuppressTicks int `yaml:"suppress_ticks"`
	// AmbientSuppressTicks silences ambient sounds after waking up.
	AmbientSuppressTicks int `yaml:"ambient_suppress_ticks"`
}

// DefaultConfig returns tuning for a diurnal creature that sleeps at night.
func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		Schedule:             ScheduleNight,
		Chance:               0.02,
		RequireShelter:       false,
		StormAverse:          true,
		WakeWithOwner:        true,
		SitTicks:             10,
		EnterTicks:           30,
		ExitTicks:            20,
		SuppressTicks:        200,
		AmbientSuppressTicks: 60,
	}
}

// Validate checks config bounds.
func (c Config) Validate() error {
	switch c.Schedule {
	case ScheduleNight, ScheduleDay, ScheduleAny:
	default:
		return fmt.Errorf("sleep: unknown schedule %q", c.Schedule)
	}
	if c.Chance < 0 || c.Chance > 1 {
		return fmt.Errorf("sleep: chance must be in [0, 1]")
	}
	if c.SitTicks < 0 || c.EnterTicks < 0 || c.ExitTicks < 0 || c.SuppressTicks < 0 {
		return fmt.Errorf("sleep: tick counts must not be negative")
	}
	return nil
}
