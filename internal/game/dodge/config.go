package dodge

import "fmt"

// Config tunes the dodge reactor of a species.
type Config struct {
	Enabled    bool    `yaml:"enabled"`
	ScanRadius float64 `yaml:"scan_radius"`
	// Backoff holds the scan intervals used after 1, 2, ... consecutive empty
	// scans; the last one repeats.
	Backoff []int `yaml:"backoff"`
	// Threshold is the minimum dot(projectile heading, direction to agent).
	Threshold float64 `yaml:"threshold"`
	MinSpeed  float64 `yaml:"min_speed"`

	LateralImpulse float64 `yaml:"lateral_impulse"`
	VerticalBias   float64 `yaml:"vertical_bias"`
	MaxImpulse     float64 `yaml:"max_impulse"`
	BurstTicks     int     `yaml:"burst_ticks"`
	CooldownTicks  int     `yaml:"cooldown_ticks"`
}

// DefaultConfig returns the reactor defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		ScanRadius:     16,
		Backoff:        []int{3, 5, 7, 9, 11},
		Threshold:      0.9,
		MinSpeed:       0.1,
		LateralImpulse: 0.6,
		VerticalBias:   0.25,
		MaxImpulse:     0.7,
		BurstTicks:     9,
		CooldownTicks:  40,
	}
}

// Validate checks config bounds.
func (c Config) Validate() error {
	if len(c.Backoff) == 0 {
		return fmt.Errorf("dodge: backoff must not be empty")
	}
	for _, b := range c.Backoff {
		if b < 1 {
			return fmt.Errorf("dodge: backoff intervals must be positive")
		}
	}
	if c.Threshold < -1 || c.Threshold > 1 {
		return fmt.Errorf("dodge: threshold must be in [-1, 1]")
	}
	if c.BurstTicks < 1 {
		return fmt.Errorf("dodge: burst_ticks must be positive")
	}
	return nil
}
