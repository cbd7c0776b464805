package flight

import (
	"fmt"

	"github.com/udisondev/beastmind/internal/model"
)

// WeatherTuning biases flight decisions for one weather kind.
type WeatherTuning struct {
	// TakeoffBias multiplies the takeoff chance.
	TakeoffBias float64 `yaml:"takeoff_bias"`
	// ContinueChance is the probability to keep flying at each airborne decision.
	ContinueChance float64 `yaml:"continue_chance"`
	// AltitudeScale multiplies the cruise altitude of new waypoints.
	AltitudeScale float64 `yaml:"altitude_scale"`
}

// Config tunes the flight decision behavior of a species.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Profile string `yaml:"profile"`

	// DecisionInterval is the mean number of evaluation passes between
	// takeoff/landing rolls. Each roll draws a new jitter in [0, DecisionJitter].
	DecisionInterval int `yaml:"decision_interval"`
	DecisionJitter   int `yaml:"decision_jitter"`
	// TakeoffChance is the per-tick takeoff probability, scaled by the interval.
	TakeoffChance float64 `yaml:"takeoff_chance"`

	OwnerTakeoffDistance float64 `yaml:"owner_takeoff_distance"`
	ProtectRadius        float64 `yaml:"protect_radius"`
	DangerDepth          float64 `yaml:"danger_depth"`

	LandingCooldown     int `yaml:"landing_cooldown"`
	RainLandingCooldown int `yaml:"rain_landing_cooldown"`

	TakeoffTicks int     `yaml:"takeoff_ticks"`
	TakeoffClimb float64 `yaml:"takeoff_climb"`
	SettleTicks  int     `yaml:"settle_ticks"`
	HoverTicks   int     `yaml:"hover_ticks"`
	// SinkRate is the descent speed above which a powered flier reports gliding.
	SinkRate float64 `yaml:"sink_rate"`

	CruiseAltitude      float64 `yaml:"cruise_altitude"`
	WaypointDistance    float64 `yaml:"waypoint_distance"`
	WaypointSpread      float64 `yaml:"waypoint_spread"` // degrees either side of the heading
	WaypointInterval    int     `yaml:"waypoint_interval"`
	MinWaypointInterval int     `yaml:"min_waypoint_interval"`
	WaypointCandidates  int     `yaml:"waypoint_candidates"`
	MinClearFraction    float64 `yaml:"min_clear_fraction"`

	Clear   WeatherTuning `yaml:"clear"`
	Rain    WeatherTuning `yaml:"rain"`
	Thunder WeatherTuning `yaml:"thunder"`
}

// DefaultConfig returns tuning for a powered flier.
func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		Profile:              "powered",
		DecisionInterval:     40,
		DecisionJitter:       20,
		TakeoffChance:        0.002,
		OwnerTakeoffDistance: 32,
		ProtectRadius:        12,
		DangerDepth:          6,
		LandingCooldown:      600,
		RainLandingCooldown:  200,
		TakeoffTicks:         20,
		TakeoffClimb:         6,
		SettleTicks:          10,
		HoverTicks:           30,
		SinkRate:             0.05,
		CruiseAltitude:       12,
		WaypointDistance:     24,
		WaypointSpread:       60,
		WaypointInterval:     100,
		MinWaypointInterval:  20,
		WaypointCandidates:   16,
		MinClearFraction:     0.95,
		Clear:                WeatherTuning{TakeoffBias: 1, ContinueChance: 0.9, AltitudeScale: 1},
		Rain:                 WeatherTuning{TakeoffBias: 0.5, ContinueChance: 0.7, AltitudeScale: 0.7},
		Thunder:              WeatherTuning{TakeoffBias: 1.5, ContinueChance: 0.95, AltitudeScale: 0.5},
	}
}

// Weather returns the tuning for w.
func (c Config) Weather(w model.Weather) WeatherTuning {
	switch w {
	case model.WeatherRain:
		return c.Rain
	case model.WeatherThunder:
		return c.Thunder
	default:
		return c.Clear
	}
}

// LandingCooldownFor returns the post-landing cooldown under w:
// shortened in rain, zeroed in storms.
func (c Config) LandingCooldownFor(w model.Weather) int {
	switch w {
	case model.WeatherRain:
		return min(c.LandingCooldown, c.RainLandingCooldown)
	case model.WeatherThunder:
		return 0
	default:
		return c.LandingCooldown
	}
}

// Validate checks config bounds.
func (c Config) Validate() error {
	if c.DecisionInterval < 1 {
		return fmt.Errorf("flight: decision_interval must be positive")
	}
	if c.DecisionJitter < 0 {
		return fmt.Errorf("flight: decision_jitter must not be negative")
	}
	if c.WaypointCandidates < 1 {
		return fmt.Errorf("flight: waypoint_candidates must be positive")
	}
	if c.MinClearFraction <= 0 || c.MinClearFraction > 1 {
		return fmt.Errorf("flight: min_clear_fraction must be in (0, 1]")
	}
	if c.MinWaypointInterval < 1 || c.WaypointInterval < c.MinWaypointInterval {
		return fmt.Errorf("flight: invalid waypoint interval range [%d, %d]", c.MinWaypointInterval, c.WaypointInterval)
	}
	for name, t := range map[string]WeatherTuning{"clear": c.Clear, "rain": c.Rain, "thunder": c.Thunder} {
		if t.ContinueChance < 0 || t.ContinueChance > 1 {
			return fmt.Errorf("flight: %s continue_chance must be in [0, 1]", name)
		}
	}
	return nil
}
