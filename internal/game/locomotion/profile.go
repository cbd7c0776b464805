package locomotion

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Config holds ground movement tuning.
type Config struct {
	WalkSpeed float64 `yaml:"walk_speed"`
	RunSpeed  float64 `yaml:"run_speed"`

	MaxYawStep          float64 `yaml:"max_yaw_step"` // degrees per tick
	SpeedTransitionRate float64 `yaml:"speed_transition_rate"`
	ArriveRadius        float64 `yaml:"arrive_radius"`

	// StuckTicks is the number of consecutive horizontal-collision ticks
	// that mark the controller stuck.
	StuckTicks int `yaml:"stuck_ticks"`
	// GiveUpTicks is the number of ticks without progress to the target.
	GiveUpTicks int `yaml:"give_up_ticks"`

	// Derived groundMoveLevel thresholds (blocks per tick, horizontal).
	WalkThreshold float64 `yaml:"walk_threshold"`
	RunThreshold  float64 `yaml:"run_threshold"`
}

// DefaultConfig returns ground movement defaults.
func DefaultConfig() Config {
	return Config{
		WalkSpeed:           0.1,
		RunSpeed:            0.25,
		MaxYawStep:          30,
		SpeedTransitionRate: 0.3,
		ArriveRadius:        0.75,
		StuckTicks:          20,
		GiveUpTicks:         100,
		WalkThreshold:       0.02,
		RunThreshold:        0.12,
	}
}

// FlightProfile is a named bundle of air movement parameters.
type FlightProfile struct {
	Name string `yaml:"name"`

	MaxYawStep   float64 `yaml:"max_yaw_step"`   // degrees per tick
	MaxPitchStep float64 `yaml:"max_pitch_step"` // degrees per tick

	CruiseSpeed    float64 `yaml:"cruise_speed"`
	MinSpeedFactor float64 `yaml:"min_speed_factor"`
	MaxSpeedFactor float64 `yaml:"max_speed_factor"`

	// AccelerationCap limits the velocity change per tick.
	AccelerationCap float64 `yaml:"acceleration_cap"`
	// VelocityBlend is the fraction of the desired velocity blended in each tick.
	VelocityBlend float64 `yaml:"velocity_blend"`
}

// Profile names.
const (
	ProfileGlider  = "glider"
	ProfilePowered = "powered"
)

// GliderProfile turns slowly and never stalls below a minimum speed.
func GliderProfile() FlightProfile {
	return FlightProfile{
		Name:            ProfileGlider,
		MaxYawStep:      6,
		MaxPitchStep:    4,
		CruiseSpeed:     0.5,
		MinSpeedFactor:  0.6,
		MaxSpeedFactor:  1.4,
		AccelerationCap: 0.03,
		VelocityBlend:   0.1,
	}
}

// PoweredProfile turns fast and may hover in place.
func PoweredProfile() FlightProfile {
	return FlightProfile{
		Name:            ProfilePowered,
		MaxYawStep:      15,
		MaxPitchStep:    12,
		CruiseSpeed:     0.4,
		MinSpeedFactor:  0,
		MaxSpeedFactor:  1.2,
		AccelerationCap: 0.06,
		VelocityBlend:   0.25,
	}
}

// ProfileByName returns a built-in profile.
func ProfileByName(name string) (FlightProfile, error) {
	switch name {
	case ProfileGlider:
		return GliderProfile(), nil
	case ProfilePowered, "":
		return PoweredProfile(), nil
	default:
		return FlightProfile{}, fmt.Errorf("unknown flight profile %q", name)
	}
}

// Validate checks profile bounds.
func (p FlightProfile) Validate() error {
	if p.CruiseSpeed <= 0 {
		return fmt.Errorf("flight profile %s: cruise_speed must be positive", p.Name)
	}
	if p.MinSpeedFactor < 0 || p.MaxSpeedFactor < p.MinSpeedFactor {
		return fmt.Errorf("flight profile %s: invalid speed factor range [%v, %v]", p.Name, p.MinSpeedFactor, p.MaxSpeedFactor)
	}
	if p.VelocityBlend <= 0 || p.VelocityBlend > 1 {
		return fmt.Errorf("flight profile %s: velocity_blend must be in (0, 1]", p.Name)
	}
	return nil
}

func (p FlightProfile) yawStep() float64   { return mgl64.DegToRad(p.MaxYawStep) }
func (p FlightProfile) pitchStep() float64 { return mgl64.DegToRad(p.MaxPitchStep) }
