package model

import "strings"

// GroundMoveLevel is the replicated walk/run indicator.
type GroundMoveLevel int32

const (
	GroundIdle GroundMoveLevel = 0
	GroundWalk GroundMoveLevel = 1
	GroundRun  GroundMoveLevel = 2
)

// String returns human-readable level name
func (l GroundMoveLevel) String() string {
	switch l {
	case GroundIdle:
		return "IDLE"
	case GroundWalk:
		return "WALK"
	case GroundRun:
		return "RUN"
	default:
		return "UNKNOWN"
	}
}

// FlightMode is the replicated flight sub-state. Grounded whenever not flying.
type FlightMode int32

const (
	FlightGrounded FlightMode = -1
	FlightGlide    FlightMode = 0
	FlightPowered  FlightMode = 1
	FlightHover    FlightMode = 2
	FlightTakeoff  FlightMode = 3
)

// String returns human-readable flight mode name
func (m FlightMode) String() string {
	switch m {
	case FlightGrounded:
		return "GROUNDED"
	case FlightGlide:
		return "GLIDE"
	case FlightPowered:
		return "POWERED"
	case FlightHover:
		return "HOVER"
	case FlightTakeoff:
		return "TAKEOFF"
	default:
		return "UNKNOWN"
	}
}

// AttackPhase is the replicated attack state.
type AttackPhase int32

const (
	AttackIdle AttackPhase = iota
	AttackWindup
	AttackActive
	AttackRecovery
)

// String returns human-readable attack phase name
func (p AttackPhase) String() string {
	switch p {
	case AttackIdle:
		return "IDLE"
	case AttackWindup:
		return "WINDUP"
	case AttackActive:
		return "ACTIVE"
	case AttackRecovery:
		return "RECOVERY"
	default:
		return "UNKNOWN"
	}
}

// SleepPhase is the replicated sleep state.
type SleepPhase int32

const (
	SleepAwake SleepPhase = iota
	SleepEntering
	SleepAsleep
	SleepExiting
)

// String returns human-readable sleep phase name
func (p SleepPhase) String() string {
	switch p {
	case SleepAwake:
		return "AWAKE"
	case SleepEntering:
		return "ENTERING"
	case SleepAsleep:
		return "ASLEEP"
	case SleepExiting:
		return "EXITING"
	default:
		return "UNKNOWN"
	}
}

// Weather as reported by the world.
type Weather int32

const (
	WeatherClear Weather = iota
	WeatherRain
	WeatherThunder
)

// String returns human-readable weather name
func (w Weather) String() string {
	switch w {
	case WeatherClear:
		return "CLEAR"
	case WeatherRain:
		return "RAIN"
	case WeatherThunder:
		return "THUNDER"
	default:
		return "UNKNOWN"
	}
}

// ParseWeather resolves a config name (clear, rain, thunder), case-insensitive.
func ParseWeather(name string) (Weather, bool) {
	for _, w := range []Weather{WeatherClear, WeatherRain, WeatherThunder} {
		if strings.EqualFold(w.String(), name) {
			return w, true
		}
	}
	return WeatherClear, false
}
