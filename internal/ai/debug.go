package ai

import (
	"sync/atomic"

	"github.com/udisondev/beastmind/internal/game/locomotion"
)

// debugLoggingEnabled gates debug logging on scheduler and behavior hot paths,
// so per-tick code does not ask slog for the level on every call.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging toggles debug logging for the behavior core.
// Called from main after the log level is parsed.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
	locomotion.EnableDebugLogging(enabled)
}

// IsDebugEnabled reports whether debug logging is on. Guard expensive
// debug records with it:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("waypoint rejected", "candidates", describe(candidates))
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
