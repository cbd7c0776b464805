package locomotion

import "sync/atomic"

var debugLoggingEnabled atomic.Bool

// EnableDebugLogging toggles the per-tick debug records of the controller.
// ai.EnableDebugLogging forwards here; this package sits below ai.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}
