package ai

import "github.com/google/uuid"

// Controller is one ticked agent as seen by the TickManager.
type Controller interface {
	// ID returns the agent identity.
	ID() uuid.UUID

	// Start is called once on registration.
	Start()

	// Stop is called once on unregistration.
	Stop()

	// Tick advances the agent by one simulation step.
	// Different controllers may be ticked concurrently; one controller never is.
	Tick()
}
