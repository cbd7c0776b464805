package model

import "github.com/google/uuid"

// Kind classifies world entities for scans.
type Kind int32

const (
	KindUnknown Kind = iota
	KindCreature
	KindPlayer
	KindProjectile
)

// String returns human-readable kind name
func (k Kind) String() string {
	switch k {
	case KindCreature:
		return "CREATURE"
	case KindPlayer:
		return "PLAYER"
	case KindProjectile:
		return "PROJECTILE"
	default:
		return "UNKNOWN"
	}
}

// Entity is the read-only view of anything living in the world: creatures,
// players, projectiles. References are non-owning and must be re-validated
// via Alive() every tick.
type Entity interface {
	ID() uuid.UUID
	Kind() Kind
	Position() Vec3
	Velocity() Vec3
	Radius() float64
	Alive() bool
}

// Body is the physics-side handle an Agent steers. Position integration,
// gravity and collision belong to the physics collaborator.
type Body interface {
	Entity

	SetVelocity(v Vec3)
	Yaw() float64
	SetYaw(yaw float64)
	Pitch() float64
	SetPitch(pitch float64)
	OnGround() bool
	HorizontalCollision() bool
	SetNoGravity(noGravity bool)
	Teleport(pos Vec3)
	Health() (current, max float64)
}

// Sleeper is implemented by entities that can report being asleep (e.g. an owner player).
type Sleeper interface {
	Sleeping() bool
}

// Young is implemented by entities that can be protected dependents.
type Young interface {
	IsYoung() bool
}

// Animator fires named presentation triggers ("dodge", "sleep_enter", ...).
// The core decides when; rendering and audio are external.
type Animator interface {
	Fire(agent uuid.UUID, trigger string)
}

// AnimatorFunc adapts a function to Animator.
type AnimatorFunc func(agent uuid.UUID, trigger string)

// Fire implements Animator.
func (f AnimatorFunc) Fire(agent uuid.UUID, trigger string) {
	f(agent, trigger)
}

// NopAnimator discards triggers.
type NopAnimator struct{}

// Fire implements Animator.
func (NopAnimator) Fire(uuid.UUID, string) {}
