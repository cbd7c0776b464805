package model

import (
	"sync"

	"github.com/google/uuid"
)

// WorldObject: базовый объект мира: существа, игроки, снаряды.
// Реализует Body; физика мира (world.Step) интегрирует позицию.
type WorldObject struct {
	id     uuid.UUID
	kind   Kind
	name   string
	radius float64
	Data   any // owning Agent or other payload

	mu         sync.RWMutex
	position   Vec3
	velocity   Vec3
	yaw        float64
	pitch      float64
	onGround   bool
	hCollision bool
	noGravity  bool
	alive      bool
	sleeping   bool
	young      bool
	hp         float64
	maxHP      float64
}

// NewWorldObject создаёт новый живой объект с полным здоровьем.
func NewWorldObject(id uuid.UUID, kind Kind, name string, pos Vec3, radius, maxHP float64) *WorldObject {
	return &WorldObject{
		id:       id,
		kind:     kind,
		name:     name,
		radius:   radius,
		position: pos,
		alive:    true,
		hp:       maxHP,
		maxHP:    maxHP,
	}
}

// ID returns the immutable identity.
func (w *WorldObject) ID() uuid.UUID { return w.id }

// Kind returns the entity class.
func (w *WorldObject) Kind() Kind { return w.kind }

// Name returns the display name.
func (w *WorldObject) Name() string { return w.name }

// Radius returns the collision radius.
func (w *WorldObject) Radius() float64 { return w.radius }

// Position returns a copy of the current position.
func (w *WorldObject) Position() Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.position
}

// SetPosition moves the object without touching velocity.
func (w *WorldObject) SetPosition(pos Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.position = pos
}

// Teleport moves the object and zeroes its velocity.
func (w *WorldObject) Teleport(pos Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.position = pos
	w.velocity = Vec3{}
}

// Velocity returns a copy of the current velocity (blocks per tick).
func (w *WorldObject) Velocity() Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.velocity
}

// SetVelocity replaces the velocity.
func (w *WorldObject) SetVelocity(v Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.velocity = v
}

// Yaw returns heading in radians.
func (w *WorldObject) Yaw() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.yaw
}

// SetYaw sets heading in radians.
func (w *WorldObject) SetYaw(yaw float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.yaw = WrapAngle(yaw)
}

// Pitch returns elevation in radians.
func (w *WorldObject) Pitch() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pitch
}

// SetPitch sets elevation in radians.
func (w *WorldObject) SetPitch(pitch float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pitch = pitch
}

// OnGround reports ground contact from the last physics step.
func (w *WorldObject) OnGround() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.onGround
}

// HorizontalCollision reports a horizontal collision during the last physics step.
func (w *WorldObject) HorizontalCollision() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hCollision
}

// SetContacts is called by the physics step.
func (w *WorldObject) SetContacts(onGround, horizontal bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onGround = onGround
	w.hCollision = horizontal
}

// NoGravity reports whether gravity is suspended (flying).
func (w *WorldObject) NoGravity() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.noGravity
}

// SetNoGravity toggles gravity.
func (w *WorldObject) SetNoGravity(noGravity bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.noGravity = noGravity
}

// Alive reports whether the object is still in the world and not dead.
func (w *WorldObject) Alive() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.alive
}

// Kill marks the object dead. Idempotent.
func (w *WorldObject) Kill() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alive = false
	w.hp = 0
}

// Health returns current and max health.
func (w *WorldObject) Health() (current, max float64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hp, w.maxHP
}

// SetHealth sets current health with clamp 0..max. Zero health kills.
func (w *WorldObject) SetHealth(hp float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hp = min(max(hp, 0), w.maxHP)
	if w.hp == 0 {
		w.alive = false
	}
}

// Sleeping implements Sleeper.
func (w *WorldObject) Sleeping() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sleeping
}

// SetSleeping sets the sleeping flag (owner players).
func (w *WorldObject) SetSleeping(sleeping bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sleeping = sleeping
}

// IsYoung implements Young.
func (w *WorldObject) IsYoung() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.young
}

// SetYoung marks the object as a protected dependent.
func (w *WorldObject) SetYoung(young bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.young = young
}
