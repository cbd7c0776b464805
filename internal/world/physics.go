package world

import (
	"github.com/udisondev/beastmind/internal/model"
)

// Kinematic constants for the demo integrator (blocks, ticks).
const (
	Gravity     = 0.08
	AirDrag     = 0.98
	GroundDrag  = 0.8
	groundSnapY = 1e-6
)

// Step integrates every object by one tick: gravity, drag, terrain contacts.
// Projectiles that hit terrain are removed. Must not run concurrently with
// agent ticks.
func (w *World) Step() {
	w.mu.RLock()
	objects := make([]*model.WorldObject, 0, len(w.objects))
	for _, obj := range w.objects {
		objects = append(objects, obj)
	}
	w.mu.RUnlock()

	for _, obj := range objects {
		if !obj.Alive() {
			continue
		}
		if w.integrate(obj) {
			w.RemoveObject(obj.ID())
			continue
		}
		w.relocate(obj)
	}
}

// integrate advances obj and returns true when a projectile hit terrain.
func (w *World) integrate(obj *model.WorldObject) bool {
	pos := obj.Position()
	vel := obj.Velocity()

	if !obj.NoGravity() && !(obj.OnGround() && vel.Y() <= 0) {
		vel = vel.Sub(model.Vec3{0, Gravity, 0})
	}

	next := pos.Add(vel)
	horizontal := false

	if obj.Kind() == model.KindProjectile {
		if w.Solid(next) {
			obj.Kill()
			return true
		}
		obj.SetPosition(next)
		obj.SetVelocity(vel.Mul(AirDrag))
		return false
	}

	// horizontal move blocked by an obstacle
	ahead := model.Vec3{next.X(), pos.Y() + 0.5, next.Z()}
	if w.Solid(ahead) {
		next = model.Vec3{pos.X(), next.Y(), pos.Z()}
		vel = model.Vec3{0, vel.Y(), 0}
		horizontal = true
	}

	ground := w.GroundHeight(next.X(), next.Z())
	onGround := false
	if next.Y() <= ground+groundSnapY {
		next = model.Vec3{next.X(), ground, next.Z()}
		if vel.Y() < 0 {
			vel = model.Vec3{vel.X(), 0, vel.Z()}
		}
		onGround = true
	}

	drag := AirDrag
	if onGround {
		drag = GroundDrag
	}
	vel = model.Vec3{vel.X() * drag, vel.Y() * AirDrag, vel.Z() * drag}

	obj.SetPosition(next)
	obj.SetVelocity(vel)
	obj.SetContacts(onGround, horizontal)
	return false
}
