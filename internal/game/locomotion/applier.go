package locomotion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/beastmind/internal/model"
)

// Applier turns a movement intent into velocity and rotation changes.
// hasTarget=false means "stop".
type Applier interface {
	Apply(body model.Body, target model.Vec3, speed float64, hasTarget bool)
}

// GroundApplier steers horizontally with a yaw cap and blends speed.
// Vertical velocity is left to physics.
type GroundApplier struct {
	cfg Config
}

// NewGroundApplier creates a ground applier.
func NewGroundApplier(cfg Config) *GroundApplier {
	return &GroundApplier{cfg: cfg}
}

// Apply implements Applier.
func (a *GroundApplier) Apply(body model.Body, target model.Vec3, speed float64, hasTarget bool) {
	vel := body.Velocity()
	desired := model.Vec3{}

	if hasTarget {
		dir, ok := model.SafeNormalize(model.Horizontal(target.Sub(body.Position())))
		if ok {
			yaw := model.ApproachAngle(body.Yaw(), model.YawOf(dir), mgl64.DegToRad(a.cfg.MaxYawStep))
			body.SetYaw(yaw)
			desired = model.DirectionOf(yaw, 0).Mul(speed)
		}
	}

	horizontal := model.Horizontal(vel)
	blended := horizontal.Add(desired.Sub(horizontal).Mul(a.cfg.SpeedTransitionRate))
	body.SetVelocity(model.Vec3{blended.X(), vel.Y(), blended.Z()})
}

// AirApplier steers in 3D with yaw/pitch caps, a speed factor clamp, an
// acceleration cap and velocity blending.
type AirApplier struct {
	profile FlightProfile
}

// NewAirApplier creates an air applier for profile.
func NewAirApplier(profile FlightProfile) *AirApplier {
	return &AirApplier{profile: profile}
}

// Profile returns the active flight profile.
func (a *AirApplier) Profile() FlightProfile {
	return a.profile
}

// Apply implements Applier.
func (a *AirApplier) Apply(body model.Body, target model.Vec3, speed float64, hasTarget bool) {
	p := a.profile
	vel := body.Velocity()
	desired := model.Vec3{}

	if hasTarget {
		to := target.Sub(body.Position())
		if dir, ok := model.SafeNormalize(to); ok {
			yaw := model.ApproachAngle(body.Yaw(), model.YawOf(dir), p.yawStep())
			pitch := model.ApproachAngle(body.Pitch(), model.PitchOf(dir), p.pitchStep())
			body.SetYaw(yaw)
			body.SetPitch(pitch)

			factor := speed / p.CruiseSpeed
			factor = mgl64.Clamp(factor, p.MinSpeedFactor, p.MaxSpeedFactor)
			desired = model.DirectionOf(yaw, pitch).Mul(p.CruiseSpeed * factor)
		}
	} else if p.MinSpeedFactor > 0 {
		// gliders cannot stop in the air, keep the minimum speed along the heading
		desired = model.DirectionOf(body.Yaw(), 0).Mul(p.CruiseSpeed * p.MinSpeedFactor)
	} else {
		body.SetPitch(model.ApproachAngle(body.Pitch(), 0, p.pitchStep()))
	}

	step := desired.Sub(vel).Mul(p.VelocityBlend)
	if p.AccelerationCap > 0 {
		step = model.ClampLength(step, p.AccelerationCap)
	}
	next := vel.Add(step)

	if limit := p.CruiseSpeed * math.Max(p.MaxSpeedFactor, 1); next.Len() > limit {
		next = model.ClampLength(next, limit)
	}
	body.SetVelocity(next)
}
