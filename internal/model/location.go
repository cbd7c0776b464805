package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3: позиция или вектор в мировых координатах (X east, Y up, Z south).
// Value type, передаётся по значению.
type Vec3 = mgl64.Vec3

// Up is the world up axis.
var Up = Vec3{0, 1, 0}

// DistanceSquared returns squared distance between two points (no sqrt on hot path).
func DistanceSquared(a, b Vec3) float64 {
	return a.Sub(b).LenSqr()
}

// HorizontalDistanceSquared ignores the Y axis.
func HorizontalDistanceSquared(a, b Vec3) float64 {
	dx := a.X() - b.X()
	dz := a.Z() - b.Z()
	return dx*dx + dz*dz
}

// Horizontal returns v with Y zeroed.
func Horizontal(v Vec3) Vec3 {
	return Vec3{v.X(), 0, v.Z()}
}

// SafeNormalize returns the unit vector of v, or zero and false when v is degenerate.
func SafeNormalize(v Vec3) (Vec3, bool) {
	l := v.Len()
	if l < 1e-9 {
		return Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// ClampLength scales v down so that |v| <= limit.
func ClampLength(v Vec3, limit float64) Vec3 {
	l := v.Len()
	if l <= limit || l == 0 {
		return v
	}
	return v.Mul(limit / l)
}

// YawOf returns heading in radians of v projected onto XZ (0 = +X, pi/2 = +Z).
func YawOf(v Vec3) float64 {
	return math.Atan2(v.Z(), v.X())
}

// PitchOf returns elevation in radians of v (positive = up).
func PitchOf(v Vec3) float64 {
	h := math.Hypot(v.X(), v.Z())
	return math.Atan2(v.Y(), h)
}

// DirectionOf builds a unit vector from yaw and pitch.
func DirectionOf(yaw, pitch float64) Vec3 {
	cp := math.Cos(pitch)
	return Vec3{math.Cos(yaw) * cp, math.Sin(pitch), math.Sin(yaw) * cp}
}

// WrapAngle maps an angle into (-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// ApproachAngle rotates from current toward target by at most maxStep radians.
func ApproachAngle(current, target, maxStep float64) float64 {
	delta := WrapAngle(target - current)
	if delta > maxStep {
		delta = maxStep
	} else if delta < -maxStep {
		delta = -maxStep
	}
	return WrapAngle(current + delta)
}
