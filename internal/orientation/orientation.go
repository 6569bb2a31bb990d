package orientation

import (
	"math"
)

// Vec is a 3D vector used for accelerometer/magnetometer math.
type Vec struct {
	X float64
	Y float64
	Z float64
}

// Quat is a rotation quaternion (w + xi + yj + zk).
type Quat struct {
	W float64
	X float64
	Y float64
	Z float64
}

// worldRef is the fixed world-frame reference vector the heading is
// measured against.
var worldRef = Vec{0, 1, 0}

func (v Vec) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns v scaled to unit length. A zero vector stays zero
// instead of producing NaNs.
func Normalize(v Vec) Vec {
	n := v.Norm()
	if n == 0 {
		return Vec{}
	}
	return Vec{v.X / n, v.Y / n, v.Z / n}
}

func Dot(a, b Vec) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func Cross(a, b Vec) Vec {
	return Vec{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (q Quat) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// NormalizeQuat returns q scaled to unit length. A zero quaternion
// becomes the identity.
func NormalizeQuat(q Quat) Quat {
	n := q.Norm()
	if n == 0 {
		return Quat{W: 1}
	}
	return Quat{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

func Conj(q Quat) Quat {
	return Quat{q.W, -q.X, -q.Y, -q.Z}
}

func MulQuat(a, b Quat) Quat {
	return Quat{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// Rotate applies the rotation q to v.
func Rotate(q Quat, v Vec) Vec {
	p := Quat{0, v.X, v.Y, v.Z}
	r := MulQuat(MulQuat(q, p), Conj(q))
	return Vec{r.X, r.Y, r.Z}
}

// Heading computes the tilt-compensated magnetic heading in radians from
// a raw accelerometer vector and a raw magnetometer vector (any scale).
// The gravity direction from the accelerometer is used to project the
// magnetic field onto the horizontal plane, which is then compared with
// the horizontal projection of the world reference vector.
//
// Returns ok=false (and heading 0) when the magnetometer vector is zero,
// i.e. the frame carried no magnetometer payload.
func Heading(accel, mag Vec) (float64, bool) {
	m := Normalize(mag)
	if m == (Vec{}) {
		return 0, false
	}
	a := Normalize(accel)

	// Strip the gravity-aligned component from the field vector.
	mVert := Dot(a, m)
	mHor := Normalize(Vec{m.X - mVert*a.X, m.Y - mVert*a.Y, m.Z - mVert*a.Z})

	hVert := Dot(a, worldRef)
	hHor := Normalize(Vec{worldRef.X - hVert*a.X, worldRef.Y - hVert*a.Y, worldRef.Z - hVert*a.Z})

	sign := -1.0
	if Dot(Cross(hHor, mHor), a) < 0 {
		sign = 1.0
	}
	return sign * math.Acos(Dot(hHor, mHor)), true
}

// PitchMillirad recomputes pitch from the accelerometer in the wire
// format's fixed-point angular scale (radians * 1000, rounded).
func PitchMillirad(ay, az float64) float64 {
	return math.Round(math.Atan2(ay, az) * 1000)
}

// pitchWrapLimit is the fixed-point angle magnitude beyond which the raw
// pitch is about to wrap sign (atan2 output near ±pi * 1000).
const pitchWrapLimit = 2000

// SmoothPitch blends a freshly computed pitch into the persisted smoothed
// value. Near the ±pi wraparound the blend would average two angles on
// opposite ends of the range, so the smoothed value snaps to the raw one
// instead. The snap check runs on the already-blended value, matching the
// sensor firmware's reference behavior.
func SmoothPitch(smoothed, raw float64) float64 {
	smoothed = smoothed*0.95 + 0.05*raw
	if raw > pitchWrapLimit && smoothed < -pitchWrapLimit {
		smoothed = raw
	}
	if raw < -pitchWrapLimit && smoothed > pitchWrapLimit {
		smoothed = raw
	}
	return smoothed
}
