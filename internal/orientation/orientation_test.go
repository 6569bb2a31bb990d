package orientation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	v := Normalize(Vec{3, 4, 0})
	assert.InDelta(t, 0.6, v.X, 1e-12)
	assert.InDelta(t, 0.8, v.Y, 1e-12)
	assert.Equal(t, 0.0, v.Z)

	// Zero stays zero instead of going NaN.
	assert.Equal(t, Vec{}, Normalize(Vec{}))
}

func TestRotateIdentity(t *testing.T) {
	v := Rotate(Quat{W: 1}, Vec{1, 2, 3})
	assert.InDelta(t, 1, v.X, 1e-12)
	assert.InDelta(t, 2, v.Y, 1e-12)
	assert.InDelta(t, 3, v.Z, 1e-12)
}

func TestRotateQuarterTurnZ(t *testing.T) {
	// 90 degrees around Z maps X onto Y.
	s := math.Sqrt(0.5)
	v := Rotate(Quat{W: s, Z: s}, Vec{1, 0, 0})
	assert.InDelta(t, 0, v.X, 1e-12)
	assert.InDelta(t, 1, v.Y, 1e-12)
	assert.InDelta(t, 0, v.Z, 1e-12)
}

func TestHeadingLevelDevice(t *testing.T) {
	// Level, right-side up: gravity along -Z. Field aligned with the
	// world reference projects to heading 0.
	a := Vec{0, 0, -1}

	h, ok := Heading(a, Vec{0, 1, 0})
	require.True(t, ok)
	assert.InDelta(t, 0, h, 1e-12)
}

func TestHeadingSignFlips(t *testing.T) {
	a := Vec{0, 0, -1}

	// Field rotated 90 degrees in the horizontal plane: the
	// cross-product rule picks the sign.
	h, ok := Heading(a, Vec{1, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, -math.Pi/2, h, 1e-12)

	h, ok = Heading(a, Vec{-1, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, math.Pi/2, h, 1e-12)
}

func TestHeadingNoMagnetometer(t *testing.T) {
	h, ok := Heading(Vec{0, 0, -1}, Vec{})
	assert.False(t, ok)
	assert.Equal(t, 0.0, h)
}

func TestHeadingScaleInvariant(t *testing.T) {
	// Raw fixed-point magnitudes must not change the angle.
	a := Vec{0, 100, -8000}
	m := Vec{300, 200, -50}

	h1, ok := Heading(a, m)
	require.True(t, ok)
	h2, ok := Heading(Vec{a.X * 4, a.Y * 4, a.Z * 4}, Vec{m.X * 9, m.Y * 9, m.Z * 9})
	require.True(t, ok)
	assert.InDelta(t, h1, h2, 1e-9)
}

func TestPitchMillirad(t *testing.T) {
	assert.Equal(t, 785.0, PitchMillirad(1, 1))
	assert.Equal(t, 0.0, PitchMillirad(0, 1))
	assert.Equal(t, -1571.0, PitchMillirad(-1, 0))
}

func TestSmoothPitchBlends(t *testing.T) {
	assert.InDelta(t, 5.0, SmoothPitch(0, 100), 1e-12)
	assert.InDelta(t, 0.95*1000+0.05*1200, SmoothPitch(1000, 1200), 1e-12)
}

func TestSmoothPitchSnapsAcrossWraparound(t *testing.T) {
	// Raw pitch jumped across the ±pi boundary: blending would average
	// two far ends of the range, so the value snaps instead.
	assert.Equal(t, 3100.0, SmoothPitch(-3000, 3100))
	assert.Equal(t, -3100.0, SmoothPitch(3000, -3100))

	// Same signs near the boundary keep blending.
	assert.InDelta(t, 0.95*2500+0.05*2600, SmoothPitch(2500, 2600), 1e-12)
}
