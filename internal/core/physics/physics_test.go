package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

// assertVecNear compares per component; mgl64's ApproxEqual turns into an
// epsilon² check whenever one side is zero.
func assertVecNear(t *testing.T, want, got Vec3, msgAndArgs ...any) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], tolerance, msgAndArgs...)
	}
}

func TestNormalizeOrZero(t *testing.T) {
	assert.Equal(t, Zero, NormalizeOrZero(Zero))
	assert.Equal(t, Zero, NormalizeOrZero(Vec3{1e-12, 0, 0}))

	n := NormalizeOrZero(Vec3{3, 0, 4})
	assert.InDelta(t, 1, n.Len(), tolerance)
	assert.InDelta(t, 0.6, n[0], tolerance)
	assert.InDelta(t, 0.8, n[2], tolerance)
}

func TestLookingTowardsMapsForwardOntoDirection(t *testing.T) {
	dirs := []Vec3{
		{1, 0, 0},
		{0, 0, -1},
		{1, 3, 0},
		{-2, -1, 5},
		{0, 1, 0}, // parallel to up
		{0, -1, 0},
	}
	for _, d := range dirs {
		q := LookingTowards(d, Up)
		require.InDelta(t, 1, q.Len(), 1e-9, "orientation must be unit for %v", d)

		got := q.Rotate(Forward)
		want := NormalizeOrZero(d)
		assertVecNear(t, want, got, "dir %v", d)
	}
}

func TestLookingTowardsKeepsUpwardHint(t *testing.T) {
	q := LookingTowards(Vec3{1, 0, 0}, Up)
	up := q.Rotate(Up)
	assertVecNear(t, Up, up, "local up")
}

func TestLookingTowardsZeroDirectionFallsBack(t *testing.T) {
	q := LookingAt(Vec3{1, 2, 3}, Vec3{1, 2, 3}, Up)
	got := q.Rotate(Forward)
	assertVecNear(t, Forward, got)
	assert.False(t, math.IsNaN(q.W))
}

func TestEulerXYZRoundTrip(t *testing.T) {
	cases := [][3]float64{
		{0, 0, 0},
		{0.3, -0.2, 0.1},
		{1.2, 0.4, -2.0},
		{-0.7, 1.1, 0.5},
	}
	for _, c := range cases {
		q := FromEulerXYZ(c[0], c[1], c[2])
		x, y, z := ToEulerXYZ(q)
		assert.InDelta(t, c[0], x, 1e-7)
		assert.InDelta(t, c[1], y, 1e-7)
		assert.InDelta(t, c[2], z, 1e-7)
	}
}

func TestEulerPitchBendsForwardUpward(t *testing.T) {
	// positive rotation about local X tilts the forward axis toward +Y
	q := FromEulerXYZ(0.5, 0, 0)
	f := q.Rotate(Forward)
	assert.Greater(t, f[1], 0.0)
}

func TestSegmentTransform(t *testing.T) {
	tr := SegmentTransform(Vec3{0, 0, 0}, Vec3{2, 0, 0}, 2)
	assertVecNear(t, Vec3{1, 0, 0}, tr.Position)
	_, _, z := tr.Axes()
	assertVecNear(t, Vec3{-1, 0, 0}, z, "back axis")
}
