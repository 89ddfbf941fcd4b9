package ik

import (
	"github.com/zeusync/strider/internal/core/physics"
)

const (
	DefaultIterations  = 10
	DefaultBendEpsilon = 0.01
)

// SolveObserver receives the orientations computed by the bend pass. It exists
// for debug drawing; the solver behaves the same with or without one.
type SolveObserver interface {
	OnBend(origin physics.Vec3, leg, joint physics.Quat)
}

// Solver moves a chain's joints toward a target with forward/backward reaching
// followed by a bend bias on the first joint.
type Solver struct {
	Iterations  int
	BendEpsilon float64
	Up          physics.Vec3
	Observer    SolveObserver
}

func DefaultSolver() Solver {
	return Solver{
		Iterations:  DefaultIterations,
		BendEpsilon: DefaultBendEpsilon,
		Up:          physics.Up,
	}
}

// Solve updates c in place. After it returns joint 0 equals the anchor exactly.
func (s Solver) Solve(c *Chain, target physics.Vec3) {
	up := s.Up
	if up == physics.Zero {
		up = physics.Up
	}
	for range s.Iterations {
		BackwardPass(c, target)
		ForwardPass(c)
		s.bend(c, up)
	}
	// zero iterations still pins the chain to its anchor
	c.joints[0] = c.anchor
}

// BackwardPass places the end effector on target and walks toward the root,
// keeping each segment at its rest length. The anchor is ignored.
func BackwardPass(c *Chain, target physics.Vec3) {
	last := len(c.joints) - 1
	c.joints[last] = target
	for i := last - 1; i >= 0; i-- {
		dir := physics.NormalizeOrZero(c.joints[i].Sub(c.joints[i+1]))
		c.joints[i] = c.joints[i+1].Add(dir.Mul(c.lengths[i]))
	}
}

// ForwardPass pins joint 0 to the anchor and walks outward restoring lengths.
func ForwardPass(c *Chain) {
	c.joints[0] = c.anchor
	for i := 0; i < len(c.joints)-1; i++ {
		dir := physics.NormalizeOrZero(c.joints[i+1].Sub(c.joints[i]))
		c.joints[i+1] = c.joints[i].Add(dir.Mul(c.lengths[i]))
	}
}

// BendPass rotates joint 1 about joint 0 so the first segment never pitches
// below epsilon relative to the root-to-end line and carries no yaw away from it.
// Only the first segment's length is preserved; the next reaching passes absorb
// the drift on segment 1.
//
// Only pitch below epsilon is corrected. Pitch above it is never limited, so a
// chain can fold arbitrarily far in the preferred direction.
func BendPass(c *Chain, up physics.Vec3, epsilon float64) {
	Solver{BendEpsilon: epsilon, Up: up}.bend(c, up)
}

func (s Solver) bend(c *Chain, up physics.Vec3) {
	origin := c.joints[0]
	leg := physics.LookingAt(origin, c.joints[len(c.joints)-1], up)
	joint := physics.LookingAt(origin, c.joints[1], up)

	pitch, yaw, _ := physics.ToEulerXYZ(leg.Inverse().Mul(joint))

	pitchCorrection := 0.0
	if pitch < s.BendEpsilon {
		pitchCorrection = s.BendEpsilon - pitch
	}

	corrected := joint.Mul(physics.FromEulerXYZ(pitchCorrection, -yaw, 0))
	c.joints[1] = origin.Add(corrected.Rotate(physics.Forward.Mul(c.lengths[0])))

	if s.Observer != nil {
		s.Observer.OnBend(origin, leg, joint)
	}
}
