package gait

import (
	"github.com/zeusync/strider/internal/core/ik"
	"github.com/zeusync/strider/internal/core/physics"
)

// Leg is the gait intent of one limb: where its foot rests relative to the
// anchor, where it is currently reaching, and which group it steps with.
type Leg struct {
	targetOffset  physics.Vec3
	currentTarget physics.Vec3
	group         Group
}

func NewLeg(targetOffset, currentTarget physics.Vec3, group Group) *Leg {
	return &Leg{
		targetOffset:  targetOffset,
		currentTarget: currentTarget,
		group:         group,
	}
}

func (l *Leg) TargetOffset() physics.Vec3  { return l.targetOffset }
func (l *Leg) CurrentTarget() physics.Vec3 { return l.currentTarget }
func (l *Leg) Group() Group                { return l.group }

// Neutral is the resting foot position for the given anchor.
func (l *Leg) Neutral(anchor physics.Vec3) physics.Vec3 {
	return anchor.Add(l.targetOffset)
}

// Error is how far the current target has drifted from the neutral placement.
func (l *Leg) Error(anchor physics.Vec3) float64 {
	return physics.Distance(l.Neutral(anchor), l.currentTarget)
}

func (l *Leg) replant(anchor physics.Vec3) {
	l.currentTarget = l.Neutral(anchor)
}

// Limb pairs a chain with the leg that drives it.
type Limb struct {
	ID    string
	Chain *ik.Chain
	Leg   *Leg
}

// Error of the limb at its chain's current anchor.
func (l Limb) Error() float64 {
	return l.Leg.Error(l.Chain.Anchor())
}
