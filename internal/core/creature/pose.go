package creature

import (
	"github.com/zeusync/strider/internal/core/physics"
	"github.com/zeusync/strider/internal/core/protocol"
)

// SegmentPose places one rigid segment visual.
type SegmentPose struct {
	physics.Transform
	Length float64
}

// LimbPose holds the segment visuals of one limb in chain order.
type LimbPose struct {
	ID       string
	Segments []SegmentPose
}

// SegmentPoses returns a visual placement for every segment of every limb:
// centred on the segment midpoint at rest length, forward axis along the
// segment, +Y as the up hint.
func (s *Spider) SegmentPoses() []LimbPose {
	out := make([]LimbPose, len(s.limbs))
	for i, l := range s.limbs {
		segs := make([]SegmentPose, l.Chain.Segments())
		for j := range segs {
			seg := l.Chain.Segment(j)
			segs[j] = SegmentPose{
				Transform: physics.SegmentTransform(seg.Start, seg.End, seg.Length),
				Length:    seg.Length,
			}
		}
		out[i] = LimbPose{ID: l.ID, Segments: segs}
	}
	return out
}

// Snapshot captures the current state for the pose stream.
func (s *Spider) Snapshot() protocol.Pose {
	legs := make([]protocol.LegPose, len(s.limbs))
	for i, l := range s.limbs {
		joints := l.Chain.Joints()
		lp := protocol.LegPose{
			ID:     l.ID,
			Group:  l.Leg.Group().Number(),
			Joints: make([]protocol.Vec, len(joints)),
			Target: protocol.Vec(l.Leg.CurrentTarget()),
		}
		for j, p := range joints {
			lp.Joints[j] = protocol.Vec(p)
		}
		legs[i] = lp
	}

	return protocol.Pose{
		SpiderID: s.id,
		Tick:     s.ticks,
		Body:     protocol.Vec(s.position),
		Active:   s.controller.Active().Number(),
		Error:    s.controller.CombinedError(),
		Legs:     legs,
	}
}
