package ik

import (
	"errors"
	"fmt"

	"github.com/zeusync/strider/internal/core/physics"
)

var (
	ErrTooFewPoints = errors.New("ik chain needs at least 2 points")
	ErrSegmentIndex = errors.New("segment index out of range")
)

// Chain is a linear run of joints joined by rigid segments. Joint 0 follows the
// anchor; the last joint is the end effector. Segment lengths are fixed at
// construction and never change.
type Chain struct {
	anchor  physics.Vec3
	joints  []physics.Vec3
	lengths []float64
}

// Segment is a read-only view of the link between joints i and i+1.
type Segment struct {
	Start  physics.Vec3
	End    physics.Vec3
	Length float64
}

// Direction of the segment from Start to End, zero when the joints coincide.
func (s Segment) Direction() physics.Vec3 {
	return physics.NormalizeOrZero(s.End.Sub(s.Start))
}

// Stretch is the difference between the current joint distance and the rest length.
func (s Segment) Stretch() float64 {
	return physics.Distance(s.Start, s.End) - s.Length
}

// NewChain copies points into a new chain anchored at points[0].
func NewChain(points []physics.Vec3) (*Chain, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}

	joints := make([]physics.Vec3, len(points))
	copy(joints, points)

	lengths := make([]float64, len(points)-1)
	for i := range lengths {
		lengths[i] = physics.Distance(points[i], points[i+1])
	}

	return &Chain{
		anchor:  points[0],
		joints:  joints,
		lengths: lengths,
	}, nil
}

// MustNewChain is NewChain for fixed setup data; it panics on invalid input.
func MustNewChain(points []physics.Vec3) *Chain {
	c, err := NewChain(points)
	if err != nil {
		panic(err)
	}
	return c
}

// Segment returns the i-th segment. Asking for a segment that does not exist is a
// programming error and panics, like indexing past the end of a slice.
func (c *Chain) Segment(i int) Segment {
	s, err := c.SegmentAt(i)
	if err != nil {
		panic(err)
	}
	return s
}

// SegmentAt is Segment for callers that hold an index they did not compute themselves.
func (c *Chain) SegmentAt(i int) (Segment, error) {
	if i < 0 || i >= len(c.lengths) {
		return Segment{}, fmt.Errorf("%w: index %d, chain has %d segments", ErrSegmentIndex, i, len(c.lengths))
	}
	return Segment{
		Start:  c.joints[i],
		End:    c.joints[i+1],
		Length: c.lengths[i],
	}, nil
}

// TranslateAnchor moves the anchor only; joints catch up on the next solve.
func (c *Chain) TranslateAnchor(delta physics.Vec3) {
	c.anchor = c.anchor.Add(delta)
}

func (c *Chain) Anchor() physics.Vec3 { return c.anchor }

// Len is the number of joints.
func (c *Chain) Len() int { return len(c.joints) }

// Segments is the number of segments, always Len()-1.
func (c *Chain) Segments() int { return len(c.lengths) }

func (c *Chain) Joint(i int) physics.Vec3 { return c.joints[i] }

// End is the position of the end effector.
func (c *Chain) End() physics.Vec3 { return c.joints[len(c.joints)-1] }

// Joints returns a copy of the joint positions.
func (c *Chain) Joints() []physics.Vec3 {
	out := make([]physics.Vec3, len(c.joints))
	copy(out, c.joints)
	return out
}

// Lengths returns a copy of the rest lengths.
func (c *Chain) Lengths() []float64 {
	out := make([]float64, len(c.lengths))
	copy(out, c.lengths)
	return out
}

// TotalLength is the reach of the fully extended chain.
func (c *Chain) TotalLength() float64 {
	total := 0.0
	for _, l := range c.lengths {
		total += l
	}
	return total
}

// Reachable reports whether target lies within the chain's reach from the anchor.
func (c *Chain) Reachable(target physics.Vec3) bool {
	return physics.Distance(c.anchor, target) <= c.TotalLength()
}
