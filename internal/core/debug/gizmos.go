package debug

import (
	"sync"

	"github.com/zeusync/strider/internal/core/ik"
	"github.com/zeusync/strider/internal/core/physics"
)

// Color tags a shape by role; renderers pick the actual colour.
type Color uint8

const (
	ColorJoint Color = iota
	ColorSegment
	ColorTarget
	ColorBody
	ColorAxisX
	ColorAxisY
	ColorAxisZ
)

// ShapeKind enumerates what a Shape draws.
type ShapeKind uint8

const (
	KindSphere ShapeKind = iota
	KindLine
	KindRay
)

// Shape is one recorded primitive. For lines To is the end point; for rays it
// is Origin + direction.
type Shape struct {
	Kind   ShapeKind
	From   physics.Vec3
	To     physics.Vec3
	Radius float64
	Color  Color
}

// Flags toggle the independent gizmo layers.
type Flags struct {
	Joints      bool `yaml:"joints"`
	Segments    bool `yaml:"segments"`
	Targets     bool `yaml:"targets"`
	Orientation bool `yaml:"orientation"`
}

func AllFlags() Flags {
	return Flags{Joints: true, Segments: true, Targets: true, Orientation: true}
}

const (
	JointRadius = 0.1
	AxisLength  = 0.5
)

// Gizmos records debug shapes for one frame. It is safe for concurrent use so
// it can observe parallel solves.
type Gizmos struct {
	mu     sync.Mutex
	flags  Flags
	shapes []Shape
}

var _ ik.SolveObserver = (*Gizmos)(nil)

func NewGizmos(flags Flags) *Gizmos {
	return &Gizmos{flags: flags}
}

func (g *Gizmos) Flags() Flags {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flags
}

func (g *Gizmos) SetFlags(flags Flags) {
	g.mu.Lock()
	g.flags = flags
	g.mu.Unlock()
}

func (g *Gizmos) Sphere(center physics.Vec3, radius float64, color Color) {
	g.add(Shape{Kind: KindSphere, From: center, To: center, Radius: radius, Color: color})
}

func (g *Gizmos) Line(from, to physics.Vec3, color Color) {
	g.add(Shape{Kind: KindLine, From: from, To: to, Color: color})
}

func (g *Gizmos) Ray(origin, dir physics.Vec3, color Color) {
	g.add(Shape{Kind: KindRay, From: origin, To: origin.Add(dir), Color: color})
}

// Axes draws the local X, Y and Z axes of an orientation at position.
func (g *Gizmos) Axes(position physics.Vec3, orientation physics.Quat) {
	t := physics.Transform{Position: position, Rotation: orientation}
	x, y, z := t.Axes()
	g.Ray(position, x.Mul(AxisLength), ColorAxisX)
	g.Ray(position, y.Mul(AxisLength), ColorAxisY)
	g.Ray(position, z.Mul(AxisLength), ColorAxisZ)
}

// OnBend draws the leg and first-joint orientations of a bend pass.
func (g *Gizmos) OnBend(origin physics.Vec3, leg, joint physics.Quat) {
	if !g.Flags().Orientation {
		return
	}
	g.Axes(origin, leg)
	g.Axes(origin, joint)
}

// Reset drops everything recorded so far.
func (g *Gizmos) Reset() {
	g.mu.Lock()
	g.shapes = g.shapes[:0]
	g.mu.Unlock()
}

// Shapes returns a copy of the recorded shapes.
func (g *Gizmos) Shapes() []Shape {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Shape, len(g.shapes))
	copy(out, g.shapes)
	return out
}

func (g *Gizmos) add(s Shape) {
	g.mu.Lock()
	g.shapes = append(g.shapes, s)
	g.mu.Unlock()
}

// ChainGizmos draws a sphere on every joint and a line along every segment,
// subject to the recorder's flags.
func ChainGizmos(g *Gizmos, c *ik.Chain) {
	flags := g.Flags()
	if flags.Joints {
		for _, p := range c.Joints() {
			g.Sphere(p, JointRadius, ColorJoint)
		}
	}
	if flags.Segments {
		for i := range c.Segments() {
			seg := c.Segment(i)
			g.Line(seg.Start, seg.End, ColorSegment)
		}
	}
}

// TargetGizmo marks a foot target.
func TargetGizmo(g *Gizmos, target physics.Vec3) {
	if g.Flags().Targets {
		g.Sphere(target, JointRadius, ColorTarget)
	}
}
