package creature

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeusync/strider/internal/core/gait"
	"github.com/zeusync/strider/internal/core/ik"
	"github.com/zeusync/strider/internal/core/physics"
)

var (
	ErrNoSlots     = errors.New("layout has no leg slots")
	ErrInvalidBase = errors.New("invalid leg base points")
)

// Slot places one leg on the body.
type Slot struct {
	Offset   physics.Vec3 `yaml:"offset"`
	AngleDeg float64      `yaml:"angle_deg"`
	Group    gait.Group   `yaml:"group"`
}

// Layout describes the body at spawn time. BasePoints is the rest pose of a
// single leg in its own frame; every slot reuses it rotated about +Y.
type Layout struct {
	Spawn        physics.Vec3   `yaml:"spawn"`
	BasePoints   []physics.Vec3 `yaml:"base_points"`
	TargetOffset physics.Vec3   `yaml:"target_offset"`
	Slots        []Slot         `yaml:"slots"`
}

// DefaultLayout is an eight-legged spider: four legs per side, groups
// alternating so that diagonal neighbours step together.
func DefaultLayout() Layout {
	return Layout{
		Spawn: physics.Vec3{-2, 1, 2},
		BasePoints: []physics.Vec3{
			{0, 0, 0},
			{1, 3, 0},
			{2, 0, 0},
		},
		TargetOffset: physics.Vec3{4, -0.5, 0},
		Slots: []Slot{
			{Offset: physics.Vec3{0.5, 0, -0.8}, AngleDeg: 40, Group: gait.Group1},
			{Offset: physics.Vec3{0.5, 0, -0.4}, AngleDeg: 10, Group: gait.Group2},
			{Offset: physics.Vec3{0.5, 0, 0.4}, AngleDeg: -10, Group: gait.Group1},
			{Offset: physics.Vec3{0.5, 0, 0.8}, AngleDeg: -40, Group: gait.Group2},
			{Offset: physics.Vec3{-0.5, 0, -0.8}, AngleDeg: 140, Group: gait.Group2},
			{Offset: physics.Vec3{-0.5, 0, -0.4}, AngleDeg: 170, Group: gait.Group1},
			{Offset: physics.Vec3{-0.5, 0, 0.4}, AngleDeg: 190, Group: gait.Group2},
			{Offset: physics.Vec3{-0.5, 0, 0.8}, AngleDeg: 220, Group: gait.Group1},
		},
	}
}

func (l Layout) Validate() error {
	if len(l.Slots) == 0 {
		return ErrNoSlots
	}
	if len(l.BasePoints) < 2 {
		return fmt.Errorf("%w: %w", ErrInvalidBase, ik.ErrTooFewPoints)
	}
	return nil
}

// Rotation is the slot's yaw about +Y.
func (s Slot) Rotation() physics.Quat {
	return physics.FromAxisAngle(physics.Up, s.AngleDeg*math.Pi/180)
}

// Limb builds the chain and leg for one slot. The chain starts at
// spawn + offset + rot·base[i]; the leg's target offset is rot·TargetOffset and
// its first target is the neutral placement in world space.
func (l Layout) Limb(id string, slot Slot) (gait.Limb, error) {
	rot := slot.Rotation()
	root := l.Spawn.Add(slot.Offset)

	points := make([]physics.Vec3, len(l.BasePoints))
	for i, p := range l.BasePoints {
		points[i] = root.Add(rot.Rotate(p))
	}
	chain, err := ik.NewChain(points)
	if err != nil {
		return gait.Limb{}, fmt.Errorf("%w: slot %s: %w", ErrInvalidBase, id, err)
	}

	offset := rot.Rotate(l.TargetOffset)
	return gait.Limb{
		ID:    id,
		Chain: chain,
		Leg:   gait.NewLeg(offset, chain.Anchor().Add(offset), slot.Group),
	}, nil
}
