package creature

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/strider/internal/core/events/bus"
	"github.com/zeusync/strider/internal/core/gait"
	"github.com/zeusync/strider/internal/core/physics"
	"github.com/zeusync/strider/internal/core/systems"
)

func newSpider(t *testing.T, cfg Config, b bus.EventBus) *Spider {
	t.Helper()
	s, err := New(cfg, b, nil)
	require.NoError(t, err)
	return s
}

func TestDefaultLayoutSpawn(t *testing.T) {
	s := newSpider(t, DefaultConfig(), nil)
	limbs := s.Limbs()
	require.Len(t, limbs, 8)
	assert.Equal(t, physics.Vec3{-2, 1, 2}, s.Position())
	assert.Equal(t, gait.Group2, s.Controller().Active())

	groups := map[gait.Group]int{}
	for i, l := range limbs {
		slot := DefaultLayout().Slots[i]
		assert.Equal(t, physics.Vec3{-2, 1, 2}.Add(slot.Offset), l.Chain.Anchor(), "limb %d", i)
		assert.Equal(t, 3, l.Chain.Len())
		assert.InDelta(t, 0, l.Error(), 1e-12, "spawned at neutral")
		assert.InDelta(t, physics.Vec3{4, -0.5, 0}.Len(), l.Leg.TargetOffset().Len(), 1e-12)
		groups[l.Leg.Group()]++
	}
	assert.Equal(t, 4, groups[gait.Group1])
	assert.Equal(t, 4, groups[gait.Group2])
}

func TestSlotRotationIsYaw(t *testing.T) {
	layout := DefaultLayout()
	limb, err := layout.Limb("probe", Slot{AngleDeg: 90, Group: gait.Group1})
	require.NoError(t, err)

	// +X rotated a quarter turn about +Y points along -Z
	end := limb.Chain.End().Sub(limb.Chain.Anchor())
	assert.InDelta(t, 0, end[0], 1e-9)
	assert.InDelta(t, 0, end[1], 1e-9)
	assert.InDelta(t, -2, end[2], 1e-9)

	assert.InDelta(t, -4, limb.Leg.TargetOffset()[2], 1e-9)
	assert.InDelta(t, -0.5, limb.Leg.TargetOffset()[1], 1e-9)
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.ErrorThreshold = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = cfg
	bad.Layout.Slots = nil
	assert.ErrorIs(t, bad.Validate(), ErrNoSlots)

	bad = cfg
	bad.Layout.BasePoints = bad.Layout.BasePoints[:1]
	_, err := New(bad, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidBase)
}

func TestTickKeepsAnchorsPinned(t *testing.T) {
	s := newSpider(t, DefaultConfig(), nil)
	ctx := context.Background()
	for range 50 {
		require.NoError(t, s.Tick(ctx, physics.Vec3{0.05, 0, -0.02}))
	}
	assert.Equal(t, uint64(50), s.Ticks())
	for _, l := range s.Limbs() {
		assert.Equal(t, l.Chain.Anchor(), l.Chain.Joint(0), l.ID)
	}
}

func TestMoveUsesSpeed(t *testing.T) {
	s := newSpider(t, DefaultConfig(), nil)
	require.NoError(t, s.Move(context.Background(), physics.Vec3{0, 0, -5}, 0.5))
	assert.Equal(t, physics.Vec3{-2, 1, -1}, s.Position())

	require.NoError(t, s.Move(context.Background(), physics.Zero, 0.5))
	assert.Equal(t, physics.Vec3{-2, 1, -1}, s.Position())
}

func TestFlipScheduleThroughTick(t *testing.T) {
	b := bus.New()
	var flips []FlipEvent
	retargets := 0
	_, err := b.Subscribe(EventGaitFlipped, func(e bus.Event) error {
		flips = append(flips, e.Data().(FlipEvent))
		return nil
	})
	require.NoError(t, err)
	_, err = b.Subscribe(EventLegRetargeted, func(e bus.Event) error {
		ev := e.Data().(RetargetEvent)
		assert.Equal(t, flips[len(flips)-1].Active, ev.Group)
		retargets++
		return nil
	})
	require.NoError(t, err)

	s := newSpider(t, DefaultConfig(), b)
	// every foot of the active group drifts 0.13 per tick, four feet per group
	for range 100 {
		require.NoError(t, s.Tick(context.Background(), physics.Vec3{0.13, 0, 0}))
	}

	require.Len(t, flips, 4)
	wantTicks := []uint64{23, 47, 71, 95}
	wantGroups := []gait.Group{gait.Group1, gait.Group2, gait.Group1, gait.Group2}
	for i, f := range flips {
		assert.Equal(t, wantTicks[i], f.Tick, "flip %d", i)
		assert.Equal(t, wantGroups[i], f.Active, "flip %d", i)
		assert.InDelta(t, 12.48, f.Error, 1e-6)
		assert.Equal(t, s.ID(), f.SpiderID)
	}
	assert.Equal(t, 16, retargets)
	assert.Equal(t, uint64(4), s.Controller().Flips())
}

func TestHandlerErrorsSurfaceFromTick(t *testing.T) {
	b := bus.New()
	boom := errors.New("boom")
	_, _ = b.Subscribe(EventGaitFlipped, func(bus.Event) error { return boom })

	s := newSpider(t, DefaultConfig(), b)
	var err error
	for range 30 {
		if err = s.Tick(context.Background(), physics.Vec3{0.13, 0, 0}); err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, gait.Group1, s.Controller().Active(), "flip still applied")
}

func TestParallelSolveMatchesSequential(t *testing.T) {
	seq := newSpider(t, DefaultConfig(), nil)
	cfg := DefaultConfig()
	cfg.Parallelism = 4
	par := newSpider(t, cfg, nil)

	ctx := context.Background()
	dir := physics.Vec3{1, 0, -1}
	for range 120 {
		require.NoError(t, seq.Move(ctx, dir, 1.0/60))
		require.NoError(t, par.Move(ctx, dir, 1.0/60))
	}

	a, b := seq.Limbs(), par.Limbs()
	for i := range a {
		assert.Equal(t, a[i].Chain.Joints(), b[i].Chain.Joints(), a[i].ID)
		assert.Equal(t, a[i].Leg.CurrentTarget(), b[i].Leg.CurrentTarget(), a[i].ID)
	}
}

func TestFeetReachTargetsAtRest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 100
	s := newSpider(t, cfg, nil)
	require.NoError(t, s.Tick(context.Background(), physics.Zero))

	for _, l := range s.Limbs() {
		assert.InDelta(t, 0, physics.Distance(l.Chain.End(), l.Leg.CurrentTarget()), 1e-2, l.ID)
	}
}

func TestSegmentPoses(t *testing.T) {
	s := newSpider(t, DefaultConfig(), nil)
	poses := s.SegmentPoses()
	require.Len(t, poses, 8)

	for i, lp := range poses {
		chain := s.Limbs()[i].Chain
		require.Len(t, lp.Segments, 2)
		for j, seg := range lp.Segments {
			start, end := chain.Joint(j), chain.Joint(j+1)
			assert.InDelta(t, chain.Lengths()[j], seg.Length, 1e-12)

			mid := physics.Midpoint(start, end)
			assert.InDelta(t, 0, physics.Distance(mid, seg.Position), 1e-9)

			fwd := seg.Rotation.Rotate(physics.Forward)
			dir := physics.NormalizeOrZero(end.Sub(start))
			assert.InDelta(t, 0, physics.Distance(fwd, dir), 1e-9)
		}
	}
}

func TestSnapshot(t *testing.T) {
	s := newSpider(t, DefaultConfig(), nil)
	require.NoError(t, s.Tick(context.Background(), physics.Vec3{0.1, 0, 0}))

	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.SpiderID)
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Equal(t, 2, snap.Active)
	assert.InDelta(t, 0.4, snap.Error, 1e-9)
	require.Len(t, snap.Legs, 8)
	assert.Equal(t, "leg-0", snap.Legs[0].ID)
	assert.Equal(t, 1, snap.Legs[0].Group)
	assert.Len(t, snap.Legs[0].Joints, 3)
}

func TestSystemsDriveSameProtocolAsTick(t *testing.T) {
	ctx := context.Background()
	direct := newSpider(t, DefaultConfig(), nil)
	scheduled := newSpider(t, DefaultConfig(), nil)

	sched := systems.NewScheduler(nil)
	require.NoError(t, Register(ctx, sched, scheduled, func() physics.Vec3 { return physics.Vec3{1, 0, 0} }))
	assert.Equal(t, []string{"creature.movement", "creature.gait", "creature.solve"}, sched.ExecutionOrder())

	const dt = 1.0 / 30
	for range 90 {
		require.NoError(t, direct.Move(ctx, physics.Vec3{1, 0, 0}, dt))
		require.NoError(t, sched.Update(dt))
	}

	assert.Equal(t, direct.Ticks(), scheduled.Ticks())
	assert.Equal(t, direct.Position(), scheduled.Position())
	assert.Equal(t, direct.Controller().Flips(), scheduled.Controller().Flips())
	a, b := direct.Limbs(), scheduled.Limbs()
	for i := range a {
		assert.Equal(t, a[i].Chain.Joints(), b[i].Chain.Joints())
	}
}
