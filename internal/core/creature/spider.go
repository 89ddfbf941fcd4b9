package creature

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/strider/internal/core/events/bus"
	"github.com/zeusync/strider/internal/core/gait"
	"github.com/zeusync/strider/internal/core/ik"
	"github.com/zeusync/strider/internal/core/observability/log"
	"github.com/zeusync/strider/internal/core/physics"
	"github.com/zeusync/strider/pkg/concurrent"
)

// Spider owns a body position, its limbs and the gait controller that drives
// them. It is not safe for concurrent use; one goroutine runs the ticks.
type Spider struct {
	id          string
	position    physics.Vec3
	limbs       []gait.Limb
	controller  *gait.Controller
	solver      ik.Solver
	speed       float64
	parallelism int
	ticks       uint64

	bus    bus.EventBus
	logger log.Log
}

// New spawns a spider from cfg. eventBus and logger may be nil.
func New(cfg Config, eventBus bus.EventBus, logger log.Log) (*Spider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}

	id := uuid.NewString()
	s := &Spider{
		id:          id,
		position:    cfg.Layout.Spawn,
		limbs:       make([]gait.Limb, 0, len(cfg.Layout.Slots)),
		controller:  gait.NewController(cfg.ErrorThreshold),
		solver:      cfg.Solver(),
		speed:       cfg.MoveSpeed,
		parallelism: cfg.Parallelism,
		bus:         eventBus,
		logger:      logger.With(log.String("spider", id)),
	}

	for i, slot := range cfg.Layout.Slots {
		limb, err := cfg.Layout.Limb(fmt.Sprintf("leg-%d", i), slot)
		if err != nil {
			return nil, err
		}
		s.limbs = append(s.limbs, limb)
	}

	s.logger.Info("spider spawned",
		log.Int("legs", len(s.limbs)),
		log.Stringer("active", s.controller.Active()),
	)
	return s, nil
}

func (s *Spider) ID() string                   { return s.id }
func (s *Spider) Position() physics.Vec3       { return s.position }
func (s *Spider) Controller() *gait.Controller { return s.controller }
func (s *Spider) Ticks() uint64                { return s.ticks }
func (s *Spider) Speed() float64               { return s.speed }

// Limbs returns the limbs in slot order. The chains and legs are shared.
func (s *Spider) Limbs() []gait.Limb {
	out := make([]gait.Limb, len(s.limbs))
	copy(out, s.limbs)
	return out
}

// SetObserver attaches a solve observer, or detaches it when nil. With
// parallel solving the observer is called from several goroutines.
func (s *Spider) SetObserver(o ik.SolveObserver) {
	s.solver.Observer = o
}

// Velocity converts a movement direction into this tick's displacement.
func (s *Spider) Velocity(dir physics.Vec3, dt float64) physics.Vec3 {
	return physics.NormalizeOrZero(dir).Mul(s.speed * dt)
}

// Translate moves the body and every anchor by delta. Joints are left for the
// solver.
func (s *Spider) Translate(delta physics.Vec3) {
	s.position = s.position.Add(delta)
	for _, l := range s.limbs {
		l.Chain.TranslateAnchor(delta)
	}
}

// StepGait updates the combined error and re-plants a group when needed.
// Anchors must already be translated for this tick.
func (s *Spider) StepGait() (gait.Flip, error) {
	flip := s.controller.Step(s.limbs)
	if !flip.Flipped {
		return flip, nil
	}

	s.logger.Debug("gait flipped",
		log.Uint64("tick", s.ticks),
		log.Stringer("active", flip.Active),
		log.Float64("error", flip.Error),
	)
	return flip, s.publish(flip)
}

// Solve runs the IK solver on every limb toward its current target.
func (s *Spider) Solve(ctx context.Context) error {
	defer func() { s.ticks++ }()

	if s.parallelism <= 1 {
		for _, l := range s.limbs {
			s.solver.Solve(l.Chain, l.Leg.CurrentTarget())
		}
		return nil
	}

	err := concurrent.ForEach(ctx, s.limbs, s.parallelism, func(_ context.Context, _ int, l gait.Limb) error {
		s.solver.Solve(l.Chain, l.Leg.CurrentTarget())
		return nil
	})
	if err != nil {
		return fmt.Errorf("solve limbs: %w", err)
	}
	return nil
}

// Tick advances the simulation by one step: anchors, then gait, then solve.
func (s *Spider) Tick(ctx context.Context, delta physics.Vec3) error {
	s.Translate(delta)
	_, gaitErr := s.StepGait()
	return errors.Join(gaitErr, s.Solve(ctx))
}

// Move ticks with the displacement for a movement direction held for dt seconds.
func (s *Spider) Move(ctx context.Context, dir physics.Vec3, dt float64) error {
	return s.Tick(ctx, s.Velocity(dir, dt))
}

func (s *Spider) publish(flip gait.Flip) error {
	if s.bus == nil {
		return nil
	}

	var errs []error
	if err := s.bus.Publish(bus.NewEvent(EventGaitFlipped, s.id, FlipEvent{
		SpiderID: s.id,
		Tick:     s.ticks,
		Active:   flip.Active,
		Error:    flip.Error,
	})); err != nil {
		errs = append(errs, err)
	}

	for _, idx := range flip.Replanted {
		l := s.limbs[idx]
		if err := s.bus.Publish(bus.NewEvent(EventLegRetargeted, s.id, RetargetEvent{
			SpiderID: s.id,
			Tick:     s.ticks,
			LimbID:   l.ID,
			Group:    l.Leg.Group(),
			Target:   l.Leg.CurrentTarget(),
		})); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("gait event handlers failed", log.Error(err))
		return fmt.Errorf("publish gait events: %w", err)
	}
	return nil
}
