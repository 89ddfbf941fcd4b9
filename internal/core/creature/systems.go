package creature

import (
	"context"

	"github.com/zeusync/strider/internal/core/physics"
	"github.com/zeusync/strider/internal/core/systems"
)

// MovementSystem translates the spider by the direction its input source
// reports for the frame.
type MovementSystem struct {
	spider *Spider
	input  func() physics.Vec3
}

func NewMovementSystem(spider *Spider, input func() physics.Vec3) *MovementSystem {
	return &MovementSystem{spider: spider, input: input}
}

func (m *MovementSystem) Name() string                  { return "creature.movement" }
func (m *MovementSystem) Phase() systems.ExecutionPhase { return systems.PhasePreUpdate }
func (m *MovementSystem) Priority() systems.Priority    { return systems.PriorityNormal }

func (m *MovementSystem) Update(deltaTime float64) error {
	var dir physics.Vec3
	if m.input != nil {
		dir = m.input()
	}
	m.spider.Translate(m.spider.Velocity(dir, deltaTime))
	return nil
}

// GaitSystem measures drift and re-plants feet.
type GaitSystem struct {
	spider *Spider
}

func NewGaitSystem(spider *Spider) *GaitSystem {
	return &GaitSystem{spider: spider}
}

func (g *GaitSystem) Name() string                  { return "creature.gait" }
func (g *GaitSystem) Phase() systems.ExecutionPhase { return systems.PhaseUpdate }
func (g *GaitSystem) Priority() systems.Priority    { return systems.PriorityNormal }

func (g *GaitSystem) Update(float64) error {
	_, err := g.spider.StepGait()
	return err
}

// SolveSystem runs the IK solver on every limb.
type SolveSystem struct {
	ctx    context.Context
	spider *Spider
}

func NewSolveSystem(ctx context.Context, spider *Spider) *SolveSystem {
	return &SolveSystem{ctx: ctx, spider: spider}
}

func (s *SolveSystem) Name() string                  { return "creature.solve" }
func (s *SolveSystem) Phase() systems.ExecutionPhase { return systems.PhasePostUpdate }
func (s *SolveSystem) Priority() systems.Priority    { return systems.PriorityNormal }

func (s *SolveSystem) Update(float64) error {
	return s.spider.Solve(s.ctx)
}

// Register adds the three simulation systems to the scheduler.
func Register(ctx context.Context, scheduler *systems.Scheduler, spider *Spider, input func() physics.Vec3) error {
	for _, sys := range []systems.System{
		NewMovementSystem(spider, input),
		NewGaitSystem(spider),
		NewSolveSystem(ctx, spider),
	} {
		if err := scheduler.Register(sys); err != nil {
			return err
		}
	}
	return nil
}
