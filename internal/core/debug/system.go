package debug

import (
	"github.com/zeusync/strider/internal/core/creature"
	"github.com/zeusync/strider/internal/core/systems"
)

// GizmoSystem redraws the creature's gizmos after the solve phase. Orientation
// axes are recorded by the solver itself once the recorder is attached as its
// observer, so the reset happens before movement.
type GizmoSystem struct {
	gizmos *Gizmos
	spider *creature.Spider
}

func NewGizmoSystem(gizmos *Gizmos, spider *creature.Spider) *GizmoSystem {
	spider.SetObserver(gizmos)
	return &GizmoSystem{gizmos: gizmos, spider: spider}
}

func (s *GizmoSystem) Name() string                  { return "debug.gizmos" }
func (s *GizmoSystem) Phase() systems.ExecutionPhase { return systems.PhaseLateUpdate }
func (s *GizmoSystem) Priority() systems.Priority    { return systems.PriorityHigh }

func (s *GizmoSystem) Update(float64) error {
	s.gizmos.Sphere(s.spider.Position(), JointRadius*2, ColorBody)
	for _, l := range s.spider.Limbs() {
		ChainGizmos(s.gizmos, l.Chain)
		TargetGizmo(s.gizmos, l.Leg.CurrentTarget())
	}
	return nil
}

// ResetSystem clears the recorder at the start of a frame.
type ResetSystem struct {
	gizmos *Gizmos
}

func NewResetSystem(gizmos *Gizmos) *ResetSystem {
	return &ResetSystem{gizmos: gizmos}
}

func (s *ResetSystem) Name() string                  { return "debug.reset" }
func (s *ResetSystem) Phase() systems.ExecutionPhase { return systems.PhasePreUpdate }
func (s *ResetSystem) Priority() systems.Priority    { return systems.PriorityHighest }

func (s *ResetSystem) Update(float64) error {
	s.gizmos.Reset()
	return nil
}
