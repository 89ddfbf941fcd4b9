package creature

import (
	"github.com/zeusync/strider/internal/core/gait"
	"github.com/zeusync/strider/internal/core/physics"
)

// Event types published on the bus.
const (
	EventGaitFlipped   = "gait.flipped"
	EventLegRetargeted = "leg.retargeted"
)

// FlipEvent is the payload of EventGaitFlipped.
type FlipEvent struct {
	SpiderID string
	Tick     uint64
	Active   gait.Group
	Error    float64
}

// RetargetEvent is the payload of EventLegRetargeted.
type RetargetEvent struct {
	SpiderID string
	Tick     uint64
	LimbID   string
	Group    gait.Group
	Target   physics.Vec3
}
