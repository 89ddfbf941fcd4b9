package simulation

import (
	"github.com/zeusync/strider/internal/core/creature"
	"github.com/zeusync/strider/internal/core/systems"
	"github.com/zeusync/strider/internal/server"
)

// broadcastSystem pushes the pose of every finished tick to the hub.
type broadcastSystem struct {
	hub    *server.Hub
	spider *creature.Spider
}

func newBroadcastSystem(hub *server.Hub, spider *creature.Spider) *broadcastSystem {
	return &broadcastSystem{hub: hub, spider: spider}
}

func (b *broadcastSystem) Name() string                  { return "server.broadcast" }
func (b *broadcastSystem) Phase() systems.ExecutionPhase { return systems.PhaseLateUpdate }
func (b *broadcastSystem) Priority() systems.Priority    { return systems.PriorityLow }

func (b *broadcastSystem) Update(float64) error {
	_, err := b.hub.Broadcast(b.spider.Snapshot())
	return err
}
