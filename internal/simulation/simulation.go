package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/strider/internal/config"
	"github.com/zeusync/strider/internal/core/audio"
	"github.com/zeusync/strider/internal/core/creature"
	"github.com/zeusync/strider/internal/core/debug"
	"github.com/zeusync/strider/internal/core/events/bus"
	"github.com/zeusync/strider/internal/core/input"
	"github.com/zeusync/strider/internal/core/observability/log"
	"github.com/zeusync/strider/internal/core/physics"
	"github.com/zeusync/strider/internal/core/report"
	"github.com/zeusync/strider/internal/core/systems"
	"github.com/zeusync/strider/internal/server"
)

// Simulation owns one creature and the systems that drive and observe it.
type Simulation struct {
	cfg       config.Config
	logger    log.Log
	bus       bus.EventBus
	spider    *creature.Spider
	scheduler *systems.Scheduler
	gizmos    *debug.Gizmos
	hub       *server.Hub
	footsteps *audio.Footsteps
	recorder  *report.Recorder

	walk  physics.Vec3
	input func() physics.Vec3
}

func New(
	ctx context.Context,
	cfg config.Config,
	logger log.Log,
	eventBus bus.EventBus,
	spider *creature.Spider,
	scheduler *systems.Scheduler,
	gizmos *debug.Gizmos,
	hub *server.Hub,
	footsteps *audio.Footsteps,
	recorder *report.Recorder,
) (*Simulation, error) {
	keys, err := input.ParseKeys(cfg.Simulation.Walk)
	if err != nil {
		return nil, fmt.Errorf("%w: simulation.walk: %w", config.ErrInvalidConfig, err)
	}

	s := &Simulation{
		cfg:       cfg,
		logger:    logger,
		bus:       eventBus,
		spider:    spider,
		scheduler: scheduler,
		gizmos:    gizmos,
		hub:       hub,
		footsteps: footsteps,
		recorder:  recorder,
		walk:      input.Vector(keys),
	}
	s.input = func() physics.Vec3 { return s.walk }

	if err := creature.Register(ctx, scheduler, spider, func() physics.Vec3 { return s.input() }); err != nil {
		return nil, err
	}
	if cfg.Debug.View {
		for _, sys := range []systems.System{debug.NewResetSystem(gizmos), debug.NewGizmoSystem(gizmos, spider)} {
			if err := scheduler.Register(sys); err != nil {
				return nil, err
			}
		}
	}
	if cfg.Server.Enabled {
		if err := scheduler.Register(newBroadcastSystem(hub, spider)); err != nil {
			return nil, err
		}
	}
	if recorder != nil {
		if err := scheduler.Register(recorder); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Simulation) Spider() *creature.Spider       { return s.spider }
func (s *Simulation) Scheduler() *systems.Scheduler { return s.scheduler }
func (s *Simulation) Gizmos() *debug.Gizmos         { return s.gizmos }
func (s *Simulation) Hub() *server.Hub              { return s.hub }

// Report is nil unless the run report is enabled.
func (s *Simulation) Report() *report.Recorder { return s.recorder }

// Step runs one frame of every registered system.
func (s *Simulation) Step() error {
	return s.scheduler.Update(s.cfg.Simulation.Delta())
}

// Run ticks at the configured rate until ctx is cancelled, the tick limit is
// reached or the viewer asks to quit. view may be nil for a headless run.
func (s *Simulation) Run(ctx context.Context, view *debug.TerminalView) error {
	if s.cfg.Server.Enabled {
		if err := s.hub.Start(ctx); err != nil {
			return fmt.Errorf("start pose stream: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.hub.Stop(stopCtx); err != nil {
				s.logger.Warn("pose stream shutdown", log.Error(err))
			}
		}()
	}

	var events <-chan tcell.Event
	if view != nil {
		events = view.Events()
		s.input = func() physics.Vec3 {
			if keys := view.Keys(); keys != 0 {
				return input.Vector(keys)
			}
			return s.walk
		}
	}

	ticker := time.NewTicker(s.cfg.Simulation.Interval())
	defer ticker.Stop()

	s.logger.Info("simulation started",
		log.String("spider", s.spider.ID()),
		log.Float64("tick_rate", s.cfg.Simulation.TickRate),
		log.Bool("view", view != nil),
		log.Bool("serve", s.cfg.Server.Enabled),
		log.Any("gizmos", s.cfg.Debug.Gizmos),
	)
	started := time.Now()
	defer func() {
		s.logger.Info("simulation stopped",
			log.Uint64("ticks", s.spider.Ticks()),
			log.Uint64("flips", s.spider.Controller().Flips()),
			log.Int64("wall_ms", time.Since(started).Milliseconds()),
		)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if view.HandleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			if err := s.Step(); err != nil {
				s.logger.Warn("tick failed", log.Error(err))
			}
			if view != nil {
				view.Draw(s.spider.Snapshot(), s.gizmos.Shapes())
			}
			if limit := s.cfg.Simulation.Ticks; limit > 0 && s.spider.Ticks() >= limit {
				return nil
			}
		}
	}
}
