package simulation

import (
	"errors"
	"fmt"
	"os"

	"github.com/zeusync/strider/internal/config"
	"github.com/zeusync/strider/internal/core/audio"
	"github.com/zeusync/strider/internal/core/creature"
	"github.com/zeusync/strider/internal/core/debug"
	"github.com/zeusync/strider/internal/core/events/bus"
	"github.com/zeusync/strider/internal/core/observability/log"
	"github.com/zeusync/strider/internal/core/protocol"
	"github.com/zeusync/strider/internal/core/report"
	"github.com/zeusync/strider/internal/core/systems"
	"github.com/zeusync/strider/internal/server"
)

// ProvideLogger builds the run logger, writing to cfg.Log.File when set.
func ProvideLogger(cfg config.Config) (log.Log, func(), error) {
	if cfg.Log.File == "" {
		l := log.New(cfg.Log.Level)
		return l, func() { _ = l.Sync() }, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	l := log.NewWithWriter(cfg.Log.Level, f)
	return l, func() {
		_ = l.Sync()
		_ = f.Close()
	}, nil
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideSpider(cfg config.Config, eventBus bus.EventBus, logger log.Log) (*creature.Spider, error) {
	return creature.New(cfg.Creature, eventBus, logger)
}

func ProvideScheduler(logger log.Log) *systems.Scheduler {
	return systems.NewScheduler(logger)
}

func ProvideGizmos(cfg config.Config) *debug.Gizmos {
	return debug.NewGizmos(cfg.Debug.Gizmos)
}

// ProvideHub always builds the hub; Run only starts it when enabled.
func ProvideHub(cfg config.Config, spider *creature.Spider, logger log.Log) *server.Hub {
	return server.NewHub(cfg.Server, protocol.Welcome{
		SpiderID: spider.ID(),
		TickHz:   cfg.Simulation.TickRate,
	}, logger)
}

// ProvideFootsteps returns nil when audio is disabled or the speaker cannot be
// opened. Neither stops the run.
func ProvideFootsteps(cfg config.Config, eventBus bus.EventBus, logger log.Log) (*audio.Footsteps, func()) {
	f, err := audio.NewFootsteps(cfg.Audio, logger)
	if err != nil {
		if !errors.Is(err, audio.ErrDisabled) {
			logger.Warn("audio unavailable, footsteps disabled", log.Error(err))
		}
		return nil, func() {}
	}
	if err := f.Attach(eventBus); err != nil {
		logger.Warn("footsteps not attached", log.Error(err))
		f.Close()
		return nil, func() {}
	}
	return f, f.Close
}

// ProvideRecorder returns nil when the run report is disabled.
func ProvideRecorder(cfg config.Config, spider *creature.Spider, eventBus bus.EventBus) (*report.Recorder, func(), error) {
	if !cfg.Report.Enabled {
		return nil, func() {}, nil
	}
	r := report.NewRecorder(spider, cfg.Report.Samples)
	if err := r.Attach(eventBus); err != nil {
		return nil, nil, fmt.Errorf("attach report: %w", err)
	}
	return r, r.Detach, nil
}
