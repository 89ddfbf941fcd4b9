//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/zeusync/strider/internal/config"
	"github.com/zeusync/strider/internal/simulation"
)

var ProviderSet = wire.NewSet(
	simulation.ProvideLogger,
	simulation.ProvideBus,
	simulation.ProvideSpider,
	simulation.ProvideScheduler,
	simulation.ProvideGizmos,
	simulation.ProvideHub,
	simulation.ProvideFootsteps,
	simulation.ProvideRecorder,
	simulation.New,
)

func InitializeSimulation(ctx context.Context, cfg config.Config) (*simulation.Simulation, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
