//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/salinityengine/salinity/internal/config"
	"github.com/salinityengine/salinity/internal/core/observability/log"
	"github.com/salinityengine/salinity/internal/core/storage/sqlite"
)

func InitializeRuntime(ctx context.Context, cfg config.Config) (*Runtime, func(), error) {
	wire.Build(RuntimeSet)
	return nil, nil, nil
}

func InitializeStore(cfg config.Config) (*sqlite.Store, func(), error) {
	wire.Build(ProvideLogger, wire.Bind(new(log.Log), new(*log.Logger)), ProvideStore)
	return nil, nil, nil
}
