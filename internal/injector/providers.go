package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/salinityengine/salinity/internal/config"
	"github.com/salinityengine/salinity/internal/core/assets"
	"github.com/salinityengine/salinity/internal/core/component"
	"github.com/salinityengine/salinity/internal/core/entity"
	"github.com/salinityengine/salinity/internal/core/events/bus"
	"github.com/salinityengine/salinity/internal/core/observability/log"
	"github.com/salinityengine/salinity/internal/core/storage/sqlite"
	"github.com/salinityengine/salinity/internal/server"
)

// Runtime is everything a command needs to build, load and inspect scenes.
type Runtime struct {
	Config     config.Config
	Logger     *log.Logger
	Components *component.Registry
	Types      *entity.TypeRegistry
	Events     bus.EventBus
	Env        *entity.Env
	Assets     *assets.Registry
}

var RuntimeSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideComponents,
	wire.Bind(new(component.Lookup), new(*component.Registry)),
	entity.NewTypeRegistry,
	bus.New,
	entity.NewEnv,
	ProvideAssets,
	wire.Struct(new(Runtime), "*"),
)

func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	logger, err := log.NewWithConfig(cfg.LogOptions())
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideComponents builds the component registry and loads the configured
// definitions file, if any.
func ProvideComponents(cfg config.Config, logger log.Log) (*component.Registry, error) {
	reg := component.NewRegistry()
	if cfg.Components.Definitions == "" {
		return reg, nil
	}
	if err := reg.LoadFile(cfg.Components.Definitions); err != nil {
		return nil, err
	}
	logger.Debug("component definitions loaded",
		log.String("path", cfg.Components.Definitions), log.Strings("types", reg.Names()))
	return reg, nil
}

func ProvideAssets(ctx context.Context, cfg config.Config, logger log.Log) (*assets.Registry, error) {
	reg := assets.NewRegistry(logger)
	if len(cfg.Assets.Files) == 0 {
		return reg, nil
	}
	if err := reg.LoadFiles(ctx, cfg.Assets.Files...); err != nil {
		return nil, err
	}
	return reg, nil
}

func ProvideStore(cfg config.Config, logger log.Log) (*sqlite.Store, func(), error) {
	store, err := sqlite.Open(cfg.Storage.Path, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func ProvideServerConfig(cfg config.Config) server.Config {
	return server.Config{
		Addr:            cfg.Server.Addr,
		Token:           cfg.Server.Token,
		ReadTimeout:     cfg.Server.ReadTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}
