package config_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"pka/internal/infra"
	"pka/pkg/config"
)

var Module = fx.Provide(
	config.Load,
	provideLogger,
)

func provideLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	logger, err := infra.NewLogger(cfg.App)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() {
		_ = logger.Sync()
	}))
	return logger, nil
}
