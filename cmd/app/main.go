package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"pka/cmd/fx/account_fx"
	"pka/cmd/fx/admin_fx"
	"pka/cmd/fx/config_fx"
	"pka/cmd/fx/controllers_fx"
	"pka/cmd/fx/db_fx"
	"pka/cmd/fx/memcache_fx"
	"pka/cmd/fx/payment_service_fx"
	"pka/cmd/fx/search_fx"
	"pka/cmd/fx/telegram_fx"
	"pka/internal/api/routes"
	"pka/pkg/config"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		config_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		account_fx.Module,
		search_fx.Module,
		payment_service_fx.Module,
		admin_fx.Module,
		telegram_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(cfg *config.Config, deps routes.Dependencies, logger *zap.Logger) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return routes.NewRouter(cfg, deps, logger)
}
