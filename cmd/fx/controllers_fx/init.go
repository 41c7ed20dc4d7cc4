package controllers_fx

import (
	"go.uber.org/fx"

	"pka/internal/api/controllers"
	"pka/pkg/config"
)

var Module = fx.Options(
	fx.Provide(provideCookieConfig),
	fx.Provide(controllers.NewAuthController),
	fx.Provide(controllers.NewSearchController),
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewAdminController),
	fx.Provide(controllers.NewTelegramController),
	fx.Provide(controllers.NewHealthController))

func provideCookieConfig(cfg *config.Config) controllers.CookieConfig {
	return controllers.CookieConfig{
		Secure:     cfg.App.CookieSecure,
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
		AdminTTL:   cfg.Auth.AdminTokenTTL,
	}
}
