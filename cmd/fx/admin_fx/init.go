package admin_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"pka/internal/repositories"
	"pka/internal/services"
	"pka/pkg/config"
	"pka/pkg/utils"
)

var Module = fx.Provide(provideAdminService)

func provideAdminService(
	users repositories.UserRepository,
	payments repositories.PaymentRepository,
	security repositories.SecurityRepository,
	configs repositories.ApiConfigRepository,
	activity repositories.ActivityRepository,
	sessions repositories.SessionRepository,
	jwt *utils.JWTManager,
	cfg *config.Config,
	logger *zap.Logger,
) services.AdminServiceInterface {
	if cfg.Auth.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD is empty, admin login is disabled")
	}
	return services.NewAdminService(users, payments, security, configs, activity, sessions, jwt, cfg.Auth.AdminPassword, cfg.Auth.AdminTokenTTL, logger)
}
