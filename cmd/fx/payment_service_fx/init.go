package payment_service_fx

import (
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pka/internal/repositories"
	"pka/internal/services"
	"pka/pkg/config"
)

const gatewayTimeout = 15 * time.Second

var Module = fx.Provide(
	providePaymentRepo,
	provideGateway,
	providePaymentService,
)

func providePaymentRepo(db *gorm.DB) repositories.PaymentRepository {
	return repositories.NewPaymentRepository(db)
}

func provideGateway(cfg *config.Config, logger *zap.Logger) services.PaymentGateway {
	if cfg.Payment.MerchantID == "" || cfg.Payment.APIKey == "" {
		logger.Warn("Heleket merchant credentials are not configured")
	}
	return services.NewHeleketClient(cfg.Payment, &http.Client{Timeout: gatewayTimeout})
}

func providePaymentService(
	db *gorm.DB,
	payments repositories.PaymentRepository,
	gateway services.PaymentGateway,
	badges services.BadgeServiceInterface,
	activity services.ActivityServiceInterface,
	cfg *config.Config,
	logger *zap.Logger,
) services.PaymentServiceInterface {
	return services.NewPaymentService(db, payments, gateway, badges, activity, cfg.Payment.APIKey, cfg.App.BaseURL, logger)
}
