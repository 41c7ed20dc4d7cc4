package search_fx

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pka/internal/repositories"
	"pka/internal/services"
	"pka/pkg/config"
)

var Module = fx.Provide(
	provideApiConfigRepo,
	provideQuotaService,
	provideSearchService,
)

func provideApiConfigRepo(db *gorm.DB) repositories.ApiConfigRepository {
	return repositories.NewApiConfigRepository(db)
}

func provideQuotaService(users repositories.UserRepository) services.QuotaServiceInterface {
	return services.NewQuotaService(users)
}

func provideSearchService(
	quota services.QuotaServiceInterface,
	configs repositories.ApiConfigRepository,
	activity repositories.ActivityRepository,
	audit services.ActivityServiceInterface,
	cfg *config.Config,
	logger *zap.Logger,
) services.SearchServiceInterface {
	client := &http.Client{Timeout: cfg.Search.Timeout}
	return services.NewSearchService(quota, configs, activity, audit, cfg.Search, client, logger)
}
