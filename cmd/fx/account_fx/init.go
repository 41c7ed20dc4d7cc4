package account_fx

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pka/internal/repositories"
	"pka/internal/services"
	"pka/pkg/config"
	"pka/pkg/middleware"
	"pka/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(
		provideUserRepo,
		provideSessionRepo,
		provideSecurityRepo,
		provideBadgeRepo,
		provideActivityRepo,
		provideJWTManager,
		provideActivityService,
		provideBadgeService,
		provideFingerprintService,
		provideSessionService,
		provideSessionValidator,
		provideAuthService,
	),
	fx.Invoke(startSessionSweeper),
)

func provideUserRepo(db *gorm.DB) repositories.UserRepository {
	return repositories.NewUserRepository(db)
}

func provideSessionRepo(db *gorm.DB) repositories.SessionRepository {
	return repositories.NewSessionRepository(db)
}

func provideSecurityRepo(db *gorm.DB) repositories.SecurityRepository {
	return repositories.NewSecurityRepository(db)
}

func provideBadgeRepo(db *gorm.DB) repositories.BadgeRepository {
	return repositories.NewBadgeRepository(db)
}

func provideActivityRepo(db *gorm.DB) repositories.ActivityRepository {
	return repositories.NewActivityRepository(db)
}

func provideJWTManager(cfg *config.Config) (*utils.JWTManager, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return utils.NewJWTManager(cfg.Auth.JWTSecret), nil
}

func provideActivityService(repo repositories.ActivityRepository, logger *zap.Logger) services.ActivityServiceInterface {
	return services.NewActivityService(repo, logger)
}

func provideBadgeService(users repositories.UserRepository, badges repositories.BadgeRepository, activity repositories.ActivityRepository, logger *zap.Logger) services.BadgeServiceInterface {
	return services.NewBadgeService(users, badges, activity, logger)
}

func provideFingerprintService(security repositories.SecurityRepository, sessions repositories.SessionRepository, logger *zap.Logger) services.FingerprintServiceInterface {
	return services.NewFingerprintService(security, sessions, logger)
}

func provideSessionService(sessions repositories.SessionRepository, users repositories.UserRepository, jwt *utils.JWTManager, cfg *config.Config, logger *zap.Logger) services.SessionServiceInterface {
	return services.NewSessionService(sessions, users, jwt, services.SessionTTLs{
		Access:  cfg.Auth.AccessTokenTTL,
		Refresh: cfg.Auth.RefreshTokenTTL,
	}, logger)
}

func provideSessionValidator(sessions services.SessionServiceInterface) middleware.SessionValidator {
	return sessions
}

func provideAuthService(
	users repositories.UserRepository,
	sessions services.SessionServiceInterface,
	fingerprints services.FingerprintServiceInterface,
	badges services.BadgeServiceInterface,
	activity services.ActivityServiceInterface,
	jwt *utils.JWTManager,
	cfg *config.Config,
	logger *zap.Logger,
) services.AuthServiceInterface {
	var verifier services.CaptchaVerifier
	if cfg.Auth.CaptchaRequired {
		verifier = utils.VerifyCaptcha
	}
	return services.NewAuthService(users, sessions, fingerprints, badges, activity, jwt, verifier, logger)
}

func startSessionSweeper(lc fx.Lifecycle, sessions services.SessionServiceInterface, cfg *config.Config, logger *zap.Logger) {
	interval := cfg.App.SessionSweepInterval
	if interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						n, err := sessions.SweepExpired(ctx)
						if err != nil {
							logger.Error("session sweep failed", zap.Error(err))
							continue
						}
						if n > 0 {
							logger.Info("expired sessions removed", zap.Int64("count", n))
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
