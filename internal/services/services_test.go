package services

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	dbm "pka/internal/models/db_models"
	"pka/internal/repositories"
	"pka/internal/testutil"
	"pka/pkg/utils"
)

const testJWTSecret = "test-secret"

type fixture struct {
	db       *gorm.DB
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	security repositories.SecurityRepository
	payments repositories.PaymentRepository
	activity repositories.ActivityRepository
	configs  repositories.ApiConfigRepository
	badges   repositories.BadgeRepository
	jwt      *utils.JWTManager
	logger   *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	return &fixture{
		db:       db,
		users:    repositories.NewUserRepository(db),
		sessions: repositories.NewSessionRepository(db),
		security: repositories.NewSecurityRepository(db),
		payments: repositories.NewPaymentRepository(db),
		activity: repositories.NewActivityRepository(db),
		configs:  repositories.NewApiConfigRepository(db),
		badges:   repositories.NewBadgeRepository(db),
		jwt:      utils.NewJWTManager(testJWTSecret),
		logger:   zaptest.NewLogger(t),
	}
}

func (f *fixture) activityService() *ActivityService {
	return NewActivityService(f.activity, f.logger)
}

func (f *fixture) badgeService() *BadgeService {
	return NewBadgeService(f.users, f.badges, f.activity, f.logger)
}

func (f *fixture) sessionService() *SessionService {
	return NewSessionService(f.sessions, f.users, f.jwt, SessionTTLs{
		Access:  15 * time.Minute,
		Refresh: 30 * 24 * time.Hour,
	}, f.logger)
}

func (f *fixture) fingerprintService() *FingerprintService {
	return NewFingerprintService(f.security, f.sessions, f.logger)
}

func (f *fixture) authService(captcha CaptchaVerifier) *AuthService {
	return NewAuthService(f.users, f.sessionService(), f.fingerprintService(), f.badgeService(),
		f.activityService(), f.jwt, captcha, f.logger)
}

func (f *fixture) user(t *testing.T, username string, mutate ...func(*dbm.User)) *dbm.User {
	return testutil.CreateUser(t, f.db, username, mutate...)
}

func (f *fixture) countActivity(t *testing.T, action string) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&dbm.ActivityLog{}).Where("action = ?", action).Count(&n).Error; err != nil {
		t.Fatalf("count activity: %v", err)
	}
	return n
}
