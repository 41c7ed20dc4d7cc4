// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbm "pka/internal/models/db_models"
)

// NewDB opens an isolated in-memory SQLite database with every table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(dbm.All()...))
	return db
}

// CreateUser inserts a free-plan user with unique credentials.
func CreateUser(t *testing.T, db *gorm.DB, username string, mutate ...func(*dbm.User)) *dbm.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	user := &dbm.User{
		Username:         username,
		PasswordHash:     "x",
		APIKey:           "pka_" + username + "_" + suffix,
		TelegramCode:     "TG" + suffix,
		ReferralCode:     "REF_" + suffix,
		SubscriptionPlan: dbm.PlanFree,
		DailySearchLimit: dbm.FreeDailySearchLimit,
		IsActive:         true,
	}
	for _, m := range mutate {
		m(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
