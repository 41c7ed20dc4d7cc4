package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "pka/internal/models/db_models"
)

func TestCheckAndAward(t *testing.T) {
	f := newFixture(t)
	svc := f.badgeService()
	ctx := context.Background()
	telegramID := "12345"

	user := f.user(t, "veteran", func(u *dbm.User) {
		u.CreatedAt = time.Now().AddDate(-1, 0, 0).Unix()
		u.TelegramID = &telegramID
		u.SubscriptionPlan = dbm.PlanYearly
		u.TotalReferrals = 5
		u.RiskScore = 40
	})

	types, err := svc.CheckAndAward(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"newcomer", "verified", "subscriber", "referrer", "veteran"}, types)

	got, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "veteran", got.BadgeLevel)

	// awarding again does not duplicate rows
	_, err = svc.CheckAndAward(ctx, user.ID)
	require.NoError(t, err)
	listed, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 5)
}

func TestCheckAndAward_TopReferrerOutranksTrusted(t *testing.T) {
	f := newFixture(t)
	svc := f.badgeService()
	ctx := context.Background()

	user := f.user(t, "networker", func(u *dbm.User) { u.TotalReferrals = 30 })

	types, err := svc.CheckAndAward(ctx, user.ID)
	require.NoError(t, err)
	assert.Contains(t, types, "top_referrer")
	assert.Contains(t, types, "trusted")
	assert.NotContains(t, types, "power_user")

	got, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "top_referrer", got.BadgeLevel)
}
