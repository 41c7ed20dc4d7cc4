package repositories

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dbm "pka/internal/models/db_models"
	"pka/internal/testutil"
	"pka/pkg/utils"
)

func TestConsumeDailySearch_SameDay(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	today := utils.DayStartUnix(time.Now())

	user := testutil.CreateUser(t, db, "alice", func(u *dbm.User) {
		u.DailySearchLimit = 2
		u.LastSearchReset = today
	})

	for i := 0; i < 2; i++ {
		ok, err := repo.ConsumeDailySearch(ctx, user.ID, today)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := repo.ConsumeDailySearch(ctx, user.ID, today)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.DailySearchesUsed)
}

func TestConsumeDailySearch_RollsOverOnNewDay(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	today := utils.DayStartUnix(time.Now())
	yesterday := today - 86400

	user := testutil.CreateUser(t, db, "bob", func(u *dbm.User) {
		u.DailySearchLimit = 5
		u.DailySearchesUsed = 5
		u.LastSearchReset = yesterday
	})

	ok, err := repo.ConsumeDailySearch(ctx, user.ID, today)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.DailySearchesUsed)
	assert.Equal(t, today, got.LastSearchReset)
}

func TestConsumeDailySearch_ZeroLimitDeniesAfterRollover(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	today := utils.DayStartUnix(time.Now())

	user := testutil.CreateUser(t, db, "carol", func(u *dbm.User) {
		u.DailySearchLimit = 0
		u.DailySearchesUsed = 3
		u.LastSearchReset = today - 86400
	})

	ok, err := repo.ConsumeDailySearch(context.Background(), user.ID, today)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.DailySearchesUsed)
}

func TestConsumeDailySearch_ConcurrentNeverExceedsLimit(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	today := utils.DayStartUnix(time.Now())

	user := testutil.CreateUser(t, db, "dave", func(u *dbm.User) {
		u.DailySearchLimit = 10
		u.LastSearchReset = today
	})

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ConsumeDailySearch(context.Background(), user.ID, today)
			if err == nil && ok {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), allowed)
}

func TestCreateWithReferral(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	referrer := testutil.CreateUser(t, db, "referrer")
	newUser := &dbm.User{
		Username:         "invited",
		PasswordHash:     "x",
		APIKey:           "pka_invited",
		TelegramCode:     "INVITE",
		ReferralCode:     "REF_INVITED",
		SubscriptionPlan: dbm.PlanFree,
		DailySearchLimit: dbm.FreeDailySearchLimit,
		IsActive:         true,
		ReferredBy:       &referrer.ID,
	}
	require.NoError(t, repo.CreateWithReferral(ctx, newUser, referrer))

	got, err := repo.FindByID(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalReferrals)

	var referral dbm.Referral
	require.NoError(t, db.First(&referral, "referred_id = ?", newUser.ID).Error)
	assert.Equal(t, referrer.ID, referral.ReferrerID)
	assert.Equal(t, dbm.ReferralPending, referral.Status)
}

func TestFindByUsername_NotFoundReturnsNil(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	got, err := repo.FindByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestList_FiltersAndSorts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "zed", func(u *dbm.User) { u.CreatedAt = 100 })
	testutil.CreateUser(t, db, "amy", func(u *dbm.User) { u.CreatedAt = 200 })
	banned := testutil.CreateUser(t, db, "mallory", func(u *dbm.User) { u.CreatedAt = 300 })
	require.NoError(t, repo.UpdateFields(ctx, banned.ID, map[string]interface{}{"is_banned": true}))

	users, total, err := repo.List(ctx, UserListFilter{Page: 1, Limit: 10, Status: UserStatusActive, SortBy: "username", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 2)
	assert.Equal(t, "amy", users[0].Username)

	users, total, err = repo.List(ctx, UserListFilter{Page: 1, Limit: 10, Status: UserStatusBanned})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "mallory", users[0].Username)

	// unknown sort columns fall back to created_at desc
	users, _, err = repo.List(ctx, UserListFilter{Page: 1, Limit: 10, SortBy: "password_hash; DROP TABLE users"})
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "mallory", users[0].Username)

	users, total, err = repo.List(ctx, UserListFilter{Page: 1, Limit: 10, Search: "AM"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "amy", users[0].Username)
}

func TestCreateWithReferral_DuplicateUsername(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	existing := testutil.CreateUser(t, db, "dup")

	err := repo.CreateWithReferral(ctx, &dbm.User{
		Username:     existing.Username,
		PasswordHash: "x",
		APIKey:       "pka_other",
		TelegramCode: "TGOTHER",
		ReferralCode: "REF_OTHER",
	}, nil)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
