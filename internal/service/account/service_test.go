package account_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dkazlou/flint/internal/app"
	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/auth"
	"github.com/dkazlou/flint/internal/cache"
	"github.com/dkazlou/flint/internal/config"
	"github.com/dkazlou/flint/internal/db"
	"github.com/dkazlou/flint/internal/service/account"
)

func setupAppCtx(t *testing.T) *app.AppContext {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(
		&db.User{}, &db.Location{}, &db.Relationship{}, &db.Chat{}, &db.ChatParticipant{}, &db.Message{},
	))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	return app.New(dbase, redisCache, logger, jwtManager, cfg)
}

func validInput() account.RegisterInput {
	return account.RegisterInput{
		Username:        "alice",
		Email:           "alice@test.com",
		Password:        "secret-password",
		Sex:             db.SexFemale,
		Age:             28,
		PreferredSex:    db.SexMale,
		PreferredAgeMin: 25,
		PreferredAgeMax: 40,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := account.NewService(appCtx)

	user, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, db.SubscriptionBase, user.Subscription)
	assert.Equal(t, db.SubscriptionBase.Policy().DailySwipes, user.SwipesRemaining)
	assert.Equal(t, appCtx.Cfg.Policy.DefaultRadiusKm, user.SearchRadiusKm)

	token, logged, err := svc.Login(ctx, "alice", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	userID, err := appCtx.JWT.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, _, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, _, err = svc.Login(ctx, "nobody", "secret-password")
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := account.NewService(appCtx)

	cases := []struct {
		name   string
		mutate func(*account.RegisterInput)
	}{
		{"short password", func(in *account.RegisterInput) { in.Password = "short" }},
		{"bad sex", func(in *account.RegisterInput) { in.Sex = "X" }},
		{"underage", func(in *account.RegisterInput) { in.Age = 17 }},
		{"age over cap", func(in *account.RegisterInput) { in.Age = 151 }},
		{"inverted preferred range", func(in *account.RegisterInput) {
			in.PreferredAgeMin = 40
			in.PreferredAgeMax = 25
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	// duplicate username
	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Register(ctx, validInput())
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	// duplicate email under a fresh username
	in := validInput()
	in.Username = "alice2"
	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := account.NewService(appCtx)

	user, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	newSex := db.SexFemale
	newMin, newMax := 30, 45
	newEmail := "alice.new@test.com"
	updated, err := svc.UpdateProfile(ctx, user.ID, account.ProfileUpdateInput{
		Email:           &newEmail,
		PreferredSex:    &newSex,
		PreferredAgeMin: &newMin,
		PreferredAgeMax: &newMax,
	})
	require.NoError(t, err)
	assert.Equal(t, db.SexFemale, updated.PreferredSex)

	var fresh db.User
	require.NoError(t, appCtx.DB.First(&fresh, user.ID).Error)
	assert.Equal(t, newEmail, fresh.Email)
	assert.Equal(t, db.SexFemale, fresh.PreferredSex)
	assert.Equal(t, 30, fresh.PreferredAgeMin)
	assert.Equal(t, 45, fresh.PreferredAgeMax)
	// untouched fields stay put
	assert.Equal(t, "alice", fresh.Username)
	assert.Equal(t, 28, fresh.Age)

	// combined range is validated even when only one bound changes
	badMin := 60
	_, err = svc.UpdateProfile(ctx, user.ID, account.ProfileUpdateInput{PreferredAgeMin: &badMin})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	badSex := db.Sex("X")
	_, err = svc.UpdateProfile(ctx, user.ID, account.ProfileUpdateInput{PreferredSex: &badSex})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// cannot take another user's email
	other := validInput()
	other.Username = "bob"
	other.Email = "bob@test.com"
	_, err = svc.Register(ctx, other)
	require.NoError(t, err)

	taken := "bob@test.com"
	_, err = svc.UpdateProfile(ctx, user.ID, account.ProfileUpdateInput{Email: &taken})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := account.NewService(appCtx)

	user, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong-password", "another-secret")
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	err = svc.ChangePassword(ctx, user.ID, "secret-password", "short")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "secret-password", "another-secret"))

	_, _, err = svc.Login(ctx, "alice", "secret-password")
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, logged, err := svc.Login(ctx, "alice", "another-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestSearchRadiusIsPremiumOnly(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := account.NewService(appCtx)

	user, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	err = svc.UpdateSearchRadius(ctx, user.ID, 50)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	var fresh db.User
	require.NoError(t, appCtx.DB.First(&fresh, user.ID).Error)
	assert.Equal(t, appCtx.Cfg.Policy.DefaultRadiusKm, fresh.SearchRadiusKm)

	// the same call succeeds on premium
	require.NoError(t, appCtx.DB.Model(&db.User{}).
		Where("id = ?", user.ID).
		Update("subscription", db.SubscriptionPremium).Error)

	require.NoError(t, svc.UpdateSearchRadius(ctx, user.ID, 50))
	require.NoError(t, appCtx.DB.First(&fresh, user.ID).Error)
	assert.Equal(t, float64(50), fresh.SearchRadiusKm)
}

func TestUpdateLocationCooldownAndValidation(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := account.NewService(appCtx)

	user, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateLocation(ctx, user.ID, 200, 53.9), apperr.ErrValidation)
	assert.ErrorIs(t, svc.UpdateLocation(ctx, user.ID, 27.56, 95), apperr.ErrValidation)

	require.NoError(t, svc.UpdateLocation(ctx, user.ID, 27.56, 53.90))

	err = svc.UpdateLocation(ctx, user.ID, 27.60, 53.92)
	assert.ErrorIs(t, err, apperr.ErrCooldownActive)
}
