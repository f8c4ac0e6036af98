package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/db"
	"github.com/dkazlou/flint/internal/repository"
)

func seedUser(t *testing.T, gdb *gorm.DB, user db.User) db.User {
	t.Helper()
	if user.Username == "" {
		user.Username = "u" + time.Now().Format("150405.000000")
	}
	if user.Email == "" {
		user.Email = user.Username + "@test.com"
	}
	if user.PasswordHash == "" {
		user.PasswordHash = "x"
	}
	require.NoError(t, gdb.Create(&user).Error)
	return user
}

func TestConsumeSwipeStopsAtZero(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	u := seedUser(t, dbase, db.User{
		Username: "quota", Sex: db.SexMale, Age: 30,
		PreferredSex: db.SexFemale, PreferredAgeMin: 20, PreferredAgeMax: 40,
		Subscription: db.SubscriptionBase, SwipesRemaining: 1,
	})

	require.NoError(t, repo.ConsumeSwipe(ctx, u.ID))

	err := repo.ConsumeSwipe(ctx, u.ID)
	assert.ErrorIs(t, err, apperr.ErrQuotaExhausted)

	fresh, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.SwipesRemaining)
}

func TestUpsertLocationCooldown(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)
	cooldown := 2 * time.Hour

	u := seedUser(t, dbase, db.User{
		Username: "loc", Sex: db.SexFemale, Age: 25,
		PreferredSex: db.SexMale, PreferredAgeMin: 20, PreferredAgeMax: 40,
	})

	// first share always succeeds
	require.NoError(t, repo.UpsertLocation(ctx, u.ID, 27.56, 53.90, cooldown))

	// second update inside the window is rejected without mutation
	err := repo.UpsertLocation(ctx, u.ID, 27.60, 53.92, cooldown)
	assert.ErrorIs(t, err, apperr.ErrCooldownActive)

	var loc db.Location
	require.NoError(t, dbase.First(&loc, "user_id = ?", u.ID).Error)
	assert.Equal(t, 27.56, loc.Longitude)

	// once the window elapses the update goes through
	require.NoError(t, dbase.Model(&db.Location{}).
		Where("user_id = ?", u.ID).
		UpdateColumn("updated_at", time.Now().Add(-3*time.Hour)).Error)

	require.NoError(t, repo.UpsertLocation(ctx, u.ID, 27.60, 53.92, cooldown))
	require.NoError(t, dbase.First(&loc, "user_id = ?", u.ID).Error)
	assert.Equal(t, 27.60, loc.Longitude)
}

func TestCandidatesFilters(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	users := repository.NewUserRepository(dbase)
	rels := repository.NewRelationshipRepository(dbase)

	subject := seedUser(t, dbase, db.User{
		Username: "subject", Sex: db.SexMale, Age: 30,
		PreferredSex: db.SexFemale, PreferredAgeMin: 25, PreferredAgeMax: 35,
		Location: &db.Location{Longitude: 27.56, Latitude: 53.90},
	})

	ok := seedUser(t, dbase, db.User{
		Username: "ok", Sex: db.SexFemale, Age: 28,
		PreferredSex: db.SexMale, PreferredAgeMin: 20, PreferredAgeMax: 40,
		Location: &db.Location{Longitude: 27.57, Latitude: 53.91},
	})
	// wrong sex
	seedUser(t, dbase, db.User{
		Username: "wrong_sex", Sex: db.SexMale, Age: 28,
		PreferredSex: db.SexFemale, PreferredAgeMin: 20, PreferredAgeMax: 40,
		Location: &db.Location{Longitude: 27.57, Latitude: 53.91},
	})
	// not attracted back
	seedUser(t, dbase, db.User{
		Username: "not_back", Sex: db.SexFemale, Age: 28,
		PreferredSex: db.SexFemale, PreferredAgeMin: 20, PreferredAgeMax: 40,
		Location: &db.Location{Longitude: 27.57, Latitude: 53.91},
	})
	// outside subject's preferred age range
	seedUser(t, dbase, db.User{
		Username: "too_old", Sex: db.SexFemale, Age: 45,
		PreferredSex: db.SexMale, PreferredAgeMin: 20, PreferredAgeMax: 50,
		Location: &db.Location{Longitude: 27.57, Latitude: 53.91},
	})
	// subject outside the candidate's preferred range
	seedUser(t, dbase, db.User{
		Username: "wants_younger", Sex: db.SexFemale, Age: 28,
		PreferredSex: db.SexMale, PreferredAgeMin: 18, PreferredAgeMax: 25,
		Location: &db.Location{Longitude: 27.57, Latitude: 53.91},
	})
	// no shared location
	seedUser(t, dbase, db.User{
		Username: "nowhere", Sex: db.SexFemale, Age: 28,
		PreferredSex: db.SexMale, PreferredAgeMin: 20, PreferredAgeMax: 40,
	})
	// already swiped on by the subject
	swiped := seedUser(t, dbase, db.User{
		Username: "swiped", Sex: db.SexFemale, Age: 28,
		PreferredSex: db.SexMale, PreferredAgeMin: 20, PreferredAgeMax: 40,
		Location: &db.Location{Longitude: 27.57, Latitude: 53.91},
	})
	// already rejected the subject
	rejecter := seedUser(t, dbase, db.User{
		Username: "rejecter", Sex: db.SexFemale, Age: 28,
		PreferredSex: db.SexMale, PreferredAgeMin: 20, PreferredAgeMax: 40,
		Location: &db.Location{Longitude: 27.57, Latitude: 53.91},
	})

	_, err := rels.Create(ctx, subject.ID, swiped.ID, true)
	require.NoError(t, err)
	_, err = rels.Create(ctx, rejecter.ID, subject.ID, false)
	require.NoError(t, err)

	loaded, err := users.GetByID(ctx, subject.ID)
	require.NoError(t, err)

	candidates, err := users.Candidates(ctx, loaded)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, ok.ID, candidates[0].ID)
	require.NotNil(t, candidates[0].Location)
}

func TestCandidatesSamePreferredSex(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	users := repository.NewUserRepository(dbase)

	// subject prefers their own sex: only same-sex candidates qualify
	subject := seedUser(t, dbase, db.User{
		Username: "subject2", Sex: db.SexMale, Age: 30,
		PreferredSex: db.SexMale, PreferredAgeMin: 25, PreferredAgeMax: 35,
		Location: &db.Location{Longitude: 27.56, Latitude: 53.90},
	})
	match := seedUser(t, dbase, db.User{
		Username: "match2", Sex: db.SexMale, Age: 30,
		PreferredSex: db.SexMale, PreferredAgeMin: 25, PreferredAgeMax: 35,
		Location: &db.Location{Longitude: 27.57, Latitude: 53.91},
	})
	seedUser(t, dbase, db.User{
		Username: "nomatch2", Sex: db.SexFemale, Age: 30,
		PreferredSex: db.SexMale, PreferredAgeMin: 25, PreferredAgeMax: 35,
		Location: &db.Location{Longitude: 27.57, Latitude: 53.91},
	})

	loaded, err := users.GetByID(ctx, subject.ID)
	require.NoError(t, err)

	candidates, err := users.Candidates(ctx, loaded)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, match.ID, candidates[0].ID)
}
