package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/db"
)

// UserRepository provides data access for users and their locations.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetByID loads a user with their location, or apperr.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Preload("Location").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername loads a user by username, or apperr.ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Preload("Location").
		First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %q", apperr.ErrNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail loads a user by email, or apperr.ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user with email %q", apperr.ErrNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// ListByIDs loads users for the given ids, location included.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []uint64) ([]db.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []db.User
	err := r.db.WithContext(ctx).Preload("Location").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// ConsumeSwipe atomically decrements the user's swipe counter if positive.
//
// Behavior:
//   - Single conditional UPDATE: two concurrent swipes can never both spend
//     the last remaining swipe.
//   - A zero counter yields apperr.ErrQuotaExhausted; nothing is mutated.
//   - Callers on an unlimited tier must not call this at all.
func (r *UserRepository) ConsumeSwipe(ctx context.Context, userID uint64) error {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ? AND swipes_remaining > 0", userID).
		UpdateColumn("swipes_remaining", gorm.Expr("swipes_remaining - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrQuotaExhausted
	}
	return nil
}

// RefundSwipe gives one swipe back after a no-op decision (re-swipe on a pair
// that already has a ledger row).
func (r *UserRepository) RefundSwipe(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		UpdateColumn("swipes_remaining", gorm.Expr("swipes_remaining + 1")).Error
}

// UpdatePreferences persists the profile fields a user may edit after
// registration. Validation is the caller's concern.
func (r *UserRepository) UpdatePreferences(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":             user.Email,
			"preferred_sex":     user.PreferredSex,
			"preferred_age_min": user.PreferredAgeMin,
			"preferred_age_max": user.PreferredAgeMax,
		}).Error
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uint64, hash string) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		UpdateColumn("password_hash", hash).Error
}

// SetSearchRadius updates the user's search radius in kilometers.
// Tier permission is the caller's concern.
func (r *UserRepository) SetSearchRadius(ctx context.Context, userID uint64, radiusKm float64) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Update("search_radius_km", radiusKm).Error
}

// UpsertLocation creates or updates the user's location.
//
// Behavior:
//   - First share always succeeds.
//   - Updates inside the cooldown window (measured from the row's UpdatedAt)
//     are rejected with apperr.ErrCooldownActive, no mutation.
//   - The existing row is locked for the duration of the transaction so two
//     concurrent updates cannot both pass the cooldown check.
func (r *UserRepository) UpsertLocation(
	ctx context.Context,
	userID uint64,
	longitude, latitude float64,
	cooldown time.Duration,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		// SQLite serializes writers on its own and rejects FOR UPDATE.
		if tx.Dialector.Name() == "mysql" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var loc db.Location
		err := q.First(&loc, "user_id = ?", userID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&db.Location{
				UserID:    userID,
				Longitude: longitude,
				Latitude:  latitude,
			}).Error
		case err != nil:
			return err
		}

		if time.Since(loc.UpdatedAt) < cooldown {
			return apperr.ErrCooldownActive
		}

		loc.Longitude = longitude
		loc.Latitude = latitude
		return tx.Save(&loc).Error
	})
}

// Candidates returns the SQL-filterable part of the proposal pipeline for the
// given user: candidates of the wanted sex who want the user's sex back, with
// symmetric age compatibility, a shared location row, and no prior decision in
// either blocking direction. Distance gating and ordering happen in the
// service on top of this set.
func (r *UserRepository) Candidates(ctx context.Context, user *db.User) ([]db.User, error) {
	wantSex := user.Sex.Opposite()
	if user.PreferredSex == user.Sex {
		wantSex = user.Sex
	}

	var candidates []db.User
	err := r.db.WithContext(ctx).
		Preload("Location").
		Joins("INNER JOIN locations l ON l.user_id = users.id").
		Where("users.id <> ?", user.ID).
		Where("users.sex = ?", wantSex).
		Where("users.preferred_sex = ?", user.Sex).
		Where("users.age BETWEEN ? AND ?", user.PreferredAgeMin, user.PreferredAgeMax).
		Where("? BETWEEN users.preferred_age_min AND users.preferred_age_max", user.Age).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM relationships r
				WHERE r.actor_id = ?
				  AND r.recipient_id = users.id
			)`, user.ID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM relationships r2
				WHERE r2.actor_id = users.id
				  AND r2.recipient_id = ?
				  AND r2.liked = false
			)`, user.ID).
		Find(&candidates).Error
	return candidates, err
}
