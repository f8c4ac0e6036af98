package account

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dkazlou/flint/internal/app"
	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/db"
	"github.com/dkazlou/flint/internal/repository"
)

// Service covers registration, login and the per-user settings that gate the
// matching engine: shared location and search radius.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
}

// NewService creates the account service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Sex             db.Sex `json:"sex"`
	Age             int    `json:"age"`
	PreferredSex    db.Sex `json:"preferred_sex"`
	PreferredAgeMin int    `json:"preferred_age_min"`
	PreferredAgeMax int    `json:"preferred_age_max"`
}

// Register creates a new user on the base tier with the default search radius
// and a full swipe allowance. No location yet: the user shares one separately.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*db.User, error) {
	if in.Username == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", apperr.ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperr.ErrValidation)
	}
	if !in.Sex.Valid() || !in.PreferredSex.Valid() {
		return nil, fmt.Errorf("%w: sex must be M or F", apperr.ErrValidation)
	}
	if in.Age < 18 || in.Age > 150 {
		return nil, fmt.Errorf("%w: age must be between 18 and 150", apperr.ErrValidation)
	}
	if in.PreferredAgeMin < 18 || in.PreferredAgeMax > 150 || in.PreferredAgeMin > in.PreferredAgeMax {
		return nil, fmt.Errorf("%w: preferred age range must be within 18..150", apperr.ErrValidation)
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("%w: username taken", apperr.ErrAlreadyExists)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: email taken", apperr.ErrAlreadyExists)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &db.User{
		Username:        in.Username,
		Email:           in.Email,
		PasswordHash:    string(hash),
		Sex:             in.Sex,
		Age:             in.Age,
		PreferredSex:    in.PreferredSex,
		PreferredAgeMin: in.PreferredAgeMin,
		PreferredAgeMax: in.PreferredAgeMax,
		Subscription:    db.SubscriptionBase,
		SearchRadiusKm:  s.appCtx.Cfg.Policy.DefaultRadiusKm,
		SwipesRemaining: db.SubscriptionBase.Policy().DailySwipes,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *db.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", nil, fmt.Errorf("%w: invalid credentials", apperr.ErrPermissionDenied)
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", apperr.ErrPermissionDenied)
	}

	token, err := s.appCtx.JWT.Generate(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GetUser loads a user profile by id.
func (s *Service) GetUser(ctx context.Context, id uint64) (*db.User, error) {
	return s.users.GetByID(ctx, id)
}

// ProfileUpdateInput carries the fields a user may change after registration.
// Nil fields are left untouched.
type ProfileUpdateInput struct {
	Email           *string `json:"email"`
	PreferredSex    *db.Sex `json:"preferred_sex"`
	PreferredAgeMin *int    `json:"preferred_age_min"`
	PreferredAgeMax *int    `json:"preferred_age_max"`
}

// UpdateProfile applies a partial update to the user's own profile. The
// preference fields feed the proposal filter directly, so the combined result
// is validated the same way as at registration.
func (s *Service) UpdateProfile(ctx context.Context, userID uint64, in ProfileUpdateInput) (*db.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != user.Email {
		if *in.Email == "" {
			return nil, fmt.Errorf("%w: email is required", apperr.ErrValidation)
		}
		if _, err := s.users.GetByEmail(ctx, *in.Email); err == nil {
			return nil, fmt.Errorf("%w: email taken", apperr.ErrAlreadyExists)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.PreferredSex != nil {
		if !in.PreferredSex.Valid() {
			return nil, fmt.Errorf("%w: sex must be M or F", apperr.ErrValidation)
		}
		user.PreferredSex = *in.PreferredSex
	}
	if in.PreferredAgeMin != nil {
		user.PreferredAgeMin = *in.PreferredAgeMin
	}
	if in.PreferredAgeMax != nil {
		user.PreferredAgeMax = *in.PreferredAgeMax
	}
	if user.PreferredAgeMin < 18 || user.PreferredAgeMax > 150 || user.PreferredAgeMin > user.PreferredAgeMax {
		return nil, fmt.Errorf("%w: preferred age range must be within 18..150", apperr.ErrValidation)
	}

	if err := s.users.UpdatePreferences(ctx, user); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("profile updated", "user_id", user.ID)
	return user, nil
}

// ChangePassword replaces the user's password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperr.ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return fmt.Errorf("%w: old password is not correct", apperr.ErrPermissionDenied)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// UpdateLocation stores the user's position, subject to the update cooldown.
func (s *Service) UpdateLocation(ctx context.Context, userID uint64, longitude, latitude float64) error {
	if longitude < -180 || longitude > 180 || latitude < -90 || latitude > 90 {
		return fmt.Errorf("%w: coordinates out of range", apperr.ErrValidation)
	}
	return s.users.UpsertLocation(ctx, userID, longitude, latitude, s.appCtx.Cfg.Policy.LocationCooldown)
}

// UpdateSearchRadius changes the user's visibility radius. Premium only;
// other tiers are rejected and the radius stays unchanged.
func (s *Service) UpdateSearchRadius(ctx context.Context, userID uint64, radiusKm float64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Subscription.Policy().CanSetRadius {
		return fmt.Errorf("%w: subscription tier cannot change search radius", apperr.ErrPermissionDenied)
	}
	if radiusKm <= 0 {
		return fmt.Errorf("%w: radius must be positive", apperr.ErrValidation)
	}
	return s.users.SetSearchRadius(ctx, userID, radiusKm)
}
