package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dkazlou/flint/internal/db"
)

// RelationshipRepository provides data access for the directed like/dislike
// ledger. Rows are append-only: created once per ordered pair, never updated.
type RelationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new repository bound to the given DB connection.
func NewRelationshipRepository(database *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: database}
}

// Create inserts the actor -> recipient decision if no row exists for the pair.
//
// Behavior:
//   - If (actor_id, recipient_id) already exists → the original row is left
//     untouched (even if liked differs) and created=false is returned.
//   - Otherwise a new row is inserted and created=true is returned.
//
// Example:
//
//	repo.Create(ctx, 1, 2, true) // user 1 liked user 2
func (r *RelationshipRepository) Create(
	ctx context.Context,
	actorID, recipientID uint64,
	liked bool,
) (bool, error) {
	rel := db.Relationship{
		ActorID:     actorID,
		RecipientID: recipientID,
		Liked:       liked,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "recipient_id"}},
			DoNothing: true,
		}).
		Create(&rel)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Get returns the decision row for the ordered pair, or gorm.ErrRecordNotFound.
func (r *RelationshipRepository) Get(
	ctx context.Context,
	actorID, recipientID uint64,
) (*db.Relationship, error) {
	var rel db.Relationship
	err := r.db.WithContext(ctx).
		First(&rel, "actor_id = ? AND recipient_id = ?", actorID, recipientID).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// DecidedBy returns all users the actor has already decided on, liked or not.
// Used to keep already-swiped profiles out of the proposal feed.
func (r *RelationshipRepository) DecidedBy(ctx context.Context, actorID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Relationship{}).
		Where("actor_id = ?", actorID).
		Pluck("recipient_id", &ids).Error
	return ids, err
}

// DislikersOf returns the users who directed a dislike at the given user.
// They already rejected the user and must not be resurfaced.
func (r *RelationshipRepository) DislikersOf(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Relationship{}).
		Where("recipient_id = ? AND liked = false", userID).
		Pluck("actor_id", &ids).Error
	return ids, err
}

// IsMutual reports whether both directed edges exist and both are likes.
func (r *RelationshipRepository) IsMutual(ctx context.Context, a, b uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Relationship{}).
		Where(
			"(actor_id = ? AND recipient_id = ? AND liked = true) OR (actor_id = ? AND recipient_id = ? AND liked = true)",
			a, b, b, a,
		).
		Count(&count).Error
	return count == 2, err
}

// MatchedPeers returns all users mutually matched with the given user,
// ordered by peer id for determinism.
func (r *RelationshipRepository) MatchedPeers(ctx context.Context, userID uint64) ([]uint64, error) {
	var peers []uint64
	err := r.db.WithContext(ctx).
		Table("relationships r").
		Where("r.actor_id = ? AND r.liked = true", userID).
		Where(`
			EXISTS (
				SELECT 1 FROM relationships r2
				WHERE r2.actor_id = r.recipient_id
				  AND r2.recipient_id = r.actor_id
				  AND r2.liked = true
			)`).
		Order("r.recipient_id ASC").
		Pluck("r.recipient_id", &peers).Error
	return peers, err
}

// CountMatches returns how many mutual matches the given user has.
// Used in conjunction with the Redis cache (DB is fallback).
func (r *RelationshipRepository) CountMatches(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("relationships r").
		Where("r.actor_id = ? AND r.liked = true", userID).
		Where(`
			EXISTS (
				SELECT 1 FROM relationships r2
				WHERE r2.actor_id = r.recipient_id
				  AND r2.recipient_id = r.actor_id
				  AND r2.liked = true
			)`).
		Count(&count).Error
	return count, err
}
