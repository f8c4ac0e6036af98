package discovery

import (
	"context"
	"math"
	"sort"

	"github.com/dkazlou/flint/internal/app"
	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/db"
	"github.com/dkazlou/flint/internal/geo"
	"github.com/dkazlou/flint/internal/repository"
)

// Service implements proposal ranking and the matched-peers views.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	rels   *repository.RelationshipRepository
}

// NewService creates the discovery service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		rels:   repository.NewRelationshipRepository(appCtx.DB),
	}
}

// Proposal is one ranked candidate in a user's feed.
type Proposal struct {
	UserID     uint64  `json:"user_id"`
	Username   string  `json:"username"`
	Sex        db.Sex  `json:"sex"`
	Age        int     `json:"age"`
	DistanceKm float64 `json:"distance_km"`
}

// Proposals computes the ordered candidate list for a user, nearest first.
//
// Pipeline (all conjunctive):
//   - sex compatibility both ways and symmetric age-range compatibility,
//     pushed down into the candidate SQL;
//   - exclusion of the user, of anyone already swiped on, and of anyone who
//     disliked the user, also in SQL;
//   - distance gate: included only within min(user radius, candidate radius);
//   - ascending by distance, ties by candidate id.
//
// A user who never shared a location gets apperr.ErrNoLocation: without a
// point of reference the feed cannot be ranked.
//
// Read-only: mutates nothing.
func (s *Service) Proposals(ctx context.Context, userID uint64) ([]Proposal, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Location == nil {
		return nil, apperr.ErrNoLocation
	}

	candidates, err := s.users.Candidates(ctx, user)
	if err != nil {
		return nil, err
	}

	proposals := make([]Proposal, 0, len(candidates))
	for _, c := range candidates {
		if c.Location == nil {
			continue
		}
		distance := geo.DistanceKm(
			user.Location.Longitude, user.Location.Latitude,
			c.Location.Longitude, c.Location.Latitude,
		)
		effectiveRadius := math.Min(user.SearchRadiusKm, c.SearchRadiusKm)
		if distance > effectiveRadius {
			continue
		}
		proposals = append(proposals, Proposal{
			UserID:     c.ID,
			Username:   c.Username,
			Sex:        c.Sex,
			Age:        c.Age,
			DistanceKm: distance,
		})
	}

	sort.Slice(proposals, func(i, j int) bool {
		if proposals[i].DistanceKm != proposals[j].DistanceKm {
			return proposals[i].DistanceKm < proposals[j].DistanceKm
		}
		return proposals[i].UserID < proposals[j].UserID
	})

	return proposals, nil
}

// MatchedUser is one entry of a user's mutual-match list.
type MatchedUser struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Sex      db.Sex `json:"sex"`
	Age      int    `json:"age"`
}

// Matched returns all peers mutually matched with the user.
func (s *Service) Matched(ctx context.Context, userID uint64) ([]MatchedUser, error) {
	peers, err := s.rels.MatchedPeers(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, err := s.users.ListByIDs(ctx, peers)
	if err != nil {
		return nil, err
	}

	matched := make([]MatchedUser, 0, len(users))
	for _, u := range users {
		matched = append(matched, MatchedUser{
			UserID:   u.ID,
			Username: u.Username,
			Sex:      u.Sex,
			Age:      u.Age,
		})
	}
	return matched, nil
}

// MatchCount returns how many mutual matches the user has.
// Cache-first strategy:
//  1. Attempts to read from Redis (matches:count:userID).
//  2. On cache miss, falls back to the ledger count.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) MatchCount(ctx context.Context, userID uint64) (int64, error) {
	if count, ok, err := s.appCtx.RedisCache.GetMatchCount(ctx, userID); err == nil && ok {
		return count, nil
	}

	count, err := s.rels.CountMatches(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.appCtx.RedisCache.UpdateMatchCount(ctx, userID, count); err != nil {
		s.appCtx.Logger.Warn("failed to cache match count", "user_id", userID, "err", err)
	}

	return count, nil
}
