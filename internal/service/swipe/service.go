package swipe

import (
	"context"
	"fmt"

	"github.com/dkazlou/flint/internal/app"
	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/repository"
)

// Service implements the swipe action: quota gating, the append-only decision
// ledger, and the synchronous match-to-chat promotion.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	rels   *repository.RelationshipRepository
	chats  *repository.ChatRepository
}

// NewService creates the swipe service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		rels:   repository.NewRelationshipRepository(appCtx.DB),
		chats:  repository.NewChatRepository(appCtx.DB),
	}
}

// Result is the structured outcome of a swipe.
type Result struct {
	Created bool   `json:"created"`
	Mutual  bool   `json:"mutual"`
	ChatID  uint64 `json:"chat_id,omitempty"`
}

// Swipe records the actor's decision about the target.
//
// Behavior:
//   - Self-swipes and unknown targets are rejected before anything mutates.
//   - Quota is spent first via the atomic decrement; unlimited tiers skip it.
//     The swipe is given back whenever the ledger write does not land, be it
//     a repeat decision or a failed insert.
//   - Ledger creation is idempotent: an existing row for the pair is left as
//     is and Created=false is reported, no error.
//   - A like that completes a mutual pair promotes it to a chat right here,
//     synchronously. Chat-side failures (apperr.ErrChatFull) are returned to
//     the caller while the relationship row persists.
func (s *Service) Swipe(ctx context.Context, actorID, targetID uint64, liked bool) (*Result, error) {
	s.appCtx.Logger.Debug("swipe", "actor", actorID, "target", targetID, "liked", liked)

	if actorID == targetID {
		return nil, fmt.Errorf("%w: cannot swipe on yourself", apperr.ErrValidation)
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	metered := !actor.Subscription.UnlimitedSwipes()
	if metered {
		if err := s.users.ConsumeSwipe(ctx, actorID); err != nil {
			return nil, err
		}
	}

	created, err := s.rels.Create(ctx, actorID, targetID, liked)
	if err != nil {
		// nothing was recorded, so the spent swipe goes back
		s.refund(ctx, metered, actorID)
		return nil, err
	}
	if !created {
		// repeat swipe on the same target: ledger untouched, swipe given back
		s.refund(ctx, metered, actorID)
		return &Result{Created: false}, nil
	}

	result := &Result{Created: true}
	if !liked {
		return result, nil
	}

	mutual, err := s.rels.IsMutual(ctx, actorID, targetID)
	if err != nil {
		return result, err
	}
	if !mutual {
		return result, nil
	}

	result.Mutual = true
	chatID, err := s.promote(ctx, actorID, targetID)
	if err != nil {
		// the decision row stays; only the chat side is rejected
		return result, err
	}
	result.ChatID = chatID

	return result, nil
}

// refund gives a metered actor their swipe back when the ledger write did not
// land, either because the pair was already decided or because the insert
// itself failed.
func (s *Service) refund(ctx context.Context, metered bool, actorID uint64) {
	if !metered {
		return
	}
	if err := s.users.RefundSwipe(ctx, actorID); err != nil {
		s.appCtx.Logger.Warn("swipe refund failed", "actor", actorID, "err", err)
	}
}

// promote turns a freshly mutual pair into its chat. Called synchronously by
// Swipe the moment the completing edge is persisted, so the pair has exactly
// one chat no matter which half of the match lands last.
func (s *Service) promote(ctx context.Context, a, b uint64) (uint64, error) {
	chat, created, err := s.chats.CreateForPair(ctx, a, b)
	if err != nil {
		return 0, err
	}

	if created {
		s.appCtx.Logger.Info("match promoted to chat", "chat_id", chat.ID, "user_a", a, "user_b", b)
		// drop stale cached match counts for both halves
		for _, userID := range []uint64{a, b} {
			if err := s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForMatchCount(userID)); err != nil {
				s.appCtx.Logger.Warn("failed to invalidate match count", "user_id", userID, "err", err)
			}
		}
	}

	return chat.ID, nil
}
