package chat

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/dkazlou/flint/internal/app"
	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/db"
	"github.com/dkazlou/flint/internal/repository"
)

// Service implements the membership-gated chat views and message posting.
type Service struct {
	appCtx *app.AppContext
	chats  *repository.ChatRepository
}

// NewService creates the chat service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		chats:  repository.NewChatRepository(appCtx.DB),
	}
}

// ListChats returns the user's chats that already have messages, most
// recently active first.
func (s *Service) ListChats(ctx context.Context, userID uint64) ([]repository.ChatSummary, error) {
	return s.chats.ListForUser(ctx, userID)
}

// History returns a page of the chat's messages in chronological order.
// Only participants may read.
func (s *Service) History(
	ctx context.Context,
	userID, chatID uint64,
	paginationToken *string,
	limit int,
) ([]db.Message, *string, error) {
	if err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return nil, nil, err
	}
	return s.chats.Messages(ctx, chatID, paginationToken, limit)
}

// Post appends a message to the chat. Only participants may write; the text
// must be non-empty and within the configured length cap.
func (s *Service) Post(ctx context.Context, userID, chatID uint64, text string) (*db.Message, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", apperr.ErrValidation)
	}
	if maxLen := s.appCtx.Cfg.Policy.MaxMessageLen; utf8.RuneCountInString(text) > maxLen {
		return nil, fmt.Errorf("%w: message exceeds %d characters", apperr.ErrValidation, maxLen)
	}

	if err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return nil, err
	}

	return s.chats.AddMessage(ctx, chatID, userID, text)
}

func (s *Service) requireParticipant(ctx context.Context, chatID, userID uint64) error {
	if _, err := s.chats.Get(ctx, chatID); err != nil {
		return err
	}
	ok, err := s.chats.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not a chat participant", apperr.ErrPermissionDenied)
	}
	return nil
}
