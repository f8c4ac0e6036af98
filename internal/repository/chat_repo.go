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
	"github.com/dkazlou/flint/internal/utils/pagination"
)

// maxChatParticipants is the hard cap on chat membership. A chat is always a
// private conversation between the two halves of a match.
const maxChatParticipants = 2

// ChatRepository provides data access for chats, membership and messages.
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new repository bound to the given DB connection.
func NewChatRepository(database *gorm.DB) *ChatRepository {
	return &ChatRepository{db: database}
}

// ChatSummary is one row of a user's chat list.
type ChatSummary struct {
	ChatID        uint64    `json:"chat_id"`
	PeerID        uint64    `json:"peer_id"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// CreateForPair creates the chat for a matched couple, with both users as
// participants, exactly once.
//
// Behavior:
//   - The pair_key unique index absorbs the race where both halves of a
//     mutual match promote concurrently: the losing insert affects zero rows
//     and the existing chat is returned with created=false.
//   - Participant inserts go through the capped add, so a corrupt pre-existing
//     membership surfaces as apperr.ErrChatFull and rolls the chat back.
func (r *ChatRepository) CreateForPair(ctx context.Context, a, b uint64) (*db.Chat, bool, error) {
	key := db.PairKey(a, b)
	chat := db.Chat{PairKey: key}
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).Create(&chat)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race or the pair was matched before
			return tx.First(&chat, "pair_key = ?", key).Error
		}

		created = true
		for _, userID := range []uint64{a, b} {
			if err := addParticipant(tx, chat.ID, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &chat, created, nil
}

// AddParticipant adds a user to a chat, enforcing the two-person cap
// atomically: on failure the membership is unchanged.
func (r *ChatRepository) AddParticipant(ctx context.Context, chatID, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return addParticipant(tx, chatID, userID)
	})
}

func addParticipant(tx *gorm.DB, chatID, userID uint64) error {
	var count int64
	if err := tx.Model(&db.ChatParticipant{}).
		Where("chat_id = ?", chatID).
		Count(&count).Error; err != nil {
		return err
	}
	if count >= maxChatParticipants {
		return fmt.Errorf("%w: chat %d", apperr.ErrChatFull, chatID)
	}
	return tx.Create(&db.ChatParticipant{ChatID: chatID, UserID: userID}).Error
}

// Get loads a chat by id, or apperr.ErrNotFound.
func (r *ChatRepository) Get(ctx context.Context, chatID uint64) (*db.Chat, error) {
	var chat db.Chat
	err := r.db.WithContext(ctx).First(&chat, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: chat %d", apperr.ErrNotFound, chatID)
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// IsParticipant reports whether the user belongs to the chat.
func (r *ChatRepository) IsParticipant(ctx context.Context, chatID, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListForUser returns the user's chats that have at least one message,
// most recently active first. Chats with no messages yet are suppressed.
func (r *ChatRepository) ListForUser(ctx context.Context, userID uint64) ([]ChatSummary, error) {
	var summaries []ChatSummary
	err := r.db.WithContext(ctx).
		Table("chats c").
		Select("c.id AS chat_id, p2.user_id AS peer_id, MAX(m.created_at) AS last_message_at").
		Joins("INNER JOIN chat_participants p ON p.chat_id = c.id AND p.user_id = ?", userID).
		Joins("INNER JOIN chat_participants p2 ON p2.chat_id = c.id AND p2.user_id <> ?", userID).
		Joins("INNER JOIN messages m ON m.chat_id = c.id").
		Group("c.id, p2.user_id").
		Order("last_message_at DESC").
		Scan(&summaries).Error
	return summaries, err
}

// AddMessage appends an immutable message to the chat.
// Membership and length validation are the caller's concern.
func (r *ChatRepository) AddMessage(ctx context.Context, chatID, senderID uint64, text string) (*db.Message, error) {
	msg := db.Message{
		ChatID:   chatID,
		SenderID: &senderID,
		Text:     text,
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Messages returns the chat history in chronological order, ties broken by
// insertion order (id), with cursor-based pagination.
func (r *ChatRepository) Messages(
	ctx context.Context,
	chatID uint64,
	paginationToken *string,
	limit int,
) ([]db.Message, *string, error) {
	if limit <= 0 {
		return nil, nil, fmt.Errorf("%w: page size must be positive", apperr.ErrValidation)
	}

	var messages []db.Message

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}

	query := r.db.WithContext(ctx).
		Table("messages m").
		Where("m.chat_id = ?", chatID).
		Order("m.created_at ASC, m.id ASC").
		Limit(limit + 1)

	// apply cursor
	if cursor.MessageID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(m.created_at > ? OR (m.created_at = ? AND m.id > ?))",
			ts, ts, cursor.MessageID,
		)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(messages) > limit {
		last := messages[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			MessageID:   last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		messages = messages[:limit]
	}

	return messages, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
