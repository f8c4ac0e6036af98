package chat

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/db"
	"github.com/dkazlou/flint/internal/server"
)

const defaultHistoryPageSize = 50

// messageView is the API shape of a chat message.
type messageView struct {
	ID        uint64    `json:"id"`
	ChatID    uint64    `json:"chat_id"`
	SenderID  *uint64   `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func viewOf(m *db.Message) messageView {
	return messageView{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func (s *Service) handleListChats(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserID(r.Context())

	chats, err := s.ListChats(r.Context(), userID)
	if err != nil {
		s.fail(w, "chat list failed", err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserID(r.Context())

	chatID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	var token *string
	if t := r.URL.Query().Get("page_token"); t != "" {
		token = &t
	}
	limit := defaultHistoryPageSize
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}

	messages, nextToken, err := s.History(r.Context(), userID, chatID, token, limit)
	if err != nil {
		s.fail(w, "chat history failed", err)
		return
	}

	views := make([]messageView, 0, len(messages))
	for i := range messages {
		views = append(views, viewOf(&messages[i]))
	}
	resp := map[string]any{"messages": views}
	if nextToken != nil {
		resp["next_page_token"] = *nextToken
	}
	server.RespondJSON(w, http.StatusOK, resp)
}

func (s *Service) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserID(r.Context())

	chatID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	var in struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	msg, err := s.Post(r.Context(), userID, chatID, in.Text)
	if err != nil {
		s.fail(w, "post message failed", err)
		return
	}
	server.RespondJSON(w, http.StatusCreated, viewOf(msg))
}

func (s *Service) fail(w http.ResponseWriter, msg string, err error) {
	if apperr.HTTPStatus(err) == http.StatusInternalServerError {
		s.appCtx.Logger.Error(msg, "err", err)
	}
	apperr.Write(w, err)
}
