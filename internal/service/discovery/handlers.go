package discovery

import (
	"net/http"

	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/server"
)

func (s *Service) handleProposals(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserID(r.Context())

	proposals, err := s.Proposals(r.Context(), userID)
	if err != nil {
		s.fail(w, "proposals failed", err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]any{"proposals": proposals})
}

func (s *Service) handleMatched(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserID(r.Context())

	matched, err := s.Matched(r.Context(), userID)
	if err != nil {
		s.fail(w, "matched list failed", err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]any{"matched": matched})
}

func (s *Service) handleMatchCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserID(r.Context())

	count, err := s.MatchCount(r.Context(), userID)
	if err != nil {
		s.fail(w, "match count failed", err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Service) fail(w http.ResponseWriter, msg string, err error) {
	if apperr.HTTPStatus(err) == http.StatusInternalServerError {
		s.appCtx.Logger.Error(msg, "err", err)
	}
	apperr.Write(w, err)
}
