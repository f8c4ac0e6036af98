package swipe

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/server"
)

func (s *Service) handleSwipe(w http.ResponseWriter, r *http.Request) {
	actorID, _ := server.UserID(r.Context())

	targetID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	var in struct {
		Liked bool `json:"liked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	result, err := s.Swipe(r.Context(), actorID, targetID, in.Liked)
	if err != nil {
		if apperr.HTTPStatus(err) == http.StatusInternalServerError {
			s.appCtx.Logger.Error("swipe failed", "err", err)
		}
		apperr.Write(w, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, result)
}
