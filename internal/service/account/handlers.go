package account

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dkazlou/flint/internal/apperr"
	"github.com/dkazlou/flint/internal/db"
	"github.com/dkazlou/flint/internal/server"
)

// userView is the public profile shape returned by the API.
type userView struct {
	ID           uint64          `json:"id"`
	Username     string          `json:"username"`
	Sex          db.Sex          `json:"sex"`
	Age          int             `json:"age"`
	Subscription db.Subscription `json:"subscription"`
}

func viewOf(u *db.User) userView {
	return userView{
		ID:           u.ID,
		Username:     u.Username,
		Sex:          u.Sex,
		Age:          u.Age,
		Subscription: u.Subscription,
	}
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	user, err := s.Register(r.Context(), in)
	if err != nil {
		s.fail(w, "register failed", err)
		return
	}
	server.RespondJSON(w, http.StatusCreated, viewOf(user))
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	token, user, err := s.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		s.fail(w, "login failed", err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  viewOf(user),
	})
}

func (s *Service) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	user, err := s.GetUser(r.Context(), id)
	if err != nil {
		s.fail(w, "get user failed", err)
		return
	}
	server.RespondJSON(w, http.StatusOK, viewOf(user))
}

func (s *Service) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserID(r.Context())

	var in ProfileUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	user, err := s.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		s.fail(w, "profile update failed", err)
		return
	}
	server.RespondJSON(w, http.StatusOK, viewOf(user))
}

func (s *Service) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserID(r.Context())

	var in struct {
		OldPassword        string `json:"old_password"`
		NewPassword        string `json:"new_password"`
		NewPasswordConfirm string `json:"new_password_confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}
	if in.NewPassword != in.NewPasswordConfirm {
		s.fail(w, "password change failed",
			fmt.Errorf("%w: password fields do not match", apperr.ErrValidation))
		return
	}

	if err := s.ChangePassword(r.Context(), userID, in.OldPassword, in.NewPassword); err != nil {
		s.fail(w, "password change failed", err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserID(r.Context())

	var in struct {
		Longitude float64 `json:"longitude"`
		Latitude  float64 `json:"latitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	if err := s.UpdateLocation(r.Context(), userID, in.Longitude, in.Latitude); err != nil {
		s.fail(w, "location update failed", err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleUpdateSearchRadius(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserID(r.Context())

	var in struct {
		RadiusKm float64 `json:"radius_km"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.ErrValidation)
		return
	}

	if err := s.UpdateSearchRadius(r.Context(), userID, in.RadiusKm); err != nil {
		s.fail(w, "radius update failed", err)
		return
	}
	server.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) fail(w http.ResponseWriter, msg string, err error) {
	if apperr.HTTPStatus(err) == http.StatusInternalServerError {
		s.appCtx.Logger.Error(msg, "err", err)
	}
	apperr.Write(w, err)
}
