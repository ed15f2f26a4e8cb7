package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/highlowbuffalo/internal/api/render"
	"github.com/mmynk/highlowbuffalo/internal/middleware"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/reflection"
	"github.com/mmynk/highlowbuffalo/internal/service"
)

// Ops

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if s.cfg.Store != nil {
		if err := s.cfg.Store.Ping(ctx); err != nil {
			s.logger.Warn("Readiness check failed", "error", err)
			render.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	render.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Auth

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		render.Error(w, err)
		return
	}
	user, err := s.cfg.Auth.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		render.Error(w, err)
		return
	}
	render.JSON(w, http.StatusCreated, user)
}

// handleToken accepts JSON {email, password} or an OAuth2 password-grant
// form with username and password.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			render.Error(w, errInvalidForm)
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if err := decodeBody(r, &req); err != nil {
		render.Error(w, err)
		return
	}

	token, err := s.cfg.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		render.Error(w, err)
		return
	}
	render.JSON(w, http.StatusOK, token)
}

// Reflections

type reactRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleListReflections(w http.ResponseWriter, r *http.Request) {
	rs, err := s.cfg.Reflections.List(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("scope"))
	respond(w, http.StatusOK, nonNil(rs), err)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	rs, err := s.cfg.Reflections.Feed(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("scope"))
	respond(w, http.StatusOK, nonNil(rs), err)
}

func (s *Server) handleFollowUps(w http.ResponseWriter, r *http.Request) {
	rs, err := s.cfg.Reflections.FollowUps(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, http.StatusOK, nonNil(rs), err)
}

func (s *Server) handleCreateReflection(w http.ResponseWriter, r *http.Request) {
	var draft reflection.Draft
	if err := decodeBody(r, &draft); err != nil {
		render.Error(w, err)
		return
	}
	created, err := s.cfg.Reflections.Create(r.Context(), middleware.GetUserID(r.Context()), draft)
	respond(w, http.StatusCreated, created, err)
}

func (s *Server) handleUpdateReflection(w http.ResponseWriter, r *http.Request) {
	var patch reflection.Patch
	if err := decodeBody(r, &patch); err != nil {
		render.Error(w, err)
		return
	}
	updated, err := s.cfg.Reflections.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), patch)
	respond(w, http.StatusOK, updated, err)
}

func (s *Server) handleDeleteReflection(w http.ResponseWriter, r *http.Request) {
	err := s.cfg.Reflections.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	respondNoContent(w, err)
}

func (s *Server) handleReact(w http.ResponseWriter, r *http.Request) {
	var req reactRequest
	if err := decodeBody(r, &req); err != nil {
		render.Error(w, err)
		return
	}
	updated, err := s.cfg.Reflections.ToggleReaction(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Type)
	respond(w, http.StatusOK, updated, err)
}

func (s *Server) handleFlag(w http.ResponseWriter, r *http.Request) {
	updated, err := s.cfg.Reflections.ToggleFlag(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, updated, err)
}

// Users

type renameRequest struct {
	FullName string `json:"full_name" validate:"required"`
}

type settingsRequest struct {
	NotificationCadence models.Cadence `json:"notificationCadence" validate:"required,oneof=daily weekly paused"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.cfg.Users.Me(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, http.StatusOK, user, err)
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeBody(r, &req); err != nil {
		render.Error(w, err)
		return
	}
	user, err := s.cfg.Users.Rename(r.Context(), middleware.GetUserID(r.Context()), req.FullName)
	respond(w, http.StatusOK, user, err)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.cfg.Users.Settings(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, http.StatusOK, settings, err)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeBody(r, &req); err != nil {
		render.Error(w, err)
		return
	}
	settings, err := s.cfg.Users.UpdateSettings(r.Context(), middleware.GetUserID(r.Context()), req.NotificationCadence)
	respond(w, http.StatusOK, settings, err)
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := s.cfg.Users.Friends(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, http.StatusOK, nonNil(friends), err)
}

func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		render.Error(w, err)
		return
	}
	friend, err := s.cfg.Users.AddFriend(r.Context(), middleware.GetUserID(r.Context()), req.Email)
	respond(w, http.StatusCreated, friend, err)
}

func (s *Server) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	err := s.cfg.Users.RemoveFriend(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	respondNoContent(w, err)
}

// Herds

type herdRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) handleListHerds(w http.ResponseWriter, r *http.Request) {
	herds, err := s.cfg.Herds.List(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, http.StatusOK, nonNil(herds), err)
}

func (s *Server) handleCreateHerd(w http.ResponseWriter, r *http.Request) {
	var req herdRequest
	if err := decodeBody(r, &req); err != nil {
		render.Error(w, err)
		return
	}
	herd, err := s.cfg.Herds.Create(r.Context(), middleware.GetUserID(r.Context()),
		service.HerdInput{Name: req.Name, Description: req.Description})
	respond(w, http.StatusCreated, herd, err)
}

func (s *Server) handleGetHerd(w http.ResponseWriter, r *http.Request) {
	herd, err := s.cfg.Herds.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, herd, err)
}

func (s *Server) handleUpdateHerd(w http.ResponseWriter, r *http.Request) {
	var req herdRequest
	if err := decodeBody(r, &req); err != nil {
		render.Error(w, err)
		return
	}
	herd, err := s.cfg.Herds.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"),
		service.HerdInput{Name: req.Name, Description: req.Description})
	respond(w, http.StatusOK, herd, err)
}

func (s *Server) handleDeleteHerd(w http.ResponseWriter, r *http.Request) {
	err := s.cfg.Herds.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	respondNoContent(w, err)
}

func (s *Server) handleAddHerdMember(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		render.Error(w, err)
		return
	}
	herd, err := s.cfg.Herds.AddMember(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Email)
	respond(w, http.StatusOK, herd, err)
}

func (s *Server) handleRemoveHerdMember(w http.ResponseWriter, r *http.Request) {
	herd, err := s.cfg.Herds.RemoveMember(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "userId"))
	respond(w, http.StatusOK, herd, err)
}

// Notifications

func (s *Server) handleNotificationStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.cfg.Notifications.Status(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, http.StatusOK, status, err)
}
