package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/terra-clan/manrura/internal/directory"
	"github.com/terra-clan/manrura/internal/models"
	"github.com/terra-clan/manrura/internal/policy"
)

// sessionResponse is the acting user with the derived navigation state
type sessionResponse struct {
	User          models.User       `json:"user"`
	Navigation    policy.Navigation `json:"navigation"`
	View          policy.View       `json:"view"`
	DisplayWardID string            `json:"displayWardId,omitempty"`
}

func newSessionResponse(user *models.User, nav policy.Navigation) sessionResponse {
	return sessionResponse{
		User:          *user,
		Navigation:    nav,
		View:          nav.View(user),
		DisplayWardID: nav.DisplayWardID(user),
	}
}

// handleLoginUsers lists the accounts offered on the login screen
func (s *Server) handleLoginUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.manager.Users(r.Context()))
}

// handleLogin starts a fresh navigation session for the chosen account
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "userId is required")
		return
	}

	user, err := s.manager.FindUser(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user_not_found", "user not found")
			return
		}
		respondDomainError(w, err, "log in")
		return
	}

	nav := s.sessions.Start(user, s.manager.Wards(r.Context()), s.manager.Catalog().DefaultStandardID())
	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)

	respondJSON(w, http.StatusOK, newSessionResponse(&user, nav))
}

// handleMe returns the acting user and navigation state
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	respondJSON(w, http.StatusOK, newSessionResponse(user, s.navigation(r, user)))
}

type selectStandardRequest struct {
	StandardID string `json:"standardId"`
}

type selectWardRequest struct {
	WardID string `json:"wardId"`
}

// navigationResponse reports whether a navigation request was honoured
type navigationResponse struct {
	sessionResponse
	Applied bool `json:"applied"`
}

// handleSelectStandard switches the standard on screen, or opens the admin page
func (s *Server) handleSelectStandard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req selectStandardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.StandardID != policy.AdminPageID && s.manager.Catalog().Standard(req.StandardID) == nil {
		respondError(w, http.StatusNotFound, "standard_not_found", "standard not found: "+req.StandardID)
		return
	}

	nav, applied := s.updateNavigation(r, user, func(nav *policy.Navigation) bool {
		return nav.SelectStandard(user, req.StandardID)
	})

	respondJSON(w, http.StatusOK, navigationResponse{sessionResponse: newSessionResponse(user, nav), Applied: applied})
}

// handleSelectWard selects (Assessor) or inspects (Admin) a ward.
// Ward Staff requests are answered with applied false.
func (s *Server) handleSelectWard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req selectWardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, ok := directory.FindWard(s.manager.Wards(r.Context()), req.WardID); !ok {
		respondError(w, http.StatusNotFound, "ward_not_found", "ward not found: "+req.WardID)
		return
	}

	nav, applied := s.updateNavigation(r, user, func(nav *policy.Navigation) bool {
		return nav.SelectWard(user, req.WardID)
	})

	respondJSON(w, http.StatusOK, navigationResponse{sessionResponse: newSessionResponse(user, nav), Applied: applied})
}

// handleReturnToDashboard leaves the admin ward detail view
func (s *Server) handleReturnToDashboard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	nav, applied := s.updateNavigation(r, user, func(nav *policy.Navigation) bool {
		return nav.ReturnToDashboard(user)
	})

	respondJSON(w, http.StatusOK, navigationResponse{sessionResponse: newSessionResponse(user, nav), Applied: applied})
}
