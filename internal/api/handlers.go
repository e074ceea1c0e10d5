package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/manrura/internal/assessment"
	"github.com/terra-clan/manrura/internal/directory"
	"github.com/terra-clan/manrura/internal/models"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondDomainError maps the domain sentinel errors to HTTP statuses
func respondDomainError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, assessment.ErrUnknownPoint):
		respondError(w, http.StatusNotFound, "point_not_found", err.Error())
	case errors.Is(err, directory.ErrWardNotFound):
		respondError(w, http.StatusNotFound, "ward_not_found", err.Error())
	case errors.Is(err, directory.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, directory.ErrDuplicateUserID):
		respondError(w, http.StatusConflict, "duplicate_user", err.Error())
	case errors.Is(err, models.ErrInvalidScore),
		errors.Is(err, models.ErrInvalidScoreRole),
		errors.Is(err, models.ErrInvalidPeriod),
		errors.Is(err, directory.ErrNameRequired),
		errors.Is(err, directory.ErrInvalidRole):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		slog.Error("request failed", "action", action, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

// decodeJSON decodes the request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks, healthy := s.health.Report(r.Context())
	if !healthy {
		slog.Warn("readiness check failed", "checks", checks)
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": checks,
	})
}
