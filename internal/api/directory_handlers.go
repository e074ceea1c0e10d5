package api

import (
	"net/http"

	"github.com/terra-clan/manrura/internal/models"
)

func (s *Server) handleListWards(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.manager.Wards(r.Context()))
}

func (s *Server) handleCreateWard(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ward, err := s.manager.AddWard(r.Context(), req.Name)
	if err != nil {
		respondDomainError(w, err, "create ward")
		return
	}

	respondJSON(w, http.StatusCreated, ward)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.manager.Users(r.Context()))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.manager.AddUser(r.Context(), req)
	if err != nil {
		respondDomainError(w, err, "create user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.manager.Periods(r.Context()))
}

func (s *Server) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePeriodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	period, err := s.manager.AddPeriod(r.Context(), req)
	if err != nil {
		respondDomainError(w, err, "create period")
		return
	}

	respondJSON(w, http.StatusCreated, period)
}
