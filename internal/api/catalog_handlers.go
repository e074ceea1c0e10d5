package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/manrura/internal/models"
)

// catalogResponse lists the standards with their totals
type catalogResponse struct {
	Standards   []models.StandardInfo `json:"standards"`
	TotalPoints int                   `json:"totalPoints"`
	MaxScore    int                   `json:"maxScore"`
}

// handleListStandards returns all standards with element and point counts
func (s *Server) handleListStandards(w http.ResponseWriter, r *http.Request) {
	cat := s.manager.Catalog()
	respondJSON(w, http.StatusOK, catalogResponse{
		Standards:   cat.List(),
		TotalPoints: cat.PointCount(),
		MaxScore:    cat.MaxScore(),
	})
}

// handleGetStandard returns one standard with its elements and points
func (s *Server) handleGetStandard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "standardId")

	std := s.manager.Catalog().Standard(id)
	if std == nil {
		respondError(w, http.StatusNotFound, "standard_not_found", "standard not found: "+id)
		return
	}

	respondJSON(w, http.StatusOK, std)
}
