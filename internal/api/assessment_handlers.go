package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/manrura/internal/directory"
	"github.com/terra-clan/manrura/internal/models"
	"github.com/terra-clan/manrura/internal/policy"
)

// wardAssessmentsResponse is the assessment table of the ward on screen
type wardAssessmentsResponse struct {
	WardID      string                 `json:"wardId"`
	View        policy.View            `json:"view"`
	ReadOnly    bool                   `json:"readOnly"`
	Assessments models.WardAssessments `json:"assessments"`
}

// handleGetAssessments returns the assessments of the ward the user is viewing.
// An admin on the dashboard views no ward and gets an empty table.
func (s *Server) handleGetAssessments(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	nav := s.navigation(r, user)

	resp := wardAssessmentsResponse{
		WardID:      nav.DisplayWardID(user),
		View:        nav.View(user),
		ReadOnly:    !user.Role.CanWrite(),
		Assessments: models.WardAssessments{},
	}

	if resp.WardID != "" {
		wa, err := s.manager.WardAssessments(r.Context(), resp.WardID)
		if err != nil {
			respondDomainError(w, err, "get assessments")
			return
		}
		resp.Assessments = wa
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleApplyScore writes one sub-record of a point assessment. A write the
// policy declines is answered with 200 and applied false.
func (s *Server) handleApplyScore(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	pointID := chi.URLParam(r, "pointId")
	role := models.ScoreRole(chi.URLParam(r, "role"))

	var req models.ScoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// wardId is a selection hint; only an Assessor's selection follows it
	if req.WardID != "" && user.Role == models.RoleAssessor {
		if _, ok := directory.FindWard(s.manager.Wards(r.Context()), req.WardID); !ok {
			respondError(w, http.StatusNotFound, "ward_not_found", "ward not found: "+req.WardID)
			return
		}
		s.updateNavigation(r, user, func(nav *policy.Navigation) bool {
			return nav.SelectWard(user, req.WardID)
		})
	}

	nav := s.navigation(r, user)
	result, err := s.manager.ApplyScore(r.Context(), user, &nav, pointID, role, req.Update)
	if err != nil {
		respondDomainError(w, err, "apply score")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleWardSummary returns the completion and score of one ward
func (s *Server) handleWardSummary(w http.ResponseWriter, r *http.Request) {
	report, err := s.manager.WardReport(r.Context(), chi.URLParam(r, "wardId"))
	if err != nil {
		respondDomainError(w, err, "summarize ward")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// handleDashboard returns the admin overview
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.manager.Dashboard(r.Context()))
}
