package policy

import (
	"github.com/terra-clan/manrura/internal/models"
)

// TargetWard resolves the ward a write by actor lands on.
// Ward Staff always resolve to their assigned ward whatever the navigation
// state says; Admins never resolve to a ward.
func TargetWard(actor *models.User, nav *Navigation) (string, bool) {
	if actor == nil {
		return "", false
	}

	switch actor.Role {
	case models.RoleWardStaff:
		return actor.WardID, actor.WardID != ""
	case models.RoleAssessor:
		if nav == nil {
			return "", false
		}
		return nav.SelectedWardID, nav.SelectedWardID != ""
	default:
		return "", false
	}
}

// CanWrite reports whether a user with the given role may write the
// sub-record of a point assessment
func CanWrite(role models.Role, sub models.ScoreRole) bool {
	switch role {
	case models.RoleWardStaff:
		return sub == models.ScoreRoleWardStaff
	case models.RoleAssessor:
		return sub == models.ScoreRoleAssessor
	default:
		return false
	}
}

// ApplyScore merges update into the actor's sub-record of a point in the
// target ward and returns the next assessments value. The input is never
// modified. Declined writes (admin, wrong sub-record, no target ward)
// return the input unchanged with Applied false and no error.
func ApplyScore(
	assessments models.Assessments,
	actor *models.User,
	nav *Navigation,
	pointID string,
	role models.ScoreRole,
	update models.ScoreUpdate,
) (models.Assessments, models.ScoreResult) {
	result := models.ScoreResult{PointID: pointID, Role: role}

	if actor == nil || !CanWrite(actor.Role, role) {
		return assessments, result
	}

	wardID, ok := TargetWard(actor, nav)
	if !ok {
		return assessments, result
	}

	var current models.RoleScore
	if pa, ok := assessments.Lookup(wardID, pointID); ok {
		if rs := pa.Get(role); rs != nil {
			current = *rs
		}
	}

	merged := current.Merge(update)
	if role == models.ScoreRoleAssessor {
		merged.AssessorID = actor.ID
	}

	next := assessments.With(wardID, pointID, role, merged)
	pa := next.Ward(wardID)[pointID]

	result.Applied = true
	result.WardID = wardID
	result.Assessment = &pa
	return next, result
}
