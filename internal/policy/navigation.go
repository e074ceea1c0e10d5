// Package policy decides which ward record a user's actions target and
// whether a score write is allowed at all.
package policy

import (
	"github.com/terra-clan/manrura/internal/models"
)

// AdminPageID is the navigation item that shows the admin dashboard
const AdminPageID = "admin_page"

// View is the screen a user is on, derived from role and navigation state
type View string

const (
	ViewOwnWard      View = "viewing_own_ward"
	ViewSelectedWard View = "viewing_selected_ward"
	ViewDashboard    View = "viewing_dashboard"
	ViewWardDetail   View = "viewing_ward_detail_read_only"
)

// Navigation is the per-user selection state.
// It is client-influenced; every decision that matters re-checks the
// acting user's role and assigned ward instead of trusting these fields.
type Navigation struct {
	StandardID        string `json:"standardId"`
	SelectedWardID    string `json:"selectedWardId,omitempty"`
	InspectedWardID   string `json:"inspectedWardId,omitempty"`
	DefaultStandardID string `json:"-"`
}

// NewNavigation returns the initial state for a user who just logged in.
// Ward Staff are locked to their ward, Assessors start on the first ward,
// and Admins start on the dashboard.
func NewNavigation(user models.User, wards []models.Ward, defaultStandardID string) Navigation {
	nav := Navigation{
		StandardID:        defaultStandardID,
		DefaultStandardID: defaultStandardID,
	}

	switch user.Role {
	case models.RoleWardStaff:
		nav.SelectedWardID = user.WardID
	case models.RoleAssessor:
		if len(wards) > 0 {
			nav.SelectedWardID = wards[0].ID
		}
	}

	return nav
}

// View returns the screen the actor is on
func (n *Navigation) View(actor *models.User) View {
	switch actor.Role {
	case models.RoleAdmin:
		if n.InspectedWardID == "" || n.StandardID == AdminPageID {
			return ViewDashboard
		}
		return ViewWardDetail
	case models.RoleAssessor:
		return ViewSelectedWard
	default:
		return ViewOwnWard
	}
}

// SelectStandard handles a click on a standard (or on the admin page).
// It returns false when the selection was ignored.
func (n *Navigation) SelectStandard(actor *models.User, standardID string) bool {
	if standardID == AdminPageID {
		if !actor.IsAdmin() {
			return false
		}
		n.StandardID = AdminPageID
		n.InspectedWardID = ""
		return true
	}

	n.StandardID = standardID
	return true
}

// SelectWard handles a ward selection. Admins open the read-only detail
// view of the ward, Assessors switch the ward they score, and Ward Staff
// cannot leave their own ward.
func (n *Navigation) SelectWard(actor *models.User, wardID string) bool {
	switch actor.Role {
	case models.RoleAdmin:
		n.InspectedWardID = wardID
		if n.StandardID == AdminPageID || n.StandardID == "" {
			n.StandardID = n.DefaultStandardID
		}
		return true
	case models.RoleAssessor:
		n.SelectedWardID = wardID
		return true
	default:
		n.SelectedWardID = actor.WardID
		return false
	}
}

// ReturnToDashboard leaves the admin ward detail view
func (n *Navigation) ReturnToDashboard(actor *models.User) bool {
	return n.SelectStandard(actor, AdminPageID)
}

// DisplayWardID returns the ward whose assessments are on screen, or ""
func (n *Navigation) DisplayWardID(actor *models.User) string {
	switch actor.Role {
	case models.RoleAdmin:
		if n.View(actor) == ViewWardDetail {
			return n.InspectedWardID
		}
		return ""
	case models.RoleAssessor:
		return n.SelectedWardID
	default:
		return actor.WardID
	}
}
