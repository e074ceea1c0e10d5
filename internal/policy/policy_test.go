package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/manrura/internal/models"
)

var (
	admin     = &models.User{ID: "u-admin", Role: models.RoleAdmin}
	assessorA = &models.User{ID: "u-assessor", Role: models.RoleAssessor}
	assessorB = &models.User{ID: "u-assessor-2", Role: models.RoleAssessor}
	staffA    = &models.User{ID: "u-staff", Role: models.RoleWardStaff, WardID: "ward-A"}

	wards = []models.Ward{{ID: "ward-A"}, {ID: "ward-B"}}
)

func TestNewNavigation(t *testing.T) {
	nav := NewNavigation(*staffA, wards, "bab1")
	assert.Equal(t, "ward-A", nav.SelectedWardID)
	assert.Equal(t, ViewOwnWard, nav.View(staffA))

	nav = NewNavigation(*assessorA, wards, "bab1")
	assert.Equal(t, "ward-A", nav.SelectedWardID)
	assert.Equal(t, "bab1", nav.StandardID)
	assert.Equal(t, ViewSelectedWard, nav.View(assessorA))

	nav = NewNavigation(*assessorA, nil, "bab1")
	assert.Empty(t, nav.SelectedWardID)

	nav = NewNavigation(*admin, wards, "bab1")
	assert.Equal(t, ViewDashboard, nav.View(admin))
	assert.Empty(t, nav.DisplayWardID(admin))
}

func TestNavigation_AdminTransitions(t *testing.T) {
	nav := NewNavigation(*admin, wards, "bab1")

	require.True(t, nav.SelectStandard(admin, AdminPageID))
	assert.Equal(t, ViewDashboard, nav.View(admin))

	// opening a ward from the dashboard restores the default standard
	require.True(t, nav.SelectWard(admin, "ward-B"))
	assert.Equal(t, ViewWardDetail, nav.View(admin))
	assert.Equal(t, "bab1", nav.StandardID)
	assert.Equal(t, "ward-B", nav.DisplayWardID(admin))

	require.True(t, nav.SelectStandard(admin, "bab3"))
	assert.Equal(t, ViewWardDetail, nav.View(admin))

	require.True(t, nav.ReturnToDashboard(admin))
	assert.Equal(t, ViewDashboard, nav.View(admin))
	assert.Empty(t, nav.InspectedWardID)
}

func TestNavigation_NonAdminCannotOpenAdminPage(t *testing.T) {
	nav := NewNavigation(*assessorA, wards, "bab1")
	assert.False(t, nav.SelectStandard(assessorA, AdminPageID))
	assert.Equal(t, "bab1", nav.StandardID)
}

func TestNavigation_WardStaffLocked(t *testing.T) {
	nav := NewNavigation(*staffA, wards, "bab1")
	assert.False(t, nav.SelectWard(staffA, "ward-B"))
	assert.Equal(t, "ward-A", nav.SelectedWardID)
	assert.Equal(t, "ward-A", nav.DisplayWardID(staffA))
}

func TestApplyScore_MergesFields(t *testing.T) {
	nav := NewNavigation(*assessorA, wards, "bab1")
	store := models.Assessments{}

	store, res := ApplyScore(store, assessorA, &nav, "p1", models.ScoreRoleAssessor, models.ScoreUpdate{Score: models.Int(7)})
	require.True(t, res.Applied)
	store, res = ApplyScore(store, assessorA, &nav, "p1", models.ScoreRoleAssessor, models.ScoreUpdate{Notes: models.String("ok")})
	require.True(t, res.Applied)

	pa, ok := store.Lookup("ward-A", "p1")
	require.True(t, ok)
	require.NotNil(t, pa.Assessor)
	require.NotNil(t, pa.Assessor.Score)
	assert.Equal(t, 7, *pa.Assessor.Score)
	assert.Equal(t, "ok", pa.Assessor.Notes)
	assert.Nil(t, pa.WardStaff)
}

func TestApplyScore_StampsLastAssessor(t *testing.T) {
	navA := NewNavigation(*assessorA, wards, "bab1")
	navB := NewNavigation(*assessorB, wards, "bab1")
	store := models.Assessments{}

	store, _ = ApplyScore(store, assessorA, &navA, "p1", models.ScoreRoleAssessor, models.ScoreUpdate{Score: models.Int(4)})
	pa, _ := store.Lookup("ward-A", "p1")
	assert.Equal(t, "u-assessor", pa.Assessor.AssessorID)

	store, _ = ApplyScore(store, assessorB, &navB, "p1", models.ScoreRoleAssessor, models.ScoreUpdate{Notes: models.String("rechecked")})
	pa, _ = store.Lookup("ward-A", "p1")
	assert.Equal(t, "u-assessor-2", pa.Assessor.AssessorID)
	assert.Equal(t, 4, *pa.Assessor.Score)
}

func TestApplyScore_WardStaffPinnedToOwnWard(t *testing.T) {
	// the navigation state claims ward-B
	nav := Navigation{StandardID: "bab1", SelectedWardID: "ward-B"}
	store := models.Assessments{}

	store, res := ApplyScore(store, staffA, &nav, "p1", models.ScoreRoleWardStaff, models.ScoreUpdate{Score: models.Int(9)})
	require.True(t, res.Applied)
	assert.Equal(t, "ward-A", res.WardID)

	_, onB := store.Lookup("ward-B", "p1")
	assert.False(t, onB)
	pa, onA := store.Lookup("ward-A", "p1")
	require.True(t, onA)
	assert.Equal(t, 9, *pa.WardStaff.Score)
	assert.Empty(t, pa.WardStaff.AssessorID)
}

func TestApplyScore_AdminIsNoOp(t *testing.T) {
	nav := NewNavigation(*admin, wards, "bab1")
	nav.SelectWard(admin, "ward-A")
	store := models.Assessments{}

	for _, role := range []models.ScoreRole{models.ScoreRoleAssessor, models.ScoreRoleWardStaff} {
		next, res := ApplyScore(store, admin, &nav, "p1", role, models.ScoreUpdate{Score: models.Int(10)})
		assert.False(t, res.Applied)
		assert.Empty(t, next)
	}
}

func TestApplyScore_WrongSubRecordIsNoOp(t *testing.T) {
	nav := NewNavigation(*staffA, wards, "bab1")
	store, res := ApplyScore(models.Assessments{}, staffA, &nav, "p1", models.ScoreRoleAssessor, models.ScoreUpdate{Score: models.Int(10)})
	assert.False(t, res.Applied)
	assert.Empty(t, store)

	navA := NewNavigation(*assessorA, wards, "bab1")
	store, res = ApplyScore(models.Assessments{}, assessorA, &navA, "p1", models.ScoreRoleWardStaff, models.ScoreUpdate{Score: models.Int(10)})
	assert.False(t, res.Applied)
	assert.Empty(t, store)
}

func TestApplyScore_AssessorWithoutWardIsNoOp(t *testing.T) {
	nav := NewNavigation(*assessorA, nil, "bab1")
	_, res := ApplyScore(models.Assessments{}, assessorA, &nav, "p1", models.ScoreRoleAssessor, models.ScoreUpdate{Score: models.Int(1)})
	assert.False(t, res.Applied)
}

func TestApplyScore_DoesNotMutateInput(t *testing.T) {
	nav := NewNavigation(*assessorA, wards, "bab1")
	store := models.Assessments{
		"ward-A": {"p1": {Assessor: &models.RoleScore{Score: models.Int(2), Notes: "keep"}}},
	}
	before := store.Clone()

	next, res := ApplyScore(store, assessorA, &nav, "p1", models.ScoreRoleAssessor, models.ScoreUpdate{Score: models.Int(8)})
	require.True(t, res.Applied)

	assert.Equal(t, before, store)
	pa, _ := next.Lookup("ward-A", "p1")
	assert.Equal(t, 8, *pa.Assessor.Score)
	assert.Equal(t, "keep", pa.Assessor.Notes)
}

func TestApplyScore_ClearScoreKeepsNotes(t *testing.T) {
	nav := NewNavigation(*assessorA, wards, "bab1")
	store := models.Assessments{
		"ward-A": {"p1": {Assessor: &models.RoleScore{Score: models.Int(2), Notes: "keep", Evidence: models.String("doc.pdf")}}},
	}

	next, res := ApplyScore(store, assessorA, &nav, "p1", models.ScoreRoleAssessor, models.ScoreUpdate{ClearScore: true})
	require.True(t, res.Applied)

	pa, _ := next.Lookup("ward-A", "p1")
	assert.Nil(t, pa.Assessor.Score)
	assert.Equal(t, "keep", pa.Assessor.Notes)
	assert.Equal(t, "doc.pdf", *pa.Assessor.Evidence)
}
