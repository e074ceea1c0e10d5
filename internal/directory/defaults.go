package directory

import "github.com/terra-clan/manrura/internal/models"

// DefaultWards seeds the ward list when nothing is stored
func DefaultWards() []models.Ward {
	return []models.Ward{
		{ID: "ward-1", Name: "Ruang Rajawali"},
		{ID: "ward-2", Name: "Ruang Cendrawasih"},
	}
}

// DefaultUsers seeds the account list when nothing is stored
func DefaultUsers() []models.User {
	return []models.User{
		{ID: "user-admin", Name: "Administrator", Role: models.RoleAdmin},
		{ID: "user-assessor", Name: "Tim Asesor", Role: models.RoleAssessor},
		{ID: "user-ward-1", Name: "Kepala Ruang Rajawali", Role: models.RoleWardStaff, WardID: "ward-1"},
		{ID: "user-ward-2", Name: "Kepala Ruang Cendrawasih", Role: models.RoleWardStaff, WardID: "ward-2"},
	}
}

// DefaultSnapshot is the built-in dataset
func DefaultSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Users:       DefaultUsers(),
		Wards:       DefaultWards(),
		Assessments: models.Assessments{},
		Periods:     []models.AssessmentPeriod{},
	}
}
