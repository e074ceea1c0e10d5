// Package directory implements the append-only user and ward lists.
// Every function returns a new slice and leaves its input untouched.
package directory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/manrura/internal/models"
)

// Domain errors
var (
	ErrNameRequired    = errors.New("name is required")
	ErrInvalidRole     = errors.New("invalid role")
	ErrDuplicateUserID = errors.New("user id already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrWardNotFound    = errors.New("ward not found")
)

// WardIDPrefix starts every generated ward id
const WardIDPrefix = "ward-"

// NewWardID returns "ward-<unix millis>", moved forward one millisecond at a
// time until it does not collide with an existing ward
func NewWardID(now time.Time, existing []models.Ward) string {
	taken := make(map[string]bool, len(existing))
	for _, w := range existing {
		taken[w.ID] = true
	}

	ms := now.UnixMilli()
	for {
		id := WardIDPrefix + strconv.FormatInt(ms, 10)
		if !taken[id] {
			return id
		}
		ms++
	}
}

// AddWard appends a ward with a fresh id. Duplicate names are allowed.
func AddWard(wards []models.Ward, name string, now time.Time) ([]models.Ward, models.Ward, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return wards, models.Ward{}, ErrNameRequired
	}

	ward := models.Ward{
		ID:   NewWardID(now, wards),
		Name: name,
	}

	next := make([]models.Ward, 0, len(wards)+1)
	next = append(next, wards...)
	next = append(next, ward)
	return next, ward, nil
}

// AddUser appends a user as given. A missing id is filled with a UUID.
// A Ward Staff wardId is not checked against the ward list.
func AddUser(users []models.User, req models.CreateUserRequest) ([]models.User, models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return users, models.User{}, ErrNameRequired
	}
	if !req.Role.Valid() {
		return users, models.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, req.Role)
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.New().String()
	}
	if _, ok := FindUser(users, id); ok {
		return users, models.User{}, fmt.Errorf("%w: %s", ErrDuplicateUserID, id)
	}

	user := models.User{
		ID:     id,
		Name:   name,
		Role:   req.Role,
		WardID: strings.TrimSpace(req.WardID),
	}

	next := make([]models.User, 0, len(users)+1)
	next = append(next, users...)
	next = append(next, user)
	return next, user, nil
}

// FindUser looks a user up by id
func FindUser(users []models.User, id string) (models.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// FindWard looks a ward up by id
func FindWard(wards []models.Ward, id string) (models.Ward, bool) {
	for _, w := range wards {
		if w.ID == id {
			return w, true
		}
	}
	return models.Ward{}, false
}

// Assessors returns the users with the Assessor role
func Assessors(users []models.User) []models.User {
	var result []models.User
	for _, u := range users {
		if u.Role == models.RoleAssessor {
			result = append(result, u)
		}
	}
	return result
}

// AddPeriod appends an assessment period with a UUID id
func AddPeriod(periods []models.AssessmentPeriod, req models.CreatePeriodRequest) ([]models.AssessmentPeriod, models.AssessmentPeriod, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return periods, models.AssessmentPeriod{}, ErrNameRequired
	}

	start, err := time.Parse(models.DateLayout, req.StartDate)
	if err != nil {
		return periods, models.AssessmentPeriod{}, fmt.Errorf("%w: start date: %v", models.ErrInvalidPeriod, err)
	}
	end, err := time.Parse(models.DateLayout, req.EndDate)
	if err != nil {
		return periods, models.AssessmentPeriod{}, fmt.Errorf("%w: end date: %v", models.ErrInvalidPeriod, err)
	}
	if end.Before(start) {
		return periods, models.AssessmentPeriod{}, fmt.Errorf("%w: end date is before start date", models.ErrInvalidPeriod)
	}

	period := models.AssessmentPeriod{
		ID:        uuid.New().String(),
		Name:      name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	next := make([]models.AssessmentPeriod, 0, len(periods)+1)
	next = append(next, periods...)
	next = append(next, period)
	return next, period, nil
}

// ActivePeriod returns the first period containing day
func ActivePeriod(periods []models.AssessmentPeriod, day time.Time) (models.AssessmentPeriod, bool) {
	for _, p := range periods {
		if p.Contains(day) {
			return p, true
		}
	}
	return models.AssessmentPeriod{}, false
}
