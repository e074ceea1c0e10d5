package models

import (
	"errors"
	"time"
)

// DateLayout is the calendar date format used for assessment periods
const DateLayout = "2006-01-02"

var ErrInvalidPeriod = errors.New("invalid assessment period")

// AssessmentPeriod is a named window in which wards are assessed
type AssessmentPeriod struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Contains reports whether the calendar date of day, read in day's own
// location, falls inside the period (inclusive)
func (p *AssessmentPeriod) Contains(day time.Time) bool {
	start, err := time.Parse(DateLayout, p.StartDate)
	if err != nil {
		return false
	}
	end, err := time.Parse(DateLayout, p.EndDate)
	if err != nil {
		return false
	}
	y, m, dd := day.Date()
	d := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return !d.Before(start) && !d.After(end)
}

// CreatePeriodRequest represents a request to add an assessment period
type CreatePeriodRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}
