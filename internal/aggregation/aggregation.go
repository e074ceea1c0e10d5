// Package aggregation computes completion and score figures from the
// catalog and the assessment store. Every function is pure and rescans its
// inputs in full on each call.
package aggregation

import (
	"github.com/terra-clan/manrura/internal/models"
)

// PointSource is the part of the catalog the summaries need
type PointSource interface {
	PointIDs() []string
}

// WardSummary is the dashboard row of a single ward
type WardSummary struct {
	WardID         string  `json:"id"`
	Name           string  `json:"name"`
	AssessedPoints int     `json:"assessedPoints"`
	TotalPoints    int     `json:"totalPoints"`
	Score          int     `json:"score"`
	MaxScore       int     `json:"maxScore"`
	Completion     float64 `json:"progress"`
}

// OverallSummary aggregates every ward.
// Completion is measured against the full catalog of every ward, while
// AverageScore only considers points that have an assessor score.
type OverallSummary struct {
	Wards            int     `json:"wards"`
	AssessedPoints   int     `json:"assessedPoints"`
	PossiblePoints   int     `json:"possiblePoints"`
	AssessedScore    int     `json:"assessedScore"`
	AssessedMaxScore int     `json:"assessedMaxScore"`
	Completion       float64 `json:"overallCompletion"`
	AverageScore     float64 `json:"overallAverageScore"`
}

// StandardSummary is the per-standard breakdown of a ward
type StandardSummary struct {
	StandardID     string  `json:"standardId"`
	Title          string  `json:"title"`
	AssessedPoints int     `json:"assessedPoints"`
	TotalPoints    int     `json:"totalPoints"`
	Score          int     `json:"score"`
	MaxScore       int     `json:"maxScore"`
	Completion     float64 `json:"progress"`
	// SelfAssessedPoints counts points the ward scored itself
	SelfAssessedPoints int `json:"selfAssessedPoints"`
}

// Dashboard is everything the admin overview shows
type Dashboard struct {
	TotalWards     int            `json:"totalWards"`
	TotalAssessors int            `json:"totalAssessors"`
	Overall        OverallSummary `json:"overall"`
	Wards          []WardSummary  `json:"wards"`
}

// SummarizeWard computes completion and score of one ward against the
// whole catalog. Scores stored for points outside the catalog are ignored.
func SummarizeWard(cat PointSource, assessments models.Assessments, ward models.Ward) WardSummary {
	ids := cat.PointIDs()
	assessed, score := tally(ids, assessments, ward.ID)

	return WardSummary{
		WardID:         ward.ID,
		Name:           ward.Name,
		AssessedPoints: assessed,
		TotalPoints:    len(ids),
		Score:          score,
		MaxScore:       len(ids) * models.PointWeight,
		Completion:     percent(assessed, len(ids)),
	}
}

// SummarizeWards returns one summary per ward, in ward order
func SummarizeWards(cat PointSource, assessments models.Assessments, wards []models.Ward) []WardSummary {
	result := make([]WardSummary, 0, len(wards))
	for _, w := range wards {
		result = append(result, SummarizeWard(cat, assessments, w))
	}
	return result
}

// SummarizeOverall aggregates the per-ward summaries
func SummarizeOverall(cat PointSource, assessments models.Assessments, wards []models.Ward) OverallSummary {
	return combine(SummarizeWards(cat, assessments, wards), len(cat.PointIDs()))
}

func combine(summaries []WardSummary, catalogSize int) OverallSummary {
	out := OverallSummary{
		Wards:          len(summaries),
		PossiblePoints: len(summaries) * catalogSize,
	}

	for _, s := range summaries {
		out.AssessedPoints += s.AssessedPoints
		if s.AssessedPoints > 0 {
			out.AssessedScore += s.Score
		}
		out.AssessedMaxScore += s.AssessedPoints * models.PointWeight
	}

	out.Completion = percent(out.AssessedPoints, out.PossiblePoints)
	out.AverageScore = percent(out.AssessedScore, out.AssessedMaxScore)
	return out
}

// SummarizeStandard computes the figures of one ward restricted to a standard
func SummarizeStandard(std *models.Standard, assessments models.Assessments, wardID string) StandardSummary {
	ids := std.PointIDs()
	assessed, score := tally(ids, assessments, wardID)

	self := 0
	for _, id := range ids {
		if pa, ok := assessments.Lookup(wardID, id); ok && pa.WardStaff.HasScore() {
			self++
		}
	}

	return StandardSummary{
		StandardID:         std.ID,
		Title:              std.Title,
		AssessedPoints:     assessed,
		TotalPoints:        len(ids),
		Score:              score,
		MaxScore:           len(ids) * models.PointWeight,
		Completion:         percent(assessed, len(ids)),
		SelfAssessedPoints: self,
	}
}

// BuildDashboard assembles the admin overview
func BuildDashboard(cat PointSource, assessments models.Assessments, wards []models.Ward, users []models.User) Dashboard {
	summaries := SummarizeWards(cat, assessments, wards)

	assessors := 0
	for _, u := range users {
		if u.Role == models.RoleAssessor {
			assessors++
		}
	}

	return Dashboard{
		TotalWards:     len(wards),
		TotalAssessors: assessors,
		Overall:        combine(summaries, len(cat.PointIDs())),
		Wards:          summaries,
	}
}

// tally counts the points of ids with an assessor score and sums those scores
func tally(ids []string, assessments models.Assessments, wardID string) (assessed, score int) {
	for _, id := range ids {
		if s, ok := assessments.AssessorScore(wardID, id); ok {
			assessed++
			score += s
		}
	}
	return assessed, score
}

// percent returns part/whole*100, or 0 when whole is 0
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
