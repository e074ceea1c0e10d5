package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessments_LookupDistinguishesUnassessedFromZero(t *testing.T) {
	a := Assessments{
		"W1": {"zero": {Assessor: &RoleScore{Score: Int(0)}}},
	}

	_, ok := a.Lookup("W1", "never")
	assert.False(t, ok)
	_, ok = a.Lookup("W2", "zero")
	assert.False(t, ok)

	score, ok := a.AssessorScore("W1", "zero")
	assert.True(t, ok)
	assert.Equal(t, 0, score)

	_, ok = a.AssessorScore("W1", "never")
	assert.False(t, ok)
}

func TestRoleScore_Merge(t *testing.T) {
	rs := RoleScore{}.Merge(ScoreUpdate{Score: Int(7)})
	rs = rs.Merge(ScoreUpdate{Notes: String("ok")})

	require.NotNil(t, rs.Score)
	assert.Equal(t, 7, *rs.Score)
	assert.Equal(t, "ok", rs.Notes)
	assert.Nil(t, rs.Evidence)

	rs = rs.Merge(ScoreUpdate{Evidence: String("sop.pdf")})
	rs = rs.Merge(ScoreUpdate{ClearScore: true})
	assert.Nil(t, rs.Score)
	assert.Equal(t, "sop.pdf", *rs.Evidence)
	assert.Equal(t, "ok", rs.Notes)
}

func TestScoreUpdate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ScoreUpdate
	}{
		{"score only", `{"score": 7}`, ScoreUpdate{Score: Int(7)}},
		{"notes only", `{"notes": "ok"}`, ScoreUpdate{Notes: String("ok")}},
		{"explicit null clears", `{"score": null, "evidence": null}`, ScoreUpdate{ClearScore: true, ClearEvidence: true}},
		{"evidence", `{"evidence": "photo-1.jpg"}`, ScoreUpdate{Evidence: String("photo-1.jpg")}},
		{"null notes ignored", `{"notes": null}`, ScoreUpdate{}},
		{"empty", `{}`, ScoreUpdate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ScoreUpdate
			require.NoError(t, json.Unmarshal([]byte(tt.body), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreUpdate_UnmarshalJSON_BadScore(t *testing.T) {
	var u ScoreUpdate
	assert.Error(t, json.Unmarshal([]byte(`{"score": "ten"}`), &u))
}

func TestScoreUpdate_Validate(t *testing.T) {
	assert.NoError(t, ScoreUpdate{Score: Int(0)}.Validate())
	assert.NoError(t, ScoreUpdate{Score: Int(10)}.Validate())
	assert.ErrorIs(t, ScoreUpdate{Score: Int(11)}.Validate(), ErrInvalidScore)
	assert.ErrorIs(t, ScoreUpdate{Score: Int(-1)}.Validate(), ErrInvalidScore)
	assert.NoError(t, ScoreUpdate{ClearScore: true}.Validate())
	assert.True(t, ScoreUpdate{}.IsEmpty())
}

func TestScoreRequest_JSON(t *testing.T) {
	var req ScoreRequest
	require.NoError(t, json.Unmarshal([]byte(`{"wardId": "ward-B", "score": 3, "evidence": null}`), &req))
	assert.Equal(t, "ward-B", req.WardID)
	assert.Equal(t, 3, *req.Update.Score)
	assert.True(t, req.Update.ClearEvidence)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"wardId": "ward-B", "score": 3, "evidence": null}`, string(data))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	original := Snapshot{
		Users: []User{
			{ID: "admin", Name: "Admin", Role: RoleAdmin},
			{ID: "s1", Name: "Staff", Role: RoleWardStaff, WardID: "ward-1"},
		},
		Wards: []Ward{{ID: "ward-1", Name: "Melati"}},
		Assessments: Assessments{
			"ward-1": {
				"p1": {
					WardStaff: &RoleScore{Score: Int(8), Notes: "self"},
					Assessor:  &RoleScore{Score: Int(0), Notes: "", Evidence: String("audit.pdf"), AssessorID: "a1"},
				},
				"p2": {Assessor: &RoleScore{Notes: "no score yet"}},
				"p3": {WardStaff: &RoleScore{Evidence: String("")}},
			},
			"ward-2": {},
		},
		Periods: []AssessmentPeriod{{ID: "p", Name: "Q1", StartDate: "2026-01-01", EndDate: "2026-03-31"}},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoleScore_JSONShape(t *testing.T) {
	data, err := json.Marshal(RoleScore{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": null, "notes": "", "evidence": null}`, string(data))
}

func TestAssessments_WithLeavesReceiverUntouched(t *testing.T) {
	a := Assessments{"W1": {"p1": {WardStaff: &RoleScore{Score: Int(1)}}}}
	b := a.With("W1", "p1", ScoreRoleAssessor, RoleScore{Score: Int(5)})

	pa, _ := a.Lookup("W1", "p1")
	assert.Nil(t, pa.Assessor)

	pb, _ := b.Lookup("W1", "p1")
	assert.Equal(t, 5, *pb.Assessor.Score)
	assert.Equal(t, 1, *pb.WardStaff.Score)
}

func TestAssessmentPeriod_Contains(t *testing.T) {
	p := AssessmentPeriod{StartDate: "2026-01-01", EndDate: "2026-03-31"}

	assert.True(t, p.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

	// 06:30 in Semarang on 1 April is still 31 March in UTC
	wib := time.FixedZone("WIB", 7*60*60)
	assert.False(t, p.Contains(time.Date(2026, 4, 1, 6, 30, 0, 0, wib)))
	assert.True(t, p.Contains(time.Date(2026, 1, 1, 0, 30, 0, 0, wib)))

	bad := AssessmentPeriod{StartDate: "soon", EndDate: "2026-03-31"}
	assert.False(t, bad.Contains(time.Now()))
}
