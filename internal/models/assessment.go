package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ScoreRole selects which half of a point assessment is written
type ScoreRole string

const (
	ScoreRoleWardStaff ScoreRole = "wardStaff"
	ScoreRoleAssessor  ScoreRole = "assessor"
)

// Valid reports whether r names a known sub-record
func (r ScoreRole) Valid() bool {
	return r == ScoreRoleWardStaff || r == ScoreRoleAssessor
}

var (
	ErrInvalidScore     = errors.New("score must be between 0 and 10")
	ErrInvalidScoreRole = errors.New("score role must be wardStaff or assessor")
)

// RoleScore is one party's score for a point.
// A nil Score means "not scored yet", which is different from a score of 0.
type RoleScore struct {
	Score      *int    `json:"score"`
	Notes      string  `json:"notes"`
	Evidence   *string `json:"evidence"`
	AssessorID string  `json:"assessorId,omitempty"`
}

// HasScore reports whether a numeric score has been recorded
func (rs *RoleScore) HasScore() bool {
	return rs != nil && rs.Score != nil
}

// Merge applies a partial update on top of rs and returns the result.
// Fields absent from the update keep their current value.
func (rs RoleScore) Merge(u ScoreUpdate) RoleScore {
	out := rs
	switch {
	case u.ClearScore:
		out.Score = nil
	case u.Score != nil:
		v := *u.Score
		out.Score = &v
	}
	if u.Notes != nil {
		out.Notes = *u.Notes
	}
	switch {
	case u.ClearEvidence:
		out.Evidence = nil
	case u.Evidence != nil:
		v := *u.Evidence
		out.Evidence = &v
	}
	return out
}

func (rs *RoleScore) clone() *RoleScore {
	if rs == nil {
		return nil
	}
	out := *rs
	if rs.Score != nil {
		v := *rs.Score
		out.Score = &v
	}
	if rs.Evidence != nil {
		v := *rs.Evidence
		out.Evidence = &v
	}
	return &out
}

// PointAssessment holds at most one score per party for a (ward, point) pair
type PointAssessment struct {
	WardStaff *RoleScore `json:"wardStaff,omitempty"`
	Assessor  *RoleScore `json:"assessor,omitempty"`
}

// Get returns the sub-record for the given party, or nil
func (pa PointAssessment) Get(role ScoreRole) *RoleScore {
	switch role {
	case ScoreRoleWardStaff:
		return pa.WardStaff
	case ScoreRoleAssessor:
		return pa.Assessor
	}
	return nil
}

// WardAssessments maps point id to its assessment
type WardAssessments map[string]PointAssessment

// Assessments maps ward id to that ward's point assessments.
// Entries are sparse: a missing ward or point means "unassessed".
type Assessments map[string]WardAssessments

// Lookup returns the assessment of a point in a ward and whether one exists
func (a Assessments) Lookup(wardID, pointID string) (PointAssessment, bool) {
	ward, ok := a[wardID]
	if !ok {
		return PointAssessment{}, false
	}
	pa, ok := ward[pointID]
	return pa, ok
}

// AssessorScore returns the assessor score of a point if one is recorded
func (a Assessments) AssessorScore(wardID, pointID string) (int, bool) {
	pa, ok := a.Lookup(wardID, pointID)
	if !ok || !pa.Assessor.HasScore() {
		return 0, false
	}
	return *pa.Assessor.Score, true
}

// Ward returns a copy of the assessments of one ward, never nil
func (a Assessments) Ward(wardID string) WardAssessments {
	out := make(WardAssessments, len(a[wardID]))
	for id, pa := range a[wardID] {
		out[id] = PointAssessment{WardStaff: pa.WardStaff.clone(), Assessor: pa.Assessor.clone()}
	}
	return out
}

// With returns a new Assessments value in which the given sub-record is
// replaced by rs. The receiver is left untouched; wards that did not change
// are shared between the two values.
func (a Assessments) With(wardID, pointID string, role ScoreRole, rs RoleScore) Assessments {
	next := make(Assessments, len(a)+1)
	for id, ward := range a {
		next[id] = ward
	}

	ward := make(WardAssessments, len(a[wardID])+1)
	for id, pa := range a[wardID] {
		ward[id] = pa
	}

	pa := ward[pointID]
	stored := rs
	switch role {
	case ScoreRoleWardStaff:
		pa.WardStaff = &stored
	case ScoreRoleAssessor:
		pa.Assessor = &stored
	}
	ward[pointID] = pa
	next[wardID] = ward
	return next
}

// Clone returns a deep copy
func (a Assessments) Clone() Assessments {
	if a == nil {
		return nil
	}
	out := make(Assessments, len(a))
	for id := range a {
		out[id] = a.Ward(id)
	}
	return out
}

// ScoreUpdate is a partial RoleScore update.
// In JSON an absent key leaves the field untouched and an explicit null for
// "score" or "evidence" clears it.
type ScoreUpdate struct {
	Score         *int
	ClearScore    bool
	Notes         *string
	Evidence      *string
	ClearEvidence bool
}

// Validate checks the score range
func (u ScoreUpdate) Validate() error {
	if u.Score != nil && (*u.Score < 0 || *u.Score > PointWeight) {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, *u.Score)
	}
	return nil
}

// IsEmpty reports whether the update would change nothing
func (u ScoreUpdate) IsEmpty() bool {
	return u.Score == nil && !u.ClearScore && u.Notes == nil && u.Evidence == nil && !u.ClearEvidence
}

var jsonNull = []byte("null")

// UnmarshalJSON keeps track of which keys were present
func (u *ScoreUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = ScoreUpdate{}

	if v, ok := raw["score"]; ok {
		if bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			u.ClearScore = true
		} else {
			var score int
			if err := json.Unmarshal(v, &score); err != nil {
				return fmt.Errorf("invalid score: %w", err)
			}
			u.Score = &score
		}
	}

	if v, ok := raw["notes"]; ok && !bytes.Equal(bytes.TrimSpace(v), jsonNull) {
		var notes string
		if err := json.Unmarshal(v, &notes); err != nil {
			return fmt.Errorf("invalid notes: %w", err)
		}
		u.Notes = &notes
	}

	if v, ok := raw["evidence"]; ok {
		if bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			u.ClearEvidence = true
		} else {
			var evidence string
			if err := json.Unmarshal(v, &evidence); err != nil {
				return fmt.Errorf("invalid evidence: %w", err)
			}
			u.Evidence = &evidence
		}
	}

	return nil
}

// MarshalJSON writes only the keys the update touches
func (u ScoreUpdate) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 3)
	switch {
	case u.ClearScore:
		out["score"] = nil
	case u.Score != nil:
		out["score"] = *u.Score
	}
	if u.Notes != nil {
		out["notes"] = *u.Notes
	}
	switch {
	case u.ClearEvidence:
		out["evidence"] = nil
	case u.Evidence != nil:
		out["evidence"] = *u.Evidence
	}
	return json.Marshal(out)
}

// ScoreRequest is the body of a score write: a partial update plus the ward
// the client believes it is looking at
type ScoreRequest struct {
	WardID string
	Update ScoreUpdate
}

// UnmarshalJSON splits the ward hint from the partial update
func (r *ScoreRequest) UnmarshalJSON(data []byte) error {
	var hint struct {
		WardID string `json:"wardId"`
	}
	if err := json.Unmarshal(data, &hint); err != nil {
		return err
	}
	r.WardID = hint.WardID
	return r.Update.UnmarshalJSON(data)
}

// MarshalJSON flattens the ward hint into the update object
func (r ScoreRequest) MarshalJSON() ([]byte, error) {
	body, err := r.Update.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if r.WardID == "" {
		return body, nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["wardId"] = r.WardID
	return json.Marshal(fields)
}

// ScoreResult reports where a score write landed
type ScoreResult struct {
	Applied    bool             `json:"applied"`
	WardID     string           `json:"wardId,omitempty"`
	PointID    string           `json:"pointId"`
	Role       ScoreRole        `json:"role"`
	Assessment *PointAssessment `json:"assessment,omitempty"`
}

// Int returns a pointer to v, for building updates
func Int(v int) *int {
	return &v
}

// String returns a pointer to v, for building updates
func String(v string) *string {
	return &v
}
