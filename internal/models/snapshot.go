package models

// Storage keys of the persisted blobs. Each key holds the full JSON
// serialization of one top-level structure.
const (
	KeyUsers       = "manrura_users"
	KeyWards       = "manrura_wards"
	KeyAssessments = "manrura_assessments"
	KeyPeriods     = "manrura_periods"
)

// AllKeys lists every persisted blob
var AllKeys = []string{KeyUsers, KeyWards, KeyAssessments, KeyPeriods}

// Snapshot is the whole mutable application state
type Snapshot struct {
	Users       []User             `json:"users"`
	Wards       []Ward             `json:"wards"`
	Assessments Assessments        `json:"assessments"`
	Periods     []AssessmentPeriod `json:"periods"`
}

// Clone returns a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		Users:       append([]User(nil), s.Users...),
		Wards:       append([]Ward(nil), s.Wards...),
		Assessments: s.Assessments.Clone(),
		Periods:     append([]AssessmentPeriod(nil), s.Periods...),
	}
}

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleBot  ChatRole = "bot"
)

// ChatMessage is one line of an assistant conversation
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// ChatRequest is a question for the assistant
type ChatRequest struct {
	Message string `json:"message"`
}
