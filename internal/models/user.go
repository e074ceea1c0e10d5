package models

// Role is the access level of a user account
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleAssessor  Role = "Assessor"
	RoleWardStaff Role = "Ward Staff"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAssessor, RoleWardStaff:
		return true
	}
	return false
}

// CanWrite reports whether the role may record scores at all
func (r Role) CanWrite() bool {
	return r == RoleAssessor || r == RoleWardStaff
}

// Ward is an organizational unit being assessed
type Ward struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is an account in the directory.
// WardID is binding when Role is RoleWardStaff.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	WardID string `json:"wardId,omitempty"`
}

// IsAdmin returns true for administrator accounts
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CreateWardRequest represents a request to add a ward
type CreateWardRequest struct {
	Name string `json:"name"`
}

// CreateUserRequest represents a request to add a user
type CreateUserRequest struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	WardID string `json:"wardId,omitempty"`
}

// LoginRequest picks the account to act as
type LoginRequest struct {
	UserID string `json:"userId"`
}
