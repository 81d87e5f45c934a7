package models

import "time"

// UserRole is the persisted marketplace role of a user.
type UserRole string

const (
	UserRoleMentor UserRole = "MENTOR"
	UserRoleMentee UserRole = "MENTEE"
)

// DefaultReputationScore is assigned to users on first sign-in.
const DefaultReputationScore = 75

// User mirrors an identity from the external auth provider. The ID is the
// provider subject and is never generated locally.
type User struct {
	ID              string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email           string    `gorm:"size:255;index" json:"email"`
	Name            string    `gorm:"size:200" json:"name"`
	Role            UserRole  `gorm:"type:varchar(20);not null;default:'MENTEE';index" json:"role"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	LinkedinURL     *string   `json:"linkedin_url,omitempty"`
	ReputationScore int       `gorm:"not null;default:75" json:"reputation_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// IsMentor reports whether the user can accept open pitches.
func (u *User) IsMentor() bool {
	return u.Role == UserRoleMentor
}

// PersistedRole narrows a claimed role to the two stored values.
// Anything other than MENTOR (including "BOTH") is stored as MENTEE.
func PersistedRole(claimed string) UserRole {
	if UserRole(claimed) == UserRoleMentor {
		return UserRoleMentor
	}
	return UserRoleMentee
}

// UserSummary is the public projection returned by search.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
