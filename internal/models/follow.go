package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow records that a user follows a mentor. Following is required before
// pitching a circle to that mentor.
type Follow struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FollowerID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	MentorID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_follow_pair;index" json:"mentor_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower *User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Mentor   *User `gorm:"foreignKey:MentorID" json:"mentor,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// BeforeCreate assigns a UUID when none was provided.
func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// MentorWithFollow is a mentor listing annotated for a specific viewer.
type MentorWithFollow struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	LinkedinURL *string `json:"linkedin_url"`
	IsFollowing bool    `json:"is_following"`
}
