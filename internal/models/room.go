package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStatus is the state of a scheduled circle session.
type SessionStatus string

const (
	SessionStatusUpcoming  SessionStatus = "UPCOMING"
	SessionStatusCompleted SessionStatus = "COMPLETED"
)

// CircleSession is a scheduled meeting of a circle.
type CircleSession struct {
	ID           string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	CircleID     string        `gorm:"type:varchar(36);not null;index" json:"circle_id"`
	Title        string        `gorm:"size:200;not null" json:"title"`
	ScheduledAt  time.Time     `gorm:"not null" json:"scheduled_at"`
	VideoCallURL *string       `json:"video_call_url"`
	Status       SessionStatus `gorm:"type:varchar(20);not null;default:'UPCOMING'" json:"status"`
	Notes        string        `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time     `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (CircleSession) TableName() string {
	return "circle_sessions"
}

// BeforeCreate assigns a UUID when none was provided.
func (s *CircleSession) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Resource is a link shared inside a circle room.
type Resource struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CircleID  string    `gorm:"type:varchar(36);not null;index" json:"circle_id"`
	AddedByID string    `gorm:"type:varchar(64);not null" json:"added_by_id"`
	AddedBy   *User     `gorm:"foreignKey:AddedByID" json:"added_by,omitempty"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Type      string    `gorm:"type:varchar(40)" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Resource) TableName() string {
	return "resources"
}

// BeforeCreate assigns a UUID when none was provided.
func (r *Resource) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// DiscussionPost is a message in a circle room thread. Replies carry the
// parent post id; top-level posts have none.
type DiscussionPost struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CircleID  string    `gorm:"type:varchar(36);not null;index" json:"circle_id"`
	AuthorID  string    `gorm:"type:varchar(64);not null" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ParentID  *string   `gorm:"type:varchar(36);index" json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (DiscussionPost) TableName() string {
	return "discussion_posts"
}

// BeforeCreate assigns a UUID when none was provided.
func (p *DiscussionPost) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Room is everything a participant sees inside a circle.
type Room struct {
	Circle    Circle           `json:"circle"`
	Sessions  []CircleSession  `json:"sessions"`
	Resources []Resource       `json:"resources"`
	Posts     []DiscussionPost `json:"posts"`
}
