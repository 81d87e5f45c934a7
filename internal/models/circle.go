// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CircleStatus defines the lifecycle state of a circle.
type CircleStatus string

const (
	// CircleStatusDraft is a circle that has not been published yet.
	CircleStatusDraft CircleStatus = "DRAFT"
	// CircleStatusProposed is a pitched circle waiting for a mentor.
	CircleStatusProposed CircleStatus = "PROPOSED"
	// CircleStatusOpen accepts applications below capacity.
	CircleStatusOpen CircleStatus = "OPEN"
	// CircleStatusActive is running; new applications land on the waitlist.
	CircleStatusActive CircleStatus = "ACTIVE"
	// CircleStatusCompleted is finished and cannot be reopened.
	CircleStatusCompleted CircleStatus = "COMPLETED"
)

// AcceptsApplications reports whether submissions are allowed in this state.
func (s CircleStatus) AcceptsApplications() bool {
	return s == CircleStatusOpen || s == CircleStatusActive
}

// Circle is a cohort-based mentorship program.
type Circle struct {
	ID               string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatorID        string       `gorm:"type:varchar(64);not null;index" json:"creator_id"`
	Creator          *User        `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	MentorID         *string      `gorm:"type:varchar(64);index" json:"mentor_id"`
	Mentor           *User        `gorm:"foreignKey:MentorID" json:"mentor,omitempty"`
	ProposedMentorID *string      `gorm:"type:varchar(64);index" json:"proposed_mentor_id,omitempty"`
	Title            string       `gorm:"size:200;not null" json:"title"`
	Description      string       `gorm:"type:text" json:"description"`
	Tags             []string     `gorm:"type:text;serializer:json" json:"tags"`
	Status           CircleStatus `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	MaxCapacity      int          `gorm:"not null;default:10" json:"max_capacity"`
	DurationWeeks    int          `gorm:"not null;default:8" json:"duration_weeks"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Circle) TableName() string {
	return "circles"
}

// BeforeCreate assigns a UUID when none was provided.
func (c *Circle) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// HasMentor reports whether a mentor has been assigned.
func (c *Circle) HasMentor() bool {
	return c.MentorID != nil && *c.MentorID != ""
}

// IsMentor reports whether userID is the assigned mentor.
func (c *Circle) IsMentor(userID string) bool {
	return c.HasMentor() && *c.MentorID == userID
}

// RequiresDualApproval is true when an assigned mentor differs from the
// creator. Self-mentored and unassigned circles apply changes immediately.
func (c *Circle) RequiresDualApproval() bool {
	return c.HasMentor() && *c.MentorID != c.CreatorID
}

// CircleSummary is a circle with its current fill level.
type CircleSummary struct {
	Circle
	Filled    int64 `json:"filled"`
	SpotsLeft int64 `json:"spots_left"`
}

// NewCircleSummary derives SpotsLeft from the fill count, never below zero.
func NewCircleSummary(c Circle, filled int64) CircleSummary {
	left := int64(c.MaxCapacity) - filled
	if left < 0 {
		left = 0
	}
	return CircleSummary{Circle: c, Filled: filled, SpotsLeft: left}
}
