package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationStatus defines the admission state of an application.
type ApplicationStatus string

const (
	// ApplicationStatusPending holds a seat and awaits mentor review.
	ApplicationStatusPending ApplicationStatus = "PENDING"
	// ApplicationStatusWaitlist is queued until capacity grows.
	ApplicationStatusWaitlist ApplicationStatus = "WAITLIST"
	// ApplicationStatusAccepted makes the mentee a circle member.
	ApplicationStatusAccepted ApplicationStatus = "ACCEPTED"
	// ApplicationStatusRejected frees the seat; the mentee may reapply.
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// FilledStatuses are the statuses counted against a circle's capacity.
var FilledStatuses = []ApplicationStatus{ApplicationStatusPending, ApplicationStatusAccepted}

// Application is a mentee's request to join a circle.
type Application struct {
	ID              string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	CircleID        string            `gorm:"type:varchar(36);not null;index:idx_applications_circle_mentee" json:"circle_id"`
	Circle          *Circle           `gorm:"foreignKey:CircleID" json:"circle,omitempty"`
	MenteeID        string            `gorm:"type:varchar(64);not null;index:idx_applications_circle_mentee" json:"mentee_id"`
	Mentee          *User             `gorm:"foreignKey:MenteeID" json:"mentee,omitempty"`
	IntentStatement string            `gorm:"type:text;not null" json:"intent_statement"`
	Status          ApplicationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Application) TableName() string {
	return "applications"
}

// BeforeCreate assigns a UUID when none was provided.
func (a *Application) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsFilled reports whether the application counts against capacity.
func (a *Application) IsFilled() bool {
	return a.Status == ApplicationStatusPending || a.Status == ApplicationStatusAccepted
}
