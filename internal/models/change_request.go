package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChangeRequestStatus is the persisted status of a change request.
type ChangeRequestStatus string

const (
	// ChangeRequestStatusPending is waiting for at least one approval.
	ChangeRequestStatusPending ChangeRequestStatus = "PENDING"
	// ChangeRequestStatusApplied has been written to the circle. Terminal.
	ChangeRequestStatusApplied ChangeRequestStatus = "APPLIED"
)

// ApprovalState is the explicit state of the two-party approval gate.
type ApprovalState string

const (
	ApprovalAwaitingCreator ApprovalState = "AWAITING_CREATOR"
	ApprovalAwaitingMentor  ApprovalState = "AWAITING_MENTOR"
	ApprovalApplied         ApprovalState = "APPLIED"
)

// CircleChangeRequest is a proposed capacity and/or duration increase that
// needs both the creator and the mentor to approve it.
type CircleChangeRequest struct {
	ID               string              `gorm:"type:varchar(36);primaryKey" json:"id"`
	CircleID         string              `gorm:"type:varchar(36);not null;index:idx_change_requests_circle_status" json:"circle_id"`
	NewMaxCapacity   *int                `json:"new_max_capacity"`
	NewDurationWeeks *int                `json:"new_duration_weeks"`
	Notes            string              `gorm:"type:text" json:"notes"`
	Status           ChangeRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_change_requests_circle_status" json:"status"`
	CreatorApproved  bool                `gorm:"not null;default:false" json:"creator_approved"`
	MentorApproved   bool                `gorm:"not null;default:false" json:"mentor_approved"`
	ProposedByID     string              `gorm:"type:varchar(64);not null" json:"proposed_by_id"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (CircleChangeRequest) TableName() string {
	return "circle_change_requests"
}

// BeforeCreate assigns a UUID when none was provided.
func (r *CircleChangeRequest) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// State maps the persisted flags onto the approval state machine. A request
// with neither flag set cannot be created, so it reports AWAITING_CREATOR.
func (r *CircleChangeRequest) State() ApprovalState {
	switch {
	case r.Status == ChangeRequestStatusApplied, r.CreatorApproved && r.MentorApproved:
		return ApprovalApplied
	case r.CreatorApproved:
		return ApprovalAwaitingMentor
	default:
		return ApprovalAwaitingCreator
	}
}

// PendingFor names the role whose approval is still outstanding, or "".
func (r *CircleChangeRequest) PendingFor() string {
	switch r.State() {
	case ApprovalAwaitingCreator:
		return "creator"
	case ApprovalAwaitingMentor:
		return "mentor"
	default:
		return ""
	}
}

// SameTarget reports whether the request proposes exactly these values.
func (r *CircleChangeRequest) SameTarget(capacity, duration *int) bool {
	return equalIntPtr(r.NewMaxCapacity, capacity) && equalIntPtr(r.NewDurationWeeks, duration)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
