package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCircleRequiresDualApproval(t *testing.T) {
	tests := []struct {
		name   string
		circle Circle
		want   bool
	}{
		{"unassigned", Circle{CreatorID: "u1"}, false},
		{"self mentored", Circle{CreatorID: "u1", MentorID: strPtr("u1")}, false},
		{"empty mentor id", Circle{CreatorID: "u1", MentorID: strPtr("")}, false},
		{"distinct mentor", Circle{CreatorID: "u1", MentorID: strPtr("u2")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.circle.RequiresDualApproval())
		})
	}
}

func TestNewCircleSummaryClampsSpotsLeft(t *testing.T) {
	c := Circle{MaxCapacity: 3}
	assert.Equal(t, int64(2), NewCircleSummary(c, 1).SpotsLeft)
	assert.Equal(t, int64(0), NewCircleSummary(c, 5).SpotsLeft)
}

func TestChangeRequestState(t *testing.T) {
	tests := []struct {
		name       string
		req        CircleChangeRequest
		state      ApprovalState
		pendingFor string
	}{
		{"creator approved", CircleChangeRequest{Status: ChangeRequestStatusPending, CreatorApproved: true}, ApprovalAwaitingMentor, "mentor"},
		{"mentor approved", CircleChangeRequest{Status: ChangeRequestStatusPending, MentorApproved: true}, ApprovalAwaitingCreator, "creator"},
		{"both approved", CircleChangeRequest{Status: ChangeRequestStatusPending, CreatorApproved: true, MentorApproved: true}, ApprovalApplied, ""},
		{"applied", CircleChangeRequest{Status: ChangeRequestStatusApplied}, ApprovalApplied, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.state, tt.req.State())
			assert.Equal(t, tt.pendingFor, tt.req.PendingFor())
		})
	}
}

func TestChangeRequestSameTarget(t *testing.T) {
	req := CircleChangeRequest{NewMaxCapacity: intPtr(12)}

	assert.True(t, req.SameTarget(intPtr(12), nil))
	assert.False(t, req.SameTarget(intPtr(13), nil))
	assert.False(t, req.SameTarget(intPtr(12), intPtr(10)))
	assert.False(t, req.SameTarget(nil, nil))
}

func TestPersistedRole(t *testing.T) {
	assert.Equal(t, UserRoleMentor, PersistedRole("MENTOR"))
	assert.Equal(t, UserRoleMentee, PersistedRole("BOTH"))
	assert.Equal(t, UserRoleMentee, PersistedRole(""))
}
