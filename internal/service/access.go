// Package service implements the circle marketplace business logic.
package service

import (
	"context"

	"mentorcircles/internal/models"
	"mentorcircles/internal/repository"
)

// CallerRole is the strongest relationship a caller has with a circle.
type CallerRole int

const (
	RoleNone CallerRole = iota
	RoleAcceptedMember
	RoleCreator
	RoleMentor
)

func (r CallerRole) String() string {
	switch r {
	case RoleMentor:
		return "mentor"
	case RoleCreator:
		return "creator"
	case RoleAcceptedMember:
		return "member"
	default:
		return "none"
	}
}

// Access is the resolved relationship between a caller and a circle.
// A caller who is both creator and mentor has both flags set.
type Access struct {
	Circle    *models.Circle
	CallerID  string
	Role      CallerRole
	IsMentor  bool
	IsCreator bool
	IsMember  bool
}

// CanGovern reports whether the caller may propose or approve changes.
func (a *Access) CanGovern() bool {
	return a.IsMentor || a.IsCreator
}

// AccessGuard resolves callers against circles.
type AccessGuard struct {
	circles      repository.CircleRepository
	applications repository.ApplicationRepository
}

// NewAccessGuard returns a guard reading through repos.
func NewAccessGuard(repos repository.Repositories) *AccessGuard {
	return &AccessGuard{circles: repos.Circles, applications: repos.Applications}
}

// Resolve loads the circle and the caller's relationship to it. Callers with
// no relationship are refused, as are non-mentors when mentorOnly is set.
func (g *AccessGuard) Resolve(ctx context.Context, circleID, callerID string, mentorOnly bool) (*Access, error) {
	if callerID == "" {
		return nil, models.NewUnauthenticatedError()
	}

	circle, err := g.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}

	access := &Access{
		Circle:    circle,
		CallerID:  callerID,
		IsMentor:  circle.IsMentor(callerID),
		IsCreator: circle.CreatorID == callerID,
	}
	access.IsMember, err = g.applications.IsAcceptedMember(ctx, circleID, callerID)
	if err != nil {
		return nil, err
	}

	switch {
	case access.IsMentor:
		access.Role = RoleMentor
	case access.IsCreator:
		access.Role = RoleCreator
	case access.IsMember:
		access.Role = RoleAcceptedMember
	default:
		return nil, models.NewForbiddenError("You do not have access to this circle")
	}

	if mentorOnly && !access.IsMentor {
		return nil, models.NewForbiddenError("Only the circle mentor can do this")
	}
	return access, nil
}

// ResolveGovernor is Resolve restricted to the creator or mentor.
func (g *AccessGuard) ResolveGovernor(ctx context.Context, circleID, callerID string) (*Access, error) {
	access, err := g.Resolve(ctx, circleID, callerID, false)
	if err != nil {
		return nil, err
	}
	if !access.CanGovern() {
		return nil, models.NewForbiddenError("Only the circle creator or mentor can do this")
	}
	return access, nil
}
