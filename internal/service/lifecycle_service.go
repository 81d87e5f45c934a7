package service

import (
	"context"
	"log/slog"

	"mentorcircles/internal/featureflags"
	"mentorcircles/internal/middleware"
	"mentorcircles/internal/models"
	"mentorcircles/internal/observability"
	"mentorcircles/internal/repository"
)

// LifecycleService moves circles between application windows.
type LifecycleService struct {
	store      *repository.Store
	guard      *AccessGuard
	flow       *workflow
	invalidate Invalidator
}

// NewLifecycleService returns a new LifecycleService.
func NewLifecycleService(store *repository.Store, flags *featureflags.Manager, inv Invalidator) *LifecycleService {
	return &LifecycleService{
		store:      store,
		guard:      NewAccessGuard(store.Repos()),
		flow:       &workflow{store: store, flags: flags},
		invalidate: orNoop(inv),
	}
}

func (s *LifecycleService) transition(ctx context.Context, repos repository.Repositories, circle *models.Circle, to models.CircleStatus) error {
	if err := repos.Circles.UpdateStatus(ctx, circle.ID, to); err != nil {
		return err
	}
	observability.StatusTransitions.WithLabelValues(string(circle.Status), string(to)).Inc()
	middleware.Logger.InfoContext(ctx, "circle status changed",
		slog.String("circle_id", circle.ID),
		slog.String("from", string(circle.Status)),
		slog.String("to", string(to)))
	return nil
}

// CloseCircleApplications ends the application window of an OPEN circle
// early. Any other status is left unchanged.
func (s *LifecycleService) CloseCircleApplications(ctx context.Context, circleID, callerID string) error {
	access, err := s.guard.Resolve(ctx, circleID, callerID, true)
	if err != nil {
		return err
	}
	if access.Circle.Status != models.CircleStatusOpen {
		return nil
	}
	if err := s.transition(ctx, s.store.Repos(), access.Circle, models.CircleStatusActive); err != nil {
		return err
	}
	s.invalidate.CircleChanged(ctx, circleID)
	return nil
}

// ReopenCircleApplications reopens the window while seats remain.
func (s *LifecycleService) ReopenCircleApplications(ctx context.Context, circleID, callerID string) error {
	access, err := s.guard.Resolve(ctx, circleID, callerID, true)
	if err != nil {
		return err
	}

	changed := false
	err = s.flow.run(ctx, access.Circle, callerID, func(repos repository.Repositories, circle *models.Circle) error {
		switch circle.Status {
		case models.CircleStatusOpen:
			return nil
		case models.CircleStatusCompleted:
			return models.NewCannotReopenCompletedError()
		}

		filled, err := repos.Applications.CountFilled(ctx, circle.ID)
		if err != nil {
			return err
		}
		if filled >= int64(circle.MaxCapacity) {
			return models.NewAtCapacityError()
		}
		changed = true
		return s.transition(ctx, repos, circle, models.CircleStatusOpen)
	})
	if err != nil {
		return err
	}
	if changed {
		s.invalidate.CircleChanged(ctx, circleID)
	}
	return nil
}

// PublishCircle opens a DRAFT circle for applications.
func (s *LifecycleService) PublishCircle(ctx context.Context, circleID, callerID string) error {
	access, err := s.guard.ResolveGovernor(ctx, circleID, callerID)
	if err != nil {
		return err
	}
	switch access.Circle.Status {
	case models.CircleStatusOpen:
		return nil
	case models.CircleStatusDraft:
	default:
		return models.NewValidationError("Only draft circles can be published")
	}
	if err := s.transition(ctx, s.store.Repos(), access.Circle, models.CircleStatusOpen); err != nil {
		return err
	}
	s.invalidate.CircleChanged(ctx, circleID)
	return nil
}

// CompleteCircle finishes a running circle. Completed circles never reopen.
func (s *LifecycleService) CompleteCircle(ctx context.Context, circleID, callerID string) error {
	access, err := s.guard.Resolve(ctx, circleID, callerID, true)
	if err != nil {
		return err
	}
	switch access.Circle.Status {
	case models.CircleStatusCompleted:
		return nil
	case models.CircleStatusOpen, models.CircleStatusActive:
	default:
		return models.NewValidationError("Only open or active circles can be completed")
	}
	if err := s.transition(ctx, s.store.Repos(), access.Circle, models.CircleStatusCompleted); err != nil {
		return err
	}
	s.invalidate.CircleChanged(ctx, circleID)
	return nil
}
