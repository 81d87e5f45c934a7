package service

import (
	"context"
	"errors"
	"log/slog"

	"mentorcircles/internal/featureflags"
	"mentorcircles/internal/middleware"
	"mentorcircles/internal/models"
	"mentorcircles/internal/observability"
	"mentorcircles/internal/repository"
	"mentorcircles/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ReviewDecision is a mentor's verdict on an application.
type ReviewDecision string

const (
	DecisionAccept ReviewDecision = "ACCEPT"
	DecisionReject ReviewDecision = "REJECT"
)

// SubmitResult reports the admission outcome of an application.
type SubmitResult struct {
	ApplicationID string                   `json:"application_id"`
	Status        models.ApplicationStatus `json:"status"`
}

// ApplicationService admits, reviews and lists applications.
type ApplicationService struct {
	store      *repository.Store
	guard      *AccessGuard
	flow       *workflow
	invalidate Invalidator
}

// NewApplicationService returns a new ApplicationService.
func NewApplicationService(store *repository.Store, flags *featureflags.Manager, inv Invalidator) *ApplicationService {
	return &ApplicationService{
		store:      store,
		guard:      NewAccessGuard(store.Repos()),
		flow:       &workflow{store: store, flags: flags},
		invalidate: orNoop(inv),
	}
}

// SubmitApplication admits a mentee as PENDING while the circle has room and
// as WAITLIST once filled reaches capacity. A REJECTED application is reused.
// Filling the last seat of an OPEN circle moves it to ACTIVE.
func (s *ApplicationService) SubmitApplication(ctx context.Context, circleID, menteeID, intentStatement string) (result *SubmitResult, err error) {
	defer observability.TrackWorkflow("submit_application")()
	ctx, span := observability.StartSpan(ctx, "applications", "submit", attribute.String("circle.id", circleID))
	defer func() {
		observability.EndSpan(span, err)
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			observability.ApplicationsRejected.WithLabelValues(appErr.Code).Inc()
		}
	}()

	if menteeID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	intent, verr := validation.NormalizeIntentStatement(intentStatement)
	if verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}

	circle, err := s.store.Repos().Circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}

	err = s.flow.run(ctx, circle, menteeID, func(repos repository.Repositories, circle *models.Circle) error {
		r, err := admit(ctx, repos, circle, menteeID, intent)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.ApplicationsAdmitted.WithLabelValues(string(result.Status)).Inc()
	middleware.Logger.InfoContext(ctx, "application admitted",
		slog.String("circle_id", circleID),
		slog.String("application_id", result.ApplicationID),
		slog.String("status", string(result.Status)))
	s.invalidate.CircleChanged(ctx, circleID)
	return result, nil
}

func admit(ctx context.Context, repos repository.Repositories, circle *models.Circle, menteeID, intent string) (*SubmitResult, error) {
	if !circle.Status.AcceptsApplications() {
		return nil, models.NewApplicationsClosedError()
	}

	existing, err := repos.Applications.FindByCircleAndMentee(ctx, circle.ID, menteeID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != models.ApplicationStatusRejected {
		return nil, models.NewDuplicateApplicationError(existing.Status)
	}

	filled, err := repos.Applications.CountFilled(ctx, circle.ID)
	if err != nil {
		return nil, err
	}
	status := models.ApplicationStatusPending
	if filled >= int64(circle.MaxCapacity) {
		status = models.ApplicationStatusWaitlist
	}

	var appID string
	if existing != nil {
		if err := repos.Applications.Resubmit(ctx, existing.ID, intent, status); err != nil {
			return nil, err
		}
		appID = existing.ID
	} else {
		app := &models.Application{
			CircleID:        circle.ID,
			MenteeID:        menteeID,
			IntentStatement: intent,
			Status:          status,
		}
		if err := repos.Applications.Create(ctx, app); err != nil {
			return nil, err
		}
		appID = app.ID
	}

	if status == models.ApplicationStatusPending && circle.Status == models.CircleStatusOpen {
		after, err := repos.Applications.CountFilled(ctx, circle.ID)
		if err != nil {
			return nil, err
		}
		if after >= int64(circle.MaxCapacity) {
			if err := repos.Circles.UpdateStatus(ctx, circle.ID, models.CircleStatusActive); err != nil {
				return nil, err
			}
			observability.StatusTransitions.WithLabelValues(string(models.CircleStatusOpen), string(models.CircleStatusActive)).Inc()
		}
	}

	return &SubmitResult{ApplicationID: appID, Status: status}, nil
}

// ReviewApplication lets the mentor accept a PENDING application or reject a
// PENDING or WAITLIST one. Rejection frees a seat but promotes no one.
func (s *ApplicationService) ReviewApplication(ctx context.Context, circleID, callerID, applicationID string, decision ReviewDecision) (*models.Application, error) {
	if _, err := s.guard.Resolve(ctx, circleID, callerID, true); err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	app, err := repos.Applications.GetByID(ctx, circleID, applicationID)
	if err != nil {
		return nil, err
	}

	var next models.ApplicationStatus
	switch decision {
	case DecisionAccept:
		if app.Status != models.ApplicationStatusPending {
			return nil, models.NewValidationError("Only pending applications can be accepted")
		}
		next = models.ApplicationStatusAccepted
	case DecisionReject:
		if app.Status != models.ApplicationStatusPending && app.Status != models.ApplicationStatusWaitlist {
			return nil, models.NewValidationError("Only pending or waitlisted applications can be rejected")
		}
		next = models.ApplicationStatusRejected
	default:
		return nil, models.NewValidationError("Decision must be ACCEPT or REJECT")
	}

	if err := repos.Applications.UpdateStatus(ctx, app.ID, next); err != nil {
		return nil, err
	}
	app.Status = next

	middleware.Logger.InfoContext(ctx, "application reviewed",
		slog.String("circle_id", circleID),
		slog.String("application_id", app.ID),
		slog.String("status", string(next)))
	s.invalidate.CircleChanged(ctx, circleID)
	return app, nil
}

// ListApplications returns a circle's applications oldest first.
func (s *ApplicationService) ListApplications(ctx context.Context, circleID, callerID string) ([]models.Application, error) {
	if _, err := s.guard.ResolveGovernor(ctx, circleID, callerID); err != nil {
		return nil, err
	}
	return s.store.Repos().Applications.ListByCircle(ctx, circleID)
}

// ListMyApplications returns the mentee's applications newest first.
func (s *ApplicationService) ListMyApplications(ctx context.Context, menteeID string) ([]models.Application, error) {
	if menteeID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	return s.store.Repos().Applications.ListByMentee(ctx, menteeID)
}
