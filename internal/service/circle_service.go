package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mentorcircles/internal/cache"
	"mentorcircles/internal/middleware"
	"mentorcircles/internal/models"
	"mentorcircles/internal/observability"
	"mentorcircles/internal/repository"
	"mentorcircles/internal/validation"
)

// CircleDefaults are applied when a new circle omits its limits.
type CircleDefaults struct {
	MaxCapacity   int
	DurationWeeks int
	ListTTL       time.Duration
}

// CreateCircleInput describes a circle created by its own mentor.
type CreateCircleInput struct {
	Title         string
	Description   string
	Tags          []string
	MaxCapacity   *int
	DurationWeeks *int
	AsDraft       bool
}

// PitchInput describes a circle pitched by a mentee to a mentor.
type PitchInput struct {
	MentorID    string
	Title       string
	Description string
	Tags        []string
}

// CircleService creates circles, lists them and handles pitches.
type CircleService struct {
	circles      repository.CircleRepository
	applications repository.ApplicationRepository
	users        repository.UserRepository
	follows      repository.FollowRepository
	aside        *cache.Aside
	defaults     CircleDefaults
	invalidate   Invalidator
}

// NewCircleService returns a new CircleService.
func NewCircleService(store *repository.Store, users repository.UserRepository, follows repository.FollowRepository, aside *cache.Aside, defaults CircleDefaults, inv Invalidator) *CircleService {
	if aside == nil {
		aside = cache.NewAside(nil)
	}
	if defaults.MaxCapacity <= 0 {
		defaults.MaxCapacity = 10
	}
	if defaults.DurationWeeks <= 0 {
		defaults.DurationWeeks = 8
	}
	if defaults.ListTTL <= 0 {
		defaults.ListTTL = cache.CircleListTTL
	}
	repos := store.Repos()
	return &CircleService{
		circles:      repos.Circles,
		applications: repos.Applications,
		users:        users,
		follows:      follows,
		aside:        aside,
		defaults:     defaults,
		invalidate:   orNoop(inv),
	}
}

// CreateCircle creates a self-mentored circle, OPEN unless saved as a draft.
func (s *CircleService) CreateCircle(ctx context.Context, callerID string, in CreateCircleInput) (*models.Circle, error) {
	if callerID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	if err := validation.ValidateCircleText(in.Title, in.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePositive("capacity", in.MaxCapacity); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePositive("duration", in.DurationWeeks); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	tags, err := validation.NormalizeTags(in.Tags)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	mentorID := callerID
	circle := &models.Circle{
		CreatorID:     callerID,
		MentorID:      &mentorID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Tags:          tags,
		Status:        models.CircleStatusOpen,
		MaxCapacity:   s.defaults.MaxCapacity,
		DurationWeeks: s.defaults.DurationWeeks,
	}
	if in.AsDraft {
		circle.Status = models.CircleStatusDraft
	}
	if in.MaxCapacity != nil {
		circle.MaxCapacity = *in.MaxCapacity
	}
	if in.DurationWeeks != nil {
		circle.DurationWeeks = *in.DurationWeeks
	}

	if err := s.circles.Create(ctx, circle); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "circle created",
		slog.String("circle_id", circle.ID), slog.String("status", string(circle.Status)))
	s.invalidate.CircleChanged(ctx, circle.ID)
	return circle, nil
}

// summarize attaches fill counts to circles with one grouped count query.
func (s *CircleService) summarize(ctx context.Context, circles []models.Circle) ([]models.CircleSummary, error) {
	ids := make([]string, 0, len(circles))
	for _, c := range circles {
		ids = append(ids, c.ID)
	}
	filled, err := s.applications.CountFilledByCircle(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.CircleSummary, 0, len(circles))
	for _, c := range circles {
		out = append(out, models.NewCircleSummary(c, filled[c.ID]))
	}
	return out, nil
}

// ListCircles returns OPEN, ACTIVE and PROPOSED circles newest first.
func (s *CircleService) ListCircles(ctx context.Context) ([]models.CircleSummary, error) {
	var out []models.CircleSummary
	err := s.aside.Fetch(ctx, cache.CircleListKey, s.defaults.ListTTL, &out, func(ctx context.Context) (any, error) {
		circles, err := s.circles.ListPublic(ctx)
		if err != nil {
			return nil, err
		}
		return s.summarize(ctx, circles)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCircle returns a circle with its fill level.
func (s *CircleService) GetCircle(ctx context.Context, circleID string) (*models.CircleSummary, error) {
	var out models.CircleSummary
	err := s.aside.Fetch(ctx, cache.CircleKey(circleID), cache.CircleTTL, &out, func(ctx context.Context) (any, error) {
		circle, err := s.circles.GetByID(ctx, circleID)
		if err != nil {
			return nil, err
		}
		filled, err := s.applications.CountFilled(ctx, circleID)
		if err != nil {
			return nil, err
		}
		return models.NewCircleSummary(*circle, filled), nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCirclesByMentor returns the circles a mentor runs.
func (s *CircleService) ListCirclesByMentor(ctx context.Context, mentorID string) ([]models.CircleSummary, error) {
	circles, err := s.circles.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, circles)
}

// ListMyCircles returns circles the caller created or mentors.
func (s *CircleService) ListMyCircles(ctx context.Context, callerID string) ([]models.CircleSummary, error) {
	if callerID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	circles, err := s.circles.ListByParticipant(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, circles)
}

// ListPitchRequests returns unassigned pitches a mentor may accept.
func (s *CircleService) ListPitchRequests(ctx context.Context, mentorID string) ([]models.Circle, error) {
	if mentorID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	return s.circles.ListPitchesFor(ctx, mentorID)
}

// SubmitPitch proposes a circle to a mentor the caller follows. The mentor
// stays unassigned until the pitch is accepted.
func (s *CircleService) SubmitPitch(ctx context.Context, creatorID string, in PitchInput) (*models.Circle, error) {
	if creatorID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	if err := validation.ValidateCircleText(in.Title, in.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	tags, err := validation.NormalizeTags(in.Tags)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	circle := &models.Circle{
		CreatorID:     creatorID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Tags:          tags,
		Status:        models.CircleStatusProposed,
		MaxCapacity:   s.defaults.MaxCapacity,
		DurationWeeks: s.defaults.DurationWeeks,
	}

	if mentorID := strings.TrimSpace(in.MentorID); mentorID != "" {
		if mentorID == creatorID {
			return nil, models.NewValidationError("You cannot pitch a circle to yourself")
		}
		following, err := s.follows.Exists(ctx, creatorID, mentorID)
		if err != nil {
			return nil, err
		}
		if !following {
			return nil, models.NewForbiddenError("Follow this mentor before pitching a circle to them")
		}
		circle.ProposedMentorID = &mentorID
	}

	if err := s.circles.Create(ctx, circle); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "circle pitched", slog.String("circle_id", circle.ID))
	s.invalidate.CircleChanged(ctx, circle.ID)
	return circle, nil
}

// pitchFor loads an open pitch the caller may decide on.
func (s *CircleService) pitchFor(ctx context.Context, circleID, callerID string) (*models.Circle, error) {
	if callerID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if circle.Status != models.CircleStatusProposed || circle.HasMentor() {
		return nil, models.NewValidationError("This circle is not an open pitch")
	}

	if circle.ProposedMentorID != nil {
		if *circle.ProposedMentorID != callerID {
			return nil, models.NewForbiddenError("This pitch was made to another mentor")
		}
		return circle, nil
	}

	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewForbiddenError("Only mentors can accept pitches")
		}
		return nil, err
	}
	if !user.IsMentor() {
		return nil, models.NewForbiddenError("Only mentors can accept pitches")
	}
	return circle, nil
}

// AcceptPitch assigns the caller as mentor and opens the circle.
func (s *CircleService) AcceptPitch(ctx context.Context, circleID, callerID string) error {
	circle, err := s.pitchFor(ctx, circleID, callerID)
	if err != nil {
		return err
	}
	if err := s.circles.AssignMentor(ctx, circle.ID, callerID); err != nil {
		return err
	}
	observability.StatusTransitions.WithLabelValues(string(models.CircleStatusProposed), string(models.CircleStatusOpen)).Inc()
	middleware.Logger.InfoContext(ctx, "pitch accepted", slog.String("circle_id", circle.ID))
	s.invalidate.CircleChanged(ctx, circle.ID)
	return nil
}

// DeclinePitch deletes the pitched circle.
func (s *CircleService) DeclinePitch(ctx context.Context, circleID, callerID string) error {
	circle, err := s.pitchFor(ctx, circleID, callerID)
	if err != nil {
		return err
	}
	if err := s.circles.Delete(ctx, circle.ID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "pitch declined", slog.String("circle_id", circle.ID))
	s.invalidate.CircleChanged(ctx, circle.ID)
	return nil
}
