package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"mentorcircles/internal/featureflags"
	"mentorcircles/internal/middleware"
	"mentorcircles/internal/models"
	"mentorcircles/internal/observability"
	"mentorcircles/internal/repository"
	"mentorcircles/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ProposeInput is a requested capacity increase and/or duration extension.
type ProposeInput struct {
	NewMaxCapacity *int
	ExtendByWeeks  *int
	Notes          string
}

// ChangeResult reports where a proposal or approval left the change.
type ChangeResult struct {
	Status     models.ChangeRequestStatus `json:"status"`
	State      models.ApprovalState       `json:"state"`
	Message    string                     `json:"message"`
	PendingFor string                     `json:"pending_for,omitempty"`
	RequestID  string                     `json:"request_id,omitempty"`
	Promoted   int                        `json:"promoted"`
}

// PendingChange is a pending request with its explicit approval state.
type PendingChange struct {
	models.CircleChangeRequest
	State      models.ApprovalState `json:"state"`
	PendingFor string               `json:"pending_for"`
}

// ChangeService raises circle capacity and extends duration. Circles whose
// mentor differs from the creator need both parties to approve a change;
// everything else applies immediately.
type ChangeService struct {
	store      *repository.Store
	guard      *AccessGuard
	flow       *workflow
	invalidate Invalidator
}

// NewChangeService returns a new ChangeService.
func NewChangeService(store *repository.Store, flags *featureflags.Manager, inv Invalidator) *ChangeService {
	return &ChangeService{
		store:      store,
		guard:      NewAccessGuard(store.Repos()),
		flow:       &workflow{store: store, flags: flags},
		invalidate: orNoop(inv),
	}
}

// target is the absolute values a change would set. Nil leaves a field alone.
type target struct {
	capacity *int
	duration *int
}

// validateProposal turns a proposal into absolute targets. Both values may
// only grow, and capacity may not drop below current enrollment.
func validateProposal(ctx context.Context, repos repository.Repositories, circle *models.Circle, in ProposeInput) (target, error) {
	extend := in.ExtendByWeeks
	if in.NewMaxCapacity == nil && (extend == nil || *extend <= 0) {
		return target{}, models.NewNoChangeRequestedError()
	}

	var t target
	if in.NewMaxCapacity != nil {
		if *in.NewMaxCapacity <= circle.MaxCapacity {
			return target{}, models.NewInvalidCapacityError(circle.MaxCapacity)
		}
		if *in.NewMaxCapacity > validation.MaxCircleLimit {
			return target{}, models.NewCapacityLimitError(validation.MaxCircleLimit)
		}
		capacity := *in.NewMaxCapacity
		t.capacity = &capacity
	}
	if extend != nil {
		if *extend > validation.MaxCircleLimit-circle.DurationWeeks {
			return target{}, models.NewDurationLimitError(validation.MaxCircleLimit)
		}
		duration := circle.DurationWeeks + *extend
		if duration <= circle.DurationWeeks {
			return target{}, models.NewInvalidDurationError(circle.DurationWeeks)
		}
		t.duration = &duration
	}

	if t.capacity != nil {
		filled, err := repos.Applications.CountFilled(ctx, circle.ID)
		if err != nil {
			return target{}, err
		}
		if int64(*t.capacity) < filled {
			return target{}, models.NewCapacityBelowEnrollmentError(filled)
		}
	}
	return t, nil
}

// revalidate checks a stored request against the circle as it is now.
// Equal values are accepted since the request may already be reflected.
func revalidate(ctx context.Context, repos repository.Repositories, circle *models.Circle, req *models.CircleChangeRequest) error {
	if req.NewMaxCapacity != nil {
		if *req.NewMaxCapacity < circle.MaxCapacity {
			return models.NewInvalidCapacityError(circle.MaxCapacity)
		}
		filled, err := repos.Applications.CountFilled(ctx, circle.ID)
		if err != nil {
			return err
		}
		if int64(*req.NewMaxCapacity) < filled {
			return models.NewCapacityBelowEnrollmentError(filled)
		}
	}
	if req.NewDurationWeeks != nil && *req.NewDurationWeeks < circle.DurationWeeks {
		return models.NewInvalidDurationError(circle.DurationWeeks)
	}
	return nil
}

// approveAs sets the approval flag of every role the caller holds.
func approveAs(req *models.CircleChangeRequest, access *Access) {
	if access.IsCreator {
		req.CreatorApproved = true
	}
	if access.IsMentor {
		req.MentorApproved = true
	}
}

// ProposeCircleUpdate validates and applies or records a change.
func (s *ChangeService) ProposeCircleUpdate(ctx context.Context, circleID, callerID string, in ProposeInput) (result *ChangeResult, err error) {
	defer observability.TrackWorkflow("propose_circle_update")()
	ctx, span := observability.StartSpan(ctx, "changes", "propose", attribute.String("circle.id", circleID))
	defer func() {
		observability.EndSpan(span, err)
		observability.ChangeRequests.WithLabelValues("propose", outcome(result, err)).Inc()
	}()

	access, err := s.guard.ResolveGovernor(ctx, circleID, callerID)
	if err != nil {
		return nil, err
	}

	err = s.flow.run(ctx, access.Circle, callerID, func(repos repository.Repositories, circle *models.Circle) error {
		t, err := validateProposal(ctx, repos, circle, in)
		if err != nil {
			return err
		}

		if !circle.RequiresDualApproval() {
			promoted, err := applyCircleValues(ctx, repos, circle, t)
			if err != nil {
				return err
			}
			result = &ChangeResult{
				Status:   models.ChangeRequestStatusApplied,
				State:    models.ApprovalApplied,
				Message:  "Circle updated",
				Promoted: promoted,
			}
			return nil
		}

		req, err := s.mergeOrCreate(ctx, repos, circle, access, t, in.Notes)
		if err != nil {
			return err
		}
		result, err = settle(ctx, repos, circle, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "circle update proposed",
		slog.String("circle_id", circleID),
		slog.String("status", string(result.Status)),
		slog.String("pending_for", result.PendingFor))
	if result.Status == models.ChangeRequestStatusApplied {
		s.invalidate.CircleChanged(ctx, circleID)
	}
	return result, nil
}

// mergeOrCreate finds a pending request with the same target and adds the
// caller's approval to it, or records a new request approved by the caller.
func (s *ChangeService) mergeOrCreate(ctx context.Context, repos repository.Repositories, circle *models.Circle, access *Access, t target, notes string) (*models.CircleChangeRequest, error) {
	pending, err := repos.ChangeRequests.ListPending(ctx, circle.ID)
	if err != nil {
		return nil, err
	}
	for i := range pending {
		req := &pending[i]
		if !req.SameTarget(t.capacity, t.duration) {
			continue
		}
		approveAs(req, access)
		return req, nil
	}

	req := &models.CircleChangeRequest{
		CircleID:         circle.ID,
		NewMaxCapacity:   t.capacity,
		NewDurationWeeks: t.duration,
		Notes:            strings.TrimSpace(notes),
		Status:           models.ChangeRequestStatusPending,
		ProposedByID:     access.CallerID,
	}
	approveAs(req, access)
	if err := repos.ChangeRequests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// settle applies a request once both parties approved it, otherwise stores
// the partial approval.
func settle(ctx context.Context, repos repository.Repositories, circle *models.Circle, req *models.CircleChangeRequest) (*ChangeResult, error) {
	if req.State() != models.ApprovalApplied {
		if err := repos.ChangeRequests.SaveApprovals(ctx, req); err != nil {
			return nil, err
		}
		pendingFor := req.PendingFor()
		return &ChangeResult{
			Status:     models.ChangeRequestStatusPending,
			State:      req.State(),
			Message:    fmt.Sprintf("Waiting for the %s to approve", pendingFor),
			PendingFor: pendingFor,
			RequestID:  req.ID,
		}, nil
	}

	if err := revalidate(ctx, repos, circle, req); err != nil {
		return nil, err
	}
	promoted, err := applyCircleValues(ctx, repos, circle, target{capacity: req.NewMaxCapacity, duration: req.NewDurationWeeks})
	if err != nil {
		return nil, err
	}
	if err := repos.ChangeRequests.MarkApplied(ctx, req.ID); err != nil {
		return nil, err
	}
	return &ChangeResult{
		Status:    models.ChangeRequestStatusApplied,
		State:     models.ApprovalApplied,
		Message:   "Both approvals received; circle updated",
		RequestID: req.ID,
		Promoted:  promoted,
	}, nil
}

// ApproveCircleUpdateRequest adds the caller's approval to a pending request
// and applies it when the other party has already approved.
func (s *ChangeService) ApproveCircleUpdateRequest(ctx context.Context, circleID, callerID, requestID string) (result *ChangeResult, err error) {
	defer observability.TrackWorkflow("approve_circle_update")()
	ctx, span := observability.StartSpan(ctx, "changes", "approve",
		attribute.String("circle.id", circleID), attribute.String("request.id", requestID))
	defer func() {
		observability.EndSpan(span, err)
		observability.ChangeRequests.WithLabelValues("approve", outcome(result, err)).Inc()
	}()

	access, err := s.guard.ResolveGovernor(ctx, circleID, callerID)
	if err != nil {
		return nil, err
	}

	err = s.flow.run(ctx, access.Circle, callerID, func(repos repository.Repositories, circle *models.Circle) error {
		req, err := repos.ChangeRequests.GetPending(ctx, circleID, requestID)
		if err != nil {
			return err
		}
		approveAs(req, access)
		result, err = settle(ctx, repos, circle, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "circle update approved",
		slog.String("circle_id", circleID),
		slog.String("request_id", requestID),
		slog.String("status", string(result.Status)))
	if result.Status == models.ChangeRequestStatusApplied {
		s.invalidate.CircleChanged(ctx, circleID)
	}
	return result, nil
}

// ListPendingChangeRequests returns the circle's pending requests oldest first.
func (s *ChangeService) ListPendingChangeRequests(ctx context.Context, circleID, callerID string) ([]PendingChange, error) {
	if _, err := s.guard.ResolveGovernor(ctx, circleID, callerID); err != nil {
		return nil, err
	}
	reqs, err := s.store.Repos().ChangeRequests.ListPending(ctx, circleID)
	if err != nil {
		return nil, err
	}
	out := make([]PendingChange, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, PendingChange{CircleChangeRequest: req, State: req.State(), PendingFor: req.PendingFor()})
	}
	return out, nil
}

// applyCircleValues writes the new limits and, when capacity grew, promotes
// waitlisted applications into the new seats.
func applyCircleValues(ctx context.Context, repos repository.Repositories, circle *models.Circle, t target) (int, error) {
	capacity, duration := circle.MaxCapacity, circle.DurationWeeks
	if t.capacity != nil {
		capacity = *t.capacity
	}
	if t.duration != nil {
		duration = *t.duration
	}
	if err := repos.Circles.UpdateLimits(ctx, circle.ID, capacity, duration); err != nil {
		return 0, err
	}

	if capacity <= circle.MaxCapacity {
		return 0, nil
	}
	return promoteWaitlist(ctx, repos, circle.ID, capacity)
}

// promoteWaitlist moves WAITLIST applications to PENDING until filled reaches
// maxCapacity, in the order they joined the waitlist. A WAITLIST row is last
// updated when it entered the waitlist, so a resubmitted application queues
// behind everyone already waiting.
func promoteWaitlist(ctx context.Context, repos repository.Repositories, circleID string, maxCapacity int) (int, error) {
	apps, err := repos.Applications.ListByCircle(ctx, circleID)
	if err != nil {
		return 0, err
	}

	var filled int
	for i := range apps {
		if apps[i].IsFilled() {
			filled++
		}
	}
	slots := maxCapacity - filled
	if slots <= 0 {
		return 0, nil
	}

	waitlisted := make([]models.Application, 0, len(apps))
	for _, app := range apps {
		if app.Status == models.ApplicationStatusWaitlist {
			waitlisted = append(waitlisted, app)
		}
	}
	slices.SortStableFunc(waitlisted, func(a, b models.Application) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})

	ids := make([]string, 0, min(slots, len(waitlisted)))
	for _, app := range waitlisted {
		if len(ids) == slots {
			break
		}
		ids = append(ids, app.ID)
	}
	n, err := repos.Applications.PromoteWaitlisted(ctx, ids)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		observability.WaitlistPromotions.Add(float64(n))
		middleware.Logger.InfoContext(ctx, "waitlist promoted",
			slog.String("circle_id", circleID), slog.Int64("promoted", n))
	}
	return int(n), nil
}

func outcome(result *ChangeResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case result == nil:
		return "unknown"
	default:
		return strings.ToLower(string(result.Status))
	}
}
