package service

import (
	"context"
	"strings"
	"time"

	"mentorcircles/internal/models"
	"mentorcircles/internal/repository"
	"mentorcircles/internal/validation"

	"golang.org/x/sync/errgroup"
)

// SessionInput schedules a circle session.
type SessionInput struct {
	Title        string
	ScheduledAt  time.Time
	VideoCallURL string
}

// ResourceInput shares a link in a circle room.
type ResourceInput struct {
	Title string
	URL   string
	Type  string
}

// RoomService serves the participant-only circle room.
type RoomService struct {
	rooms      repository.RoomRepository
	guard      *AccessGuard
	invalidate Invalidator
}

// NewRoomService returns a new RoomService.
func NewRoomService(store *repository.Store, rooms repository.RoomRepository, inv Invalidator) *RoomService {
	return &RoomService{
		rooms:      rooms,
		guard:      NewAccessGuard(store.Repos()),
		invalidate: orNoop(inv),
	}
}

// GetRoom loads the circle with its sessions, resources and top-level posts.
func (s *RoomService) GetRoom(ctx context.Context, circleID, callerID string) (*models.Room, error) {
	access, err := s.guard.Resolve(ctx, circleID, callerID, false)
	if err != nil {
		return nil, err
	}

	room := &models.Room{Circle: *access.Circle}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions, err := s.rooms.ListSessions(gctx, circleID)
		room.Sessions = sessions
		return err
	})
	g.Go(func() error {
		resources, err := s.rooms.ListResources(gctx, circleID)
		room.Resources = resources
		return err
	})
	g.Go(func() error {
		posts, err := s.rooms.ListTopLevelPosts(gctx, circleID)
		room.Posts = posts
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return room, nil
}

// AddSession schedules an UPCOMING session.
func (s *RoomService) AddSession(ctx context.Context, circleID, callerID string, in SessionInput) (*models.CircleSession, error) {
	if _, err := s.guard.Resolve(ctx, circleID, callerID, true); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("title is required")
	}
	if in.ScheduledAt.IsZero() {
		return nil, models.NewValidationError("scheduled time is required")
	}

	session := &models.CircleSession{
		CircleID:    circleID,
		Title:       title,
		ScheduledAt: in.ScheduledAt.UTC(),
		Status:      models.SessionStatusUpcoming,
	}
	if link := strings.TrimSpace(in.VideoCallURL); link != "" {
		if err := validation.ValidateLink(link); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		session.VideoCallURL = &link
	}
	if err := s.rooms.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.invalidate.CircleChanged(ctx, circleID)
	return session, nil
}

// CompleteSession marks a session COMPLETED with the mentor's notes.
func (s *RoomService) CompleteSession(ctx context.Context, circleID, callerID, sessionID, notes string) error {
	if _, err := s.guard.Resolve(ctx, circleID, callerID, true); err != nil {
		return err
	}
	if _, err := s.rooms.GetSession(ctx, circleID, sessionID); err != nil {
		return err
	}
	if err := s.rooms.CompleteSession(ctx, sessionID, strings.TrimSpace(notes)); err != nil {
		return err
	}
	s.invalidate.CircleChanged(ctx, circleID)
	return nil
}

// AddResource shares a link on behalf of any participant.
func (s *RoomService) AddResource(ctx context.Context, circleID, callerID string, in ResourceInput) (*models.Resource, error) {
	if _, err := s.guard.Resolve(ctx, circleID, callerID, false); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("title is required")
	}
	if err := validation.ValidateLink(in.URL); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	resource := &models.Resource{
		CircleID:  circleID,
		AddedByID: callerID,
		Title:     title,
		URL:       strings.TrimSpace(in.URL),
		Type:      strings.TrimSpace(in.Type),
	}
	if err := s.rooms.CreateResource(ctx, resource); err != nil {
		return nil, err
	}
	s.invalidate.CircleChanged(ctx, circleID)
	return resource, nil
}

// DeleteResource removes a resource. Only its adder or the mentor may.
func (s *RoomService) DeleteResource(ctx context.Context, circleID, callerID, resourceID string) error {
	access, err := s.guard.Resolve(ctx, circleID, callerID, false)
	if err != nil {
		return err
	}
	resource, err := s.rooms.GetResource(ctx, circleID, resourceID)
	if err != nil {
		return err
	}
	if resource.AddedByID != callerID && !access.IsMentor {
		return models.NewForbiddenError("Only the person who added this resource or the mentor can remove it")
	}
	if err := s.rooms.DeleteResource(ctx, resourceID); err != nil {
		return err
	}
	s.invalidate.CircleChanged(ctx, circleID)
	return nil
}

// PostDiscussion adds a post, or a reply when parentID names a post in the
// same circle.
func (s *RoomService) PostDiscussion(ctx context.Context, circleID, callerID, content string, parentID *string) (*models.DiscussionPost, error) {
	if _, err := s.guard.Resolve(ctx, circleID, callerID, false); err != nil {
		return nil, err
	}
	body, err := validation.NormalizePostContent(content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.DiscussionPost{CircleID: circleID, AuthorID: callerID, Content: body}
	if parentID != nil && *parentID != "" {
		if _, err := s.rooms.GetPost(ctx, circleID, *parentID); err != nil {
			return nil, err
		}
		parent := *parentID
		post.ParentID = &parent
	}
	if err := s.rooms.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.invalidate.CircleChanged(ctx, circleID)
	return post, nil
}
