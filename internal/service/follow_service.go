package service

import (
	"context"

	"mentorcircles/internal/models"
	"mentorcircles/internal/repository"
)

// FollowService manages mentor follows and user lookup.
type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) *FollowService {
	return &FollowService{follows: follows, users: users}
}

// Follow makes followerID follow mentorID. Repeating it is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID, mentorID string) error {
	if followerID == "" {
		return models.NewUnauthenticatedError()
	}
	if followerID == mentorID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.users.GetByID(ctx, mentorID); err != nil {
		return err
	}
	return s.follows.Create(ctx, &models.Follow{FollowerID: followerID, MentorID: mentorID})
}

// Unfollow removes the follow if present.
func (s *FollowService) Unfollow(ctx context.Context, followerID, mentorID string) error {
	if followerID == "" {
		return models.NewUnauthenticatedError()
	}
	return s.follows.Delete(ctx, followerID, mentorID)
}

// ListMentorsWithFollowStatus lists mentors flagged with whether the viewer
// follows them. The viewer is left out.
func (s *FollowService) ListMentorsWithFollowStatus(ctx context.Context, viewerID string) ([]models.MentorWithFollow, error) {
	mentors, err := s.users.ListMentors(ctx)
	if err != nil {
		return nil, err
	}
	followed := map[string]bool{}
	if viewerID != "" {
		if followed, err = s.follows.ListFollowedMentorIDs(ctx, viewerID); err != nil {
			return nil, err
		}
	}

	out := make([]models.MentorWithFollow, 0, len(mentors))
	for _, m := range mentors {
		if m.ID == viewerID {
			continue
		}
		out = append(out, models.MentorWithFollow{
			ID:          m.ID,
			Name:        m.Name,
			Email:       m.Email,
			LinkedinURL: m.LinkedinURL,
			IsFollowing: followed[m.ID],
		})
	}
	return out, nil
}

// SearchUsers finds up to ten users by name or email.
func (s *FollowService) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	return s.users.Search(ctx, query)
}
