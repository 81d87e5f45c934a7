package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListMentors handles GET /api/mentors
// @Summary List mentors
// @Description Every mentor except the caller, flagged with whether the caller follows them
// @Tags follows
// @Produce json
// @Success 200 {array} models.MentorWithFollow
// @Security BearerAuth
// @Router /mentors [get]
func (s *Server) ListMentors(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	mentors, err := s.followService.ListMentorsWithFollowStatus(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(mentors)
}

// FollowMentor handles POST /api/mentors/:id/follow
func (s *Server) FollowMentor(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	mentorID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.followService.Follow(c.UserContext(), userID, mentorID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnfollowMentor handles DELETE /api/mentors/:id/follow
func (s *Server) UnfollowMentor(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	mentorID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.followService.Unfollow(c.UserContext(), userID, mentorID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchUsers handles GET /api/users/search?q=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.followService.SearchUsers(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}
