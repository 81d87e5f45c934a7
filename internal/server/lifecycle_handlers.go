package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// circleAction runs a (circle, caller) operation that returns no payload.
func (s *Server) circleAction(c *fiber.Ctx, op func(ctx context.Context, circleID, callerID string) error) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := op(c.UserContext(), circleID, userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PublishCircle handles POST /api/circles/:id/publish
// @Summary Publish a draft circle
// @Tags lifecycle
// @Param id path string true "Circle ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /circles/{id}/publish [post]
func (s *Server) PublishCircle(c *fiber.Ctx) error {
	return s.circleAction(c, s.lifecycleService.PublishCircle)
}

// CloseCircleApplications handles POST /api/circles/:id/close
// @Summary Stop accepting applications
// @Description Moves an OPEN circle to ACTIVE. Mentor only.
// @Tags lifecycle
// @Param id path string true "Circle ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /circles/{id}/close [post]
func (s *Server) CloseCircleApplications(c *fiber.Ctx) error {
	return s.circleAction(c, s.lifecycleService.CloseCircleApplications)
}

// ReopenCircleApplications handles POST /api/circles/:id/reopen
// @Summary Reopen applications
// @Description Moves the circle back to OPEN when it has spare capacity. Mentor only.
// @Tags lifecycle
// @Param id path string true "Circle ID"
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /circles/{id}/reopen [post]
func (s *Server) ReopenCircleApplications(c *fiber.Ctx) error {
	return s.circleAction(c, s.lifecycleService.ReopenCircleApplications)
}

// CompleteCircle handles POST /api/circles/:id/complete
func (s *Server) CompleteCircle(c *fiber.Ctx) error {
	return s.circleAction(c, s.lifecycleService.CompleteCircle)
}
