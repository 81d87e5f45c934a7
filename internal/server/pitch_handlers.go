package server

import (
	"mentorcircles/internal/service"

	"github.com/gofiber/fiber/v2"
)

type pitchRequest struct {
	MentorID    string   `json:"mentor_id"`
	Title       string   `json:"title" validate:"notblank,max=120"`
	Description string   `json:"description" validate:"notblank"`
	Tags        []string `json:"tags" validate:"max=5"`
}

// SubmitPitch handles POST /api/pitches
// @Summary Pitch a circle to a mentor
// @Description Creates a PROPOSED circle. Naming a mentor requires following them.
// @Tags pitches
// @Accept json
// @Produce json
// @Param request body pitchRequest true "Pitch"
// @Success 201 {object} models.Circle
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /pitches [post]
func (s *Server) SubmitPitch(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	var req pitchRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	circle, err := s.circleService.SubmitPitch(c.UserContext(), userID, service.PitchInput{
		MentorID:    req.MentorID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(circle)
}

// ListPitchRequests handles GET /api/pitches/incoming
func (s *Server) ListPitchRequests(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	pitches, err := s.circleService.ListPitchRequests(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pitches)
}

// AcceptPitch handles POST /api/pitches/:id/accept
func (s *Server) AcceptPitch(c *fiber.Ctx) error {
	return s.circleAction(c, s.circleService.AcceptPitch)
}

// DeclinePitch handles POST /api/pitches/:id/decline
func (s *Server) DeclinePitch(c *fiber.Ctx) error {
	return s.circleAction(c, s.circleService.DeclinePitch)
}
