package server

import (
	"mentorcircles/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCircleRequest struct {
	Title         string   `json:"title" validate:"notblank,max=120"`
	Description   string   `json:"description" validate:"notblank"`
	Tags          []string `json:"tags" validate:"max=5"`
	MaxCapacity   *int     `json:"max_capacity" validate:"omitempty,gt=0,max=2147483647"`
	DurationWeeks *int     `json:"duration_weeks" validate:"omitempty,gt=0,max=2147483647"`
	Draft         bool     `json:"draft"`
}

// ListCircles handles GET /api/circles
// @Summary List circles
// @Description Open, active and proposed circles, newest first, with fill levels
// @Tags circles
// @Produce json
// @Success 200 {array} models.CircleSummary
// @Router /circles [get]
func (s *Server) ListCircles(c *fiber.Ctx) error {
	circles, err := s.circleService.ListCircles(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(circles)
}

// GetCircle handles GET /api/circles/:id
// @Summary Get circle
// @Tags circles
// @Produce json
// @Param id path string true "Circle ID"
// @Success 200 {object} models.CircleSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /circles/{id} [get]
func (s *Server) GetCircle(c *fiber.Ctx) error {
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	circle, err := s.circleService.GetCircle(c.UserContext(), circleID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(circle)
}

// ListCirclesByMentor handles GET /api/mentors/:id/circles
func (s *Server) ListCirclesByMentor(c *fiber.Ctx) error {
	mentorID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	circles, err := s.circleService.ListCirclesByMentor(c.UserContext(), mentorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(circles)
}

// CreateCircle handles POST /api/circles
// @Summary Create circle
// @Description Creates a circle mentored by the caller
// @Tags circles
// @Accept json
// @Produce json
// @Param request body createCircleRequest true "Circle"
// @Success 201 {object} models.Circle
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /circles [post]
func (s *Server) CreateCircle(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	var req createCircleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	circle, err := s.circleService.CreateCircle(c.UserContext(), userID, service.CreateCircleInput{
		Title:         req.Title,
		Description:   req.Description,
		Tags:          req.Tags,
		MaxCapacity:   req.MaxCapacity,
		DurationWeeks: req.DurationWeeks,
		AsDraft:       req.Draft,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(circle)
}

// ListMyCircles handles GET /api/me/circles
func (s *Server) ListMyCircles(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circles, err := s.circleService.ListMyCircles(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(circles)
}
