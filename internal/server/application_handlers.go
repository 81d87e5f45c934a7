package server

import (
	"mentorcircles/internal/service"

	"github.com/gofiber/fiber/v2"
)

type applicationRequest struct {
	IntentStatement string `json:"intent_statement" validate:"notblank,max=2000"`
}

type reviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=ACCEPT REJECT"`
}

// SubmitApplication handles POST /api/circles/:id/applications
// @Summary Apply to a circle
// @Description Admits the caller as PENDING while seats remain, otherwise WAITLIST
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Circle ID"
// @Param request body applicationRequest true "Application"
// @Success 201 {object} service.SubmitResult
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /circles/{id}/applications [post]
func (s *Server) SubmitApplication(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req applicationRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.applicationService.SubmitApplication(c.UserContext(), circleID, userID, req.IntentStatement)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// ListApplications handles GET /api/circles/:id/applications
// @Summary List a circle's applications
// @Description Oldest first. Creator or mentor only.
// @Tags applications
// @Produce json
// @Param id path string true "Circle ID"
// @Success 200 {array} models.Application
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /circles/{id}/applications [get]
func (s *Server) ListApplications(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	apps, err := s.applicationService.ListApplications(c.UserContext(), circleID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(apps)
}

// ReviewApplication handles POST /api/circles/:id/applications/:applicationId/review
// @Summary Accept or reject an application
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Circle ID"
// @Param applicationId path string true "Application ID"
// @Param request body reviewRequest true "Decision"
// @Success 200 {object} models.Application
// @Security BearerAuth
// @Router /circles/{id}/applications/{applicationId}/review [post]
func (s *Server) ReviewApplication(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	applicationID, err := parseID(c, "applicationId")
	if err != nil {
		return nil
	}
	var req reviewRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	app, err := s.applicationService.ReviewApplication(c.UserContext(), circleID, userID, applicationID,
		service.ReviewDecision(req.Decision))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(app)
}

// ListMyApplications handles GET /api/me/applications
func (s *Server) ListMyApplications(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	apps, err := s.applicationService.ListMyApplications(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(apps)
}
