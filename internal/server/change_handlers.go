package server

import (
	"mentorcircles/internal/models"
	"mentorcircles/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Limits are validated by the change workflow so its error kinds reach the client.
type proposeRequest struct {
	NewMaxCapacity *int   `json:"new_max_capacity"`
	ExtendByWeeks  *int   `json:"extend_by_weeks"`
	Notes          string `json:"notes" validate:"max=2000"`
}

// changeStatus is the HTTP status for a change result: 200 once applied,
// 202 while an approval is outstanding.
func changeStatus(result *service.ChangeResult) int {
	if result.Status == models.ChangeRequestStatusApplied {
		return fiber.StatusOK
	}
	return fiber.StatusAccepted
}

// ProposeCircleUpdate handles POST /api/circles/:id/updates
// @Summary Propose a capacity increase or duration extension
// @Description Applies immediately on self-mentored circles; otherwise waits for the other party
// @Tags changes
// @Accept json
// @Produce json
// @Param id path string true "Circle ID"
// @Param request body proposeRequest true "Proposal"
// @Success 200 {object} service.ChangeResult
// @Success 202 {object} service.ChangeResult
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /circles/{id}/updates [post]
func (s *Server) ProposeCircleUpdate(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req proposeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.changeService.ProposeCircleUpdate(c.UserContext(), circleID, userID, service.ProposeInput{
		NewMaxCapacity: req.NewMaxCapacity,
		ExtendByWeeks:  req.ExtendByWeeks,
		Notes:          req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(changeStatus(result)).JSON(result)
}

// ListPendingChangeRequests handles GET /api/circles/:id/updates
func (s *Server) ListPendingChangeRequests(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	pending, err := s.changeService.ListPendingChangeRequests(c.UserContext(), circleID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pending)
}

// ApproveCircleUpdateRequest handles POST /api/circles/:id/updates/:requestId/approve
// @Summary Approve a pending change request
// @Tags changes
// @Produce json
// @Param id path string true "Circle ID"
// @Param requestId path string true "Change request ID"
// @Success 200 {object} service.ChangeResult
// @Success 202 {object} service.ChangeResult
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /circles/{id}/updates/{requestId}/approve [post]
func (s *Server) ApproveCircleUpdateRequest(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	requestID, err := parseID(c, "requestId")
	if err != nil {
		return nil
	}

	result, err := s.changeService.ApproveCircleUpdateRequest(c.UserContext(), circleID, userID, requestID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(changeStatus(result)).JSON(result)
}
