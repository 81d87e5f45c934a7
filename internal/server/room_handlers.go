package server

import (
	"time"

	"mentorcircles/internal/service"

	"github.com/gofiber/fiber/v2"
)

type sessionRequest struct {
	Title        string    `json:"title" validate:"notblank,max=200"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
	VideoCallURL string    `json:"video_call_url" validate:"omitempty,url"`
}

type completeSessionRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}

type resourceRequest struct {
	Title string `json:"title" validate:"notblank,max=200"`
	URL   string `json:"url" validate:"required,url"`
	Type  string `json:"type" validate:"max=40"`
}

type discussionRequest struct {
	Content  string  `json:"content" validate:"notblank,max=4000"`
	ParentID *string `json:"parent_id"`
}

// GetRoom handles GET /api/circles/:id/room
// @Summary Circle room
// @Description Sessions, resources and discussion for participants
// @Tags room
// @Produce json
// @Param id path string true "Circle ID"
// @Success 200 {object} models.Room
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /circles/{id}/room [get]
func (s *Server) GetRoom(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	room, err := s.roomService.GetRoom(c.UserContext(), circleID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(room)
}

// AddSession handles POST /api/circles/:id/sessions
func (s *Server) AddSession(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req sessionRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	session, err := s.roomService.AddSession(c.UserContext(), circleID, userID, service.SessionInput{
		Title:        req.Title,
		ScheduledAt:  req.ScheduledAt,
		VideoCallURL: req.VideoCallURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// CompleteSession handles POST /api/circles/:id/sessions/:sessionId/complete
func (s *Server) CompleteSession(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	sessionID, err := parseID(c, "sessionId")
	if err != nil {
		return nil
	}
	var req completeSessionRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return nil
	}

	if err := s.roomService.CompleteSession(c.UserContext(), circleID, userID, sessionID, req.Notes); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddResource handles POST /api/circles/:id/resources
func (s *Server) AddResource(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req resourceRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	resource, err := s.roomService.AddResource(c.UserContext(), circleID, userID, service.ResourceInput{
		Title: req.Title,
		URL:   req.URL,
		Type:  req.Type,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resource)
}

// DeleteResource handles DELETE /api/circles/:id/resources/:resourceId
func (s *Server) DeleteResource(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	resourceID, err := parseID(c, "resourceId")
	if err != nil {
		return nil
	}
	if err := s.roomService.DeleteResource(c.UserContext(), circleID, userID, resourceID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PostDiscussion handles POST /api/circles/:id/discussion
func (s *Server) PostDiscussion(c *fiber.Ctx) error {
	userID, err := caller(c)
	if err != nil {
		return nil
	}
	circleID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req discussionRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.roomService.PostDiscussion(c.UserContext(), circleID, userID, req.Content, req.ParentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}
