package server

import (
	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
	"chirp/internal/service"
)

type markReadRequest struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// GetNotifications returns a page of the user's notifications, newest
// activity first, with the unread count.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	page, err := s.notificationService.List(c.UserContext(), service.ListNotificationsInput{
		Username: c.Query("username"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

// MarkNotificationRead marks a single notification as read.
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	if err := s.notificationService.MarkRead(c.UserContext(), req.Username, req.ID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead marks every unread notification for the user.
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	if err := s.notificationService.MarkAllRead(c.UserContext(), req.Username); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}
