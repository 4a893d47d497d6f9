package server

import (
	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
	"chirp/internal/service"
)

type createDraftRequest struct {
	Username string   `json:"username"`
	Content  string   `json:"content"`
	Media    []string `json:"media"`
}

// GetDrafts lists the user's saved drafts, newest first.
func (s *Server) GetDrafts(c *fiber.Ctx) error {
	drafts, err := s.draftService.List(c.UserContext(), c.Query("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"drafts": drafts})
}

// CreateDraft saves an unposted tweet body.
func (s *Server) CreateDraft(c *fiber.Ctx) error {
	var req createDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	draft, err := s.draftService.Create(c.UserContext(), service.CreateDraftInput{
		Username: req.Username,
		Content:  req.Content,
		Media:    req.Media,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"draft": draft})
}

// DeleteDraft removes one of the user's drafts.
func (s *Server) DeleteDraft(c *fiber.Ctx) error {
	if err := s.draftService.Delete(c.UserContext(), c.Query("username"), c.Query("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Draft deleted"})
}
