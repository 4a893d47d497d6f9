package server

import (
	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
	"chirp/internal/service"
)

type createUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Banner      string `json:"banner"`
	Bio         string `json:"bio"`
}

// CreateUser registers an account. Duplicate handles come back as 409.
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	user, err := s.userService.Create(c.UserContext(), service.CreateUserInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Avatar:      req.Avatar,
		Banner:      req.Banner,
		Bio:         req.Bio,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

// GetUser returns a profile by username.
func (s *Server) GetUser(c *fiber.Ctx) error {
	user, err := s.userService.Get(c.UserContext(), c.Query("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}
