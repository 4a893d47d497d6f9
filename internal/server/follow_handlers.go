package server

import (
	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
	"chirp/internal/service"
)

type toggleFollowRequest struct {
	FollowerUsername  string `json:"followerUsername"`
	FollowingUsername string `json:"followingUsername"`
}

// ToggleFollow flips the follow relationship between two accounts.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	var req toggleFollowRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	following, err := s.followService.Toggle(c.UserContext(), service.ToggleFollowInput{
		Follower:  req.FollowerUsername,
		Following: req.FollowingUsername,
	})
	if err != nil {
		return fail(c, err)
	}

	status := fiber.StatusOK
	action := "removed"
	if following {
		status = fiber.StatusCreated
		action = "added"
	}
	return c.Status(status).JSON(fiber.Map{
		"action":      action,
		"isFollowing": following,
	})
}
