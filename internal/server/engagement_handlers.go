package server

import (
	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
	"chirp/internal/service"
)

type toggleRequest struct {
	Username string `json:"username"`
	TweetID  string `json:"tweetId"`
}

// flag field name returned per engagement kind, preserved for client
// compatibility.
var engagementFlagField = map[string]string{
	service.EngagementLike:     "isLiked",
	service.EngagementRetweet:  "isRetweeted",
	service.EngagementBookmark: "isBookmarked",
}

func (s *Server) toggleEngagement(c *fiber.Ctx, kind string) error {
	var req toggleRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	added, err := s.engagementService.Toggle(c.UserContext(), service.ToggleEngagementInput{
		Kind:     kind,
		Username: req.Username,
		TweetID:  req.TweetID,
	})
	if err != nil {
		return fail(c, err)
	}

	status := fiber.StatusOK
	action := "removed"
	if added {
		status = fiber.StatusCreated
		action = "added"
	}
	return c.Status(status).JSON(fiber.Map{
		"action":                  action,
		engagementFlagField[kind]: added,
	})
}

// ToggleLike flips the caller's like on a tweet.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	return s.toggleEngagement(c, service.EngagementLike)
}

// ToggleRetweet flips the caller's retweet of a tweet.
func (s *Server) ToggleRetweet(c *fiber.Ctx) error {
	return s.toggleEngagement(c, service.EngagementRetweet)
}

// ToggleBookmark flips the caller's bookmark on a tweet.
func (s *Server) ToggleBookmark(c *fiber.Ctx) error {
	return s.toggleEngagement(c, service.EngagementBookmark)
}
