package server

import (
	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
)

type extractRequest struct {
	Text string `json:"text"`
}

// GetHashtags serves the trending board (trending=true) or a prefix search
// (search=<q>).
func (s *Server) GetHashtags(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	if q := c.Query("search"); q != "" {
		tags, err := s.hashtagService.Search(c.UserContext(), q, limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"hashtags": tags})
	}

	if !c.QueryBool("trending") {
		return fail(c, models.NewValidationError("Either trending=true or search=<query> is required"))
	}
	tags, err := s.hashtagService.Trending(c.UserContext(), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"hashtags": tags})
}

// ExtractText scans arbitrary text for hashtags and mentions without storing
// anything.
func (s *Server) ExtractText(c *fiber.Ctx) error {
	var req extractRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	return c.JSON(s.hashtagService.Extract(req.Text))
}
