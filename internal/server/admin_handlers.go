package server

import (
	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
)

// Reconcile recomputes cached counters from their sources of truth. Exactly
// one of tweetId= or username= selects the document to repair.
func (s *Server) Reconcile(c *fiber.Ctx) error {
	tweetID := c.Query("tweetId")
	username := c.Query("username")

	switch {
	case tweetID != "" && username == "":
		stats, err := s.reconcileService.ReconcileTweet(c.UserContext(), tweetID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"tweetId": tweetID, "stats": stats})
	case username != "" && tweetID == "":
		stats, err := s.reconcileService.ReconcileUser(c.UserContext(), username)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"username": username, "stats": stats})
	default:
		return fail(c, models.NewValidationError("Exactly one of tweetId or username is required"))
	}
}
