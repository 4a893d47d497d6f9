package server

import (
	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
	"chirp/internal/service"
)

type createTweetRequest struct {
	Username string   `json:"username"`
	Content  string   `json:"content"`
	Media    []string `json:"media"`
	TweetRef string   `json:"tweetRef"`
	Type     string   `json:"type"`
}

// GetPost serves the read side of the /post resource. The query shape picks
// the operation: id= fetches a single tweet with its replies, username=
// serves a profile tab, feed=following serves the followed-authors timeline,
// and a bare request serves the global timeline. currentUser scopes the
// interaction flags in every case.
func (s *Server) GetPost(c *fiber.Ctx) error {
	viewer := c.Query("currentUser")

	if id := c.Query("id"); id != "" {
		detail, err := s.tweetService.Get(c.UserContext(), id, viewer)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(detail)
	}

	p := parsePagination(c, 20)
	in := service.AssembleInput{
		Viewer: viewer,
		Limit:  p.Limit,
		Offset: p.Offset,
	}

	switch {
	case c.Query("username") != "":
		in.Mode = service.ModeUser
		in.Target = c.Query("username")
		in.IncludeReplies = c.QueryBool("includeReplies")
		in.MediaOnly = c.QueryBool("mediaOnly")
		in.LikedOnly = c.QueryBool("likedOnly")
	case c.Query("feed") == "following":
		in.Mode = service.ModeFollowing
	default:
		in.Mode = service.ModeAll
	}

	items, hasMore, err := s.timelineService.Assemble(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"tweets":  items,
		"hasMore": hasMore,
	})
}

// CreatePost creates a tweet.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createTweetRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	tweet, err := s.tweetService.Create(c.UserContext(), service.CreateTweetInput{
		Username: req.Username,
		Content:  req.Content,
		Media:    req.Media,
		TweetRef: req.TweetRef,
		Type:     req.Type,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"tweetId": tweet.TweetID,
		"tweet":   tweet,
	})
}

// DeletePost deletes a tweet. Only the author may delete; the cascade takes
// edges and notifications with it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	err := s.tweetService.Delete(c.UserContext(), service.DeleteTweetInput{
		Username: c.Query("username"),
		TweetID:  c.Query("tweetId"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tweet deleted"})
}
