package service

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/repository"
)

// InteractionService resolves the per-viewer engagement flags for sets of
// tweets. One existence query per edge type per call, regardless of page
// size.
type InteractionService struct {
	likes     repository.EngagementRepository
	retweets  repository.EngagementRepository
	bookmarks repository.EngagementRepository
}

func NewInteractionService(likes, retweets, bookmarks repository.EngagementRepository) *InteractionService {
	return &InteractionService{
		likes:     likes,
		retweets:  retweets,
		bookmarks: bookmarks,
	}
}

// Resolve returns the viewer's flags for every requested tweet ID. An
// anonymous viewer (empty username) gets all-false flags without touching
// the store. IDs that match no edges, including unknown ones, resolve to
// all-false entries.
func (s *InteractionService) Resolve(ctx context.Context, viewer string, tweetIDs []string) (map[string]models.InteractionFlags, error) {
	flags := make(map[string]models.InteractionFlags, len(tweetIDs))
	for _, id := range tweetIDs {
		flags[id] = models.InteractionFlags{}
	}
	if viewer == "" || len(tweetIDs) == 0 {
		return flags, nil
	}

	liked, err := s.likes.FilterEngaged(ctx, viewer, tweetIDs)
	if err != nil {
		return nil, err
	}
	retweeted, err := s.retweets.FilterEngaged(ctx, viewer, tweetIDs)
	if err != nil {
		return nil, err
	}
	bookmarked, err := s.bookmarks.FilterEngaged(ctx, viewer, tweetIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range tweetIDs {
		flags[id] = models.InteractionFlags{
			IsLiked:      liked[id],
			IsRetweeted:  retweeted[id],
			IsBookmarked: bookmarked[id],
		}
	}
	return flags, nil
}
