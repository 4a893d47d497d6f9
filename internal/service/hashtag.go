package service

import (
	"context"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/textscan"
)

const defaultTrendingLimit = 10

// HashtagService serves trending and prefix-search queries over the hashtag
// usage collection, plus the stateless extraction utility.
type HashtagService struct {
	repo repository.HashtagRepository
}

// Extraction is the result of scanning arbitrary text.
type Extraction struct {
	Hashtags []string `json:"hashtags"`
	Mentions []string `json:"mentions"`
}

func NewHashtagService(repo repository.HashtagRepository) *HashtagService {
	return &HashtagService{repo: repo}
}

// Trending returns the most used tags. The result is cached briefly; the
// trending board tolerates slightly stale counts.
func (s *HashtagService) Trending(ctx context.Context, limit int) ([]*models.Hashtag, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	var tags []*models.Hashtag
	err := cache.Aside(ctx, cache.TrendingHashtagsKey(limit), &tags, cache.TrendingTTL, func() error {
		var fetchErr error
		tags, fetchErr = s.repo.Trending(ctx, limit)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []*models.Hashtag{}
	}
	return tags, nil
}

func (s *HashtagService) Search(ctx context.Context, query string, limit int) ([]*models.Hashtag, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	tags, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []*models.Hashtag{}
	}
	return tags, nil
}

// Extract scans text for hashtags and mentions. Pure, no store access.
func (s *HashtagService) Extract(text string) Extraction {
	return Extraction{
		Hashtags: textscan.Hashtags(text),
		Mentions: textscan.Mentions(text),
	}
}
