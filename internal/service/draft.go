package service

import (
	"context"
	"errors"

	"chirp/internal/models"
	"chirp/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// DraftService stores unposted tweet bodies per user.
type DraftService struct {
	repo repository.DraftRepository
}

type CreateDraftInput struct {
	Username string
	Content  string
	Media    []string
}

func NewDraftService(repo repository.DraftRepository) *DraftService {
	return &DraftService{repo: repo}
}

func (s *DraftService) Create(ctx context.Context, in CreateDraftInput) (*models.Draft, error) {
	if in.Username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if in.Content == "" && len(in.Media) == 0 {
		return nil, models.NewValidationError("Draft needs content or media")
	}
	draft := &models.Draft{
		Username: in.Username,
		Content:  in.Content,
		Media:    in.Media,
	}
	if err := s.repo.Create(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) List(ctx context.Context, username string) ([]*models.Draft, error) {
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	drafts, err := s.repo.ListByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if drafts == nil {
		drafts = []*models.Draft{}
	}
	return drafts, nil
}

func (s *DraftService) Delete(ctx context.Context, username, id string) error {
	if username == "" {
		return models.NewValidationError("Username is required")
	}
	if id == "" {
		return models.NewValidationError("Draft id is required")
	}
	if err := s.repo.Delete(ctx, username, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.NewNotFoundError("Draft", id)
		}
		return err
	}
	return nil
}
