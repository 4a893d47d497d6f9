package service

import (
	"context"
	"errors"
	"regexp"

	"chirp/internal/models"
	"chirp/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{1,30}$`)

// UserService handles account registration and profile reads.
type UserService struct {
	users repository.UserRepository
}

type CreateUserInput struct {
	Username    string
	DisplayName string
	Avatar      string
	Banner      string
	Bio         string
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Create registers a new account. A taken handle surfaces as Conflict.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if in.Username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if !usernamePattern.MatchString(in.Username) {
		return nil, models.NewValidationError("Username must be 1-30 word characters")
	}
	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.Username
	}

	user := &models.User{
		Username:    in.Username,
		DisplayName: displayName,
		Avatar:      in.Avatar,
		Banner:      in.Banner,
		Bio:         in.Bio,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, err
	}
	return user, nil
}
