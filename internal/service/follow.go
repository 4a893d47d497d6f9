package service

import (
	"context"
	"errors"
	"time"

	"chirp/internal/models"
	"chirp/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// FollowService toggles follow relationships and keeps the denormalized
// lists and counters on both user documents in step.
type FollowService struct {
	follows       repository.FollowRepository
	users         repository.UserRepository
	notifications *NotificationService
	tx            TxRunner
}

type ToggleFollowInput struct {
	Follower  string
	Following string
}

func NewFollowService(
	follows repository.FollowRepository,
	users repository.UserRepository,
	notifications *NotificationService,
	tx TxRunner,
) *FollowService {
	return &FollowService{
		follows:       follows,
		users:         users,
		notifications: notifications,
		tx:            tx,
	}
}

// Toggle flips the follow edge. Returns true when the follower now follows
// the target. Adding the edge notifies the target.
func (s *FollowService) Toggle(ctx context.Context, in ToggleFollowInput) (bool, error) {
	if in.Follower == "" || in.Following == "" {
		return false, models.NewValidationError("followerUsername and followingUsername are required")
	}
	if in.Follower == in.Following {
		return false, models.NewValidationError("Cannot follow yourself")
	}

	follower, err := s.users.GetByUsername(ctx, in.Follower)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, models.NewNotFoundError("User", in.Follower)
		}
		return false, err
	}
	if _, err := s.users.GetByUsername(ctx, in.Following); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, models.NewNotFoundError("User", in.Following)
		}
		return false, err
	}

	exists, err := s.follows.Exists(ctx, in.Follower, in.Following)
	if err != nil {
		return false, err
	}

	if exists {
		err := runAtomic(ctx, s.tx, func(ctx context.Context) error {
			removed, err := s.follows.Delete(ctx, in.Follower, in.Following)
			if err != nil {
				return err
			}
			if removed {
				return s.users.ApplyUnfollow(ctx, in.Follower, in.Following)
			}
			return nil
		})
		return false, err
	}

	err = runAtomic(ctx, s.tx, func(ctx context.Context) error {
		created, err := s.follows.Insert(ctx, in.Follower, in.Following, time.Now().UTC())
		if err != nil {
			return err
		}
		if created {
			return s.users.ApplyFollow(ctx, in.Follower, in.Following)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if err := s.notifications.Notify(ctx, NotifyInput{
		Type:      models.NotificationTypeFollow,
		Recipient: in.Following,
		Actor:     follower.Snapshot(),
	}); err != nil {
		return true, err
	}
	return true, nil
}
