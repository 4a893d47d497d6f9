package service

import (
	"context"
	"errors"
	"time"

	"chirp/internal/models"
	"chirp/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// Engagement kinds accepted by Toggle.
const (
	EngagementLike     = "like"
	EngagementRetweet  = "retweet"
	EngagementBookmark = "bookmark"
)

// EngagementService toggles like/retweet/bookmark edges and keeps the cached
// counters on the target tweet in step.
type EngagementService struct {
	edges         map[string]repository.EngagementRepository
	tweets        repository.TweetRepository
	users         repository.UserRepository
	notifications *NotificationService
	tx            TxRunner
}

type ToggleEngagementInput struct {
	Kind     string
	Username string
	TweetID  string
}

func NewEngagementService(
	likes, retweets, bookmarks repository.EngagementRepository,
	tweets repository.TweetRepository,
	users repository.UserRepository,
	notifications *NotificationService,
	tx TxRunner,
) *EngagementService {
	return &EngagementService{
		edges: map[string]repository.EngagementRepository{
			EngagementLike:     likes,
			EngagementRetweet:  retweets,
			EngagementBookmark: bookmarks,
		},
		tweets:        tweets,
		users:         users,
		notifications: notifications,
		tx:            tx,
	}
}

// statField maps an engagement kind to the tweet counter it maintains.
// Bookmarks are private and carry no counter.
func statField(kind string) string {
	switch kind {
	case EngagementLike:
		return "stats.likes"
	case EngagementRetweet:
		return "stats.retweets"
	}
	return ""
}

// Toggle flips the actor's edge on the tweet. Returns true when the edge was
// added, false when it was removed. Adding a like or retweet notifies the
// tweet's author unless the actor is the author.
func (s *EngagementService) Toggle(ctx context.Context, in ToggleEngagementInput) (bool, error) {
	repo, ok := s.edges[in.Kind]
	if !ok {
		return false, models.NewValidationError("Invalid engagement kind")
	}
	if in.Username == "" {
		return false, models.NewValidationError("Username is required")
	}
	if in.TweetID == "" {
		return false, models.NewValidationError("tweetId is required")
	}

	actor, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, models.NewNotFoundError("User", in.Username)
		}
		return false, err
	}
	tweet, err := s.tweets.GetByPublicID(ctx, in.TweetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, models.NewNotFoundError("Tweet", in.TweetID)
		}
		return false, err
	}

	exists, err := repo.Exists(ctx, in.Username, in.TweetID)
	if err != nil {
		return false, err
	}
	field := statField(in.Kind)

	if exists {
		err := runAtomic(ctx, s.tx, func(ctx context.Context) error {
			removed, err := repo.Delete(ctx, in.Username, in.TweetID)
			if err != nil {
				return err
			}
			if removed && field != "" {
				return s.tweets.IncStat(ctx, in.TweetID, field, -1)
			}
			return nil
		})
		return false, err
	}

	err = runAtomic(ctx, s.tx, func(ctx context.Context) error {
		created, err := repo.Insert(ctx, in.Username, in.TweetID, time.Now().UTC())
		if err != nil {
			return err
		}
		// A racing toggle may have inserted first; the unique index makes
		// that visible here and the counter must not move twice.
		if created && field != "" {
			return s.tweets.IncStat(ctx, in.TweetID, field, 1)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if typ := notificationTypeFor(in.Kind); typ != "" {
		if err := s.notifications.Notify(ctx, NotifyInput{
			Type:      typ,
			Recipient: tweet.Author.Username,
			Actor:     actor.Snapshot(),
			TweetID:   tweet.TweetID,
		}); err != nil {
			return true, err
		}
	}
	return true, nil
}

func notificationTypeFor(kind string) string {
	switch kind {
	case EngagementLike:
		return models.NotificationTypeLike
	case EngagementRetweet:
		return models.NotificationTypeRetweet
	}
	return ""
}
