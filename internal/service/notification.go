package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"chirp/internal/models"
	"chirp/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// Notifier pushes a freshly written notification to the recipient's live
// connections. Implementations must be non-blocking for the request path.
type Notifier interface {
	Publish(ctx context.Context, username string, payload any) error
}

// NotificationService owns the notification lifecycle: deduplicated writes,
// listing, and read-state changes.
type NotificationService struct {
	repo     repository.NotificationRepository
	notifier Notifier
}

type NotifyInput struct {
	Type      string
	Recipient string
	Actor     models.AuthorSnapshot
	TweetID   string
}

type ListNotificationsInput struct {
	Username string
	Limit    int
	Offset   int
}

// NotificationPage is a page of notifications plus the recipient's total
// unread count.
type NotificationPage struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
	HasMore       bool                   `json:"hasMore"`
}

// NewNotificationService creates a notification service. notifier may be nil
// when realtime push is not wired.
func NewNotificationService(repo repository.NotificationRepository, notifier Notifier) *NotificationService {
	return &NotificationService{repo: repo, notifier: notifier}
}

// Notify records the action for the recipient. Self-directed actions are
// dropped. A repeat of the same action within the dedupe window refreshes
// the existing notification instead of creating another. Realtime delivery
// is best effort and never fails the request.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) error {
	if in.Recipient == "" || in.Recipient == in.Actor.Username {
		return nil
	}

	now := time.Now().UTC()
	n := &models.Notification{
		Recipient: in.Recipient,
		Actor:     in.Actor,
		Type:      in.Type,
		TweetID:   in.TweetID,
		DedupeKey: models.NotificationDedupeKey(in.Type, in.Recipient, in.Actor.Username, in.TweetID, now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.repo.Upsert(ctx, n); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, in.Recipient, n); err != nil {
			slog.WarnContext(ctx, "notification publish failed",
				"recipient", in.Recipient, "type", in.Type, "error", err)
		}
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, in ListNotificationsInput) (*NotificationPage, error) {
	if in.Username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	notifications, err := s.repo.ListByRecipient(ctx, in.Username, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	return &NotificationPage{
		Notifications: notifications,
		UnreadCount:   unread,
		HasMore:       in.Limit > 0 && len(notifications) == in.Limit,
	}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, username, id string) error {
	if username == "" {
		return models.NewValidationError("Username is required")
	}
	if id == "" {
		return models.NewValidationError("Notification id is required")
	}
	if err := s.repo.MarkRead(ctx, username, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.NewNotFoundError("Notification", id)
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, username string) error {
	if username == "" {
		return models.NewValidationError("Username is required")
	}
	return s.repo.MarkAllRead(ctx, username)
}

// DeleteForTweet removes every notification referencing the tweet. Used by
// the tweet delete cascade.
func (s *NotificationService) DeleteForTweet(ctx context.Context, tweetID string) error {
	return s.repo.DeleteByTweet(ctx, tweetID)
}
