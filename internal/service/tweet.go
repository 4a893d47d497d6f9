package service

import (
	"context"
	"errors"
	"time"

	"chirp/internal/models"
	"chirp/internal/publicid"
	"chirp/internal/repository"
	"chirp/internal/textscan"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxContentLen = 2000

// TweetService handles tweet creation, deletion and single-tweet reads with
// their full fan-out: counters, hashtag usage, and notifications.
type TweetService struct {
	tweets        repository.TweetRepository
	users         repository.UserRepository
	hashtags      repository.HashtagRepository
	likes         repository.EngagementRepository
	retweets      repository.EngagementRepository
	bookmarks     repository.EngagementRepository
	notifications *NotificationService
	interactions  *InteractionService
	publicIDs     *publicid.Generator
	tx            TxRunner
}

type CreateTweetInput struct {
	Username string
	Content  string
	Media    []string
	Type     string
	// TweetRef is the public ID of the referenced tweet for replies,
	// retweets and quotes.
	TweetRef string
}

type DeleteTweetInput struct {
	Username string
	TweetID  string
}

// TweetDetail is a single tweet with the viewer's flags and its replies in
// conversation order.
type TweetDetail struct {
	Tweet   *models.FeedItem   `json:"tweet"`
	Replies []*models.FeedItem `json:"replies"`
}

func NewTweetService(
	tweets repository.TweetRepository,
	users repository.UserRepository,
	hashtags repository.HashtagRepository,
	likes, retweets, bookmarks repository.EngagementRepository,
	notifications *NotificationService,
	interactions *InteractionService,
	publicIDs *publicid.Generator,
	tx TxRunner,
) *TweetService {
	return &TweetService{
		tweets:        tweets,
		users:         users,
		hashtags:      hashtags,
		likes:         likes,
		retweets:      retweets,
		bookmarks:     bookmarks,
		notifications: notifications,
		interactions:  interactions,
		publicIDs:     publicIDs,
		tx:            tx,
	}
}

// Create validates and stores a new tweet, then fans out its side effects:
// hashtag usage upserts, the author's tweet counter, the parent's stat for
// replies/retweets/quotes, and reply/retweet/quote plus mention
// notifications.
func (s *TweetService) Create(ctx context.Context, in CreateTweetInput) (*models.Tweet, error) {
	if in.Username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 2000 characters)")
	}

	typ := in.Type
	if typ == "" {
		typ = models.TweetTypeOriginal
	}
	if !models.ValidTweetType(typ) {
		return nil, models.NewValidationError("Invalid tweet type")
	}

	author, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", in.Username)
		}
		return nil, err
	}

	var parent *models.Tweet
	if typ != models.TweetTypeOriginal {
		if in.TweetRef == "" {
			return nil, models.NewValidationError("tweetRef is required for replies, retweets and quotes")
		}
		parent, err = s.tweets.GetByPublicID(ctx, in.TweetRef)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, models.NewNotFoundError("Tweet", in.TweetRef)
			}
			return nil, err
		}
	}

	now := time.Now().UTC()
	oid := primitive.NewObjectID()
	tweet := &models.Tweet{
		ID:        oid,
		TweetID:   s.publicIDs.FromStorageID(oid.Hex()),
		Type:      typ,
		Content:   in.Content,
		Media:     in.Media,
		Author:    author.Snapshot(),
		Hashtags:  textscan.Hashtags(in.Content),
		Mentions:  textscan.Mentions(in.Content),
		CreatedAt: now,
	}
	if parent != nil {
		tweet.ParentID = parent.TweetID
	}

	err = runAtomic(ctx, s.tx, func(ctx context.Context) error {
		if err := s.tweets.Insert(ctx, tweet); err != nil {
			return err
		}
		if err := s.users.IncTweetCount(ctx, in.Username, 1); err != nil {
			return err
		}
		if parent != nil {
			if field := models.ParentStatField(typ); field != "" {
				if err := s.tweets.IncStat(ctx, parent.TweetID, field, 1); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.hashtags.UpsertUsage(ctx, tweet.Hashtags, now); err != nil {
		return nil, err
	}

	if parent != nil {
		if err := s.notifications.Notify(ctx, NotifyInput{
			Type:      notificationTypeForTweet(typ),
			Recipient: parent.Author.Username,
			Actor:     tweet.Author,
			TweetID:   tweet.TweetID,
		}); err != nil {
			return nil, err
		}
	}
	if err := s.notifyMentions(ctx, tweet); err != nil {
		return nil, err
	}

	return tweet, nil
}

// notifyMentions notifies every mentioned handle that resolves to a real
// account. Unknown handles are skipped silently.
func (s *TweetService) notifyMentions(ctx context.Context, tweet *models.Tweet) error {
	for _, handle := range tweet.Mentions {
		if _, err := s.users.GetByUsername(ctx, handle); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			return err
		}
		if err := s.notifications.Notify(ctx, NotifyInput{
			Type:      models.NotificationTypeMention,
			Recipient: handle,
			Actor:     tweet.Author,
			TweetID:   tweet.TweetID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the tweet and cascades: engagement edges and notifications
// referencing it go away, the author's tweet counter drops, and the parent's
// stat drops when the tweet was a reply, retweet or quote.
func (s *TweetService) Delete(ctx context.Context, in DeleteTweetInput) error {
	if in.Username == "" {
		return models.NewValidationError("Username is required")
	}
	if in.TweetID == "" {
		return models.NewValidationError("tweetId is required")
	}

	tweet, err := s.tweets.GetByPublicID(ctx, in.TweetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.NewNotFoundError("Tweet", in.TweetID)
		}
		return err
	}
	if tweet.Author.Username != in.Username {
		return models.NewForbiddenError("You can only delete your own tweets")
	}

	return runAtomic(ctx, s.tx, func(ctx context.Context) error {
		if err := s.tweets.Delete(ctx, tweet.TweetID); err != nil {
			return err
		}
		for _, edges := range []repository.EngagementRepository{s.likes, s.retweets, s.bookmarks} {
			if err := edges.DeleteByTweet(ctx, tweet.TweetID); err != nil {
				return err
			}
		}
		if err := s.notifications.DeleteForTweet(ctx, tweet.TweetID); err != nil {
			return err
		}
		if err := s.users.IncTweetCount(ctx, in.Username, -1); err != nil {
			return err
		}
		if tweet.ParentID != "" {
			if field := models.ParentStatField(tweet.Type); field != "" {
				if err := s.tweets.IncStat(ctx, tweet.ParentID, field, -1); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Get returns the tweet with the viewer's flags and its reply list.
func (s *TweetService) Get(ctx context.Context, tweetID, viewer string) (*TweetDetail, error) {
	tweet, err := s.tweets.GetByPublicID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Tweet", tweetID)
		}
		return nil, err
	}

	replies, err := s.tweets.ListReplies(ctx, tweet.TweetID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(replies)+1)
	ids = append(ids, tweet.TweetID)
	for _, r := range replies {
		ids = append(ids, r.TweetID)
	}
	flags, err := s.interactions.Resolve(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}

	detail := &TweetDetail{
		Tweet:   &models.FeedItem{Tweet: tweet, InteractionFlags: flags[tweet.TweetID]},
		Replies: make([]*models.FeedItem, 0, len(replies)),
	}
	for _, r := range replies {
		detail.Replies = append(detail.Replies, &models.FeedItem{
			Tweet:            r,
			InteractionFlags: flags[r.TweetID],
		})
	}
	return detail, nil
}

func notificationTypeForTweet(tweetType string) string {
	switch tweetType {
	case models.TweetTypeReply:
		return models.NotificationTypeReply
	case models.TweetTypeRetweet:
		return models.NotificationTypeRetweet
	case models.TweetTypeQuote:
		return models.NotificationTypeQuote
	}
	return ""
}
