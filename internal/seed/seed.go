package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/models"
	"chirp/internal/publicid"
	"chirp/internal/repository"
	"chirp/internal/service"
)

// Options controls how much data a run produces.
type Options struct {
	NumUsers  int
	NumTweets int
	Clean     bool
}

// Seeder drives the service layer to populate a development database.
type Seeder struct {
	db      *database.DB
	factory *Factory

	users       *service.UserService
	tweets      *service.TweetService
	engagements *service.EngagementService
	follows     *service.FollowService
	drafts      *service.DraftService
}

// NewSeeder wires a seeder against the given database. Realtime push and
// transactions are left off; the seeder is a development tool.
func NewSeeder(db *database.DB, cfg *config.Config) (*Seeder, error) {
	idGen, err := publicid.NewGenerator(cfg.PublicIDKey)
	if err != nil {
		return nil, fmt.Errorf("public id generator: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Collection(database.CollectionUsers))
	tweetRepo := repository.NewTweetRepository(db.Collection(database.CollectionTweets))
	likeRepo := repository.NewEngagementRepository(db.Collection(database.CollectionLikes))
	retweetRepo := repository.NewEngagementRepository(db.Collection(database.CollectionRetweets))
	bookmarkRepo := repository.NewEngagementRepository(db.Collection(database.CollectionBookmarks))
	followRepo := repository.NewFollowRepository(db.Collection(database.CollectionFollows))
	notificationRepo := repository.NewNotificationRepository(db.Collection(database.CollectionNotifications))
	hashtagRepo := repository.NewHashtagRepository(db.Collection(database.CollectionHashtags))
	draftRepo := repository.NewDraftRepository(db.Collection(database.CollectionDrafts))

	notifications := service.NewNotificationService(notificationRepo, nil)
	interactions := service.NewInteractionService(likeRepo, retweetRepo, bookmarkRepo)

	return &Seeder{
		db:      db,
		factory: NewFactory(time.Now().UnixNano()),
		users:   service.NewUserService(userRepo),
		tweets: service.NewTweetService(
			tweetRepo, userRepo, hashtagRepo,
			likeRepo, retweetRepo, bookmarkRepo,
			notifications, interactions, idGen, nil),
		engagements: service.NewEngagementService(
			likeRepo, retweetRepo, bookmarkRepo,
			tweetRepo, userRepo, notifications, nil),
		follows: service.NewFollowService(followRepo, userRepo, notifications, nil),
		drafts:  service.NewDraftService(draftRepo),
	}, nil
}

// ClearAll drops every application collection.
func (s *Seeder) ClearAll(ctx context.Context) error {
	collections := []string{
		database.CollectionUsers, database.CollectionTweets,
		database.CollectionLikes, database.CollectionRetweets,
		database.CollectionBookmarks, database.CollectionFollows,
		database.CollectionNotifications, database.CollectionHashtags,
		database.CollectionDrafts,
	}
	for _, name := range collections {
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	log.Println("Cleared all collections")
	return nil
}

// Run seeds users, a follow mesh, tweets of every type, engagements, and a
// few drafts. Counter fields end up correct because every write goes through
// the same services the API uses.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 25
	}
	if opts.NumTweets <= 0 {
		opts.NumTweets = 150
	}

	usernames, err := s.seedUsers(ctx, opts.NumUsers)
	if err != nil {
		return err
	}
	if err := s.seedFollowMesh(ctx, usernames); err != nil {
		return err
	}
	tweetIDs, err := s.seedTweets(ctx, usernames, opts.NumTweets)
	if err != nil {
		return err
	}
	if err := s.seedEngagements(ctx, usernames, tweetIDs); err != nil {
		return err
	}
	if err := s.seedDrafts(ctx, usernames); err != nil {
		return err
	}

	log.Printf("Seeded %d users, %d tweets", len(usernames), len(tweetIDs))
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, n int) ([]string, error) {
	usernames := make([]string, 0, n)
	for i := 0; i < n; i++ {
		handle := s.factory.Username()
		_, err := s.users.Create(ctx, service.CreateUserInput{
			Username:    handle,
			DisplayName: s.factory.DisplayName(),
			Avatar:      s.factory.AvatarURL(handle),
			Bio:         s.factory.Bio(),
		})
		if err != nil {
			// random handles can collide; skip and move on
			continue
		}
		usernames = append(usernames, handle)
	}
	if len(usernames) == 0 {
		return nil, fmt.Errorf("no users could be created")
	}
	log.Printf("Created %d users", len(usernames))
	return usernames, nil
}

func (s *Seeder) seedFollowMesh(ctx context.Context, usernames []string) error {
	for _, follower := range usernames {
		for _, following := range usernames {
			if follower == following || !s.factory.Chance(20) {
				continue
			}
			if _, err := s.follows.Toggle(ctx, service.ToggleFollowInput{
				Follower:  follower,
				Following: following,
			}); err != nil {
				return fmt.Errorf("follow %s -> %s: %w", follower, following, err)
			}
		}
	}
	return nil
}

func (s *Seeder) seedTweets(ctx context.Context, usernames []string, n int) ([]string, error) {
	tweetIDs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		in := service.CreateTweetInput{
			Username: s.factory.Pick(usernames),
			Content:  s.factory.TweetContent(usernames),
			Media:    s.factory.Media(),
		}

		// a share of replies and quotes once there is something to reference
		if len(tweetIDs) > 0 {
			switch {
			case s.factory.Chance(20):
				in.Type = models.TweetTypeReply
				in.TweetRef = s.factory.Pick(tweetIDs)
			case s.factory.Chance(10):
				in.Type = models.TweetTypeQuote
				in.TweetRef = s.factory.Pick(tweetIDs)
			}
		}

		tweet, err := s.tweets.Create(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("create tweet: %w", err)
		}
		tweetIDs = append(tweetIDs, tweet.TweetID)
	}
	return tweetIDs, nil
}

func (s *Seeder) seedEngagements(ctx context.Context, usernames, tweetIDs []string) error {
	kinds := []string{service.EngagementLike, service.EngagementRetweet, service.EngagementBookmark}
	weights := map[string]int{
		service.EngagementLike:     25,
		service.EngagementRetweet:  8,
		service.EngagementBookmark: 5,
	}
	for _, username := range usernames {
		for _, tweetID := range tweetIDs {
			for _, kind := range kinds {
				if !s.factory.Chance(weights[kind]) {
					continue
				}
				if _, err := s.engagements.Toggle(ctx, service.ToggleEngagementInput{
					Kind:     kind,
					Username: username,
					TweetID:  tweetID,
				}); err != nil {
					return fmt.Errorf("%s %s on %s: %w", kind, username, tweetID, err)
				}
			}
		}
	}
	return nil
}

func (s *Seeder) seedDrafts(ctx context.Context, usernames []string) error {
	for _, username := range usernames {
		if !s.factory.Chance(30) {
			continue
		}
		if _, err := s.drafts.Create(ctx, service.CreateDraftInput{
			Username: username,
			Content:  s.factory.TweetContent(nil),
		}); err != nil {
			return fmt.Errorf("draft for %s: %w", username, err)
		}
	}
	return nil
}
