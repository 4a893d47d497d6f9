package service

import (
	"context"
	"errors"
	"sort"

	"chirp/internal/models"
	"chirp/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// Timeline modes.
const (
	ModeAll       = "all"
	ModeFollowing = "following"
	ModeUser      = "user"
)

const defaultTimelineLimit = 20

// TimelineService assembles feeds: base tweets from the tweets collection
// merged with retweet edges spliced in as synthetic entries, sorted by
// recency, paginated, and annotated with the viewer's interaction flags.
type TimelineService struct {
	tweets       repository.TweetRepository
	retweetEdges repository.EngagementRepository
	likeEdges    repository.EngagementRepository
	follows      repository.FollowRepository
	users        repository.UserRepository
	interactions *InteractionService

	// includeReplies widens the all/following base set to reply tweets.
	includeReplies bool
}

type AssembleInput struct {
	Mode   string
	Viewer string
	// Target is the profile owner for ModeUser.
	Target         string
	IncludeReplies bool
	MediaOnly      bool
	LikedOnly      bool
	Limit          int
	Offset         int
}

func NewTimelineService(
	tweets repository.TweetRepository,
	retweetEdges, likeEdges repository.EngagementRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
	interactions *InteractionService,
	includeReplies bool,
) *TimelineService {
	return &TimelineService{
		tweets:         tweets,
		retweetEdges:   retweetEdges,
		likeEdges:      likeEdges,
		follows:        follows,
		users:          users,
		interactions:   interactions,
		includeReplies: includeReplies,
	}
}

// Assemble returns one page of the requested feed and whether more entries
// likely exist. hasMore is the page-full approximation, not an exact count.
func (s *TimelineService) Assemble(ctx context.Context, in AssembleInput) ([]*models.FeedItem, bool, error) {
	if in.Limit <= 0 {
		in.Limit = defaultTimelineLimit
	}
	if in.Mode == "" {
		in.Mode = ModeAll
	}

	if in.Mode == ModeUser {
		if in.Target == "" {
			return nil, false, models.NewValidationError("Username is required")
		}
		if _, err := s.users.GetByUsername(ctx, in.Target); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, false, models.NewNotFoundError("User", in.Target)
			}
			return nil, false, err
		}
		if in.LikedOnly {
			return s.assembleLiked(ctx, in)
		}
	}

	// Both sources are fetched up to offset+limit so the merged order is
	// stable across pages.
	window := in.Offset + in.Limit

	query := repository.TweetQuery{Limit: window, MediaOnly: in.MediaOnly}
	var spliceActors []string

	switch in.Mode {
	case ModeAll:
		query.Types = s.baseTypes()
		if in.Viewer != "" {
			spliceActors = []string{in.Viewer}
		}
	case ModeFollowing:
		if in.Viewer == "" {
			return nil, false, models.NewValidationError("currentUser is required for the following feed")
		}
		followed, err := s.follows.ListFollowing(ctx, in.Viewer)
		if err != nil {
			return nil, false, err
		}
		query.Types = s.baseTypes()
		query.Authors = append(followed, in.Viewer)
		spliceActors = query.Authors
	case ModeUser:
		query.Author = in.Target
		if !in.IncludeReplies {
			query.Types = []string{models.TweetTypeOriginal}
		}
		spliceActors = []string{in.Target}
	default:
		return nil, false, models.NewValidationError("Invalid timeline mode")
	}

	edges, err := s.retweetEdges.ListByActors(ctx, spliceActors, window, 0)
	if err != nil {
		return nil, false, err
	}
	// Tweets appearing as spliced retweets are excluded from the base set so
	// each one shows up exactly once. The window covers the exclusion: an
	// edge past it has at least window newer edges, and their spliced entries
	// all sort above the tweet's own entry (edges postdate the tweets they
	// point at), keeping the base copy out of the served page.
	retweetedIDs := make([]string, 0, len(edges))
	seen := make(map[string]bool, len(edges))
	for _, e := range edges {
		if !seen[e.TweetID] {
			seen[e.TweetID] = true
			retweetedIDs = append(retweetedIDs, e.TweetID)
		}
	}
	query.ExcludeIDs = retweetedIDs

	base, err := s.tweets.List(ctx, query)
	if err != nil {
		return nil, false, err
	}

	spliced, err := s.spliceItems(ctx, edges)
	if err != nil {
		return nil, false, err
	}

	items := make([]*models.FeedItem, 0, len(base)+len(spliced))
	for _, t := range base {
		items = append(items, &models.FeedItem{Tweet: t})
	}
	items = append(items, spliced...)
	sortFeed(items)

	page := paginate(items, in.Offset, in.Limit)
	if err := s.annotate(ctx, in.Viewer, page); err != nil {
		return nil, false, err
	}
	return page, len(page) == in.Limit, nil
}

func (s *TimelineService) baseTypes() []string {
	types := []string{models.TweetTypeOriginal, models.TweetTypeQuote}
	if s.includeReplies {
		types = append(types, models.TweetTypeReply)
	}
	return types
}

// assembleLiked serves the profile likes tab: the source pivots from
// authored tweets to the viewer's like edges, and isLiked is forced true on
// every entry. An anonymous viewer sees the profile owner's likes.
func (s *TimelineService) assembleLiked(ctx context.Context, in AssembleInput) ([]*models.FeedItem, bool, error) {
	actor := in.Viewer
	if actor == "" {
		actor = in.Target
	}

	edges, err := s.likeEdges.ListByActors(ctx, []string{actor}, in.Offset+in.Limit, 0)
	if err != nil {
		return nil, false, err
	}

	docs, err := s.tweetsByID(ctx, edges)
	if err != nil {
		return nil, false, err
	}
	items := make([]*models.FeedItem, 0, len(edges))
	for _, e := range edges {
		t, ok := docs[e.TweetID]
		if !ok {
			continue
		}
		items = append(items, &models.FeedItem{Tweet: t})
	}

	page := paginate(items, in.Offset, in.Limit)
	if err := s.annotate(ctx, in.Viewer, page); err != nil {
		return nil, false, err
	}
	for _, item := range page {
		item.IsLiked = true
	}
	return page, len(page) == in.Limit, nil
}

// spliceItems turns retweet edges into synthetic feed entries carrying the
// retweeting account and the edge timestamp. Edges pointing at deleted
// tweets are dropped.
func (s *TimelineService) spliceItems(ctx context.Context, edges []*models.Edge) ([]*models.FeedItem, error) {
	if len(edges) == 0 {
		return nil, nil
	}

	docs, err := s.tweetsByID(ctx, edges)
	if err != nil {
		return nil, err
	}

	snapshots := make(map[string]models.AuthorSnapshot)
	items := make([]*models.FeedItem, 0, len(edges))
	for _, e := range edges {
		t, ok := docs[e.TweetID]
		if !ok {
			continue
		}
		snap, ok := snapshots[e.Username]
		if !ok {
			user, err := s.users.GetByUsername(ctx, e.Username)
			if err != nil {
				if !errors.Is(err, mongo.ErrNoDocuments) {
					return nil, err
				}
				snap = models.AuthorSnapshot{Username: e.Username}
			} else {
				snap = user.Snapshot()
			}
			snapshots[e.Username] = snap
		}
		retweetedBy := snap
		retweetedAt := e.CreatedAt
		items = append(items, &models.FeedItem{
			Tweet:       t,
			RetweetedBy: &retweetedBy,
			RetweetedAt: &retweetedAt,
		})
	}
	return items, nil
}

func (s *TimelineService) tweetsByID(ctx context.Context, edges []*models.Edge) (map[string]*models.Tweet, error) {
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.TweetID)
	}
	tweets, err := s.tweets.ListByPublicIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Tweet, len(tweets))
	for _, t := range tweets {
		byID[t.TweetID] = t
	}
	return byID, nil
}

func (s *TimelineService) annotate(ctx context.Context, viewer string, items []*models.FeedItem) error {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.TweetID)
	}
	flags, err := s.interactions.Resolve(ctx, viewer, ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		item.InteractionFlags = flags[item.TweetID]
	}
	return nil
}

// sortFeed orders items newest first by their sort time. Equal timestamps
// break on storage ID descending so the order is deterministic.
func sortFeed(items []*models.FeedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].SortTime(), items[j].SortTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return items[i].ID.Hex() > items[j].ID.Hex()
	})
}

func paginate(items []*models.FeedItem, offset, limit int) []*models.FeedItem {
	if offset >= len(items) {
		return []*models.FeedItem{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
