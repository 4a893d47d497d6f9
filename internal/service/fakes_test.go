package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"chirp/internal/models"
	"chirp/internal/publicid"
	"chirp/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory fakes for the repository interfaces. They reproduce the
// documented contracts (unique index semantics, sort orders, ErrNoDocuments)
// so service behavior can be exercised without a running database.

// memUsers implements repository.UserRepository.
type memUsers struct {
	byName map[string]*models.User
}

func newMemUsers(usernames ...string) *memUsers {
	m := &memUsers{byName: make(map[string]*models.User)}
	for _, name := range usernames {
		m.byName[name] = &models.User{
			ID:          primitive.NewObjectID(),
			Username:    name,
			DisplayName: name + " display",
			Followers:   []string{},
			Following:   []string{},
			CreatedAt:   time.Now().UTC(),
		}
	}
	return m
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	if _, ok := m.byName[user.Username]; ok {
		return models.NewConflictError("Username already taken")
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.byName[user.Username] = user
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := m.byName[username]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (m *memUsers) IncTweetCount(_ context.Context, username string, delta int) error {
	if user, ok := m.byName[username]; ok {
		user.Stats.Tweets += delta
	}
	return nil
}

func (m *memUsers) ApplyFollow(_ context.Context, follower, following string) error {
	if u, ok := m.byName[follower]; ok {
		u.Following = append(u.Following, following)
		u.Stats.Following++
	}
	if u, ok := m.byName[following]; ok {
		u.Followers = append(u.Followers, follower)
		u.Stats.Followers++
	}
	return nil
}

func (m *memUsers) ApplyUnfollow(_ context.Context, follower, following string) error {
	if u, ok := m.byName[follower]; ok {
		u.Following = remove(u.Following, following)
		u.Stats.Following--
	}
	if u, ok := m.byName[following]; ok {
		u.Followers = remove(u.Followers, follower)
		u.Stats.Followers--
	}
	return nil
}

func (m *memUsers) SetStats(_ context.Context, username string, stats models.UserStats) error {
	if user, ok := m.byName[username]; ok {
		user.Stats = stats
	}
	return nil
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// memTweets implements repository.TweetRepository.
type memTweets struct {
	docs []*models.Tweet
}

func newMemTweets() *memTweets { return &memTweets{} }

func (m *memTweets) Insert(_ context.Context, tweet *models.Tweet) error {
	m.docs = append(m.docs, tweet)
	return nil
}

func (m *memTweets) GetByPublicID(_ context.Context, tweetID string) (*models.Tweet, error) {
	for _, t := range m.docs {
		if t.TweetID == tweetID {
			return t, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memTweets) Delete(_ context.Context, tweetID string) error {
	for i, t := range m.docs {
		if t.TweetID == tweetID {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *memTweets) List(_ context.Context, q repository.TweetQuery) ([]*models.Tweet, error) {
	var out []*models.Tweet
	for _, t := range m.docs {
		if len(q.Types) > 0 && !contains(q.Types, t.Type) {
			continue
		}
		if q.Author != "" && t.Author.Username != q.Author {
			continue
		}
		if len(q.Authors) > 0 && !contains(q.Authors, t.Author.Username) {
			continue
		}
		if contains(q.ExcludeIDs, t.TweetID) {
			continue
		}
		if q.MediaOnly && len(t.Media) == 0 {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memTweets) ListByPublicIDs(_ context.Context, tweetIDs []string) ([]*models.Tweet, error) {
	var out []*models.Tweet
	for _, t := range m.docs {
		if contains(tweetIDs, t.TweetID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTweets) ListReplies(_ context.Context, parentID string) ([]*models.Tweet, error) {
	var out []*models.Tweet
	for _, t := range m.docs {
		if t.ParentID == parentID && t.Type == models.TweetTypeReply {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memTweets) IncStat(_ context.Context, tweetID, field string, delta int) error {
	for _, t := range m.docs {
		if t.TweetID != tweetID {
			continue
		}
		switch field {
		case "stats.likes":
			t.Stats.Likes += delta
		case "stats.retweets":
			t.Stats.Retweets += delta
		case "stats.replies":
			t.Stats.Replies += delta
		case "stats.quotes":
			t.Stats.Quotes += delta
		}
		return nil
	}
	return mongo.ErrNoDocuments
}

func (m *memTweets) SetStats(_ context.Context, tweetID string, stats models.TweetStats) error {
	for _, t := range m.docs {
		if t.TweetID == tweetID {
			t.Stats = stats
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *memTweets) CountByParentAndType(_ context.Context, parentID, tweetType string) (int64, error) {
	var n int64
	for _, t := range m.docs {
		if t.ParentID == parentID && t.Type == tweetType {
			n++
		}
	}
	return n, nil
}

func (m *memTweets) CountByAuthor(_ context.Context, username string) (int64, error) {
	var n int64
	for _, t := range m.docs {
		if t.Author.Username == username {
			n++
		}
	}
	return n, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// memEdges implements repository.EngagementRepository with unique
// (username, tweet_id) semantics.
type memEdges struct {
	edges []*models.Edge
}

func newMemEdges() *memEdges { return &memEdges{} }

func (m *memEdges) find(username, tweetID string) int {
	for i, e := range m.edges {
		if e.Username == username && e.TweetID == tweetID {
			return i
		}
	}
	return -1
}

func (m *memEdges) Exists(_ context.Context, username, tweetID string) (bool, error) {
	return m.find(username, tweetID) >= 0, nil
}

func (m *memEdges) FilterEngaged(_ context.Context, username string, tweetIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, id := range tweetIDs {
		if m.find(username, id) >= 0 {
			out[id] = true
		}
	}
	return out, nil
}

func (m *memEdges) Insert(_ context.Context, username, tweetID string, at time.Time) (bool, error) {
	if m.find(username, tweetID) >= 0 {
		return false, nil
	}
	m.edges = append(m.edges, &models.Edge{
		ID:        primitive.NewObjectID(),
		Username:  username,
		TweetID:   tweetID,
		CreatedAt: at,
	})
	return true, nil
}

func (m *memEdges) Delete(_ context.Context, username, tweetID string) (bool, error) {
	i := m.find(username, tweetID)
	if i < 0 {
		return false, nil
	}
	m.edges = append(m.edges[:i], m.edges[i+1:]...)
	return true, nil
}

func (m *memEdges) DeleteByTweet(_ context.Context, tweetID string) error {
	out := m.edges[:0]
	for _, e := range m.edges {
		if e.TweetID != tweetID {
			out = append(out, e)
		}
	}
	m.edges = out
	return nil
}

func (m *memEdges) ListByActors(_ context.Context, usernames []string, limit, offset int) ([]*models.Edge, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	var out []*models.Edge
	for _, e := range m.edges {
		if contains(usernames, e.Username) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memEdges) CountByTweet(_ context.Context, tweetID string) (int64, error) {
	var n int64
	for _, e := range m.edges {
		if e.TweetID == tweetID {
			n++
		}
	}
	return n, nil
}

// memFollows implements repository.FollowRepository.
type memFollows struct {
	follows []*models.Follow
}

func newMemFollows() *memFollows { return &memFollows{} }

func (m *memFollows) find(follower, following string) int {
	for i, f := range m.follows {
		if f.Follower == follower && f.Following == following {
			return i
		}
	}
	return -1
}

func (m *memFollows) Exists(_ context.Context, follower, following string) (bool, error) {
	return m.find(follower, following) >= 0, nil
}

func (m *memFollows) Insert(_ context.Context, follower, following string, at time.Time) (bool, error) {
	if m.find(follower, following) >= 0 {
		return false, nil
	}
	m.follows = append(m.follows, &models.Follow{
		ID:        primitive.NewObjectID(),
		Follower:  follower,
		Following: following,
		CreatedAt: at,
	})
	return true, nil
}

func (m *memFollows) Delete(_ context.Context, follower, following string) (bool, error) {
	i := m.find(follower, following)
	if i < 0 {
		return false, nil
	}
	m.follows = append(m.follows[:i], m.follows[i+1:]...)
	return true, nil
}

func (m *memFollows) ListFollowing(_ context.Context, follower string) ([]string, error) {
	var out []string
	for _, f := range m.follows {
		if f.Follower == follower {
			out = append(out, f.Following)
		}
	}
	return out, nil
}

func (m *memFollows) CountFollowers(_ context.Context, username string) (int64, error) {
	var n int64
	for _, f := range m.follows {
		if f.Following == username {
			n++
		}
	}
	return n, nil
}

func (m *memFollows) CountFollowing(_ context.Context, username string) (int64, error) {
	var n int64
	for _, f := range m.follows {
		if f.Follower == username {
			n++
		}
	}
	return n, nil
}

// memNotifications implements repository.NotificationRepository keyed on the
// dedupe key, like the unique index does.
type memNotifications struct {
	docs []*models.Notification
}

func newMemNotifications() *memNotifications { return &memNotifications{} }

func (m *memNotifications) Upsert(_ context.Context, n *models.Notification) (bool, error) {
	for _, existing := range m.docs {
		if existing.DedupeKey == n.DedupeKey {
			existing.Read = false
			existing.UpdatedAt = n.UpdatedAt
			return false, nil
		}
	}
	doc := *n
	doc.ID = primitive.NewObjectID()
	m.docs = append(m.docs, &doc)
	return true, nil
}

func (m *memNotifications) ListByRecipient(_ context.Context, recipient string, limit, offset int) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range m.docs {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memNotifications) MarkRead(_ context.Context, recipient, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return models.NewValidationError("Invalid notification id")
	}
	for _, n := range m.docs {
		if n.Recipient == recipient && n.ID.Hex() == id {
			n.Read = true
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *memNotifications) MarkAllRead(_ context.Context, recipient string) error {
	for _, n := range m.docs {
		if n.Recipient == recipient {
			n.Read = true
		}
	}
	return nil
}

func (m *memNotifications) DeleteByTweet(_ context.Context, tweetID string) error {
	out := m.docs[:0]
	for _, n := range m.docs {
		if n.TweetID != tweetID {
			out = append(out, n)
		}
	}
	m.docs = out
	return nil
}

func (m *memNotifications) CountUnread(_ context.Context, recipient string) (int64, error) {
	var n int64
	for _, doc := range m.docs {
		if doc.Recipient == recipient && !doc.Read {
			n++
		}
	}
	return n, nil
}

// memHashtags implements repository.HashtagRepository.
type memHashtags struct {
	byTag map[string]*models.Hashtag
}

func newMemHashtags() *memHashtags {
	return &memHashtags{byTag: make(map[string]*models.Hashtag)}
}

func (m *memHashtags) UpsertUsage(_ context.Context, tags []string, at time.Time) error {
	for _, tag := range tags {
		h, ok := m.byTag[tag]
		if !ok {
			h = &models.Hashtag{ID: primitive.NewObjectID(), Tag: tag}
			m.byTag[tag] = h
		}
		h.UsageCount++
		h.LastUsedAt = at
	}
	return nil
}

func (m *memHashtags) sorted() []*models.Hashtag {
	out := make([]*models.Hashtag, 0, len(m.byTag))
	for _, h := range m.byTag {
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func (m *memHashtags) Trending(_ context.Context, limit int) ([]*models.Hashtag, error) {
	out := m.sorted()
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memHashtags) Search(_ context.Context, prefix string, limit int) ([]*models.Hashtag, error) {
	var out []*models.Hashtag
	for _, h := range m.sorted() {
		if strings.HasPrefix(h.Tag, strings.ToLower(prefix)) {
			out = append(out, h)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memDrafts implements repository.DraftRepository.
type memDrafts struct {
	docs []*models.Draft
}

func newMemDrafts() *memDrafts { return &memDrafts{} }

func (m *memDrafts) Create(_ context.Context, draft *models.Draft) error {
	if draft.ID.IsZero() {
		draft.ID = primitive.NewObjectID()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}
	m.docs = append(m.docs, draft)
	return nil
}

func (m *memDrafts) ListByUsername(_ context.Context, username string) ([]*models.Draft, error) {
	var out []*models.Draft
	for _, d := range m.docs {
		if d.Username == username {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memDrafts) Delete(_ context.Context, username, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return models.NewValidationError("Invalid draft id")
	}
	for i, d := range m.docs {
		if d.Username == username && d.ID.Hex() == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

// testEnv wires every service over shared in-memory fakes so tests observe
// the same cross-service effects production wiring produces.
type testEnv struct {
	users         *memUsers
	tweets        *memTweets
	likes         *memEdges
	retweets      *memEdges
	bookmarks     *memEdges
	follows       *memFollows
	notifications *memNotifications
	hashtags      *memHashtags

	notificationSvc *NotificationService
	interactionSvc  *InteractionService
	tweetSvc        *TweetService
	timelineSvc     *TimelineService
	engagementSvc   *EngagementService
	followSvc       *FollowService
	reconcileSvc    *ReconcileService
}

func newTestEnv(t *testing.T, usernames ...string) *testEnv {
	t.Helper()
	env := &testEnv{
		users:         newMemUsers(usernames...),
		tweets:        newMemTweets(),
		likes:         newMemEdges(),
		retweets:      newMemEdges(),
		bookmarks:     newMemEdges(),
		follows:       newMemFollows(),
		notifications: newMemNotifications(),
		hashtags:      newMemHashtags(),
	}
	env.notificationSvc = NewNotificationService(env.notifications, nil)
	env.interactionSvc = NewInteractionService(env.likes, env.retweets, env.bookmarks)
	env.tweetSvc = NewTweetService(
		env.tweets, env.users, env.hashtags,
		env.likes, env.retweets, env.bookmarks,
		env.notificationSvc, env.interactionSvc, testGenerator(t), nil)
	env.timelineSvc = NewTimelineService(
		env.tweets, env.retweets, env.likes,
		env.follows, env.users, env.interactionSvc, false)
	env.engagementSvc = NewEngagementService(
		env.likes, env.retweets, env.bookmarks,
		env.tweets, env.users, env.notificationSvc, nil)
	env.followSvc = NewFollowService(env.follows, env.users, env.notificationSvc, nil)
	env.reconcileSvc = NewReconcileService(
		env.tweets, env.users, env.likes, env.retweets, env.follows)
	return env
}

// mustTweet creates a tweet through the service and fails the test on error.
func (env *testEnv) mustTweet(t *testing.T, in CreateTweetInput) *models.Tweet {
	t.Helper()
	tweet, err := env.tweetSvc.Create(context.Background(), in)
	require.NoError(t, err)
	return tweet
}

// testGenerator returns a public ID generator with a fixed test key.
func testGenerator(t *testing.T) *publicid.Generator {
	t.Helper()
	gen, err := publicid.NewGenerator("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	return gen
}

// assertErrorCode asserts that err is an AppError carrying the given code.
func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertErrorCode(t, err, "VALIDATION_ERROR")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertErrorCode(t, err, "NOT_FOUND")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertErrorCode(t, err, "FORBIDDEN")
}
