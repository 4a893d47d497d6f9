// Package seed creates demo data for development environments. Everything
// goes through the service layer so denormalized counters and notifications
// come out consistent with real traffic.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var topics = []string{
	"golang", "mongodb", "coffee", "running", "synthwave", "homelab",
	"gamedev", "photography", "sourdough", "cycling", "observability",
	"opensource", "keyboards", "hiking", "espresso",
}

// Factory produces randomized but plausible content for the seeder.
type Factory struct {
	rng *rand.Rand
}

func NewFactory(seed int64) *Factory {
	gofakeit.Seed(seed)
	return &Factory{rng: rand.New(rand.NewSource(seed))}
}

// Username returns a lowercase handle matching the registration rules.
func (f *Factory) Username() string {
	base := strings.ToLower(gofakeit.Username())
	cleaned := make([]rune, 0, len(base))
	for _, r := range base {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			cleaned = append(cleaned, r)
		}
	}
	handle := string(cleaned)
	if handle == "" {
		handle = "user"
	}
	if len(handle) > 24 {
		handle = handle[:24]
	}
	// numeric suffix keeps collisions rare across a run
	return fmt.Sprintf("%s%d", handle, f.rng.Intn(10000))
}

func (f *Factory) DisplayName() string {
	return gofakeit.Name()
}

func (f *Factory) Bio() string {
	return gofakeit.Sentence(8)
}

func (f *Factory) AvatarURL(username string) string {
	return fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username)
}

// TweetContent builds a short post, sometimes decorated with hashtags and
// mentions so the extraction pipeline has something to chew on.
func (f *Factory) TweetContent(mentionPool []string) string {
	var b strings.Builder
	b.WriteString(gofakeit.Sentence(4 + f.rng.Intn(10)))

	if f.rng.Intn(100) < 60 {
		b.WriteString(" #")
		b.WriteString(topics[f.rng.Intn(len(topics))])
	}
	if f.rng.Intn(100) < 25 {
		b.WriteString(" #")
		b.WriteString(topics[f.rng.Intn(len(topics))])
	}
	if len(mentionPool) > 0 && f.rng.Intn(100) < 20 {
		b.WriteString(" @")
		b.WriteString(mentionPool[f.rng.Intn(len(mentionPool))])
	}
	return b.String()
}

// Media returns zero or more fake upload URLs.
func (f *Factory) Media() []string {
	if f.rng.Intn(100) >= 20 {
		return nil
	}
	n := 1 + f.rng.Intn(2)
	media := make([]string, n)
	for i := range media {
		media[i] = fmt.Sprintf("https://cdn.chirp.dev/media/%s.jpg", uuid.NewString())
	}
	return media
}

// Jitter returns a random duration up to max, used to spread created_at
// timestamps backwards in time.
func (f *Factory) Jitter(max time.Duration) time.Duration {
	return time.Duration(f.rng.Int63n(int64(max)))
}

// Pick returns a random element of items.
func (f *Factory) Pick(items []string) string {
	return items[f.rng.Intn(len(items))]
}

// Chance reports true pct percent of the time.
func (f *Factory) Chance(pct int) bool {
	return f.rng.Intn(100) < pct
}
