package seed

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{1,30}$`)

func TestFactoryUsernamesMatchRegistrationRules(t *testing.T) {
	f := NewFactory(1)
	for i := 0; i < 100; i++ {
		handle := f.Username()
		assert.Regexp(t, handlePattern, handle)
	}
}

func TestFactoryTweetContentFitsLimit(t *testing.T) {
	f := NewFactory(1)
	for i := 0; i < 100; i++ {
		content := f.TweetContent([]string{"alice", "bob"})
		require.NotEmpty(t, content)
		assert.LessOrEqual(t, len(content), 2000)
	}
}

func TestFactoryJitterStaysInRange(t *testing.T) {
	f := NewFactory(1)
	max := 48 * time.Hour
	for i := 0; i < 100; i++ {
		d := f.Jitter(max)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, max)
	}
}
