// Package textscan extracts hashtags and mentions from tweet text.
// All functions are pure and idempotent.
package textscan

import (
	"regexp"
	"strings"
)

var (
	hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	mentionPattern = regexp.MustCompile(`@([\p{L}\p{N}_]+)`)
)

// Hashtags returns the hashtags in text, lowercased, with the leading '#'
// stripped. Order of first occurrence is preserved and duplicates removed.
func Hashtags(text string) []string {
	return extract(hashtagPattern, text)
}

// Mentions returns the mentioned handles in text, lowercased, with the
// leading '@' stripped. Order of first occurrence is preserved and
// duplicates removed.
func Mentions(text string) []string {
	return extract(mentionPattern, text)
}

func extract(pattern *regexp.Regexp, text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		token := strings.ToLower(m[1])
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
