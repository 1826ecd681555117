// Package moderation provides per-message content filtering for the chat room.
// It screens accepted-length messages for links and mentions, and tracks each
// user's previous message to reject immediate duplicates.
package moderation

import "regexp"

// Rejection reasons reported by the filter. The chat layer maps these to
// typed user-facing errors.
const (
	ReasonLink      = "link"
	ReasonMention   = "mention"
	ReasonDuplicate = "duplicate"
)

// Compiled once at package init and reused for every call, so the patterns
// are safe for concurrent use.
var (
	// urlPattern matches http/https URLs, www.-prefixed hosts, and bare
	// domain-like tokens ending in a common TLD.
	urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|\b[a-z0-9-]+(\.[a-z0-9-]+)*\.(com|net|org|io|co|xyz|info|biz|ru|me|tv|app|dev)(/\S*)?\b)`)

	// mentionPattern matches an @token anywhere in the text.
	mentionPattern = regexp.MustCompile(`@[A-Za-z0-9_]+`)
)

// Result describes the outcome of a content check.
// A zero Result means the text passed every filter.
type Result struct {
	Blocked bool
	Reason  string
}

// contentCheck pairs a rejection reason with its detector.
type contentCheck struct {
	reason string
	match  func(string) bool
}

// contentChecks is the ordered filter list; the first match wins.
var contentChecks = []contentCheck{
	{reason: ReasonLink, match: urlPattern.MatchString},
	{reason: ReasonMention, match: mentionPattern.MatchString},
}

// CheckText runs the stateless content filters against text.
func CheckText(text string) Result {
	for _, c := range contentChecks {
		if c.match(text) {
			return Result{Blocked: true, Reason: c.reason}
		}
	}
	return Result{}
}
