package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		blocked bool
		reason  string
	}{
		{name: "plain text passes", text: "hello everyone", blocked: false},
		{name: "http url", text: "check http://example.com", blocked: true, reason: ReasonLink},
		{name: "https url", text: "see https://evil.example/path?q=1", blocked: true, reason: ReasonLink},
		{name: "www prefix", text: "go to www.spam.site now", blocked: true, reason: ReasonLink},
		{name: "bare domain", text: "visit example.com today", blocked: true, reason: ReasonLink},
		{name: "bare domain with path", text: "files at cdn.host.io/dl", blocked: true, reason: ReasonLink},
		{name: "uppercase scheme", text: "HTTP://LOUD.EXAMPLE", blocked: true, reason: ReasonLink},
		{name: "mention", text: "hey @bob look at this", blocked: true, reason: ReasonMention},
		{name: "mention at start", text: "@alice hi", blocked: true, reason: ReasonMention},
		{name: "lone at sign passes", text: "meet @ noon", blocked: false},
		{name: "link wins over mention", text: "@bob see http://example.com", blocked: true, reason: ReasonLink},
		{name: "dotted words without tld pass", text: "v1.2.3 released", blocked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CheckText(tt.text)

			assert.Equal(t, tt.blocked, res.Blocked)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestDuplicateGuard(t *testing.T) {
	g := NewDuplicateGuard()

	assert.False(t, g.IsDuplicate("u1", "hello"), "empty guard flags nothing")

	g.Remember("u1", "hello")
	assert.True(t, g.IsDuplicate("u1", "hello"))
	assert.False(t, g.IsDuplicate("u1", "hello there"), "different text is not a duplicate")
	assert.False(t, g.IsDuplicate("u2", "hello"), "lookback is per user")

	g.Remember("u1", "something else")
	assert.False(t, g.IsDuplicate("u1", "hello"), "lookback is one message deep")
	assert.True(t, g.IsDuplicate("u1", "something else"))

	g.Forget("u1")
	assert.False(t, g.IsDuplicate("u1", "something else"), "forget clears the lookback")
}
