package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testMessage(id, userID string, ts int64) Message {
	return Message{
		ID:        id,
		UserID:    userID,
		Nickname:  "nick_" + userID,
		Text:      "text " + id,
		Timestamp: ts,
	}
}

func TestMessageLogRecent(t *testing.T) {
	l := NewMessageLog()

	got := l.Recent(0)
	assert.NotNil(t, got, "empty log still yields a non-nil slice")
	assert.Empty(t, got)

	l.Append(testMessage("m1", "u1", 100))
	l.Append(testMessage("m2", "u1", 200))
	l.Append(testMessage("m3", "u2", 300))

	got = l.Recent(150)
	assert.Len(t, got, 2)
	assert.Equal(t, "m2", got[0].ID)
	assert.Equal(t, "m3", got[1].ID)

	// Cutoff is exclusive.
	got = l.Recent(300)
	assert.Empty(t, got)
}

func TestMessageLogEvictOlderThan(t *testing.T) {
	l := NewMessageLog()
	for i := 1; i <= 5; i++ {
		l.Append(testMessage(fmt.Sprintf("m%d", i), "u1", int64(i*100)))
	}

	assert.Equal(t, 0, l.EvictOlderThan(100), "cutoff before the head evicts nothing")

	removed := l.EvictOlderThan(301)
	assert.Equal(t, 3, removed)
	assert.Equal(t, 2, l.Len())

	got := l.Recent(0)
	assert.Equal(t, "m4", got[0].ID)
	assert.Equal(t, "m5", got[1].ID)

	assert.Equal(t, 2, l.EvictOlderThan(10_000))
	assert.Equal(t, 0, l.Len())
}

func TestMessageLogRemoveByUser(t *testing.T) {
	l := NewMessageLog()
	l.Append(testMessage("m1", "troll", 100))
	l.Append(testMessage("m2", "alice", 200))
	l.Append(testMessage("m3", "troll", 300))
	l.Append(testMessage("m4", "bob", 400))

	removed := l.RemoveByUser("troll")
	assert.Equal(t, []string{"m1", "m3"}, removed)
	assert.Equal(t, 2, l.Len())

	got := l.Recent(0)
	assert.Equal(t, "m2", got[0].ID)
	assert.Equal(t, "m4", got[1].ID)

	assert.Empty(t, l.RemoveByUser("troll"), "second removal finds nothing")
	assert.Empty(t, l.RemoveByUser("nobody"))
}

func TestMessageLogTail(t *testing.T) {
	l := NewMessageLog()
	for i := 1; i <= 4; i++ {
		l.Append(testMessage(fmt.Sprintf("m%d", i), "u1", int64(i*100)))
	}

	tail := l.Tail(2)
	assert.Len(t, tail, 2)
	assert.Equal(t, "m3", tail[0].ID)
	assert.Equal(t, "m4", tail[1].ID)

	assert.Len(t, l.Tail(0), 4, "non-positive n returns everything")
	assert.Len(t, l.Tail(10), 4, "n beyond the length returns everything")
}
