/*
Package chat contains the core logic of the chat room.

This file defines the Message struct and the MessageLog, an append-only,
time-windowed sequence of accepted chat messages. The log is ordered by
insertion, which equals chronological order, and is never reordered.
No locking of its own; the owning Room serializes access.
*/
package chat

// Message is an accepted chat message. Immutable once created; removed only
// by the retention sweep or the ban cascade.
type Message struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Nickname  string `json:"nickname"`
	AvatarHue int    `json:"avatarHue"`
	Text      string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// MessageLog is the append-only message sequence. The retention window
// bounds its age, not its size.
type MessageLog struct {
	msgs []Message
}

// NewMessageLog creates an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append adds a message to the tail.
func (l *MessageLog) Append(m Message) {
	l.msgs = append(l.msgs, m)
}

// Recent returns all messages with Timestamp > cutoff, in insertion order.
// Does not mutate the log. Always returns a non-nil slice.
func (l *MessageLog) Recent(cutoff int64) []Message {
	out := make([]Message, 0, len(l.msgs))
	for _, m := range l.msgs {
		if m.Timestamp > cutoff {
			out = append(out, m)
		}
	}
	return out
}

// EvictOlderThan removes messages with Timestamp < cutoff from the head.
// Messages are time-ordered at the head, so a prefix scan suffices.
// Returns the number of messages removed.
func (l *MessageLog) EvictOlderThan(cutoff int64) int {
	i := 0
	for i < len(l.msgs) && l.msgs[i].Timestamp < cutoff {
		i++
	}

	if i == 0 {
		return 0
	}

	l.msgs = append(l.msgs[:0], l.msgs[i:]...)
	return i
}

// RemoveByUser removes every message authored by userID and returns the ids
// of the removed messages so subscribers can retract them.
func (l *MessageLog) RemoveByUser(userID string) []string {
	removed := make([]string, 0)
	kept := l.msgs[:0]

	for _, m := range l.msgs {
		if m.UserID == userID {
			removed = append(removed, m.ID)
		} else {
			kept = append(kept, m)
		}
	}

	l.msgs = kept
	return removed
}

// Len returns the number of messages currently in the log.
func (l *MessageLog) Len() int {
	return len(l.msgs)
}

// Tail returns the newest n messages in insertion order; n <= 0 means all.
func (l *MessageLog) Tail(n int) []Message {
	if n <= 0 || n >= len(l.msgs) {
		out := make([]Message, len(l.msgs))
		copy(out, l.msgs)
		return out
	}

	out := make([]Message, n)
	copy(out, l.msgs[len(l.msgs)-n:])
	return out
}
