package moderation

// DuplicateGuard remembers each user's most recently accepted message and
// flags an exact repeat. The lookback is a single message per user; sending
// anything else in between clears the guard.
//
// Not goroutine-safe; the owning room serializes access.
type DuplicateGuard struct {
	last map[string]string
}

// NewDuplicateGuard creates an empty guard.
func NewDuplicateGuard() *DuplicateGuard {
	return &DuplicateGuard{last: make(map[string]string)}
}

// IsDuplicate reports whether text is character-for-character identical to
// the user's previously accepted message.
func (g *DuplicateGuard) IsDuplicate(userID, text string) bool {
	prev, ok := g.last[userID]
	return ok && prev == text
}

// Remember records text as the user's most recent accepted message.
func (g *DuplicateGuard) Remember(userID, text string) {
	g.last[userID] = text
}

// Forget drops the user's lookback state, used when the user is banned.
func (g *DuplicateGuard) Forget(userID string) {
	delete(g.last, userID)
}
