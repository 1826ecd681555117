/*
Package snapshot implements the persistence gateway for the chat room.

The room's authoritative state lives in memory; this package periodically
captures it as a Document and writes it to an external store (PostgreSQL or
S3-compatible object storage) on a write-behind basis. A crash loses at most
one interval's worth of state plus any changes since the last checkpoint.
*/
package snapshot

// Identity is the persisted form of a registered user.
type Identity struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarHue int    `json:"avatarHue"`
	JoinedAt  int64  `json:"joinedAt"`
	IsAdmin   bool   `json:"isAdmin"`
	IP        string `json:"ip,omitempty"`
}

// Message is the persisted form of a chat message.
type Message struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Nickname  string `json:"nickname"`
	AvatarHue int    `json:"avatarHue"`
	Text      string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Document is the full snapshot written to the external store.
// Messages holds at most the configured tail of the log (newest last).
type Document struct {
	Identities      []Identity        `json:"identities"`
	IPIndex         map[string]string `json:"ipIndex"`
	Messages        []Message         `json:"messages"`
	BannedIDs       []string          `json:"bannedIds"`
	BannedNicknames []string          `json:"bannedNicknames"`
	BannedIPs       []string          `json:"bannedIPs"`
	AdminID         string            `json:"adminId"`
	SavedAt         int64             `json:"savedAt"`
}
