/*
Package chat contains the core logic of the chat room: identity registry,
connection table, message log, moderation pipeline, ban cascade, and the
WebSocket client lifecycle.

This file defines the User struct, the durable identity of a chat participant.
*/
package chat

// User represents the durable identity of a chat participant. It is created
// on the first successful nickname claim and survives reconnects; only
// JoinedAt is refreshed on reauthentication.
type User struct {
	// ID is the durable identifier, distinct from the transient connection id.
	ID string `json:"id"`

	// Nickname is the display name, unique case-insensitively among
	// registered identities.
	Nickname string `json:"nickname"`

	// AvatarHue is the hue in [0, 360) assigned at registration.
	AvatarHue int `json:"avatarHue"`

	// JoinedAt is the registration (or last reauthentication) time in
	// milliseconds since the epoch.
	JoinedAt int64 `json:"joinedAt"`

	// IsAdmin is true for at most one identity per process lifetime, the
	// first to claim the reserved nickname.
	IsAdmin bool `json:"isAdmin"`

	// IP is the network origin recorded at registration. Never serialized
	// to clients.
	IP string `json:"-"`
}
