/*
Package chat contains the core logic of the chat room.

This file defines the ConnTable, the ephemeral mapping from open connections
to user ids. It holds no persistence and is rebuilt each process lifetime.
No locking of its own; the owning Room serializes access.
*/
package chat

// ConnTable tracks every open connection and its bound user id, if any.
// A connection exists in the table from arrival, before a nickname is set;
// the binding is empty until then.
type ConnTable struct {
	byConn map[string]string // connection id -> user id ("" = unidentified)
}

// NewConnTable creates an empty ConnTable.
func NewConnTable() *ConnTable {
	return &ConnTable{byConn: make(map[string]string)}
}

// Add registers a newly opened, not yet identified connection.
func (t *ConnTable) Add(connID string) {
	t.byConn[connID] = ""
}

// Bind associates the connection with a user id, replacing any prior binding.
// Idempotent.
func (t *ConnTable) Bind(connID, userID string) {
	t.byConn[connID] = userID
}

// Unbind removes the connection and returns the user id it was bound to.
// Calling it again for the same connection returns ("", false).
func (t *ConnTable) Unbind(connID string) (string, bool) {
	userID, ok := t.byConn[connID]
	if !ok {
		return "", false
	}

	delete(t.byConn, connID)

	if userID == "" {
		return "", false
	}
	return userID, true
}

// UserFor returns the user id bound to the connection, if identified.
func (t *ConnTable) UserFor(connID string) (string, bool) {
	userID, ok := t.byConn[connID]
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// ConnFor returns the connection currently bound to the given user id.
func (t *ConnTable) ConnFor(userID string) (string, bool) {
	if userID == "" {
		return "", false
	}

	for connID, id := range t.byConn {
		if id == userID {
			return connID, true
		}
	}
	return "", false
}

// Count returns the number of open connections, identified or not.
func (t *ConnTable) Count() int {
	return len(t.byConn)
}

// IdentifiedCount returns the number of distinct users with a live connection.
func (t *ConnTable) IdentifiedCount() int {
	seen := make(map[string]struct{}, len(t.byConn))
	for _, userID := range t.byConn {
		if userID != "" {
			seen[userID] = struct{}{}
		}
	}
	return len(seen)
}
