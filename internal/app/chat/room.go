/*
Package chat contains the core logic of the chat room.

This file defines the Room struct, the explicitly constructed context object
holding all chat state: identity registry, connection table, message log,
duplicate guard, and connected clients. One coarse mutex guards all state;
operations are short and rarely contended, and broadcast fan-out happens
through non-blocking per-client send queues.
*/
package chat

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"emberchat/internal/app/moderation"
	"emberchat/internal/app/snapshot"
	"emberchat/internal/pkg/errs"
	"emberchat/internal/pkg/logx"
	"emberchat/internal/pkg/metrics"
	"emberchat/internal/pkg/randx"
)

// Message length bounds, applied after trimming.
const (
	MinMessageLen = 1
	MaxMessageLen = 100
)

// Checkpointer receives out-of-band snapshot requests from the room.
// The persistence gateway implements it.
type Checkpointer interface {
	Checkpoint(reason string)
}

// Config holds the room's tunable settings.
type Config struct {
	// ReservedNickname is the name whose first claimant becomes admin.
	ReservedNickname string

	// RetentionWindow bounds the age of retained messages.
	RetentionWindow time.Duration

	// SweepInterval is how often the retention sweep runs.
	SweepInterval time.Duration

	// OneNicknamePerIP enables the optional one-registration-per-IP policy.
	OneNicknamePerIP bool

	// CheckpointMessages triggers a snapshot checkpoint after this many
	// accepted messages.
	CheckpointMessages int

	// SnapshotMessageLimit caps how many messages a snapshot carries.
	SnapshotMessageLimit int
}

// HealthStats is the counter set exposed on the health endpoint.
type HealthStats struct {
	OnlineUsers   int  `json:"onlineUsers"`
	TotalMessages int  `json:"totalMessages"`
	AdminExists   bool `json:"adminExists"`
}

// Room is the chat room context object. All operations are safe for
// concurrent use.
type Room struct {
	cfg Config

	mu       sync.Mutex
	registry *Registry
	conns    *ConnTable
	log      *MessageLog
	dup      *moderation.DuplicateGuard
	clients  map[string]*Client // connection id -> client

	saver         Checkpointer
	msgsSinceSave int

	now  func() time.Time
	stop chan struct{}
	wg   sync.WaitGroup

	logger zerolog.Logger
}

// NewRoom constructs a Room from the given configuration. Zero values fall
// back to the original defaults: 24h retention, 1m sweep, checkpoint every
// 50 messages, 1000-message snapshot tail.
func NewRoom(cfg Config) *Room {
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = 24 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.CheckpointMessages <= 0 {
		cfg.CheckpointMessages = 50
	}
	if cfg.SnapshotMessageLimit <= 0 {
		cfg.SnapshotMessageLimit = 1000
	}

	return &Room{
		cfg:      cfg,
		registry: NewRegistry(cfg.ReservedNickname, cfg.OneNicknamePerIP),
		conns:    NewConnTable(),
		log:      NewMessageLog(),
		dup:      moderation.NewDuplicateGuard(),
		clients:  make(map[string]*Client),
		now:      time.Now,
		stop:     make(chan struct{}),
		logger:   logx.Logger().With().Str("component", "room").Logger(),
	}
}

// SetCheckpointer wires the persistence gateway for out-of-band snapshots.
func (r *Room) SetCheckpointer(cp Checkpointer) {
	r.saver = cp
}

// Start launches the retention sweep loop.
func (r *Room) Start() {
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.EvictExpired()
			case <-r.stop:
				return
			}
		}
	}()
}

// Shutdown stops the sweep loop and closes every connected client's queue.
func (r *Room) Shutdown() {
	close(r.stop)
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.clients {
		c.closeSend()
	}
	r.clients = make(map[string]*Client)

	r.logger.Info().Msg("Room shut down.")
}

// nowMillis returns the current time in milliseconds since the epoch.
func (r *Room) nowMillis() int64 {
	return r.now().UnixMilli()
}

// retentionCutoff returns the oldest timestamp still inside the window.
func (r *Room) retentionCutoff() int64 {
	return r.nowMillis() - r.cfg.RetentionWindow.Milliseconds()
}

// broadcastLocked fans an event out to every connected client.
// Callers must hold r.mu. Enqueueing never blocks; a client with a full
// queue drops the event and is logged by its own send path.
func (r *Room) broadcastLocked(t EventType, payload any) {
	raw, err := MarshalEvent(t, payload)
	if err != nil {
		r.logger.Error().Err(err).Str("event", string(t)).Msg("Failed to marshal broadcast event.")
		return
	}

	for _, c := range r.clients {
		c.trySend(raw)
	}
}

// HandleConnect registers a newly upgraded connection and sends it the
// current online count.
func (r *Room) HandleConnect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns.Add(c.connID)
	r.clients[c.connID] = c

	metrics.ConnectionsOpen.Inc()

	c.SendEvent(EventOnlineCount, r.conns.IdentifiedCount())

	r.logger.Info().
		Str("conn_id", c.connID).
		Int("open_connections", r.conns.Count()).
		Msg("Connection opened.")
}

// HandleDisconnect removes the connection. If it was identified, the
// departure is broadcast with the updated online count. Safe to call after
// the ban cascade has already removed the connection.
func (r *Room) HandleDisconnect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, open := r.clients[c.connID]; !open {
		return
	}
	delete(r.clients, c.connID)

	userID, identified := r.conns.Unbind(c.connID)

	metrics.ConnectionsOpen.Dec()
	metrics.UsersOnline.Set(float64(r.conns.IdentifiedCount()))

	if !identified {
		return
	}

	nickname := ""
	if user, ok := r.registry.Get(userID); ok {
		nickname = user.Nickname
	} else if tombstoned, ok := r.registry.tombstones[userID]; ok {
		nickname = tombstoned
	}

	r.broadcastLocked(EventUserLeft, UserEventPayload{
		Nickname:    nickname,
		OnlineCount: r.conns.IdentifiedCount(),
	})

	r.logger.Info().
		Str("user_id", userID).
		Int("online", r.conns.IdentifiedCount()).
		Msg("User left.")
}

// HandleSetNickname validates and claims a nickname for the connection,
// replies with acceptance plus message history, and broadcasts the join.
func (r *Room) HandleSetNickname(c *Client, nickname string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, cerr := r.registry.RegisterNickname(nickname, c.ip, r.nowMillis())
	if cerr != nil {
		c.SendError(cerr)
		return
	}

	r.conns.Bind(c.connID, user.ID)
	metrics.UsersOnline.Set(float64(r.conns.IdentifiedCount()))

	c.SendEvent(EventNicknameAccepted, NicknameAcceptedPayload{User: *user, IsAdmin: user.IsAdmin})
	c.SendEvent(EventMessageHistory, r.log.Recent(r.retentionCutoff()))

	r.broadcastLocked(EventUserJoined, UserEventPayload{
		Nickname:    user.Nickname,
		OnlineCount: r.conns.IdentifiedCount(),
	})

	r.logger.Info().
		Str("user_id", user.ID).
		Str("nickname", user.Nickname).
		Bool("is_admin", user.IsAdmin).
		Int("online", r.conns.IdentifiedCount()).
		Msg("User joined.")
}

// HandleRejoin reauthenticates a client-held durable identity. Unknown or
// banned identities are silently ignored.
func (r *Room) HandleRejoin(c *Client, payload RejoinPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, cerr := r.registry.Reauthenticate(payload.ID, r.nowMillis())
	if cerr != nil {
		r.logger.Debug().
			Str("user_id", payload.ID).
			Int("code", cerr.Code).
			Msg("Rejoin ignored.")
		return
	}

	r.conns.Bind(c.connID, user.ID)
	metrics.UsersOnline.Set(float64(r.conns.IdentifiedCount()))

	c.SendEvent(EventNicknameAccepted, NicknameAcceptedPayload{User: *user, IsAdmin: user.IsAdmin})
	c.SendEvent(EventMessageHistory, r.log.Recent(r.retentionCutoff()))
}

// HandleMessage runs the admission pipeline on an inbound message and, on
// acceptance, appends it to the log and broadcasts it to everyone.
// Rejections reply to the sender only; nothing reaches the log.
func (r *Room) HandleMessage(c *Client, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, identified := r.conns.UserFor(c.connID)
	if !identified {
		c.SendError(errs.NewError(errs.ErrIdentityRequired))
		return
	}

	if r.registry.IsBannedID(userID) {
		c.SendEvent(EventBanned, nil)
		return
	}

	user, ok := r.registry.Get(userID)
	if !ok {
		c.SendError(errs.NewError(errs.ErrIdentityRequired))
		return
	}

	trimmed := strings.TrimSpace(text)
	if n := utf8.RuneCountInString(trimmed); n < MinMessageLen || n > MaxMessageLen {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		c.SendError(errs.NewError(errs.ErrInvalidMessage))
		return
	}

	if res := moderation.CheckText(trimmed); res.Blocked {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		c.SendError(moderationError(res))
		return
	}

	if r.dup.IsDuplicate(userID, trimmed) {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		c.SendError(errs.NewError(errs.ErrDuplicateMessage))
		return
	}

	msg := Message{
		ID:        randx.MessageID(),
		UserID:    user.ID,
		Nickname:  user.Nickname,
		AvatarHue: user.AvatarHue,
		Text:      trimmed,
		Timestamp: r.nowMillis(),
	}

	r.log.Append(msg)
	r.dup.Remember(userID, trimmed)

	metrics.MessagesTotal.WithLabelValues("accepted").Inc()

	r.broadcastLocked(EventMessage, msg)

	r.msgsSinceSave++
	if r.saver != nil && r.msgsSinceSave >= r.cfg.CheckpointMessages {
		r.msgsSinceSave = 0
		r.saver.Checkpoint("messages")
	}
}

// moderationError maps a filter rejection to its typed error.
func moderationError(res moderation.Result) *errs.CustomError {
	switch res.Reason {
	case moderation.ReasonLink:
		return errs.NewError(errs.ErrLinkNotAllowed)
	case moderation.ReasonMention:
		return errs.NewError(errs.ErrMentionNotAllowed)
	case moderation.ReasonDuplicate:
		return errs.NewError(errs.ErrDuplicateMessage)
	default:
		return errs.NewError(errs.ErrUnknown)
	}
}

// HandleBanUser executes the ban cascade: ban sets, message retraction,
// forced disconnect, registry removal, membership broadcast. Admin only;
// the admin identity itself can never be the target.
func (r *Room) HandleBanUser(c *Client, targetUserID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	callerID, identified := r.conns.UserFor(c.connID)
	if !identified || callerID != r.registry.AdminID() || r.registry.AdminID() == "" {
		c.SendError(errs.NewError(errs.ErrNotAdmin))
		return
	}

	target, ok := r.registry.Get(targetUserID)
	if !ok {
		c.SendError(errs.NewError(errs.ErrUserNotFound))
		return
	}

	if targetUserID == r.registry.AdminID() {
		c.SendError(errs.NewError(errs.ErrAdminImmune))
		return
	}

	admin, _ := r.registry.Get(callerID)
	adminIP := ""
	if admin != nil {
		adminIP = admin.IP
	}

	targetNickname := target.Nickname

	r.registry.Ban(target, adminIP)

	removed := r.log.RemoveByUser(targetUserID)
	r.dup.Forget(targetUserID)

	for _, id := range removed {
		r.broadcastLocked(EventMessageDeleted, id)
	}

	if connID, online := r.conns.ConnFor(targetUserID); online {
		if tc, open := r.clients[connID]; open {
			tc.SendEvent(EventBanned, nil)
			delete(r.clients, connID)
			tc.closeSend()
			metrics.ConnectionsOpen.Dec()
		}
		r.conns.Unbind(connID)
	}

	metrics.UsersOnline.Set(float64(r.conns.IdentifiedCount()))
	metrics.BansTotal.Inc()

	r.broadcastLocked(EventUserLeft, UserEventPayload{
		Nickname:    targetNickname,
		OnlineCount: r.conns.IdentifiedCount(),
	})

	r.logger.Info().
		Str("target_id", targetUserID).
		Str("target_nickname", targetNickname).
		Int("messages_removed", len(removed)).
		Msg("User banned.")

	if r.saver != nil {
		r.saver.Checkpoint("ban")
	}
}

// EvictExpired removes messages that aged out of the retention window.
func (r *Room) EvictExpired() {
	r.mu.Lock()
	removed := r.log.EvictOlderThan(r.retentionCutoff())
	r.mu.Unlock()

	if removed > 0 {
		metrics.MessagesEvicted.Add(float64(removed))
		r.logger.Info().Int("removed", removed).Msg("Retention sweep evicted messages.")
	}
}

// IsIPBanned reports whether the IP is on the permanent IP ban set.
// Checked at the connection trust boundary, before the upgrade.
func (r *Room) IsIPBanned(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.IsBannedIP(ip)
}

// Recent returns the messages currently inside the retention window.
func (r *Room) Recent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.Recent(r.retentionCutoff())
}

// Health returns the counters exposed on the health endpoint.
func (r *Room) Health() HealthStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return HealthStats{
		OnlineUsers:   r.conns.IdentifiedCount(),
		TotalMessages: r.log.Len(),
		AdminExists:   r.registry.AdminID() != "",
	}
}

// ClearBans empties all ban sets. Administrative HTTP operation.
func (r *Room) ClearBans() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registry.ClearBans()
	r.logger.Warn().Msg("All ban sets cleared by administrative request.")
}

// ClearUsers removes every registered identity except the admin.
// Administrative HTTP operation. Live connections stay open but lose their
// identity binding and must claim a nickname again.
func (r *Room) ClearUsers() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := r.registry.ClearUsers()

	for connID, userID := range r.conns.byConn {
		if userID == "" || userID == r.registry.AdminID() {
			continue
		}
		r.conns.Bind(connID, "")
	}

	metrics.UsersOnline.Set(float64(r.conns.IdentifiedCount()))
	r.broadcastLocked(EventOnlineCount, r.conns.IdentifiedCount())

	r.logger.Warn().Int("removed", removed).Msg("User registry cleared by administrative request.")
	return removed
}

// UnbanIP removes one IP from the banned-IP set. Administrative HTTP operation.
func (r *Room) UnbanIP(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ok := r.registry.UnbanIP(ip)
	if ok {
		r.logger.Warn().Str("ip", ip).Msg("IP unbanned by administrative request.")
	}
	return ok
}

// BannedIPs lists the banned IP set. Administrative HTTP operation.
func (r *Room) BannedIPs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.BannedIPs()
}

// BuildSnapshot captures the current state as a snapshot document.
// Implements snapshot.Source; the copy happens under the room lock, the
// store write does not.
func (r *Room) BuildSnapshot() *snapshot.Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := &snapshot.Document{
		IPIndex: make(map[string]string, len(r.registry.ipIndex)),
		AdminID: r.registry.adminID,
		SavedAt: r.nowMillis(),
	}

	doc.Identities = make([]snapshot.Identity, 0, len(r.registry.users))
	for _, u := range r.registry.users {
		doc.Identities = append(doc.Identities, snapshot.Identity{
			ID:        u.ID,
			Nickname:  u.Nickname,
			AvatarHue: u.AvatarHue,
			JoinedAt:  u.JoinedAt,
			IsAdmin:   u.IsAdmin,
			IP:        u.IP,
		})
	}

	for ip, id := range r.registry.ipIndex {
		doc.IPIndex[ip] = id
	}

	tail := r.log.Tail(r.cfg.SnapshotMessageLimit)
	doc.Messages = make([]snapshot.Message, 0, len(tail))
	for _, m := range tail {
		doc.Messages = append(doc.Messages, snapshot.Message{
			ID:        m.ID,
			UserID:    m.UserID,
			Nickname:  m.Nickname,
			AvatarHue: m.AvatarHue,
			Text:      m.Text,
			Timestamp: m.Timestamp,
		})
	}

	doc.BannedIDs = setToSlice(r.registry.bannedIDs)
	doc.BannedNicknames = setToSlice(r.registry.bannedNicknames)
	doc.BannedIPs = setToSlice(r.registry.bannedIPs)

	return doc
}

// RestoreSnapshot replays a snapshot document into an empty room. Messages
// that aged out of the retention window between snapshot and restore are
// silently discarded. Called once at startup, before any connection arrives.
func (r *Room) RestoreSnapshot(doc *snapshot.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ident := range doc.Identities {
		u := &User{
			ID:        ident.ID,
			Nickname:  ident.Nickname,
			AvatarHue: ident.AvatarHue,
			JoinedAt:  ident.JoinedAt,
			IsAdmin:   ident.IsAdmin,
			IP:        ident.IP,
		}
		r.registry.users[u.ID] = u
	}

	for ip, id := range doc.IPIndex {
		r.registry.ipIndex[ip] = id
	}

	r.registry.adminID = doc.AdminID

	for _, id := range doc.BannedIDs {
		r.registry.bannedIDs[id] = struct{}{}
		r.registry.tombstones[id] = ""
	}
	for _, nick := range doc.BannedNicknames {
		r.registry.bannedNicknames[strings.ToLower(nick)] = struct{}{}
	}
	for _, ip := range doc.BannedIPs {
		r.registry.bannedIPs[ip] = struct{}{}
	}

	cutoff := r.retentionCutoff()
	restored := 0
	for _, m := range doc.Messages {
		if m.Timestamp <= cutoff {
			continue
		}
		r.log.Append(Message{
			ID:        m.ID,
			UserID:    m.UserID,
			Nickname:  m.Nickname,
			AvatarHue: m.AvatarHue,
			Text:      m.Text,
			Timestamp: m.Timestamp,
		})
		restored++
	}

	r.logger.Info().
		Int("identities", len(doc.Identities)).
		Int("messages_restored", restored).
		Int("messages_discarded", len(doc.Messages)-restored).
		Msg("Snapshot restored.")
}

// setToSlice flattens a string set into a sorted slice for stable snapshots.
func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
