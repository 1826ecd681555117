/*
Package chat contains the core logic of the chat room.

This file defines the Registry, which owns durable identities, the ip-to-identity
index, and the three permanent ban sets (id, nickname, IP). The Registry performs
no locking of its own; the owning Room serializes access.
*/
package chat

import (
	"regexp"
	"sort"
	"strings"

	"emberchat/internal/pkg/errs"
	"emberchat/internal/pkg/randx"
)

// Nickname constraints, checked on the trimmed candidate.
const (
	MinNicknameLen = 3
	MaxNicknameLen = 20
)

// nicknamePattern restricts nicknames to English letters, digits, and underscores.
var nicknamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Registry maps durable user ids to identities and enforces nickname
// uniqueness and the permanent ban lists.
type Registry struct {
	users   map[string]*User  // id -> identity
	ipIndex map[string]string // origin IP -> id of last registrant

	bannedIDs       map[string]struct{}
	bannedNicknames map[string]struct{} // stored lowercase
	bannedIPs       map[string]struct{}

	// tombstones records banned identities (id -> nickname) so their ids
	// stay retired and historical references remain resolvable.
	tombstones map[string]string

	adminID          string
	reservedNickname string // lowercase
	onePerIP         bool
}

// NewRegistry creates an empty Registry. reservedNickname is the name whose
// first claimant becomes admin; onePerIP enables the optional policy of
// refusing a second registration from an IP that already holds one.
func NewRegistry(reservedNickname string, onePerIP bool) *Registry {
	return &Registry{
		users:            make(map[string]*User),
		ipIndex:          make(map[string]string),
		bannedIDs:        make(map[string]struct{}),
		bannedNicknames:  make(map[string]struct{}),
		bannedIPs:        make(map[string]struct{}),
		tombstones:       make(map[string]string),
		reservedNickname: strings.ToLower(reservedNickname),
	}
}

// RegisterNickname validates the candidate and creates a new identity.
// Admin status is granted iff the reserved nickname is claimed and no admin
// exists yet; this can happen at most once per process lifetime.
func (g *Registry) RegisterNickname(candidate, originIP string, now int64) (*User, *errs.CustomError) {
	trimmed := strings.TrimSpace(candidate)

	if len(trimmed) < MinNicknameLen || len(trimmed) > MaxNicknameLen {
		return nil, errs.NewError(errs.ErrInvalidNickname)
	}

	if !nicknamePattern.MatchString(trimmed) {
		return nil, errs.NewError(errs.ErrInvalidNickname)
	}

	if _, banned := g.bannedIPs[originIP]; banned && originIP != "" {
		return nil, errs.NewError(errs.ErrBanned)
	}

	if !g.IsAvailable(trimmed, "") {
		return nil, errs.NewError(errs.ErrNicknameTaken)
	}

	if g.onePerIP && originIP != "" {
		if existingID, ok := g.ipIndex[originIP]; ok {
			if _, stillRegistered := g.users[existingID]; stillRegistered {
				return nil, errs.NewError(errs.ErrNicknameTaken)
			}
		}
	}

	lower := strings.ToLower(trimmed)
	isAdmin := g.adminID == "" && lower == g.reservedNickname

	user := &User{
		ID:        randx.UserID(),
		Nickname:  trimmed,
		AvatarHue: randx.AvatarHue(),
		JoinedAt:  now,
		IsAdmin:   isAdmin,
		IP:        originIP,
	}

	if isAdmin {
		g.adminID = user.ID
	}

	g.users[user.ID] = user
	if originIP != "" {
		g.ipIndex[originIP] = user.ID
	}

	return user, nil
}

// Reauthenticate looks up a previously registered id for a reconnecting
// client. Banned ids fail; on success only JoinedAt is refreshed.
func (g *Registry) Reauthenticate(id string, now int64) (*User, *errs.CustomError) {
	if _, banned := g.bannedIDs[id]; banned {
		return nil, errs.NewError(errs.ErrBanned)
	}

	user, ok := g.users[id]
	if !ok {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	user.JoinedAt = now
	return user, nil
}

// IsAvailable reports whether a nickname can be claimed: no case-insensitive
// match among registered identities (except excludingID) and not on the
// permanent nickname ban set.
func (g *Registry) IsAvailable(nickname, excludingID string) bool {
	lower := strings.ToLower(nickname)

	if _, banned := g.bannedNicknames[lower]; banned {
		return false
	}

	for id, user := range g.users {
		if id != excludingID && strings.ToLower(user.Nickname) == lower {
			return false
		}
	}

	return true
}

// Get returns the identity for id, if registered.
func (g *Registry) Get(id string) (*User, bool) {
	user, ok := g.users[id]
	return user, ok
}

// AdminID returns the admin identity's id, or "" if no admin exists yet.
func (g *Registry) AdminID() string {
	return g.adminID
}

// Size returns the number of registered identities.
func (g *Registry) Size() int {
	return len(g.users)
}

// IsBannedID reports whether id is on the permanent id ban set.
func (g *Registry) IsBannedID(id string) bool {
	_, banned := g.bannedIDs[id]
	return banned
}

// IsBannedIP reports whether ip is on the permanent IP ban set.
func (g *Registry) IsBannedIP(ip string) bool {
	_, banned := g.bannedIPs[ip]
	return banned
}

// Ban retires the target identity: its id enters the banned-id set, its
// lowercase nickname the banned-nickname set, and its IP the banned-IP set
// unless matching adminIP. The identity is removed from the live registry
// and a tombstone keeps the id permanently retired.
func (g *Registry) Ban(target *User, adminIP string) {
	g.bannedIDs[target.ID] = struct{}{}
	g.bannedNicknames[strings.ToLower(target.Nickname)] = struct{}{}

	if target.IP != "" && target.IP != adminIP {
		g.bannedIPs[target.IP] = struct{}{}
	}

	g.tombstones[target.ID] = target.Nickname

	delete(g.users, target.ID)
	if target.IP != "" && g.ipIndex[target.IP] == target.ID {
		delete(g.ipIndex, target.IP)
	}
}

// UnbanIP removes ip from the banned-IP set. This is the only reversal the
// moderation design supports; id and nickname bans are permanent.
func (g *Registry) UnbanIP(ip string) bool {
	if _, banned := g.bannedIPs[ip]; !banned {
		return false
	}
	delete(g.bannedIPs, ip)
	return true
}

// BannedIPs returns the banned IP set, sorted for stable output.
func (g *Registry) BannedIPs() []string {
	ips := make([]string, 0, len(g.bannedIPs))
	for ip := range g.bannedIPs {
		ips = append(ips, ip)
	}
	sort.Strings(ips)
	return ips
}

// ClearBans empties all three ban sets. Tombstones are kept so retired ids
// are still never reissued.
func (g *Registry) ClearBans() {
	g.bannedIDs = make(map[string]struct{})
	g.bannedNicknames = make(map[string]struct{})
	g.bannedIPs = make(map[string]struct{})
}

// ClearUsers removes every registered identity except the admin, along with
// the ip index entries of the removed identities. The admin flag is never
// reset; at most one admin exists per process lifetime.
func (g *Registry) ClearUsers() int {
	removed := 0

	for id, user := range g.users {
		if id == g.adminID {
			continue
		}
		delete(g.users, id)
		if user.IP != "" && g.ipIndex[user.IP] == id {
			delete(g.ipIndex, user.IP)
		}
		removed++
	}

	return removed
}
