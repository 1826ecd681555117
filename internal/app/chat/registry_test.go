package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emberchat/internal/pkg/errs"
)

func TestRegisterNicknameValidation(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		wantCode  int
	}{
		{name: "valid simple", candidate: "alice"},
		{name: "valid with underscore and digits", candidate: "bob_42"},
		{name: "valid surrounded by spaces", candidate: "  carol  "},
		{name: "valid at min length", candidate: "abc"},
		{name: "valid at max length", candidate: "a2345678901234567890"},
		{name: "too short", candidate: "ab", wantCode: errs.ErrInvalidNickname},
		{name: "too long", candidate: "a23456789012345678901", wantCode: errs.ErrInvalidNickname},
		{name: "empty", candidate: "", wantCode: errs.ErrInvalidNickname},
		{name: "whitespace only", candidate: "   ", wantCode: errs.ErrInvalidNickname},
		{name: "inner space", candidate: "two words", wantCode: errs.ErrInvalidNickname},
		{name: "punctuation", candidate: "its-bob", wantCode: errs.ErrInvalidNickname},
		{name: "non-ascii letters", candidate: "пользователь", wantCode: errs.ErrInvalidNickname},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewRegistry("mefisto", false)

			user, cerr := g.RegisterNickname(tt.candidate, "10.0.0.1", 1000)

			if tt.wantCode != 0 {
				require.NotNil(t, cerr)
				assert.Equal(t, tt.wantCode, cerr.Code)
				assert.Nil(t, user)
				return
			}

			require.Nil(t, cerr)
			require.NotNil(t, user)
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, int64(1000), user.JoinedAt)
			assert.GreaterOrEqual(t, user.AvatarHue, 0)
			assert.Less(t, user.AvatarHue, 360)
		})
	}
}

func TestRegisterNicknameUniquenessCaseInsensitive(t *testing.T) {
	g := NewRegistry("mefisto", false)

	_, cerr := g.RegisterNickname("Alice", "10.0.0.1", 1000)
	require.Nil(t, cerr)

	_, cerr = g.RegisterNickname("alice", "10.0.0.2", 1001)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrNicknameTaken, cerr.Code)

	_, cerr = g.RegisterNickname("ALICE", "10.0.0.3", 1002)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrNicknameTaken, cerr.Code)
}

func TestReservedNicknameGrantsAdminOnce(t *testing.T) {
	g := NewRegistry("mefisto", false)

	admin, cerr := g.RegisterNickname("Mefisto", "10.0.0.1", 1000)
	require.Nil(t, cerr)
	assert.True(t, admin.IsAdmin, "first claimant of the reserved nickname becomes admin")
	assert.Equal(t, admin.ID, g.AdminID())

	regular, cerr := g.RegisterNickname("bob", "10.0.0.2", 1001)
	require.Nil(t, cerr)
	assert.False(t, regular.IsAdmin)
	assert.Equal(t, admin.ID, g.AdminID(), "admin id does not change")
}

func TestAdminFlagNeverReassigned(t *testing.T) {
	g := NewRegistry("mefisto", false)

	admin, cerr := g.RegisterNickname("mefisto", "10.0.0.1", 1000)
	require.Nil(t, cerr)

	// Even after the admin identity is gone, a later claim of the reserved
	// nickname grants nothing: one admin per process lifetime.
	delete(g.users, admin.ID)
	delete(g.ipIndex, "10.0.0.1")

	second, cerr := g.RegisterNickname("mefisto", "10.0.0.2", 1001)
	require.Nil(t, cerr)
	assert.False(t, second.IsAdmin)
	assert.Equal(t, admin.ID, g.AdminID())
}

func TestRegisterNicknameBannedChecks(t *testing.T) {
	g := NewRegistry("mefisto", false)

	target, cerr := g.RegisterNickname("troll", "10.0.0.9", 1000)
	require.Nil(t, cerr)

	g.Ban(target, "10.0.0.1")

	// The retired nickname stays unavailable in any casing.
	_, cerr = g.RegisterNickname("Troll", "10.0.0.2", 1001)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrNicknameTaken, cerr.Code)

	// The banned IP cannot register anything.
	_, cerr = g.RegisterNickname("fresh_name", "10.0.0.9", 1002)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrBanned, cerr.Code)

	// Other IPs are unaffected.
	_, cerr = g.RegisterNickname("fresh_name", "10.0.0.3", 1003)
	assert.Nil(t, cerr)
}

func TestOneNicknamePerIP(t *testing.T) {
	g := NewRegistry("mefisto", true)

	_, cerr := g.RegisterNickname("alice", "10.0.0.1", 1000)
	require.Nil(t, cerr)

	_, cerr = g.RegisterNickname("alice2", "10.0.0.1", 1001)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrNicknameTaken, cerr.Code)

	_, cerr = g.RegisterNickname("alice2", "10.0.0.2", 1002)
	assert.Nil(t, cerr, "a different IP is free to register")

	// With the policy off, the same IP may hold several identities.
	open := NewRegistry("mefisto", false)
	_, cerr = open.RegisterNickname("alice", "10.0.0.1", 1000)
	require.Nil(t, cerr)
	_, cerr = open.RegisterNickname("alice2", "10.0.0.1", 1001)
	assert.Nil(t, cerr)
}

func TestReauthenticate(t *testing.T) {
	g := NewRegistry("mefisto", false)

	user, cerr := g.RegisterNickname("alice", "10.0.0.1", 1000)
	require.Nil(t, cerr)

	got, cerr := g.Reauthenticate(user.ID, 2000)
	require.Nil(t, cerr)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice", got.Nickname)
	assert.Equal(t, int64(2000), got.JoinedAt, "rejoin refreshes JoinedAt")

	_, cerr = g.Reauthenticate("no-such-id", 2001)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrUserNotFound, cerr.Code)

	g.Ban(got, "")
	_, cerr = g.Reauthenticate(user.ID, 2002)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrBanned, cerr.Code)
}

func TestBan(t *testing.T) {
	g := NewRegistry("mefisto", false)

	target, cerr := g.RegisterNickname("troll", "10.0.0.9", 1000)
	require.Nil(t, cerr)

	g.Ban(target, "10.0.0.1")

	assert.True(t, g.IsBannedID(target.ID))
	assert.True(t, g.IsBannedIP("10.0.0.9"))
	_, ok := g.Get(target.ID)
	assert.False(t, ok, "banned identity is removed from the registry")
	assert.Equal(t, "troll", g.tombstones[target.ID])
	assert.Equal(t, 0, g.Size())
}

func TestBanNeverBansAdminIP(t *testing.T) {
	g := NewRegistry("mefisto", false)

	// Admin and target share an IP, e.g. behind the same NAT.
	_, cerr := g.RegisterNickname("mefisto", "10.0.0.1", 1000)
	require.Nil(t, cerr)
	target, cerr := g.RegisterNickname("troll", "10.0.0.1", 1001)
	require.Nil(t, cerr)

	g.Ban(target, "10.0.0.1")

	assert.True(t, g.IsBannedID(target.ID))
	assert.False(t, g.IsBannedIP("10.0.0.1"), "the admin's own IP is never banned")
}

func TestUnbanIP(t *testing.T) {
	g := NewRegistry("mefisto", false)

	target, cerr := g.RegisterNickname("troll", "10.0.0.9", 1000)
	require.Nil(t, cerr)
	g.Ban(target, "")

	assert.Equal(t, []string{"10.0.0.9"}, g.BannedIPs())

	assert.True(t, g.UnbanIP("10.0.0.9"))
	assert.False(t, g.UnbanIP("10.0.0.9"), "second removal reports false")
	assert.Empty(t, g.BannedIPs())

	// The id and nickname bans remain.
	assert.True(t, g.IsBannedID(target.ID))
	assert.False(t, g.IsAvailable("troll", ""))
}

func TestClearBansKeepsTombstones(t *testing.T) {
	g := NewRegistry("mefisto", false)

	target, cerr := g.RegisterNickname("troll", "10.0.0.9", 1000)
	require.Nil(t, cerr)
	g.Ban(target, "")

	g.ClearBans()

	assert.False(t, g.IsBannedID(target.ID))
	assert.False(t, g.IsBannedIP("10.0.0.9"))
	assert.True(t, g.IsAvailable("troll", ""), "nickname is claimable again")
	assert.Contains(t, g.tombstones, target.ID, "the retired id itself stays recorded")
}

func TestClearUsersKeepsAdmin(t *testing.T) {
	g := NewRegistry("mefisto", false)

	admin, cerr := g.RegisterNickname("mefisto", "10.0.0.1", 1000)
	require.Nil(t, cerr)
	_, cerr = g.RegisterNickname("alice", "10.0.0.2", 1001)
	require.Nil(t, cerr)
	_, cerr = g.RegisterNickname("bob", "10.0.0.3", 1002)
	require.Nil(t, cerr)

	removed := g.ClearUsers()

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, g.Size())
	_, ok := g.Get(admin.ID)
	assert.True(t, ok, "the admin identity survives")

	// Freed nicknames are claimable again.
	_, cerr = g.RegisterNickname("alice", "10.0.0.4", 1003)
	assert.Nil(t, cerr)
}
