package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnTableLifecycle(t *testing.T) {
	tbl := NewConnTable()

	tbl.Add("c1")
	assert.Equal(t, 1, tbl.Count())
	assert.Equal(t, 0, tbl.IdentifiedCount(), "arrival does not identify")

	_, ok := tbl.UserFor("c1")
	assert.False(t, ok)

	tbl.Bind("c1", "u1")
	userID, ok := tbl.UserFor("c1")
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, 1, tbl.IdentifiedCount())

	connID, ok := tbl.ConnFor("u1")
	assert.True(t, ok)
	assert.Equal(t, "c1", connID)

	userID, ok = tbl.Unbind("c1")
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, 0, tbl.Count())

	// Unbind is idempotent after removal.
	_, ok = tbl.Unbind("c1")
	assert.False(t, ok)
}

func TestConnTableUnbindUnidentified(t *testing.T) {
	tbl := NewConnTable()
	tbl.Add("c1")

	userID, ok := tbl.Unbind("c1")
	assert.False(t, ok)
	assert.Empty(t, userID)
	assert.Equal(t, 0, tbl.Count())
}

func TestConnTableIdentifiedCountDistinctUsers(t *testing.T) {
	tbl := NewConnTable()

	tbl.Add("c1")
	tbl.Add("c2")
	tbl.Add("c3")
	tbl.Bind("c1", "u1")
	tbl.Bind("c2", "u1")
	tbl.Bind("c3", "u2")

	assert.Equal(t, 3, tbl.Count())
	assert.Equal(t, 2, tbl.IdentifiedCount(), "two tabs of the same user count once")
}

func TestConnTableConnForEmptyID(t *testing.T) {
	tbl := NewConnTable()
	tbl.Add("c1")

	_, ok := tbl.ConnFor("")
	assert.False(t, ok, "the unidentified marker never resolves to a connection")
}
