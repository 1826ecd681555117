/*
Package randx provides functions for generating random values and unique identifiers.

It is used to allocate durable user ids, message ids, and the pseudo-random
avatar hue assigned on registration.
*/
package randx

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// hueRange is the exclusive upper bound for avatar hues, [0, 360).
const hueRange = 360

// UserID allocates a new durable user identifier (UUID v4).
// Ids are never reissued; a banned identity retires its id permanently.
func UserID() string {
	return uuid.New().String()
}

// MessageID allocates a new unique message identifier (UUID v4).
func MessageID() string {
	return uuid.New().String()
}

// AvatarHue returns a random hue in [0, 360) using crypto/rand.
// Falls back to 0 in the unlikely event the system randomness source fails.
func AvatarHue() int {
	n, err := rand.Int(rand.Reader, big.NewInt(hueRange))
	if err != nil {
		return 0
	}
	return int(n.Int64())
}
