// Package random provides cryptographically secure randomization for the
// one place the codec needs it: the DNS message ID assigned by
// packet.NewQuery. A predictable ID is the first half of a Kaminsky-style
// cache-poisoning attack, so this never falls back to math/rand.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// TransactionID generates a cryptographically random 16-bit transaction ID.
// NEVER use math/rand for DNS transaction IDs - it's predictable!
func TransactionID() uint16 {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing means the system RNG is broken; proceeding
		// with a predictable ID would be a silent security regression.
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return binary.BigEndian.Uint16(buf[:])
}
