package crawler

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
)

// newRand returns a fresh, unshared *rand.Rand seeded from the system
// CSPRNG, for a single handshake's bit-flip injector. The RNG must never
// be shared across concurrently running handshakes; a fresh instance per
// call sidesteps any need for locking.
func newRand() *mathrand.Rand {
	var seed [8]byte
	_, _ = rand.Read(seed[:])
	return mathrand.New(mathrand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
}
