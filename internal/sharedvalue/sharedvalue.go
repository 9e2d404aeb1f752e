// Package sharedvalue derives the 32-byte channel-binding value signed
// during the XRPL handshake from a pair of TLS Finished messages.
//
// Reference: rippled Handshake.cpp makeSharedValue() — XOR of two
// SHA-512 hashes, then SHA-512-half of the XOR.
package sharedvalue

import (
	"crypto/sha512"
	"errors"
	"fmt"
)

// MinFinishedLength is the minimum plausible length of a TLS Finished
// message; shorter inputs are rejected rather than silently hashed.
const MinFinishedLength = 12

// Len is the length in bytes of a derived Shared Value.
const Len = 32

var (
	// ErrTooShort is returned when either Finished input is implausibly short.
	ErrTooShort = errors.New("sharedvalue: finished message too short")
	// ErrIdenticalFinished is returned when both Finished inputs hash identically,
	// which would otherwise derive an all-zero (and therefore useless) shared value.
	ErrIdenticalFinished = errors.New("sharedvalue: local and peer finished messages are identical")
)

// Derive computes the 32-byte Shared Value from the local and peer TLS
// Finished messages. Because XOR is commutative, the two sides of a
// connection — which see f_local and f_peer swapped — derive the
// identical output.
func Derive(localFinished, peerFinished []byte) ([]byte, error) {
	if len(localFinished) < MinFinishedLength || len(peerFinished) < MinFinishedLength {
		return nil, fmt.Errorf("%w: local=%d peer=%d bytes", ErrTooShort, len(localFinished), len(peerFinished))
	}

	hLocal := sha512.Sum512(localFinished)
	hPeer := sha512.Sum512(peerFinished)

	var xored [sha512.Size]byte
	allZero := true
	for i := range xored {
		xored[i] = hLocal[i] ^ hPeer[i]
		if xored[i] != 0 {
			allZero = false
		}
	}
	if allZero {
		return nil, ErrIdenticalFinished
	}

	final := sha512.Sum512(xored[:])
	shared := make([]byte, Len)
	copy(shared, final[:Len])
	return shared, nil
}
