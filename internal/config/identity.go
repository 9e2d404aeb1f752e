package config

import (
	"encoding/hex"
	"fmt"

	"github.com/xrplsynth/synthnode/internal/identity"
)

// LoadIdentity derives the node's long-term identity from
// IdentitySeedHex if set, or generates a fresh random one otherwise. A
// fresh identity changes the advertised Public-Key on every restart,
// which is fine for one-shot conformance runs but not for a crawler that
// wants a stable self-identity across restarts.
func (c *Config) LoadIdentity() (*identity.Identity, error) {
	if c.IdentitySeedHex == "" {
		return identity.New()
	}
	seed, err := hex.DecodeString(c.IdentitySeedHex)
	if err != nil {
		return nil, fmt.Errorf("config: decode identity_seed: %w", err)
	}
	return identity.NewFromSeed(seed)
}
