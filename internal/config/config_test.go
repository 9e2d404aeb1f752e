package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultConnectTimeout, cfg.ConnectTimeout)
	assert.Equal(t, "Upgrade", cfg.Handshake.Connection)
}

func TestLoadConfigReadsTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synthnode.toml")
	contents := `
listen_addr = "127.0.0.1:9999"
fixed_peers = ["127.0.0.1:51235"]

[handshake]
bitflip_shared_val = true
ident = "custom-agent/9.9"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, []string{"127.0.0.1:51235"}, cfg.FixedPeers)
	assert.True(t, cfg.Handshake.BitflipSharedVal)
	assert.Equal(t, "custom-agent/9.9", cfg.Handshake.Ident)
}

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/synthnode.toml")
	assert.NoError(t, err)
}

func TestValidateRejectsBadFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddr = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.MaxInFlight = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.IdentitySeedHex = "ab"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestToHandshakeConfigOnlyOverridesNonEmptyFields(t *testing.T) {
	o := HandshakeOverrides{Ident: "x"}
	hc := o.ToHandshakeConfig()
	assert.Equal(t, "x", hc.HTTPIdent)
	assert.Equal(t, "Upgrade", hc.HTTPConnection) // handshake.DefaultConfig's value survives
	assert.Nil(t, hc.HTTPCrawl)
}

func TestLoadIdentityIsDeterministicFromSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdentitySeedHex = "00112233445566778899aabbccddeeff00112233"

	id1, err := cfg.LoadIdentity()
	require.NoError(t, err)
	id2, err := cfg.LoadIdentity()
	require.NoError(t, err)

	assert.Equal(t, id1.EncodedPublicKey(), id2.EncodedPublicKey())
}
