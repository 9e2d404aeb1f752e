// Package config loads the synthetic node's runtime configuration:
// listen/dial addresses, the node identity source, and a nested set of
// handshake overrides that let a conformance harness drive bit-flip and
// header-fuzz scenarios from a TOML file instead of code. Configuration
// layers defaults, then a TOML file, then environment variables, then
// struct unmarshal and validation.
package config

import (
	"errors"
	"time"
)

// Default values for a well-behaved synthetic node.
const (
	DefaultListenAddr     = "0.0.0.0:51235"
	DefaultNetworkID      = uint32(0)
	DefaultConnectTimeout = 10 * time.Second
	DefaultCrawlInterval  = 30 * time.Second
	DefaultMaxInFlight    = 16
	DefaultDataDir        = "./data"
)

// Config is the full set of knobs for one synthnode process: where it
// listens, which identity it signs handshakes with, which peers it
// dials, and how its handshakes deviate from a well-behaved default.
type Config struct {
	// ListenAddr is the address the responder role listens on.
	ListenAddr string `mapstructure:"listen_addr"`
	// NetworkID is loaded and stored only; neither the handshake core nor
	// the CLI commands send it to peers or check it.
	NetworkID uint32 `mapstructure:"network_id"`

	// IdentitySeedHex, if set, deterministically derives the node's
	// secp256k1 identity (see identity.NewFromSeed) instead of generating
	// a fresh random one on every start, so a crawler keeps a stable
	// Public-Key across restarts.
	IdentitySeedHex string `mapstructure:"identity_seed"`

	// DataDir is where the Known Network registry persists its pebble
	// store between process restarts.
	DataDir string `mapstructure:"data_dir"`

	// BootstrapPeers are addresses dialed once at crawler startup, in
	// addition to whatever the peer-list gossip callback discovers.
	BootstrapPeers []string `mapstructure:"bootstrap_peers"`
	// FixedPeers are addresses the crawl command redials on every sweep,
	// whether or not an earlier sweep reached them, mirroring rippled's
	// `ips_fixed`.
	FixedPeers []string `mapstructure:"fixed_peers"`

	// ConnectTimeout bounds the connect command's dial+handshake attempt;
	// the crawl and listen commands do not apply it.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// CrawlInterval is the spacing between frontier sweeps.
	CrawlInterval time.Duration `mapstructure:"crawl_interval"`
	// MaxInFlight bounds the number of concurrent in-progress handshakes.
	MaxInFlight int `mapstructure:"max_in_flight"`

	// Handshake carries per-field overrides for the handshake package's
	// Config, so a conformance run can be driven entirely from a TOML file.
	Handshake HandshakeOverrides `mapstructure:"handshake"`

	configPath string
}

// HandshakeOverrides maps onto handshake.Config's tunable fields. An
// empty string/false value means "use the handshake package's default
// for this field"; ToHandshakeConfig only sets the corresponding
// optional pointer field when the TOML/env value is non-empty, so a
// conformance harness only has to name the fields it wants to deviate.
type HandshakeOverrides struct {
	BitflipSharedVal bool   `mapstructure:"bitflip_shared_val"`
	BitflipPubKey    bool   `mapstructure:"bitflip_pub_key"`
	Ident            string `mapstructure:"ident"`
	Connection       string `mapstructure:"connection"`
	UpgradeRequest   string `mapstructure:"upgrade_req"`
	UpgradeResponse  string `mapstructure:"upgrade_rsp"`
	ConnectAs        string `mapstructure:"connect_as"`
	ProtocolCtl      string `mapstructure:"x_protocol_ctl"`
	Crawl            string `mapstructure:"crawl"`
	NetworkTime      string `mapstructure:"network_time"`
	ClosedLedger     string `mapstructure:"closed_ledger"`
	PreviousLedger   string `mapstructure:"previous_ledger"`
	ExtraFieldValue  string `mapstructure:"extra_field_and_value"`
}

// ErrInvalidConfig collects the sentinel returned by Validate when a
// field fails a check; wrapped with fmt.Errorf context at each call site.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// GetConfigPath returns the path Config was loaded from.
func (c *Config) GetConfigPath() string { return c.configPath }
