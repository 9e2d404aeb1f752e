package config

import "github.com/xrplsynth/synthnode/internal/handshake"

// ToHandshakeConfig translates the loaded overrides into a
// handshake.Config snapshot, leaving handshake.DefaultConfig's values in
// place for any field the overrides left at its zero value. Per design
// note §9, the caller takes this snapshot once per handshake rather than
// sharing a lock over the live Config.
func (o HandshakeOverrides) ToHandshakeConfig() handshake.Config {
	cfg := handshake.DefaultConfig()

	cfg.BitflipSharedVal = o.BitflipSharedVal
	cfg.BitflipPubKey = o.BitflipPubKey

	if o.Ident != "" {
		cfg.HTTPIdent = o.Ident
	}
	if o.Connection != "" {
		cfg.HTTPConnection = o.Connection
	}
	if o.UpgradeRequest != "" {
		cfg.HTTPUpgradeRequest = o.UpgradeRequest
	}
	if o.UpgradeResponse != "" {
		cfg.HTTPUpgradeResponse = o.UpgradeResponse
	}
	if o.ConnectAs != "" {
		cfg.HTTPConnectAs = o.ConnectAs
	}
	if o.ProtocolCtl != "" {
		cfg.HTTPProtocolCtl = o.ProtocolCtl
	}
	if o.Crawl != "" {
		cfg.HTTPCrawl = &o.Crawl
	}
	if o.NetworkTime != "" {
		cfg.HTTPNetworkTime = &o.NetworkTime
	}
	if o.ClosedLedger != "" {
		cfg.HTTPClosedLedger = &o.ClosedLedger
	}
	if o.PreviousLedger != "" {
		cfg.HTTPPreviousLedger = &o.PreviousLedger
	}
	cfg.HTTPUnexpectedExtraFieldAndValue = o.ExtraFieldValue

	return cfg
}
