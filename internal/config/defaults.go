package config

import "github.com/spf13/viper"

// setDefaults seeds v with DefaultConfig's values before any file or
// environment variable is read.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("network_id", d.NetworkID)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("connect_timeout", d.ConnectTimeout)
	v.SetDefault("crawl_interval", d.CrawlInterval)
	v.SetDefault("max_in_flight", d.MaxInFlight)

	v.SetDefault("handshake.connection", d.Handshake.Connection)
	v.SetDefault("handshake.upgrade_req", d.Handshake.UpgradeRequest)
	v.SetDefault("handshake.upgrade_rsp", d.Handshake.UpgradeResponse)
	v.SetDefault("handshake.connect_as", d.Handshake.ConnectAs)
	v.SetDefault("handshake.x_protocol_ctl", d.Handshake.ProtocolCtl)
	v.SetDefault("handshake.ident", d.Handshake.Ident)
}

// DefaultConfig returns a Config matching a well-behaved synthetic node
// with no fuzzing or corruption enabled, mirroring handshake.DefaultConfig.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     DefaultListenAddr,
		NetworkID:      DefaultNetworkID,
		DataDir:        DefaultDataDir,
		ConnectTimeout: DefaultConnectTimeout,
		CrawlInterval:  DefaultCrawlInterval,
		MaxInFlight:    DefaultMaxInFlight,
		Handshake: HandshakeOverrides{
			Ident:           "synthnode/1.0",
			Connection:      "Upgrade",
			UpgradeRequest:  "XRPL/2.0, XRPL/2.1, XRPL/2.2",
			UpgradeResponse: "XRPL/2.2",
			ConnectAs:       "Peer",
			ProtocolCtl:     "txrr=1;ledgerreplay=1",
		},
	}
}
