// Package handshake drives the symmetric, role-parameterised XRPL
// handshake state machine: TLS establishment, shared-value derivation,
// and the HTTP/1.1 upgrade dialogue that promotes a raw connection to
// the XRPL binary peer protocol.
package handshake

import "time"

// Role identifies which side of the handshake a Run call plays.
type Role int

const (
	// RoleInitiator dials out and sends the upgrade Request first.
	RoleInitiator Role = iota
	// RoleResponder accepts a connection and waits for the Request.
	RoleResponder
)

func (r Role) String() string {
	if r == RoleInitiator {
		return "initiator"
	}
	return "responder"
}

// Canonical header defaults, matching rippled's advertised protocol set.
const (
	DefaultUpgradeRequest  = "XRPL/2.0, XRPL/2.1, XRPL/2.2"
	DefaultUpgradeResponse = "XRPL/2.2"
	DefaultConnection      = "Upgrade"
	DefaultConnectAs       = "Peer"
	DefaultProtocolCtl     = "txrr=1;ledgerreplay=1"
	DefaultUserAgent       = "synthnode/1.0"
)

// XRPLEpochOffset is the offset from the Unix epoch to the XRPL epoch
// (2000-01-01T00:00:00Z), used to encode Network-Time.
const XRPLEpochOffset = 946684800

// NetworkClockTolerance is the skew between a peer's advertised
// Network-Time and the local clock above which a warning is logged; the
// handshake is not failed over skew.
const NetworkClockTolerance = 20 * time.Second

// Config is the full set of knobs governing one handshake attempt,
// covering both legitimate protocol variance and the deliberate
// corruption needed to drive negative/conformance test peers.
type Config struct {
	// BitflipSharedVal flips one random bit of the 32-byte shared value
	// before it is signed, to exercise a peer's signature rejection path.
	BitflipSharedVal bool
	// BitflipPubKey flips one random bit of the compressed public key
	// before it is base58-encoded, so the advertised key no longer
	// matches the signer.
	BitflipPubKey bool

	// HTTPIdent is emitted as User-Agent (initiator) or Server (responder).
	HTTPIdent string
	// HTTPConnection is the Connection header value.
	HTTPConnection string
	// HTTPUpgradeRequest is the Upgrade header value on the request.
	HTTPUpgradeRequest string
	// HTTPUpgradeResponse is the Upgrade header value on the response.
	HTTPUpgradeResponse string
	// HTTPConnectAs is the Connect-As header value.
	HTTPConnectAs string
	// HTTPProtocolCtl is the X-Protocol-Ctl header value.
	HTTPProtocolCtl string

	// HTTPCrawl, if non-nil, emits a Crawl header with this value.
	HTTPCrawl *string
	// HTTPNetworkTime, if non-nil, emits a Network-Time header with this
	// value; if nil, no Network-Time header is sent. DefaultConfig sets it
	// to the clock reading taken when DefaultConfig is called.
	HTTPNetworkTime *string
	// HTTPClosedLedger, if non-nil, emits a Closed-Ledger header.
	HTTPClosedLedger *string
	// HTTPPreviousLedger, if non-nil, emits a Previous-Ledger header.
	HTTPPreviousLedger *string
	// HTTPUnexpectedExtraFieldAndValue, if non-empty, is appended verbatim
	// as an additional header line, for fuzzing unknown-header tolerance.
	HTTPUnexpectedExtraFieldAndValue string
}

// DefaultConfig returns a Config matching a well-behaved rippled peer
// with no fuzzing or corruption enabled.
func DefaultConfig() Config {
	networkTime := CurrentNetworkTime()
	return Config{
		HTTPIdent:           DefaultUserAgent,
		HTTPConnection:      DefaultConnection,
		HTTPUpgradeRequest:  DefaultUpgradeRequest,
		HTTPUpgradeResponse: DefaultUpgradeResponse,
		HTTPConnectAs:       DefaultConnectAs,
		HTTPProtocolCtl:     DefaultProtocolCtl,
		HTTPNetworkTime:     &networkTime,
	}
}
