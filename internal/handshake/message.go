package handshake

import (
	"encoding/base64"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/xrplsynth/synthnode/internal/identity"
	"github.com/xrplsynth/synthnode/internal/wire"
)

// Header names used in the canonical upgrade dialogue.
const (
	headerUserAgent        = "User-Agent"
	headerServer           = "Server"
	headerUpgrade          = "Upgrade"
	headerConnection       = "Connection"
	headerConnectAs        = "Connect-As"
	headerCrawl            = "Crawl"
	headerProtocolCtl      = "X-Protocol-Ctl"
	headerNetworkTime      = "Network-Time"
	headerPublicKey        = "Public-Key"
	headerSessionSignature = "Session-Signature"
	headerClosedLedger     = "Closed-Ledger"
	headerPreviousLedger   = "Previous-Ledger"
)

// PeerInfo is what the incoming upgrade message yields about the other
// side, for the caller to fold into its Known Node bookkeeping.
type PeerInfo struct {
	PublicKey         string
	SessionSignature  []byte
	ServerVersion     string
	NegotiatedUpgrade string
	CrawlPublic       bool
}

// buildOutgoing constructs the outgoing upgrade Message for role,
// applying any configured bit-flip corruption before signing/encoding,
// per the construction steps shared by both roles.
func buildOutgoing(role Role, id *identity.Identity, sharedValue []byte, cfg Config, rng *rand.Rand) (*wire.Message, error) {
	pubKeyBytes := append([]byte(nil), id.PublicKeyBytes()...)
	shared := append([]byte(nil), sharedValue...)

	if cfg.BitflipSharedVal {
		randomlyFlipBit(rng, shared)
	}
	if cfg.BitflipPubKey {
		randomlyFlipBit(rng, pubKeyBytes)
	}

	sig, err := id.Sign(shared)
	if err != nil {
		return nil, fmt.Errorf("handshake: sign shared value: %w", err)
	}

	pubKeyB58, err := identity.EncodePublicKey(identity.NodeTypePublic, pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("handshake: encode public key: %w", err)
	}

	sigB64 := base64.StdEncoding.EncodeToString(sig)

	if role == RoleInitiator {
		return buildRequest(cfg, pubKeyB58, sigB64), nil
	}
	return buildResponse(cfg, pubKeyB58, sigB64), nil
}

func buildRequest(cfg Config, pubKeyB58, sigB64 string) *wire.Message {
	m := &wire.Message{StartLine: wire.RequestLine}
	m.Set(headerUserAgent, cfg.HTTPIdent)
	m.Set(headerUpgrade, cfg.HTTPUpgradeRequest)
	m.Set(headerConnection, cfg.HTTPConnection)
	m.Set(headerConnectAs, cfg.HTTPConnectAs)
	if cfg.HTTPCrawl != nil {
		m.Set(headerCrawl, *cfg.HTTPCrawl)
	}
	m.Set(headerProtocolCtl, cfg.HTTPProtocolCtl)
	if cfg.HTTPNetworkTime != nil {
		m.Set(headerNetworkTime, *cfg.HTTPNetworkTime)
	}
	m.Set(headerPublicKey, pubKeyB58)
	m.Set(headerSessionSignature, sigB64)
	if cfg.HTTPClosedLedger != nil {
		m.Set(headerClosedLedger, *cfg.HTTPClosedLedger)
	}
	if cfg.HTTPPreviousLedger != nil {
		m.Set(headerPreviousLedger, *cfg.HTTPPreviousLedger)
	}
	if cfg.HTTPUnexpectedExtraFieldAndValue != "" {
		m.AddRaw(cfg.HTTPUnexpectedExtraFieldAndValue)
	}
	return m
}

func buildResponse(cfg Config, pubKeyB58, sigB64 string) *wire.Message {
	m := &wire.Message{StartLine: wire.ResponseLine}
	m.Set(headerConnection, cfg.HTTPConnection)
	m.Set(headerUpgrade, cfg.HTTPUpgradeResponse)
	m.Set(headerConnectAs, cfg.HTTPConnectAs)
	m.Set(headerServer, cfg.HTTPIdent)
	if cfg.HTTPCrawl != nil {
		m.Set(headerCrawl, *cfg.HTTPCrawl)
	}
	m.Set(headerProtocolCtl, cfg.HTTPProtocolCtl)
	if cfg.HTTPNetworkTime != nil {
		m.Set(headerNetworkTime, *cfg.HTTPNetworkTime)
	}
	m.Set(headerPublicKey, pubKeyB58)
	m.Set(headerSessionSignature, sigB64)
	if cfg.HTTPClosedLedger != nil {
		m.Set(headerClosedLedger, *cfg.HTTPClosedLedger)
	}
	if cfg.HTTPPreviousLedger != nil {
		m.Set(headerPreviousLedger, *cfg.HTTPPreviousLedger)
	}
	if cfg.HTTPUnexpectedExtraFieldAndValue != "" {
		m.AddRaw(cfg.HTTPUnexpectedExtraFieldAndValue)
	}
	return m
}

// validateIncoming checks an incoming upgrade message against the
// opposite role's start line and required headers, returning the
// extracted PeerInfo. It does not verify the Session-Signature itself;
// callers that want to reject forged peers call identity.Verify
// themselves using the shared value they derived locally.
func validateIncoming(role Role, msg *wire.Message, offeredUpgrade string) (*PeerInfo, error) {
	wantLine := wire.ResponseLine
	if role == RoleResponder {
		wantLine = wire.RequestLine
	}
	if msg.StartLine != wantLine {
		return nil, fmt.Errorf("%w: expected start line %q, got %q", ErrInvalidData, wantLine, msg.StartLine)
	}

	conn, ok := msg.Get(headerConnection)
	if !ok || !strings.EqualFold(conn, "Upgrade") {
		return nil, fmt.Errorf("%w: missing or invalid Connection header", ErrInvalidData)
	}

	upgrade, ok := msg.Get(headerUpgrade)
	if !ok || upgrade == "" {
		return nil, fmt.Errorf("%w: missing Upgrade header", ErrInvalidData)
	}

	if role == RoleInitiator {
		if !upgradeOfferedContains(offeredUpgrade, upgrade) {
			return nil, fmt.Errorf("%w: responder chose unoffered upgrade version %q", ErrInvalidData, upgrade)
		}
	}

	connectAs, ok := msg.Get(headerConnectAs)
	if !ok || connectAs != "Peer" {
		return nil, fmt.Errorf("%w: missing or invalid Connect-As header", ErrInvalidData)
	}

	pubKey, ok := msg.Get(headerPublicKey)
	if !ok || pubKey == "" {
		return nil, fmt.Errorf("%w: missing Public-Key header", ErrInvalidData)
	}

	sigB64, ok := msg.Get(headerSessionSignature)
	if !ok || sigB64 == "" {
		return nil, fmt.Errorf("%w: missing Session-Signature header", ErrInvalidData)
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid Session-Signature encoding: %v", ErrInvalidData, err)
	}

	serverVersion := ""
	if role == RoleInitiator {
		serverVersion, _ = msg.Get(headerServer)
	} else {
		serverVersion, _ = msg.Get(headerUserAgent)
	}

	if netTimeStr, ok := msg.Get(headerNetworkTime); ok {
		warnOnNetworkTimeSkew(netTimeStr)
	}

	_, crawlPublic := msg.Get(headerCrawl)

	return &PeerInfo{
		PublicKey:         pubKey,
		SessionSignature:  sig,
		ServerVersion:     serverVersion,
		NegotiatedUpgrade: upgrade,
		CrawlPublic:       crawlPublic,
	}, nil
}

// warnOnNetworkTimeSkew logs, but never fails the handshake over, a
// peer's advertised Network-Time. §6 marks the header optional gossip
// and §4.5's incoming-validation list does not mention it; rippled's
// advertised time is ledger-close-derived and can legitimately lag wall
// clock, so skew alone is not a protocol violation.
func warnOnNetworkTimeSkew(netTimeStr string) {
	netTime, err := strconv.ParseInt(netTimeStr, 10, 64)
	if err != nil {
		log.Printf("handshake: peer sent malformed Network-Time %q: %v", netTimeStr, err)
		return
	}
	peerTime := time.Unix(netTime+XRPLEpochOffset, 0)
	diff := time.Since(peerTime)
	if diff < 0 {
		diff = -diff
	}
	if diff > NetworkClockTolerance {
		log.Printf("handshake: peer Network-Time skew %v exceeds %v", diff, NetworkClockTolerance)
	}
}

func upgradeOfferedContains(offered, chosen string) bool {
	for _, v := range strings.Split(offered, ",") {
		if strings.TrimSpace(v) == strings.TrimSpace(chosen) {
			return true
		}
	}
	return false
}

// CurrentNetworkTime formats the current instant as an XRPL epoch-offset
// decimal string, for the Network-Time header. DefaultConfig calls this
// once per Config snapshot rather than buildRequest/buildResponse calling
// it per-message, so that repeated emissions from the same snapshot stay
// byte-identical per §8's idempotence property.
func CurrentNetworkTime() string {
	return strconv.FormatInt(time.Now().Unix()-XRPLEpochOffset, 10)
}
