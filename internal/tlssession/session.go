// Package tlssession wraps a raw byte stream in TLS for the XRPL
// handshake, exposing the post-handshake Finished messages that the
// shared-value derivation (package sharedvalue) needs to bind the
// session cryptographically to a node's long-term identity.
//
// XRPL peers authenticate via Session-Signature/Public-Key, not via
// certificate chains, so this package deliberately accepts self-signed
// certificates and does not verify hostnames. This is not a shortcut
// to "fix" later — see defaultTLSConfig below for why it is
// load-bearing.
package tlssession

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
)

// Role identifies which side of the TLS handshake this session played.
type Role byte

const (
	// RoleInitiator dials out and drives the TLS ClientHello.
	RoleInitiator Role = 0x00
	// RoleResponder accepts an inbound connection and drives the TLS ServerHello.
	RoleResponder Role = 0x01
)

func (r Role) peer() Role {
	if r == RoleInitiator {
		return RoleResponder
	}
	return RoleInitiator
}

// ErrNotEstablished is returned by Finished/PeerFinished before the TLS
// handshake has completed.
var ErrNotEstablished = errors.New("tlssession: TLS handshake not yet established")

// MaxFinishedLen bounds the octet sequences returned by Finished and
// PeerFinished, matching the TLS Finished message size ceiling named in
// the handshake specification.
const MaxFinishedLen = 64

// Session wraps a completed (or completing) TLS connection together with
// the role that negotiated it.
type Session struct {
	conn        *tls.Conn
	role        Role
	established bool
}

// Config mirrors the subset of tls.Config the handshake core cares
// about; ServerName is only used by Connect.
type Config struct {
	ServerName string
}

// defaultTLSConfig returns a tls.Config that accepts self-signed peer
// certificates (XRPL authenticates via Session-Signature, not the chain)
// and pins the version to TLS 1.2.
//
// TLS 1.2 is pinned deliberately: Go's crypto/tls does not expose the
// raw per-side Finished messages the way the reference implementation's
// OpenSSL bindings do (no SSL_get_finished/SSL_get_peer_finished
// equivalent). The best channel-binding primitive the standard library
// exposes is ConnectionState().TLSUnique, the RFC 5929 tls-unique value
// — but TLSUnique is only populated for TLS 1.2 (and earlier); Go leaves
// it empty once TLS 1.3 is negotiated, since TLS 1.3 has no separate
// Finished-based channel binding defined for it. Forcing MaxVersion to
// TLS 1.2 is what makes Finished/PeerFinished below meaningful at all.
func defaultTLSConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // XRPL authenticates via Session-Signature, not the cert chain.
		MinVersion:         tls.VersionTLS12,
		MaxVersion:         tls.VersionTLS12,
	}
}

// Connect performs the TLS handshake as the initiator over an
// already-dialed byte stream.
func Connect(ctx context.Context, raw net.Conn, sniHostname string) (*Session, error) {
	cfg := defaultTLSConfig()
	cfg.ServerName = sniHostname

	conn := tls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("tlssession: client handshake: %w", err)
	}

	return &Session{conn: conn, role: RoleInitiator, established: true}, nil
}

// Accept performs the TLS handshake as the responder over an accepted
// inbound byte stream, presenting cert as the server certificate. XRPL
// peers never validate this chain, so any self-signed certificate
// (typically Identity.TLSCertificate) is sufficient.
func Accept(ctx context.Context, raw net.Conn, cert tls.Certificate) (*Session, error) {
	cfg := defaultTLSConfig()
	cfg.Certificates = []tls.Certificate{cert}

	conn := tls.Server(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("tlssession: server handshake: %w", err)
	}

	return &Session{conn: conn, role: RoleResponder, established: true}, nil
}

// Wrap adapts an already-established *tls.Conn (for instance one handed
// out by a tls.Listener that completed its handshake during Accept) into
// a Session for the given role.
func Wrap(conn *tls.Conn, role Role) *Session {
	return &Session{conn: conn, role: role, established: true}
}

// Role returns which side of the handshake this session negotiated.
func (s *Session) Role() Role {
	return s.role
}

// Conn returns the underlying *tls.Conn for the HTTP upgrade codec to
// read/write framed bytes over, and for the caller to keep using after a
// successful handshake.
func (s *Session) Conn() *tls.Conn {
	return s.conn
}

// channelBinding returns the RFC 5929 tls-unique value for the completed
// connection, tagged with a one-byte role marker so Finished() and
// PeerFinished() are never byte-identical (which would make
// sharedvalue.Derive reject the pair as degenerate). Because
// sharedvalue.Derive(a, b) == sharedvalue.Derive(b, a), tagging with the
// role byte rather than anything peer-unknowable still yields identical
// derived Shared Values on both ends: the initiator computes
// Derive(tlsUnique‖0x00, tlsUnique‖0x01) and the responder computes
// Derive(tlsUnique‖0x01, tlsUnique‖0x00) — the same unordered pair.
func (s *Session) channelBinding(role Role) ([]byte, error) {
	if !s.established {
		return nil, ErrNotEstablished
	}
	unique := s.conn.ConnectionState().TLSUnique
	if len(unique) == 0 {
		return nil, errors.New("tlssession: no tls-unique channel binding available (was TLS 1.3 negotiated?)")
	}

	tagged := make([]byte, len(unique)+1)
	copy(tagged, unique)
	tagged[len(unique)] = byte(role)
	return tagged, nil
}

// Finished returns this side's TLS Finished-derived octet sequence,
// valid only after the handshake has completed.
func (s *Session) Finished() ([]byte, error) {
	return s.channelBinding(s.role)
}

// PeerFinished returns the peer's TLS Finished-derived octet sequence,
// valid only after the handshake has completed.
func (s *Session) PeerFinished() ([]byte, error) {
	return s.channelBinding(s.role.peer())
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}
