package handshake

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net"
	"time"

	"github.com/xrplsynth/synthnode/internal/identity"
	"github.com/xrplsynth/synthnode/internal/sharedvalue"
	"github.com/xrplsynth/synthnode/internal/tlssession"
	"github.com/xrplsynth/synthnode/internal/wire"
)

// Result is what a successful Run returns: the upgraded stream (with any
// bytes the upgrade codec read ahead of CRLFCRLF re-prefixed onto it) and
// what was learned about the peer during the upgrade dialogue.
type Result struct {
	Conn     net.Conn
	Peer     PeerInfo
	Duration time.Duration
}

// Run drives the full symmetric state machine (S0 through S5/SX) for one
// connection: TLS establishment, shared-value derivation, and the HTTP
// upgrade dialogue, in the given role.
//
// raw is a freshly dialed (initiator) or freshly accepted (responder)
// byte stream; the initiator uses raw's remote IP as its TLS server name. cfg is a
// by-value snapshot — the caller takes it once per handshake rather than
// sharing a lock, per the single-writer/many-reader concurrency model.
// rng must not be shared across concurrently running handshakes; pass a
// *rand.Rand seeded per-call (or per-connection) for deterministic tests.
func Run(ctx context.Context, raw net.Conn, role Role, id *identity.Identity, cfg Config, rng *rand.Rand) (*Result, error) {
	start := time.Now()

	sess, err := tlsEstablish(ctx, raw, role, id)
	if err != nil {
		return nil, newError(S1, role, ErrTLS, err.Error())
	}

	localFinished, err := sess.Finished()
	if err != nil {
		sess.Close()
		return nil, newError(S2, role, ErrTLS, err.Error())
	}
	peerFinished, err := sess.PeerFinished()
	if err != nil {
		sess.Close()
		return nil, newError(S2, role, ErrTLS, err.Error())
	}

	shared, err := sharedvalue.Derive(localFinished, peerFinished)
	if err != nil {
		sess.Close()
		return nil, newError(S2, role, ErrTLS, "derive shared value: "+err.Error())
	}

	codec := wire.NewCodec(sess.Conn(), codecMode(role))

	var peerInfo *PeerInfo
	var trailing []byte
	if role == RoleInitiator {
		peerInfo, trailing, err = sendThenReceive(codec, role, id, shared, cfg, rng)
	} else {
		peerInfo, trailing, err = receiveThenSend(codec, role, id, shared, cfg, rng)
	}
	if err != nil {
		sess.Close()
		return nil, err
	}

	ownPubKey := id.EncodedPublicKey()
	if peerInfo.PublicKey == ownPubKey {
		sess.Close()
		return nil, &Error{State: S4, Role: role, Err: fmt.Errorf("%w: %w", ErrInvalidData, ErrSelfConnection)}
	}

	if len(trailing) > 0 {
		log.Printf("handshake: %s: %d trailing byte(s) after upgrade header terminator, re-prefixing onto returned stream", role, len(trailing))
	}

	return &Result{
		Conn:     withPrefix(sess.Conn(), trailing),
		Peer:     *peerInfo,
		Duration: time.Since(start),
	}, nil
}

func tlsEstablish(ctx context.Context, raw net.Conn, role Role, id *identity.Identity) (*tlssession.Session, error) {
	if role == RoleInitiator {
		host := ""
		if tcpAddr, ok := raw.RemoteAddr().(*net.TCPAddr); ok {
			host = tcpAddr.IP.String()
		}
		return tlssession.Connect(ctx, raw, host)
	}

	cert, err := id.TLSCertificate()
	if err != nil {
		return nil, fmt.Errorf("generate responder tls certificate: %w", err)
	}
	return tlssession.Accept(ctx, raw, cert)
}

func codecMode(role Role) wire.Mode {
	if role == RoleInitiator {
		// The initiator sends a request and expects a response back.
		return wire.ExpectResponse
	}
	return wire.ExpectRequest
}

func sendThenReceive(codec *wire.Codec, role Role, id *identity.Identity, shared []byte, cfg Config, rng *rand.Rand) (*PeerInfo, []byte, error) {
	outgoing, err := buildOutgoing(role, id, shared, cfg, rng)
	if err != nil {
		return nil, nil, newError(S3, role, ErrInvalidData, err.Error())
	}
	if err := codec.Encode(outgoing); err != nil {
		return nil, nil, newError(S3, role, ErrIO, err.Error())
	}

	incoming, err := codec.Decode()
	if err != nil {
		return nil, nil, newError(S4, role, classifyDecodeErr(err), err.Error())
	}

	peerInfo, err := validateIncoming(role, incoming, cfg.HTTPUpgradeRequest)
	if err != nil {
		return nil, nil, newError(S4, role, ErrInvalidData, err.Error())
	}
	return peerInfo, incoming.Trailing, nil
}

func receiveThenSend(codec *wire.Codec, role Role, id *identity.Identity, shared []byte, cfg Config, rng *rand.Rand) (*PeerInfo, []byte, error) {
	incoming, err := codec.Decode()
	if err != nil {
		return nil, nil, newError(S3, role, classifyDecodeErr(err), err.Error())
	}

	peerInfo, err := validateIncoming(role, incoming, cfg.HTTPUpgradeRequest)
	if err != nil {
		return nil, nil, newError(S3, role, ErrInvalidData, err.Error())
	}

	outgoing, err := buildOutgoing(role, id, shared, cfg, rng)
	if err != nil {
		return nil, nil, newError(S4, role, ErrInvalidData, err.Error())
	}
	if err := codec.Encode(outgoing); err != nil {
		return nil, nil, newError(S4, role, ErrIO, err.Error())
	}

	return peerInfo, incoming.Trailing, nil
}

// classifyDecodeErr distinguishes a malformed upgrade message from an
// underlying transport failure, so the caller can report the right
// error kind to the Known Network registry.
func classifyDecodeErr(err error) error {
	if errors.Is(err, wire.ErrInvalidData) {
		return ErrInvalidData
	}
	return ErrIO
}
