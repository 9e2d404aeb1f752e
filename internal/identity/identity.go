// Package identity manages the synthetic node's long-term cryptographic
// identity for XRPL peer-to-peer handshakes: a secp256k1 keypair used to
// sign the TLS-bound shared value and to derive the base58-encoded node
// public key carried in the handshake's Public-Key header.
package identity

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha512"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/xrplsynth/synthnode/internal/codec/base58"
)

// NodeType selects the prefix byte folded into the base58-checksummed
// public key, so peers reject cross-wired node-type identifiers.
type NodeType byte

const (
	// NodeTypePublic is the prefix for a publicly advertised node identity.
	NodeTypePublic NodeType = 28
	// NodeTypePrivate is the prefix for a private (non-crawlable) node identity.
	NodeTypePrivate NodeType = 32
)

// CompressedPubKeyLen is the length of a compressed secp256k1 public key.
const CompressedPubKeyLen = 33

var (
	// ErrInvalidDigest is returned when Sign is given anything but a 32-byte digest.
	ErrInvalidDigest = errors.New("identity: message must be a 32-byte digest")
	// ErrSignatureFailed is returned when the underlying ECDSA signer refuses to sign.
	ErrSignatureFailed = errors.New("identity: failed to sign digest")
	// ErrInvalidSeed is returned when a seed is too short to derive a key from.
	ErrInvalidSeed = errors.New("identity: seed must be at least 16 bytes")
	// ErrInvalidPrivateKey is returned when a supplied private key is malformed.
	ErrInvalidPrivateKey = errors.New("identity: invalid private key")
)

// Identity is an immutable secp256k1 keypair shared read-only across all
// concurrent handshakes driven by one node instance.
type Identity struct {
	privateKey *btcec.PrivateKey
	publicKey  *btcec.PublicKey
}

// New generates a fresh random identity.
func New() (*Identity, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("identity: generate private key: %w", err)
	}
	return &Identity{privateKey: priv, publicKey: priv.PubKey()}, nil
}

// NewFromSeed deterministically derives an identity from a seed of at
// least 16 bytes, by taking the first 32 bytes of SHA-512(seed) as the
// scalar. Useful for reproducible test fixtures and for re-using a saved
// node identity across restarts.
func NewFromSeed(seed []byte) (*Identity, error) {
	if len(seed) < 16 {
		return nil, ErrInvalidSeed
	}
	h := sha512.Sum512(seed)
	priv, _ := btcec.PrivKeyFromBytes(h[:32])
	return &Identity{privateKey: priv, publicKey: priv.PubKey()}, nil
}

// NewFromPrivateKeyHex reconstructs an identity from a hex-encoded
// 32-byte private key (an optional leading "00" byte is stripped, as
// rippled emits private keys with that prefix).
func NewFromPrivateKeyHex(hexKey string) (*Identity, error) {
	if len(hexKey) == 66 && hexKey[:2] == "00" {
		hexKey = hexKey[2:]
	}
	if len(hexKey) != 64 {
		return nil, ErrInvalidPrivateKey
	}

	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}

	priv, _ := btcec.PrivKeyFromBytes(raw)
	if priv == nil {
		return nil, ErrInvalidPrivateKey
	}
	return &Identity{privateKey: priv, publicKey: priv.PubKey()}, nil
}

// GenerateSeed returns a fresh random 16-byte seed suitable for NewFromSeed.
func GenerateSeed() ([]byte, error) {
	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("identity: generate seed: %w", err)
	}
	return seed, nil
}

// Sign produces a DER-encoded ECDSA signature over a 32-byte digest. The
// caller is responsible for hashing; per the handshake protocol the
// digest passed here is the 32-byte Shared Value itself, never rehashed.
func (id *Identity) Sign(digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, ErrInvalidDigest
	}
	sig := btcecdsa.Sign(id.privateKey, digest)
	if sig == nil {
		return nil, ErrSignatureFailed
	}
	return sig.Serialize(), nil
}

// PublicKeyBytes returns the raw compressed (33-byte) public key.
func (id *Identity) PublicKeyBytes() []byte {
	return id.publicKey.SerializeCompressed()
}

// BtcecPublicKey returns the underlying curve point, for callers that
// need to verify a signature against it directly.
func (id *Identity) BtcecPublicKey() *btcec.PublicKey {
	return id.publicKey
}

// EncodePublicKey base58-encodes the given compressed public key bytes
// with the given node-type prefix and a double-SHA256 checksum, using the
// XRPL base58 alphabet. The node-type byte lives inside the checksum
// domain, so the peer rejects accidental cross-wiring of node types.
func EncodePublicKey(nodeType NodeType, compressedPubKey []byte) (string, error) {
	if len(compressedPubKey) != CompressedPubKeyLen {
		return "", fmt.Errorf("identity: public key must be %d bytes, got %d", CompressedPubKeyLen, len(compressedPubKey))
	}

	payload := make([]byte, 0, 1+CompressedPubKeyLen)
	payload = append(payload, byte(nodeType))
	payload = append(payload, compressedPubKey...)

	return base58.CheckEncode(payload), nil
}

// EncodedPublicKey returns this identity's own public key encoded per
// EncodePublicKey with the Public node type, as carried in the
// handshake's Public-Key header.
func (id *Identity) EncodedPublicKey() string {
	encoded, err := EncodePublicKey(NodeTypePublic, id.PublicKeyBytes())
	if err != nil {
		// PublicKeyBytes is always CompressedPubKeyLen; this cannot happen.
		panic(err)
	}
	return encoded
}

// DecodePublicKey reverses EncodePublicKey, returning the node type and
// the raw compressed public key bytes, after verifying the checksum.
func DecodePublicKey(encoded string) (NodeType, []byte, error) {
	payload, err := base58.CheckDecode(encoded)
	if err != nil {
		return 0, nil, fmt.Errorf("identity: decode public key: %w", err)
	}
	if len(payload) != 1+CompressedPubKeyLen {
		return 0, nil, fmt.Errorf("identity: decoded public key has wrong length %d", len(payload))
	}
	return NodeType(payload[0]), payload[1:], nil
}

// ParsePublicKey decodes a base58 node public key string and parses it
// as a secp256k1 curve point, verifying it lies on the curve.
func ParsePublicKey(encoded string) (*btcec.PublicKey, error) {
	_, raw, err := DecodePublicKey(encoded)
	if err != nil {
		return nil, err
	}
	key, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("identity: invalid public key point: %w", err)
	}
	return key, nil
}

// Verify checks a DER-encoded ECDSA signature over a 32-byte digest
// against a public key. Exposed for conformance harnesses and tests that
// want to double-check a peer's advertised signature; the handshake core
// itself does not require verifying the peer (see package handshake).
func Verify(pubKey *btcec.PublicKey, digest, derSignature []byte) error {
	if len(digest) != 32 {
		return ErrInvalidDigest
	}
	sig, err := btcecdsa.ParseDERSignature(derSignature)
	if err != nil {
		return fmt.Errorf("identity: parse signature: %w", err)
	}
	if !sig.Verify(digest, pubKey) {
		return errors.New("identity: signature verification failed")
	}
	return nil
}

// TLSCertificate generates an ephemeral self-signed certificate for use
// as the server certificate on the responder side of a handshake. XRPL
// does not validate certificate chains, so this exists purely to
// populate a TLS ServerHello; the cryptographic identity that matters
// travels in the Public-Key and Session-Signature headers instead. The
// certificate's key material is unrelated to the secp256k1 identity key
// (P256 and secp256k1 are different curves) and is thrown away once the
// TLS session is established.
func (id *Identity) TLSCertificate() (tls.Certificate, error) {
	privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("identity: generate tls certificate key: %w", err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: id.EncodedPublicKey()},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &privKey.PublicKey, privKey)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("identity: create self-signed certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyDER, err := x509.MarshalECPrivateKey(privKey)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("identity: marshal tls private key: %w", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("identity: build tls certificate: %w", err)
	}
	return cert, nil
}
