package tlssession

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrplsynth/synthnode/internal/sharedvalue"
)

func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "synthnode-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func TestConnectAcceptDeriveMatchingSharedValue(t *testing.T) {
	cert := selfSignedCert(t)

	serverRaw, clientRaw := net.Pipe()
	defer serverRaw.Close()
	defer clientRaw.Close()

	type result struct {
		sess *Session
		err  error
	}

	serverCh := make(chan result, 1)
	go func() {
		cfg := defaultTLSConfig()
		cfg.Certificates = []tls.Certificate{cert}
		conn := tls.Server(serverRaw, cfg)
		err := conn.HandshakeContext(context.Background())
		if err != nil {
			serverCh <- result{nil, err}
			return
		}
		serverCh <- result{&Session{conn: conn, role: RoleResponder, established: true}, nil}
	}()

	clientSess, err := Connect(context.Background(), clientRaw, "synthnode-test")
	require.NoError(t, err)

	serverRes := <-serverCh
	require.NoError(t, serverRes.err)
	serverSess := serverRes.sess

	clientLocal, err := clientSess.Finished()
	require.NoError(t, err)
	clientPeer, err := clientSess.PeerFinished()
	require.NoError(t, err)

	serverLocal, err := serverSess.Finished()
	require.NoError(t, err)
	serverPeer, err := serverSess.PeerFinished()
	require.NoError(t, err)

	assert.Equal(t, clientLocal, serverPeer, "client's local Finished must equal server's view of the peer Finished")
	assert.Equal(t, serverLocal, clientPeer, "server's local Finished must equal client's view of the peer Finished")
	assert.NotEqual(t, clientLocal, clientPeer, "role tagging must keep local and peer distinguishable")

	clientShared, err := sharedvalue.Derive(clientLocal, clientPeer)
	require.NoError(t, err)

	serverShared, err := sharedvalue.Derive(serverLocal, serverPeer)
	require.NoError(t, err)

	assert.Equal(t, clientShared, serverShared, "both sides must derive the identical shared value")
}

func TestFinishedBeforeHandshakeFails(t *testing.T) {
	s := &Session{role: RoleInitiator}
	_, err := s.Finished()
	assert.ErrorIs(t, err, ErrNotEstablished)

	_, err = s.PeerFinished()
	assert.ErrorIs(t, err, ErrNotEstablished)
}

func TestRolePeerIsInverse(t *testing.T) {
	assert.Equal(t, RoleResponder, RoleInitiator.peer())
	assert.Equal(t, RoleInitiator, RoleResponder.peer())
}
