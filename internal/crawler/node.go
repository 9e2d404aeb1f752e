// Package crawler drives the handshake core across many connections: a
// listening + dialing synthetic node for conformance harnesses that just
// need num_connected/is_connected, and a bounded-concurrency frontier
// walker (Crawler) that chains handshakes across a peer graph discovered
// via an injected peer-list callback rather than a built-in binary
// peer-list parser.
package crawler

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/xrplsynth/synthnode/internal/handshake"
	"github.com/xrplsynth/synthnode/internal/identity"
	"github.com/xrplsynth/synthnode/internal/knownnetwork"
)

// Conn pairs a successful handshake's upgraded stream with the
// connection's role and remote address, for callers that want to keep
// talking to the peer (e.g. feeding it to the out-of-scope post-handshake
// binary codec).
type Conn struct {
	net.Conn
	Role handshake.Role
	Addr net.Addr
	Peer handshake.PeerInfo
}

// Node is a single synthetic node instance: one identity, one optional
// listener, and a set of currently-established connections. It mirrors
// the surface synth_node.rs's SyntheticNode exposes to conformance
// tests: start_listening, connect, is_connected, num_connected,
// is_connected_ip.
type Node struct {
	id       *identity.Identity
	cfg      handshake.Config
	registry *knownnetwork.Registry

	mu       sync.RWMutex
	conns    map[string]*Conn
	listener net.Listener
	wg       sync.WaitGroup
}

// NewNode constructs a Node with the given identity and handshake
// configuration snapshot, recording outcomes in registry.
func NewNode(id *identity.Identity, cfg handshake.Config, registry *knownnetwork.Registry) *Node {
	return &Node{
		id:       id,
		cfg:      cfg,
		registry: registry,
		conns:    make(map[string]*Conn),
	}
}

// StartListening binds listenAddr and accepts inbound connections as the
// responder role in the background until ctx is cancelled or Close is
// called. Returns the bound address, which differs from listenAddr when
// listenAddr uses a ":0" ephemeral port.
func (n *Node) StartListening(ctx context.Context, listenAddr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("crawler: listen on %s: %w", listenAddr, err)
	}
	n.mu.Lock()
	n.listener = ln
	n.mu.Unlock()

	n.wg.Add(1)
	go n.acceptLoop(ctx, ln)

	return ln.Addr(), nil
}

func (n *Node) acceptLoop(ctx context.Context, ln net.Listener) {
	defer n.wg.Done()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()
	for {
		raw, err := ln.Accept()
		if err != nil {
			return
		}
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.handle(ctx, raw, handshake.RoleResponder)
		}()
	}
}

// Connect dials addr and drives the handshake as the initiator role.
func (n *Node) Connect(ctx context.Context, addr string) error {
	raw, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("crawler: dial %s: %w", addr, err)
	}
	return n.handle(ctx, raw, handshake.RoleInitiator)
}

func (n *Node) handle(ctx context.Context, raw net.Conn, role handshake.Role) error {
	remote := raw.RemoteAddr()
	if n.registry != nil {
		n.registry.NewNode(remote)
	}

	res, err := handshake.Run(ctx, raw, role, n.id, n.cfg, newRand())
	if err != nil {
		if n.registry != nil {
			n.registry.IncreaseConnectionFailures(remote)
			n.registry.SetHandshakeSuccessful(remote, false)
		}
		return err
	}

	if n.registry != nil {
		n.registry.UpdateStats(remote, res.Duration, res.Peer.ServerVersion)
		n.registry.SetHandshakeSuccessful(remote, true)
	}

	n.mu.Lock()
	n.conns[remote.String()] = &Conn{Conn: res.Conn, Role: role, Addr: remote, Peer: res.Peer}
	n.mu.Unlock()
	return nil
}

// IsConnected reports whether addr currently has an established
// connection.
func (n *Node) IsConnected(addr string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.conns[addr]
	return ok
}

// IsConnectedIP reports whether any established connection's remote
// address has the given IP, regardless of port — rippled dials from an
// ephemeral source port, so exact address match is too strict for
// initiator-side conformance checks.
func (n *Node) IsConnectedIP(ip net.IP) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, c := range n.conns {
		if tcpAddr, ok := c.Addr.(*net.TCPAddr); ok && tcpAddr.IP.Equal(ip) {
			return true
		}
	}
	return false
}

// NumConnected returns the number of currently established connections.
func (n *Node) NumConnected() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.conns)
}

// Conn returns the established connection to addr, if any.
func (n *Node) Conn(addr string) (*Conn, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.conns[addr]
	return c, ok
}

// Close closes the listener (if any) and every established connection,
// and waits for the accept loop to exit.
func (n *Node) Close() error {
	n.mu.Lock()
	if n.listener != nil {
		n.listener.Close()
	}
	for addr, c := range n.conns {
		c.Close()
		delete(n.conns, addr)
	}
	n.mu.Unlock()
	n.wg.Wait()
	return nil
}
