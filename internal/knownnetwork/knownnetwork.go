// Package knownnetwork tracks per-address statistics for every node the
// crawler has dialed or been gossiped about: insert-once nodes,
// idempotent stat overwrites, and a saturating connection-failure
// counter, guarded by a reader-writer discipline where statistics
// updates take an exclusive guard and snapshot reads take a shared one.
package knownnetwork

import (
	"net"
	"sync"
	"time"
)

// Node is the per-address record the handshake core and crawler driver
// update after every connection attempt.
type Node struct {
	// LastConnectedAt is the last time a handshake with this node
	// succeeded. Zero if it has never succeeded.
	LastConnectedAt time.Time
	// ConnectingTime is how long the most recent successful handshake
	// took end to end.
	ConnectingTime time.Duration
	// ServerVersion is the peer's advertised Server (or User-Agent)
	// header value from its most recent successful handshake.
	ServerVersion string
	// ConnectionFailures is the number of consecutive failed connection
	// attempts, saturating at 255 rather than wrapping.
	ConnectionFailures uint8
	// HandshakeSuccessful reflects the outcome of the most recent
	// handshake attempt against this node.
	HandshakeSuccessful bool
}

// Registry is the process-wide table of KnownNetwork nodes. Construct it
// with New; the zero value has nil maps and is not ready to use.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]*Node

	connMu      sync.RWMutex
	connections map[edge]struct{}
}

type edge struct {
	from, to string
}

// New returns an empty, ready-to-use Registry.
func New() *Registry {
	return &Registry{nodes: make(map[string]*Node), connections: make(map[edge]struct{})}
}

// key normalizes an address for use as the map key, so "host:port" and a
// *net.TCPAddr referring to the same endpoint collide.
func key(addr net.Addr) string {
	return addr.String()
}

// NewNode inserts addr into the registry if it is not already present,
// leaving any existing statistics untouched. Returns true if this call
// inserted a fresh record.
func (r *Registry) NewNode(addr net.Addr) bool {
	k := key(addr)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[k]; ok {
		return false
	}
	r.nodes[k] = &Node{}
	return true
}

// UpdateStats idempotently overwrites addr's connecting-time and
// server-version fields and resets its failure counter, called after a
// successful handshake.
func (r *Registry) UpdateStats(addr net.Addr, connectingTime time.Duration, serverVersion string) {
	k := key(addr)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.nodeLocked(k)
	n.LastConnectedAt = time.Now()
	n.ConnectingTime = connectingTime
	n.ServerVersion = serverVersion
	n.ConnectionFailures = 0
}

// IncreaseConnectionFailures increments addr's failure counter,
// saturating at 255, and returns the new value.
func (r *Registry) IncreaseConnectionFailures(addr net.Addr) uint8 {
	k := key(addr)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.nodeLocked(k)
	if n.ConnectionFailures < 255 {
		n.ConnectionFailures++
	}
	return n.ConnectionFailures
}

// SetHandshakeSuccessful records the outcome of the most recent
// handshake attempt against addr.
func (r *Registry) SetHandshakeSuccessful(addr net.Addr, success bool) {
	k := key(addr)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodeLocked(k).HandshakeSuccessful = success
}

// nodeLocked returns addr's record, inserting a fresh one if absent.
// Callers must hold r.mu for writing.
func (r *Registry) nodeLocked(k string) *Node {
	n, ok := r.nodes[k]
	if !ok {
		n = &Node{}
		r.nodes[k] = n
	}
	return n
}

// Node returns a copy of addr's current record and whether it is known.
func (r *Registry) Node(addr net.Addr) (Node, bool) {
	k := key(addr)
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[k]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns a snapshot of every known node, keyed by address string.
func (r *Registry) Nodes() map[string]Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Node, len(r.nodes))
	for k, v := range r.nodes {
		out[k] = *v
	}
	return out
}

// InsertConnections records that from reported peers as its connections,
// for crawl-graph reconstruction.
func (r *Registry) InsertConnections(from string, peers []string) {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	for _, p := range peers {
		r.connections[edge{from: from, to: p}] = struct{}{}
	}
}

// Connections returns a snapshot of every recorded (from, to) edge.
func (r *Registry) Connections() [][2]string {
	r.connMu.RLock()
	defer r.connMu.RUnlock()
	out := make([][2]string, 0, len(r.connections))
	for e := range r.connections {
		out = append(out, [2]string{e.from, e.to})
	}
	return out
}
