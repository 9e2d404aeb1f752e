package knownnetwork

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Store persists Registry snapshots to an embedded pebble KV store, so a
// crawler's accumulated node statistics survive a process restart
// instead of starting from an empty frontier every time. Grounded on the
// teacher's internal/storage/database/pebble.DB, trimmed to the
// read/write-whole-value shape the registry snapshot needs.
type Store struct {
	db *pebble.DB
}

// OpenStore opens (creating if necessary) a pebble store rooted at dir.
func OpenStore(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("knownnetwork: open pebble store at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying pebble store.
func (s *Store) Close() error {
	return s.db.Close()
}

// PersistSnapshot overwrites the stored record for every address in
// nodes. It does not delete addresses absent from nodes, since a
// snapshot is taken from a live Registry that only ever grows.
func (s *Store) PersistSnapshot(nodes map[string]Node) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for addr, node := range nodes {
		val, err := json.Marshal(node)
		if err != nil {
			return fmt.Errorf("knownnetwork: marshal node %s: %w", addr, err)
		}
		if err := batch.Set([]byte(addr), val, nil); err != nil {
			return fmt.Errorf("knownnetwork: stage node %s: %w", addr, err)
		}
	}
	return batch.Commit(pebble.Sync)
}

// LoadSnapshot reads every persisted node record back, for seeding a
// fresh Registry at startup.
func (s *Store) LoadSnapshot() (map[string]Node, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("knownnetwork: open iterator: %w", err)
	}
	defer iter.Close()

	out := make(map[string]Node)
	for iter.First(); iter.Valid(); iter.Next() {
		var node Node
		if err := json.Unmarshal(iter.Value(), &node); err != nil {
			return nil, fmt.Errorf("knownnetwork: unmarshal node %s: %w", iter.Key(), err)
		}
		out[string(iter.Key())] = node
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("knownnetwork: iterate store: %w", err)
	}
	return out, nil
}

// Seed loads a Store's persisted snapshot into an empty Registry,
// intended to be called once at startup before the crawler begins
// dialing.
func (r *Registry) Seed(nodes map[string]Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for addr, node := range nodes {
		n := node
		r.nodes[addr] = &n
	}
}
