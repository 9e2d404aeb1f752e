package knownnetwork

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(s string) net.Addr {
	a, err := net.ResolveTCPAddr("tcp", s)
	if err != nil {
		panic(err)
	}
	return a
}

func TestNewNodeInsertsOnceAndPreservesStats(t *testing.T) {
	r := New()
	a := addr("127.0.0.1:1")

	assert.True(t, r.NewNode(a))
	r.UpdateStats(a, time.Second, "rippled-1.12.0")

	assert.False(t, r.NewNode(a), "second NewNode call must not reset stats")
	n, ok := r.Node(a)
	require.True(t, ok)
	assert.Equal(t, "rippled-1.12.0", n.ServerVersion)
}

func TestConnectionFailuresSaturatesAt255(t *testing.T) {
	r := New()
	a := addr("127.0.0.1:2")
	r.NewNode(a)

	var last uint8
	for i := 0; i < 300; i++ {
		last = r.IncreaseConnectionFailures(a)
	}
	assert.EqualValues(t, 255, last)

	n, ok := r.Node(a)
	require.True(t, ok)
	assert.EqualValues(t, 255, n.ConnectionFailures)
}

func TestUpdateStatsResetsFailureCounter(t *testing.T) {
	r := New()
	a := addr("127.0.0.1:3")
	r.NewNode(a)
	r.IncreaseConnectionFailures(a)
	r.IncreaseConnectionFailures(a)

	r.UpdateStats(a, time.Millisecond, "synthnode/1.0")

	n, ok := r.Node(a)
	require.True(t, ok)
	assert.Zero(t, n.ConnectionFailures)
}

func TestSetHandshakeSuccessful(t *testing.T) {
	r := New()
	a := addr("127.0.0.1:4")
	r.NewNode(a)

	r.SetHandshakeSuccessful(a, true)
	n, ok := r.Node(a)
	require.True(t, ok)
	assert.True(t, n.HandshakeSuccessful)

	r.SetHandshakeSuccessful(a, false)
	n, ok = r.Node(a)
	require.True(t, ok)
	assert.False(t, n.HandshakeSuccessful)
}

func TestNodesSnapshotIsACopy(t *testing.T) {
	r := New()
	a := addr("127.0.0.1:5")
	r.NewNode(a)

	snap := r.Nodes()
	require.Len(t, snap, 1)

	r.UpdateStats(a, time.Second, "x")
	assert.Empty(t, snap[a.String()].ServerVersion, "snapshot must not observe later mutation")
}

func TestInsertAndListConnections(t *testing.T) {
	r := New()
	r.InsertConnections("a", []string{"b", "c"})

	conns := r.Connections()
	assert.Len(t, conns, 2)
}

func TestSeedPopulatesFromPersistedSnapshot(t *testing.T) {
	r := New()
	r.Seed(map[string]Node{
		"127.0.0.1:6": {ServerVersion: "rippled-2.0.0", HandshakeSuccessful: true},
	})

	n, ok := r.Node(addr("127.0.0.1:6"))
	require.True(t, ok)
	assert.Equal(t, "rippled-2.0.0", n.ServerVersion)
}
