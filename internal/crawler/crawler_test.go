package crawler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrplsynth/synthnode/internal/knownnetwork"
)

// chainPeerListFetcher hands back whatever addresses the test has
// pre-registered for the dialed address, simulating a gossiped peer
// list without implementing the binary protocol.
func chainPeerListFetcher(graph map[string][]string) PeerListFetcher {
	return func(ctx context.Context, c *Conn) ([]string, error) {
		return graph[c.Addr.String()], nil
	}
}

func TestCrawlerDialsSeedAndFollowsFetchedPeers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverA := newTestNode(t)
	laddrA, err := serverA.StartListening(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer serverA.Close()

	serverB := newTestNode(t)
	laddrB, err := serverB.StartListening(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer serverB.Close()

	graph := map[string][]string{
		laddrA.String(): {laddrB.String()},
	}

	client := newTestNode(t)
	defer client.Close()

	registry := knownnetwork.New()
	c, err := NewCrawler(client, registry, chainPeerListFetcher(graph), 2)
	require.NoError(t, err)
	c.Seed(laddrA.String())

	require.NoError(t, c.Run(ctx))

	assert.True(t, client.IsConnected(laddrA.String()))
	assert.True(t, client.IsConnected(laddrB.String()))

	conns := registry.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, laddrA.String(), conns[0][0])
	assert.Equal(t, laddrB.String(), conns[0][1])
}

func TestCrawlerSkipsAlreadySeenAddresses(t *testing.T) {
	client := newTestNode(t)
	defer client.Close()

	c, err := NewCrawler(client, knownnetwork.New(), nil, 1)
	require.NoError(t, err)

	c.Seed("127.0.0.1:1")
	c.Seed("127.0.0.1:1")
	assert.Len(t, c.frontier.Keys(), 1)
}

func TestCrawlerSurvivesUnreachableAddress(t *testing.T) {
	ctx := context.Background()
	client := newTestNode(t)
	defer client.Close()

	c, err := NewCrawler(client, knownnetwork.New(), nil, 1)
	require.NoError(t, err)
	c.Seed("127.0.0.1:1")

	require.NoError(t, c.Run(ctx))
	assert.Equal(t, 0, client.NumConnected())
}

func TestCrawlerRespectsMaxInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var peak, current int

	trackFetcher := func(ctx context.Context, c *Conn) ([]string, error) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		current--
		mu.Unlock()
		return nil, nil
	}

	const n = 4
	var servers []*Node
	var addrs []string
	for i := 0; i < n; i++ {
		s := newTestNode(t)
		a, err := s.StartListening(ctx, "127.0.0.1:0")
		require.NoError(t, err)
		servers = append(servers, s)
		addrs = append(addrs, a.String())
	}
	defer func() {
		for _, s := range servers {
			s.Close()
		}
	}()

	client := newTestNode(t)
	defer client.Close()

	c, err := NewCrawler(client, knownnetwork.New(), trackFetcher, 2)
	require.NoError(t, err)
	c.Seed(addrs...)

	require.NoError(t, c.Run(ctx))
	assert.LessOrEqual(t, peak, 2)
	assert.Equal(t, n, client.NumConnected())
}
