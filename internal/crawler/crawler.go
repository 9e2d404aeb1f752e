package crawler

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/xrplsynth/synthnode/internal/knownnetwork"
)

// PeerListFetcher, given an established connection's handshake outcome,
// returns the addresses that peer gossiped back (its peer-list
// response). Parsing the binary peer-list message is left to the
// caller, so the crawler takes this as an injected callback rather than
// implementing that wire format itself.
type PeerListFetcher func(ctx context.Context, c *Conn) ([]string, error)

// FrontierCacheSize bounds how many not-yet-dialed addresses the
// crawler remembers before the oldest are evicted, so a gossiping peer
// graph can't grow the frontier without bound.
const FrontierCacheSize = 4096

// Crawler chains handshakes across a discovered peer graph: an initial
// set of seed addresses, expanded by whatever PeerListFetcher reports
// after each successful handshake, dialed with bounded concurrency.
type Crawler struct {
	node     *Node
	registry *knownnetwork.Registry
	fetcher  PeerListFetcher
	maxInFl  int

	frontier *lru.Cache[string, struct{}]
	seen     *lru.Cache[string, struct{}]
}

// NewCrawler constructs a Crawler that dials through node, bounding
// concurrent in-flight handshakes to maxInFlight.
func NewCrawler(node *Node, registry *knownnetwork.Registry, fetcher PeerListFetcher, maxInFlight int) (*Crawler, error) {
	frontier, err := lru.New[string, struct{}](FrontierCacheSize)
	if err != nil {
		return nil, fmt.Errorf("crawler: build frontier cache: %w", err)
	}
	seen, err := lru.New[string, struct{}](FrontierCacheSize)
	if err != nil {
		return nil, fmt.Errorf("crawler: build seen cache: %w", err)
	}
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &Crawler{
		node:     node,
		registry: registry,
		fetcher:  fetcher,
		maxInFl:  maxInFlight,
		frontier: frontier,
		seen:     seen,
	}, nil
}

// Seed adds addresses to the dial frontier without dialing them yet.
func (c *Crawler) Seed(addrs ...string) {
	for _, a := range addrs {
		if _, ok := c.seen.Get(a); ok {
			continue
		}
		c.frontier.Add(a, struct{}{})
	}
}

// ForceSeed adds addresses to the frontier even if a previous sweep
// already dialed them, for fixed peers that a caller wants redialed on
// every sweep rather than only once.
func (c *Crawler) ForceSeed(addrs ...string) {
	for _, a := range addrs {
		c.seen.Remove(a)
		c.frontier.Add(a, struct{}{})
	}
}

// Run drains the frontier, dialing up to maxInFlight addresses
// concurrently, until the frontier is empty and every in-flight dial has
// finished, or ctx is cancelled. Each successful handshake's
// PeerListFetcher result is folded back into the frontier so newly
// gossiped addresses get a turn, which is why a worker finishing is what
// wakes the coordinator loop rather than a fixed work list. Dial and
// handshake failures are not returned and do not stop the crawl; Run
// returns the first PeerListFetcher error, via errgroup's propagation,
// and stops early on that error or on ctx cancellation.
func (c *Crawler) Run(ctx context.Context) error {
	sem := semaphore.NewWeighted(int64(c.maxInFl))
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	inFlight := 0
	idle := make(chan struct{}, 1)
	wake := func() {
		select {
		case idle <- struct{}{}:
		default:
		}
	}

	for {
		addr, ok := c.nextFrontierAddr()
		if !ok {
			mu.Lock()
			drained := inFlight == 0
			mu.Unlock()
			if drained {
				break
			}
			select {
			case <-idle:
				continue
			case <-gctx.Done():
				return g.Wait()
			}
		}

		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		mu.Lock()
		inFlight++
		mu.Unlock()

		g.Go(func() error {
			defer func() {
				sem.Release(1)
				mu.Lock()
				inFlight--
				mu.Unlock()
				wake()
			}()
			return c.dialOne(gctx, addr)
		})
	}

	return g.Wait()
}

func (c *Crawler) nextFrontierAddr() (string, bool) {
	keys := c.frontier.Keys()
	if len(keys) == 0 {
		return "", false
	}
	addr := keys[0]
	c.frontier.Remove(addr)
	c.seen.Add(addr, struct{}{})
	return addr, true
}

// dialOne performs one handshake attempt; a handshake failure is recorded
// in the registry by Node.handle (a failed TCP dial is not recorded), and
// either kind of failure is swallowed here so the frontier walk keeps
// going. There is no automatic retry within a sweep; a later sweep
// deciding whether to redial a failed address is the caller's call.
func (c *Crawler) dialOne(ctx context.Context, addr string) error {
	if err := c.node.Connect(ctx, addr); err != nil {
		return nil
	}
	if c.fetcher == nil {
		return nil
	}
	conn, ok := c.node.Conn(addr)
	if !ok {
		return nil
	}
	peers, err := c.fetcher(ctx, conn)
	if err != nil {
		return fmt.Errorf("crawler: peer-list fetch from %s: %w", addr, err)
	}
	c.Seed(peers...)
	if c.registry != nil {
		c.registry.InsertConnections(addr, peers)
	}
	return nil
}
