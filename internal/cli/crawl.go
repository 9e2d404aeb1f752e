package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xrplsynth/synthnode/internal/config"
	"github.com/xrplsynth/synthnode/internal/crawler"
	"github.com/xrplsynth/synthnode/internal/knownnetwork"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Walk the peer graph, handshaking with every address discovered",
	Long: `Crawl dials bootstrap_peers and fixed_peers, up to max_in_flight
concurrent handshakes at a time, persisting Known Network statistics to
data_dir between sweeps. No peer-list reader is wired in, so addresses
that peers gossip are not added to the frontier.`,
	Run: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatal("synthnode: load config: ", err)
	}

	id, err := cfg.LoadIdentity()
	if err != nil {
		log.Fatal("synthnode: load identity: ", err)
	}

	registry := knownnetwork.New()
	var store *knownnetwork.Store
	if cfg.DataDir != "" {
		store, err = knownnetwork.OpenStore(cfg.DataDir)
		if err != nil {
			log.Fatal("synthnode: open known network store: ", err)
		}
		defer store.Close()

		if nodes, err := store.LoadSnapshot(); err == nil {
			registry.Seed(nodes)
		}
	}

	node := crawler.NewNode(id, cfg.Handshake.ToHandshakeConfig(), registry)
	defer node.Close()

	// No external peer-list collaborator is wired in; each sweep only
	// dials the configured bootstrap/fixed peers rather than following
	// gossiped addresses, since parsing the binary peer-list message is
	// out of scope here.
	c, err := crawler.NewCrawler(node, registry, nil, cfg.MaxInFlight)
	if err != nil {
		log.Fatal("synthnode: build crawler: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.CrawlInterval)
	defer ticker.Stop()

	for {
		c.Seed(cfg.BootstrapPeers...)
		c.ForceSeed(cfg.FixedPeers...)

		if !quiet {
			fmt.Printf("crawl sweep starting, %d known node(s)\n", len(registry.Nodes()))
		}
		if err := c.Run(ctx); err != nil && ctx.Err() == nil {
			log.Print("synthnode: crawl sweep: ", err)
		}
		if store != nil {
			if err := store.PersistSnapshot(registry.Nodes()); err != nil {
				log.Print("synthnode: persist known network snapshot: ", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
