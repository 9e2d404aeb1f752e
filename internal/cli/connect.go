package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/xrplsynth/synthnode/internal/config"
	"github.com/xrplsynth/synthnode/internal/crawler"
	"github.com/xrplsynth/synthnode/internal/knownnetwork"
)

var connectCmd = &cobra.Command{
	Use:   "connect [address]",
	Short: "Dial a single peer and run the handshake once",
	Long: `Connect dials address, drives the XRPL TLS handshake and HTTP
upgrade dialogue as the initiator, and reports the outcome. It is meant
for one-shot conformance checks against a specific rippled instance.`,
	Args: cobra.ExactArgs(1),
	Run:  runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatal("synthnode: load config: ", err)
	}

	id, err := cfg.LoadIdentity()
	if err != nil {
		log.Fatal("synthnode: load identity: ", err)
	}

	registry := knownnetwork.New()
	node := crawler.NewNode(id, cfg.Handshake.ToHandshakeConfig(), registry)
	defer node.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	addr := args[0]
	if !quiet {
		fmt.Printf("connecting to %s...\n", addr)
	}

	start := time.Now()
	if err := node.Connect(ctx, addr); err != nil {
		fmt.Printf("handshake failed after %s: %v\n", time.Since(start), err)
		return
	}

	c, _ := node.Conn(addr)
	fmt.Printf("handshake succeeded in %s\n", time.Since(start))
	fmt.Printf("  peer public key: %s\n", c.Peer.PublicKey)
	fmt.Printf("  peer version:    %s\n", c.Peer.ServerVersion)
	fmt.Printf("  upgrade version: %s\n", c.Peer.NegotiatedUpgrade)
}
