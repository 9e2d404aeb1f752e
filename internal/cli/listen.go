package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xrplsynth/synthnode/internal/config"
	"github.com/xrplsynth/synthnode/internal/crawler"
	"github.com/xrplsynth/synthnode/internal/knownnetwork"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Accept inbound peer connections and respond to handshakes",
	Long: `Listen binds listen_addr and drives the XRPL handshake as the
responder for every inbound connection, recording outcomes in the Known
Network registry until interrupted.`,
	Run: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, args []string) {
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
		} else if !quiet {
			fmt.Printf("known network store: no prior snapshot (%v)\n", err)
		}
	}

	node := crawler.NewNode(id, cfg.Handshake.ToHandshakeConfig(), registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	laddr, err := node.StartListening(ctx, cfg.ListenAddr)
	if err != nil {
		log.Fatal("synthnode: listen: ", err)
	}
	if !quiet {
		fmt.Printf("listening on %s (public key %s)\n", laddr, id.EncodedPublicKey())
	}

	<-ctx.Done()
	if !quiet {
		fmt.Println("shutting down...")
	}
	node.Close()

	if store != nil {
		if err := store.PersistSnapshot(registry.Nodes()); err != nil {
			log.Print("synthnode: persist known network snapshot: ", err)
		}
	}
}
