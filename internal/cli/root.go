// Package cli wires the synthnode binary's subcommands onto cobra: a
// package-level rootCmd, persistent flags bound to package vars, and an
// Execute entrypoint called once from main.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "synthnode",
	Short: "synthnode - an XRPL peer handshake conformance tool",
	Long: `synthnode drives the XRPL peer-to-peer TLS handshake and HTTP/1.1
upgrade dialogue against real or synthetic peers. It is not a ledger node:
it speaks only as far as the post-handshake byte stream and hands that off
to whatever external tooling wants to continue the session.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and runs it. It is
// called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress status output")
}
