package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "0.1.0-dev"

// rootFlags holds the persistent flags shared by every command
type rootFlags struct {
	configFile string
	node       string
	debug      bool
}

// NewRootCommand builds the tidepay command tree
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "tidepay",
		Short: "tidepay - XRPL account history and submission client",
		Long: `tidepay reads the validated transaction history of XRPL accounts from a
node, checking that the node holds every ledger of the searched range, and
submits signed transactions.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.node, "node", "", "node URL, overrides node.url (http, https, ws or wss)")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newTransactionsCmd(flags),
		newTxCmd(flags),
		newSubmitCmd(flags),
		newLedgersCmd(flags),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
