// Package cmd contains the CLI entry points.
package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sellerscope",
	Short: "Sellerscope - AI analyst for Amazon seller data",
	Long: `Sellerscope mediates between merchants, a local inference service and
their Amazon Seller Central data. It exposes a streaming chat API where the
model can call data-retrieval tools (sales, inventory, P&L, advertising)
against the caller's tenant database.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.sellerscope/config.yaml)")
}
