package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intents-swap",
	Short: "Cross-chain swaps using the NEAR Intents 1Click API",
	Long: `intents-swap quotes and executes cross-chain token swaps through the
NEAR Intents 1Click aggregator. A swap deposits funds to a generated address;
the aggregator settles the intent on the destination chain.

Examples:
  intents-swap tokens
  intents-swap quote --from-chain near --to-chain eth --amount 2.5
  intents-swap swap --from-chain near --to-chain eth --amount 2.5
  intents-swap status <deposit-address>
  intents-swap serve`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
