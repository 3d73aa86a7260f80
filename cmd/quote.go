package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"intents-swap/pkg/amount"
	"intents-swap/pkg/oneclick"
)

var (
	quoteFromChain string
	quoteToChain   string
	quoteFromToken string
	quoteToToken   string
	quoteAmount    string
	quoteAddress   string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Get a dry-run quote for a cross-chain swap",
	Long: `Fetch a price preview for a swap without generating a deposit address.

Tokens may be given by symbol or by asset id; when omitted, the first token
of the chosen chain is used. Without a configured wallet identity, pass
--address so the aggregator has a refund/recipient address to quote against.

Examples:
  intents-swap quote --from-chain near --to-chain eth --amount 2.5
  intents-swap quote --from-chain sol --from-token SOL --to-chain near --to-token USDC --amount 1 --address your.near`,
	Run: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteFromChain, "from-chain", "", "Source blockchain")
	quoteCmd.Flags().StringVar(&quoteToChain, "to-chain", "", "Destination blockchain")
	quoteCmd.Flags().StringVar(&quoteFromToken, "from-token", "", "Source token (symbol or asset id)")
	quoteCmd.Flags().StringVar(&quoteToToken, "to-token", "", "Destination token (symbol or asset id)")
	quoteCmd.Flags().StringVar(&quoteAmount, "amount", "", "Amount to swap (REQUIRED)")
	quoteCmd.Flags().StringVar(&quoteAddress, "address", "", "Wallet address to quote against when no wallet is configured")
	_ = quoteCmd.MarkFlagRequired("amount")
}

func runQuote(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	app, err := newApp(cmd.Context(), quoteAddress)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	app.applySelection(quoteFromChain, quoteFromToken, quoteToChain, quoteToToken, quoteAmount)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	quote, err := app.controller.RequestQuote(cmd.Context(), true)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	sel := app.controller.Selection()
	amountOut, ferr := amount.FormatFromBase(quote.AmountOut, app.destDecimals())
	if ferr != nil {
		amountOut = quote.AmountOut
	}

	if jsonOutput {
		output := map[string]interface{}{
			"from_chain":        sel.FromChain,
			"from_token":        sel.FromToken,
			"to_chain":          sel.ToChain,
			"to_token":          sel.ToToken,
			"amount_in":         sel.Amount,
			"amount_out":        amountOut,
			"amount_out_base":   quote.AmountOut,
			"time_estimate_sec": quote.EstimatedTimeSeconds,
			"deadline":          quote.Deadline,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayDryQuote(quote, sel.Amount, amountOut)
}

func displayDryQuote(quote *oneclick.Quote, amountIn, amountOut string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE (DRY RUN)")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:              %s\n", color.YellowString(amountIn))
	fmt.Printf("  To:                ~%s\n", color.YellowString(amountOut))
	fmt.Printf("  Estimated Time:    %.0f seconds\n", quote.EstimatedTimeSeconds)
	fmt.Printf("  Quote Deadline:    %s\n", quote.Deadline)

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
