package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"intents-swap/pkg/amount"
	"intents-swap/pkg/oneclick"
	"intents-swap/pkg/swap"
)

var (
	swapFromChain string
	swapToChain   string
	swapFromToken string
	swapToToken   string
	swapAmount    string
	swapAddress   string
	noConfirm     bool
	noWatch       bool
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Execute a cross-chain token swap",
	Long: `Execute a swap through the NEAR Intents 1Click API.

A live quote generates a deposit address; the swap completes once funds
arrive there. When auto-deposit is configured for the origin chain the
transfer is sent automatically, otherwise send the funds yourself. The
command then watches the deposit status until the swap settles.

Examples:
  # NEAR to Ethereum USDC
  intents-swap swap --from-chain near --to-chain eth --amount 2.5

  # Skip the confirmation prompt
  intents-swap swap --from-chain sol --to-chain near --amount 1 --yes

  # Fire and forget; check later with 'intents-swap status'
  intents-swap swap --from-chain near --to-chain eth --amount 2.5 --no-watch`,
	Run: runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&swapFromChain, "from-chain", "", "Source blockchain")
	swapCmd.Flags().StringVar(&swapToChain, "to-chain", "", "Destination blockchain")
	swapCmd.Flags().StringVar(&swapFromToken, "from-token", "", "Source token (symbol or asset id)")
	swapCmd.Flags().StringVar(&swapToToken, "to-token", "", "Destination token (symbol or asset id)")
	swapCmd.Flags().StringVar(&swapAmount, "amount", "", "Amount to swap (REQUIRED)")
	swapCmd.Flags().StringVar(&swapAddress, "address", "", "Refund/recipient address when no wallet is configured")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	swapCmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not watch the deposit status after executing")
	_ = swapCmd.MarkFlagRequired("amount")
}

func runSwap(cmd *cobra.Command, args []string) {
	app, err := newApp(cmd.Context(), swapAddress)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	app.applySelection(swapFromChain, swapFromToken, swapToChain, swapToToken, swapAmount)

	// Preview with a dry quote before committing
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching quote..."
	s.Start()
	preview, err := app.controller.RequestQuote(cmd.Context(), true)
	s.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	sel := app.controller.Selection()
	amountOut, ferr := amount.FormatFromBase(preview.AmountOut, app.destDecimals())
	if ferr != nil {
		amountOut = preview.AmountOut
	}
	displayDryQuote(preview, sel.Amount, amountOut)

	if !noConfirm && !confirmSwap() {
		fmt.Println("\nSwap cancelled.")
		os.Exit(0)
	}

	// The live quote generates the deposit address and starts the status poll
	s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Executing swap..."
	s.Start()
	err = app.controller.ExecuteSwap(cmd.Context())
	s.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	quote, ok := app.controller.Quote()
	if !ok {
		printError(fmt.Errorf("no quote stored after execution"))
		os.Exit(1)
	}

	displayDepositInstructions(&quote, sel.Amount)

	if status := app.controller.Status(); status.Message != "" {
		fmt.Printf("  %s\n\n", color.YellowString(status.Message))
	}

	if noWatch {
		fmt.Println("You can monitor the swap status using:")
		color.Cyan("  intents-swap status %s\n\n", quote.DepositAddress)
		return
	}

	watchController(app.controller)
}

// watchController prints status changes until the swap reaches a terminal
// state or the user interrupts.
func watchController(controller *swap.Controller) {
	fmt.Println("Watching swap status. Press Ctrl+C to stop.")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-interrupt:
			fmt.Println("\nStopped watching. The swap continues server-side.")
			return
		case <-ticker.C:
			status := controller.Status()
			if status.Message != last {
				last = status.Message
				fmt.Printf("  [%s] %s\n", time.Now().Format("15:04:05"), status.Message)
			}

			switch controller.State() {
			case swap.StateSuccess:
				printSuccess(color.GreenString("Swap completed!"))
				return
			case swap.StateRefunded:
				printSuccess(color.YellowString("Swap refunded."))
				return
			case swap.StateFailed:
				printError(fmt.Errorf("swap failed"))
				return
			}
		}
	}
}

func displayDepositInstructions(quote *oneclick.Quote, amountIn string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Yellow("                 DEPOSIT INSTRUCTIONS")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\nTo complete the swap, send %s to:\n\n", amountIn)
	color.Cyan("  %s\n", quote.DepositAddress)

	if quote.Memo != "" {
		fmt.Printf("\nMemo (REQUIRED): %s\n", color.MagentaString(quote.Memo))
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
