package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"intents-swap/pkg/oneclick"
)

var (
	watchStatus   bool
	watchInterval int
	statusMemo    string
)

var statusCmd = &cobra.Command{
	Use:   "status <deposit-address>",
	Short: "Check the status of a swap",
	Long: `Check the execution status of a swap by its deposit address.

Deposits on memo-based chains also need the memo from the quote.

Examples:
  intents-swap status 0x1234...abcd
  intents-swap status 0x1234...abcd --watch
  intents-swap status <address> --memo 12345 --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
	statusCmd.Flags().StringVar(&statusMemo, "memo", "", "Deposit memo, when the quote carried one")
}

func runStatus(cmd *cobra.Command, args []string) {
	depositAddress := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	app, err := newApp(cmd.Context(), "")
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	if watchStatus {
		watchSwapStatus(cmd.Context(), app, depositAddress, jsonOutput)
	} else {
		checkSwapStatus(cmd.Context(), app, depositAddress, jsonOutput)
	}
}

func checkSwapStatus(ctx context.Context, app *app, depositAddress string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking swap status..."
		s.Start()
	}

	status, err := app.client.Status(ctx, depositAddress, statusMemo)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayStatus(status, depositAddress)
	}
}

func watchSwapStatus(ctx context.Context, app *app, depositAddress string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching swap status (Deposit Address: %s)\n", color.CyanString(depositAddress))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	if checkAndDisplayStatus(ctx, app, depositAddress) {
		return
	}

	for range ticker.C {
		if checkAndDisplayStatus(ctx, app, depositAddress) {
			return
		}
	}
}

// checkAndDisplayStatus fetches and prints the status, reporting whether it
// is terminal. Fetch errors are printed and the watch continues.
func checkAndDisplayStatus(ctx context.Context, app *app, depositAddress string) bool {
	status, err := app.client.Status(ctx, depositAddress, statusMemo)
	if err != nil {
		color.Red("Error: %v", err)
		return false
	}

	displayStatus(status, depositAddress)
	return oneclick.IsTerminalStatus(status.Status)
}

func displayStatus(status *oneclick.StatusResponse, depositAddress string) {
	fmt.Printf("  [%s]  %s  %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		color.CyanString(depositAddress),
		getColoredStatus(status.Status))
}
