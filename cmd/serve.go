package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"intents-swap/pkg/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the swap web UI",
	Long: `Start a local web server hosting the single-page swap UI.

The page connects the configured wallet identity, fetches quotes and
executes swaps through the same lifecycle controller the CLI uses.

Examples:
  intents-swap serve
  intents-swap serve --port 3000`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from configuration)")
}

func runServe(cmd *cobra.Command, args []string) {
	app, err := newApp(cmd.Context(), "")
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	port := app.cfg.ListenPort
	if servePort != 0 {
		port = servePort
	}

	server := web.NewServer(app.controller, app.session, port, app.log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			app.log.Fatal("HTTP server failed: ", err)
		}
	case <-interrupt:
		if err := server.Shutdown(); err != nil {
			app.log.Error("Shutdown failed: ", err)
		}
	}
}
