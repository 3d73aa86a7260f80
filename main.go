package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"intents-swap/cmd"
)

func main() {
	// A .env file is optional; configuration can come from real env vars too.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
