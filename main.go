// Package main provides the tastetrail entry point.
// tastetrail runs the TasteTrail backend: channel sync, the extraction
// pipeline, geocoding enrichment, and the REST API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tastetrail/tastetrail/cmd"
)

func main() {
	// Best-effort .env loading for local development; production uses real
	// environment variables.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
