// Package main provides the entry point for the outreach timing agent CLI
// and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "signal_agent",
	Short: "GitHub activity outreach timing agent",
	Long:  "Signal Agent watches public GitHub activity, scores how ready a person is to be contacted, and drafts an opening message when the timing is right.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
