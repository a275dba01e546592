// Package main provides the entry point for the RemoteBoard job marketplace server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "remoteboard",
	Short: "RemoteBoard job marketplace server",
	Long:  "RemoteBoard is a remote-job marketplace with an auto-apply engine that analyzes application forms, previews generated responses, and submits applications on the user's behalf.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
