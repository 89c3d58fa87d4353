package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL string = "http://localhost:8000"
	output string = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "trackctl",
	Short: "trackctl - Manage tracked leads and engagement events",
	Long: `trackctl provides command-line access to the tracking API.
List, create and delete leads, and log open/click events manually.`,
}

func init() {
	if v := os.Getenv("TRACKCTL_API"); v != "" {
		apiURL = v
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
