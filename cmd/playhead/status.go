package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("daemon unreachable at %s: %w", serverURL, err)
	}

	if jsonOutput {
		printJSON(status)
		return nil
	}

	fmt.Printf("playheadd %s\n", status.Version)
	fmt.Printf("  Uptime:  %s\n", (time.Duration(status.UptimeSeconds) * time.Second).String())
	fmt.Printf("  Session: %s\n", status.SessionState)
	return nil
}
