package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Control the active playback session",
	Long: `Control the active playback session.

Examples:
  playhead session show                    # Current session state
  playhead session load cosmos-ep-3        # Play a unit, resuming its position
  playhead session next                    # Jump to the next unit
  playhead session pause                   # Pause (saves progress)
  playhead session source <url>            # Switch source, keeping position
  playhead session exit                    # End playback`,
	RunE: runSessionShow,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session state",
	RunE:  runSessionShow,
}

var sessionLoadCmd = &cobra.Command{
	Use:   "load <unit>",
	Short: "Load and play a unit from its continuation point",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionLoad,
}

var sessionSourceCmd = &cobra.Command{
	Use:   "source <url>",
	Short: "Switch the playing unit to another source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionSource,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionLoadCmd)
	sessionCmd.AddCommand(sessionSourceCmd)

	for _, action := range []string{"next", "previous", "pause", "play", "exit"} {
		sessionCmd.AddCommand(controlCommand(action))
	}
}

func controlCommand(action string) *cobra.Command {
	short := map[string]string{
		"next":     "Jump to the next unit",
		"previous": "Jump to the previous unit",
		"pause":    "Pause playback and save progress",
		"play":     "Resume paused playback",
		"exit":     "End playback, saving a final resume point",
	}[action]

	return &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewClient(serverURL)
			session, err := client.SessionControl(action)
			if err != nil {
				return fmt.Errorf("%s failed: %w", action, err)
			}
			printSession(session)
			return nil
		},
	}
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	session, err := client.Session()
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	printSession(session)
	return nil
}

func runSessionLoad(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	session, err := client.SessionLoad(args[0])
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	printSession(session)
	return nil
}

func runSessionSource(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	session, err := client.SessionSource(args[0])
	if err != nil {
		return fmt.Errorf("source switch failed: %w", err)
	}
	printSession(session)
	return nil
}

func printSession(s *SessionResponse) {
	if jsonOutput {
		printJSON(s)
		return
	}

	if s.UnitID == "" {
		fmt.Printf("Session: %s\n", s.State)
		return
	}

	fmt.Printf("Session: %s\n", s.State)
	fmt.Printf("  Unit:     %s (%s)\n", s.UnitTitle, s.UnitID)
	fmt.Printf("  Group:    %s\n", s.GroupID)
	fmt.Printf("  Position: %s", formatPosition(s.PositionMS))
	if s.DurationMS > 1 {
		fmt.Printf(" / %s", formatPosition(s.DurationMS))
	}
	fmt.Println()
	if s.SourceURL != "" {
		fmt.Printf("  Source:   %s\n", s.SourceURL)
	}
	if len(s.Sources) > 1 {
		fmt.Printf("  Alternates:\n")
		for _, src := range s.Sources {
			if src != s.SourceURL {
				fmt.Printf("    %s\n", src)
			}
		}
	}
}
