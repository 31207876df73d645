package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/playhead/internal/title"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Show and manage continuation records",
	Long: `Show and manage continuation records.

Examples:
  playhead resume list                    # Continue-watching rail
  playhead resume list --filter cosmos    # Fuzzy-match on titles
  playhead resume group cosmos            # Where to continue a series
  playhead resume rm cosmos-ep-3          # Forget a unit's progress`,
}

var resumeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the continue-watching rail",
	RunE:  runResumeList,
}

var resumeGroupCmd = &cobra.Command{
	Use:   "group <group>",
	Short: "Show where a group continues from",
	Args:  cobra.ExactArgs(1),
	RunE:  runResumeGroup,
}

var resumeRmCmd = &cobra.Command{
	Use:   "rm <unit>",
	Short: "Remove a unit's continuation record",
	Args:  cobra.ExactArgs(1),
	RunE:  runResumeRm,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeListCmd.Flags().IntP("limit", "n", 20, "Maximum records to show")
	resumeListCmd.Flags().StringP("filter", "f", "", "Fuzzy-match group and unit titles")
	resumeCmd.AddCommand(resumeListCmd)
	resumeCmd.AddCommand(resumeGroupCmd)
	resumeCmd.AddCommand(resumeRmCmd)
}

func runResumeList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	filter, _ := cmd.Flags().GetString("filter")

	client := NewClient(serverURL)
	rail, err := client.Resume(limit)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if filter != "" {
		rail.Items = filterItems(rail.Items, filter)
	}

	if jsonOutput {
		printJSON(rail)
		return nil
	}

	printResumeList(rail.Items)
	return nil
}

// filterItems keeps records whose group or unit title fuzzily matches.
func filterItems(items []ResumeItem, filter string) []ResumeItem {
	matched := make([]ResumeItem, 0, len(items))
	for _, item := range items {
		if title.Matches(filter, item.GroupTitle) || title.Matches(filter, item.UnitTitle) {
			matched = append(matched, item)
		}
	}
	return matched
}

func printResumeList(items []ResumeItem) {
	if len(items) == 0 {
		fmt.Println("Nothing to continue watching")
		return
	}

	fmt.Printf("Continue Watching (%d):\n\n", len(items))
	fmt.Printf("  %-24s %-28s %-10s %-8s %s\n", "UNIT", "TITLE", "POSITION", "WATCHED", "UPDATED")
	fmt.Println("  " + strings.Repeat("-", 88))

	for i := range items {
		item := &items[i]
		t := item.UnitTitle
		if len(t) > 28 {
			t = t[:25] + "..."
		}
		fmt.Printf("  %-24s %-28s %-10s %-8s %s\n",
			item.UnitID, t,
			formatPosition(item.PositionMS),
			fmt.Sprintf("%.0f%%", item.Fraction*100),
			time.UnixMilli(item.UpdatedAtMS).Format("2006-01-02 15:04"),
		)
	}
}

func runResumeGroup(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	item, err := client.GroupResume(args[0])
	if err != nil {
		if strings.Contains(err.Error(), "NOT_FOUND") {
			fmt.Printf("No progress for %s - start from the first unit\n", args[0])
			return nil
		}
		return fmt.Errorf("fetch failed: %w", err)
	}

	if jsonOutput {
		printJSON(item)
		return nil
	}

	fmt.Printf("%s continues at %s (%s, %.0f%% watched)\n",
		item.GroupTitle, item.UnitTitle, formatPosition(item.PositionMS), item.Fraction*100)
	return nil
}

func runResumeRm(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	if err := client.RemoveResume(args[0]); err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}
	fmt.Printf("Progress for %s removed\n", args[0])
	return nil
}

// formatPosition renders milliseconds as h:mm:ss or m:ss.
func formatPosition(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
