package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/studymate/internal/intent"
)

var rememberCmd = &cobra.Command{
	Use:   "remember <fact>",
	Short: "Store a fact in the memory service",
	Long: `Store a fact for the configured user. A leading "remember that" style
trigger is stripped, so both of these store the same fact:

  studymate remember "I prefer studying in the morning"
  studymate remember "remember that I prefer studying in the morning"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemember,
}

func runRemember(cmd *cobra.Command, args []string) error {
	client := newMemoryClient()
	if client == nil {
		return fmt.Errorf("memory service not configured (set MEM0_API_KEY)")
	}

	fact := intent.StripTrigger(strings.Join(args, " "))
	if fact == "" {
		return fmt.Errorf("nothing to remember")
	}

	rec, err := client.Add(cmd.Context(), cfg.UserID, fact)
	if err != nil {
		return fmt.Errorf("store memory: %w", err)
	}

	fmt.Printf("Remembered: %s\n", fact)
	if rec.ID != "" {
		fmt.Printf("  id: %s\n", rec.ID)
	}
	return nil
}
