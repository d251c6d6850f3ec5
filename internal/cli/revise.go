package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/studymate/internal/intent"
)

var reviseCmd = &cobra.Command{
	Use:   "revise <record-id> <new fact>",
	Short: "Replace the text of a stored memory",
	Long: `Replace what a memory record says, keeping its ID. Use 'studymate recall'
to find the record ID first:

  studymate recall "study preferences"
  studymate revise mem-42 "I prefer studying in the evening now"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRevise,
}

func runRevise(cmd *cobra.Command, args []string) error {
	client := newMemoryClient()
	if client == nil {
		return fmt.Errorf("memory service not configured (set MEM0_API_KEY)")
	}

	fact := intent.StripTrigger(strings.Join(args[1:], " "))
	if fact == "" {
		return fmt.Errorf("nothing to store")
	}

	rec, err := client.Update(cmd.Context(), args[0], fact)
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}

	fmt.Printf("Updated %s: %s\n", rec.ID, rec.Text)
	return nil
}
