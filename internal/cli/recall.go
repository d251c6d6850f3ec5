package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/studymate/internal/bot"
)

var recallLimit int

var recallCmd = &cobra.Command{
	Use:   "recall [query]",
	Short: "List or search stored memories",
	Long: `Without a query, lists everything the memory service has stored for the
configured user. With a query, runs a semantic search and prints results in
the service's relevance order.`,
	RunE: runRecall,
}

func init() {
	recallCmd.Flags().IntVarP(&recallLimit, "limit", "n", 10, "max results")
}

func runRecall(cmd *cobra.Command, args []string) error {
	client := newMemoryClient()
	if client == nil {
		return fmt.Errorf("memory service not configured (set MEM0_API_KEY)")
	}

	ctx := cmd.Context()
	if len(args) == 0 {
		records, err := client.List(ctx, cfg.UserID, recallLimit)
		if err != nil {
			return fmt.Errorf("list memories: %w", err)
		}
		fmt.Println(bot.FormatMemories(records))
		return nil
	}

	query := strings.Join(args, " ")
	records, err := client.Search(ctx, cfg.UserID, query, recallLimit)
	if err != nil {
		return fmt.Errorf("search memories: %w", err)
	}
	fmt.Println(bot.FormatMemories(records))
	return nil
}
