package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var forgetAll bool

var forgetCmd = &cobra.Command{
	Use:   "forget [record-id]",
	Short: "Delete a stored memory, or all of them",
	Long: `Delete one memory record by ID, or every memory stored for the
configured user with --all. Deleting everything asks for confirmation.`,
	RunE: runForget,
}

func init() {
	forgetCmd.Flags().BoolVar(&forgetAll, "all", false, "delete every memory for the user")
}

func runForget(cmd *cobra.Command, args []string) error {
	client := newMemoryClient()
	if client == nil {
		return fmt.Errorf("memory service not configured (set MEM0_API_KEY)")
	}

	ctx := cmd.Context()

	if forgetAll {
		fmt.Printf("Delete ALL memories for user %q? [y/N] ", cfg.UserID)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(line)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
		if err := client.DeleteAll(ctx, cfg.UserID); err != nil {
			return fmt.Errorf("delete all memories: %w", err)
		}
		fmt.Println("All memories deleted.")
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("provide a record ID or --all")
	}
	if err := client.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	fmt.Println("Memory deleted.")
	return nil
}
