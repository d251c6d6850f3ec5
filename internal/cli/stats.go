package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/studymate/internal/session"
)

var (
	statsSession string
	statsAddr    string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show interaction statistics for a web chat session",
	Long: `Query a running 'studymate serve' instance for one session's message
count and interaction times. The session ID is shown in the web chat UI.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsSession, "session", "", "session ID (required)")
	statsCmd.Flags().StringVar(&statsAddr, "addr", "", "server address (default http://localhost:<configured port>)")
	statsCmd.MarkFlagRequired("session")
}

func runStats(cmd *cobra.Command, args []string) error {
	addr := statsAddr
	if addr == "" {
		addr = "http://localhost:" + cfg.ServerPort
	}

	endpoint := addr + "/api/stats?" + url.Values{"session_id": {statsSession}}.Encode()
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach server at %s (is 'studymate serve' running?): %w", addr, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("session %q not found on the server", statsSession)
	default:
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var stats session.Statistics
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("session:  %s\n", statsSession)
	fmt.Printf("messages: %d\n", stats.TotalMessages)
	if stats.ConversationStarted != nil {
		fmt.Printf("started:  %s\n", stats.ConversationStarted.Format(time.RFC1123))
	}
	if stats.LastInteraction != nil {
		fmt.Printf("last:     %s\n", stats.LastInteraction.Format(time.RFC1123))
	}
	return nil
}
