package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/studymate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration after merging environment variables, the config
file and defaults, and report anything missing for the enabled features.
Secrets are shown only as set/unset.`,
	Run: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) {
	fmt.Printf("user:             %s\n", cfg.UserID)
	fmt.Printf("timezone:         %s\n", cfg.Location().String())
	fmt.Printf("llm provider:     %s (model %s)\n", cfg.LLMProvider, cfg.LLMModel)
	fmt.Printf("memory:           %s\n", featureState(cfg.EnableMemory, cfg.MemoryAPIKey != ""))
	fmt.Printf("memory endpoint:  %s\n", cfg.MemoryURL)
	fmt.Printf("calendar:         %s\n", featureState(cfg.EnableCalendar, cfg.GoogleClientID != ""))
	fmt.Printf("token file:       %s\n", cfg.TokenFile)
	fmt.Printf("server port:      %s\n", cfg.ServerPort)
	fmt.Printf("log file:         %s (level %s)\n", cfg.LogFile, cfg.LogLevel)
	fmt.Printf("config file:      %s\n", config.DefaultConfigPath())

	if err := cfg.Validate(); err != nil {
		fmt.Printf("\n%v\n", err)
	} else {
		fmt.Println("\nConfiguration is complete.")
	}
}

func featureState(enabled, configured bool) string {
	switch {
	case !enabled:
		return "disabled"
	case !configured:
		return "enabled, not configured"
	default:
		return "enabled"
	}
}
