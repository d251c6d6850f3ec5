package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/studymate/internal/bot"
	"github.com/raphaelgruber/studymate/internal/calendar"
	"github.com/raphaelgruber/studymate/internal/intent"
)

var agendaSearch string

var agendaCmd = &cobra.Command{
	Use:   "agenda [range]",
	Short: "Show calendar events",
	Long: `Show events from your primary calendar. The range accepts the same
expressions as the chat: today (the default), tomorrow, this week, next week,
next N days, or a weekday name.

Examples:
  studymate agenda
  studymate agenda "this week"
  studymate agenda "next friday"
  studymate agenda --search "algorithms exam"`,
	RunE: runAgenda,
}

func init() {
	agendaCmd.Flags().StringVarP(&agendaSearch, "search", "s", "", "search upcoming events instead of listing a range")
}

func runAgenda(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := newCalendarClient(ctx)
	if client == nil {
		return fmt.Errorf("calendar not available; run 'studymate auth' first")
	}

	if agendaSearch != "" {
		events, err := client.Search(ctx, agendaSearch, int64(cfg.MaxEvents))
		if err != nil {
			return calendarError(err)
		}
		fmt.Println(bot.FormatEvents(events, fmt.Sprintf("%q", agendaSearch)))
		return nil
	}

	now := time.Now().In(cfg.Location())
	rng := intent.Today(now)
	if len(args) > 0 {
		var err error
		rng, err = intent.ParseRange(strings.Join(args, " "), now)
		if err != nil {
			return fmt.Errorf("could not understand that range; try \"today\", \"this week\" or a weekday name")
		}
	}

	events, err := client.Events(ctx, rng.Start, rng.End, int64(cfg.MaxEvents))
	if err != nil {
		return calendarError(err)
	}
	fmt.Println(bot.FormatEvents(events, rng.Label))
	return nil
}

func calendarError(err error) error {
	if errors.Is(err, calendar.ErrAuthRequired) {
		return fmt.Errorf("calendar access expired; run 'studymate auth' again")
	}
	return fmt.Errorf("fetch events: %w", err)
}
