package bot

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/raphaelgruber/studymate/internal/models"
)

// Messages used when a query comes back empty. Empty results always produce
// explicit text, never a blank reply.
const (
	NoMemoriesMessage = "I don't have any stored information about you yet. Share a preference and I'll remember it!"

	memoriesHeading = "Here's what I remember about you:"
)

var memoryLineRe = regexp.MustCompile(`^(\d+)\. (.*)$`)

// FormatMemories renders memory records as a numbered list in the order the
// service returned them (relevance-ranked; never re-sorted locally).
func FormatMemories(records []models.MemoryRecord) string {
	if len(records) == 0 {
		return NoMemoriesMessage
	}

	var b strings.Builder
	b.WriteString(memoriesHeading)
	b.WriteString("\n\n")
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ParseMemoryList inverts FormatMemories: it recovers the ordered fact texts
// from a formatted memory list. Formatting then re-parsing is lossless for
// single-line facts.
func ParseMemoryList(text string) []string {
	var facts []string
	for _, line := range strings.Split(text, "\n") {
		if m := memoryLineRe.FindStringSubmatch(line); m != nil {
			facts = append(facts, m[2])
		}
	}
	return facts
}

// NoEventsMessage is the explicit empty-schedule reply for a time frame.
func NoEventsMessage(timeFrame string) string {
	return fmt.Sprintf("You don't have any events scheduled for %s. Your schedule is clear!", timeFrame)
}

// FormatEvents renders events in the chronological order the calendar
// service returned them.
func FormatEvents(events []models.Event, timeFrame string) string {
	if len(events) == 0 {
		return NoEventsMessage(timeFrame)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are your events for %s:\n\n", timeFrame)
	for i, ev := range events {
		fmt.Fprintf(&b, "%d. %s\n", i+1, formatEvent(ev))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatEvent(ev models.Event) string {
	day := ev.Start.Format("Mon Jan 2")

	var line string
	if ev.AllDay {
		line = fmt.Sprintf("%s: %s (all day)", day, ev.Title)
	} else if !ev.End.IsZero() {
		line = fmt.Sprintf("%s, %s - %s: %s",
			day, ev.Start.Format("15:04"), ev.End.Format("15:04"), ev.Title)
	} else {
		line = fmt.Sprintf("%s, %s: %s", day, ev.Start.Format("15:04"), ev.Title)
	}

	if ev.Location != "" {
		line += " @ " + ev.Location
	}
	return line
}
