package intent

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnrecognizedRange means the expression is outside the deterministic
// grammar. The caller may hand it to the language model; this package never
// guesses.
var ErrUnrecognizedRange = errors.New("date expression not in grammar")

// Range is a concrete half-open time window: Start inclusive, End exclusive.
// Label names the window for display ("today", "this week", ...).
type Range struct {
	Start time.Time
	End   time.Time
	Label string
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var nextNDaysRe = regexp.MustCompile(`next\s+(\d+)\s+days?`)

// Today returns the current day's bounds in now's timezone.
func Today(now time.Time) Range {
	start := startOfDay(now)
	return Range{Start: start, End: start.AddDate(0, 0, 1), Label: "today"}
}

// ParseRange resolves a date expression against the deterministic grammar:
// today, tomorrow, this week, next week, next N days, and weekday names with
// an optional "next" qualifier. Boundaries are computed in now's timezone.
func ParseRange(expr string, now time.Time) (Range, error) {
	lower := strings.ToLower(expr)

	switch {
	case strings.Contains(lower, "today"):
		return Today(now), nil

	case strings.Contains(lower, "tomorrow"):
		start := startOfDay(now).AddDate(0, 0, 1)
		return Range{Start: start, End: start.AddDate(0, 0, 1), Label: "tomorrow"}, nil

	case strings.Contains(lower, "next week"):
		start := startOfWeek(now).AddDate(0, 0, 7)
		return Range{Start: start, End: start.AddDate(0, 0, 7), Label: "next week"}, nil

	case strings.Contains(lower, "this week"), strings.Contains(lower, "week"):
		// Matches the original behaviour: "this week" runs from today
		// forward, not from Monday back.
		start := startOfDay(now)
		return Range{Start: start, End: start.AddDate(0, 0, 7), Label: "this week"}, nil
	}

	if m := nextNDaysRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 366 {
			return Range{}, ErrUnrecognizedRange
		}
		start := startOfDay(now)
		return Range{
			Start: start,
			End:   start.AddDate(0, 0, n),
			Label: fmt.Sprintf("the next %d days", n),
		}, nil
	}

	for name, day := range weekdays {
		if !strings.Contains(lower, name) {
			continue
		}
		start := nextWeekday(now, day)
		if strings.Contains(lower, "next "+name) && start.Sub(startOfDay(now)) < 7*24*time.Hour {
			// "next friday" skips this week's occurrence.
			start = start.AddDate(0, 0, 7)
		}
		label := strings.ToUpper(name[:1]) + name[1:]
		return Range{Start: start, End: start.AddDate(0, 0, 1), Label: label}, nil
	}

	return Range{}, ErrUnrecognizedRange
}

// startOfDay truncates to midnight in t's timezone.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// nextWeekday returns the start of the next occurrence of the weekday,
// counting from tomorrow.
func nextWeekday(now time.Time, day time.Weekday) time.Time {
	ahead := (int(day) - int(now.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return startOfDay(now).AddDate(0, 0, ahead)
}
