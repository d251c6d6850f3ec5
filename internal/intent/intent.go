// Package intent classifies user utterances into a closed set of intents
// and resolves natural-language date expressions into concrete ranges.
package intent

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a user utterance. The set is closed:
// the five variants below are the only implementations, and the router
// matches them exhaustively.
type Intent interface {
	isIntent()
}

// StoreMemory asks the assistant to remember a fact.
type StoreMemory struct {
	// Fact is the text to store, with the trigger phrase stripped.
	Fact string
}

// RecallMemory asks what the assistant knows; Query drives a semantic
// search, ListAll requests everything stored.
type RecallMemory struct {
	Query   string
	ListAll bool
}

// CalendarToday asks for today's events.
type CalendarToday struct{}

// CalendarRange asks for events in a natural-language date range.
type CalendarRange struct {
	Expr string
}

// GeneralChat is the explicit fall-through: the message goes to the
// language model with conversation context.
type GeneralChat struct{}

func (StoreMemory) isIntent()   {}
func (RecallMemory) isIntent()  {}
func (CalendarToday) isIntent() {}
func (CalendarRange) isIntent() {}
func (GeneralChat) isIntent()   {}

// Keyword tables. Matching is case-insensitive substring, checked in the
// order calendar, recall, store; recall runs before store because its
// phrases embed store-ish words ("remind me what I told you").
var (
	calendarKeywords = []string{
		"schedule", "meeting", "calendar", "event", "appointment",
		"today", "tomorrow", "this week", "next week", "when is",
	}

	recallKeywords = []string{
		"what do you know about me", "what have i told you",
		"my preferences", "what do i like", "remind me",
	}

	storeKeywords = []string{
		"remember", "i prefer", "my favorite", "i like", "i usually",
		"note that", "keep in mind",
	}

	// listAllPhrases are recall requests with no searchable topic; they map
	// to listing everything rather than a semantic search.
	listAllPhrases = []string{
		"what do you know about me", "what have i told you",
	}
)

// triggerRe strips the leading store trigger so only the fact remains.
var triggerRe = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:remember\s+that|remember|note\s+that|keep\s+in\s+mind\s+that|keep\s+in\s+mind)[\s:,]+`)

// Classify maps a message to exactly one intent. Unmatched messages fall
// through to GeneralChat.
func Classify(text string) Intent {
	lower := strings.ToLower(text)

	if containsAny(lower, calendarKeywords) {
		if strings.Contains(lower, "today") &&
			!strings.Contains(lower, "tomorrow") &&
			!strings.Contains(lower, "week") {
			return CalendarToday{}
		}
		return CalendarRange{Expr: text}
	}

	if containsAny(lower, recallKeywords) {
		return RecallMemory{
			Query:   text,
			ListAll: containsAny(lower, listAllPhrases),
		}
	}

	if containsAny(lower, storeKeywords) {
		return StoreMemory{Fact: StripTrigger(text)}
	}

	return GeneralChat{}
}

// StripTrigger removes the leading "remember that"-style phrase once,
// case-insensitively. Text without a trigger is returned unchanged.
func StripTrigger(text string) string {
	stripped := triggerRe.ReplaceAllString(text, "")
	return strings.TrimSpace(stripped)
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
