// Package bot routes user messages to the external clients and composes the
// replies. All external-call failures are absorbed here: the worst outcome
// of a turn is an apology message, never a crash.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/studymate/internal/calendar"
	"github.com/raphaelgruber/studymate/internal/intent"
	"github.com/raphaelgruber/studymate/internal/llm"
	"github.com/raphaelgruber/studymate/internal/memory"
	"github.com/raphaelgruber/studymate/internal/models"
	"github.com/raphaelgruber/studymate/internal/session"
)

// MemoryClient is the slice of the memory service the router needs.
type MemoryClient interface {
	Add(ctx context.Context, userID, text string) (models.MemoryRecord, error)
	Search(ctx context.Context, userID, query string, limit int) ([]models.MemoryRecord, error)
	List(ctx context.Context, userID string, limit int) ([]models.MemoryRecord, error)
	Delete(ctx context.Context, recordID string) error
	DeleteAll(ctx context.Context, userID string) error
}

// CalendarClient is the slice of the calendar service the router needs.
type CalendarClient interface {
	Events(ctx context.Context, start, end time.Time, max int64) ([]models.Event, error)
	Search(ctx context.Context, query string, max int64) ([]models.Event, error)
}

// LanguageModel generates chat replies and interprets date expressions the
// grammar cannot.
type LanguageModel interface {
	Reply(ctx context.Context, system string, history []models.Message, user string) (string, error)
	InterpretRange(ctx context.Context, expr string, now time.Time) (time.Time, time.Time, error)
}

// Dependencies holds the external clients for the bot. Any of them may be
// nil when the feature is disabled; the bot degrades to apologies.
type Dependencies struct {
	Memory   MemoryClient
	Calendar CalendarClient
	LLM      LanguageModel
	Logger   *slog.Logger

	MaxHistory       int
	MaxMemoryResults int
	MaxEvents        int64
}

// Bot is the intent router and response composer over the external clients.
type Bot struct {
	deps Dependencies
}

const systemPrompt = `You are a helpful AI assistant for students. You remember their preferences and study habits, you can read their calendar, and you help with time management.
Be friendly, supportive, and focused on helping students succeed.
When discussing schedules, be clear about dates and times.
When you learn something new about a student, acknowledge that you'll remember it.`

// User-facing failure messages, one per taxonomy entry.
const (
	memoryApology   = "I couldn't reach the memory service right now, so I can't get to your notes. Please try again in a moment."
	calendarApology = "I couldn't reach the calendar service right now. Please try again in a moment."
	authPrompt      = "I'm having trouble accessing your calendar. Please run `studymate auth` to grant access again, then re-ask."
	rangeClarify    = "I couldn't understand that date range. Could you rephrase it? Something like \"today\", \"this week\" or \"next Friday\" works."
	chatFallback    = "I'm having trouble thinking of a reply right now. Please try again in a moment."
	emptyFactAsk    = "What would you like me to remember?"
)

// New creates a bot. Zero limits get sensible defaults.
func New(deps Dependencies) *Bot {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MaxHistory <= 0 {
		deps.MaxHistory = 5
	}
	if deps.MaxMemoryResults <= 0 {
		deps.MaxMemoryResults = 10
	}
	if deps.MaxEvents <= 0 {
		deps.MaxEvents = 50
	}
	return &Bot{deps: deps}
}

// HandleMessage processes one user turn: classify, dispatch, compose, and
// append both sides to the session log. It always returns displayable text.
// Turns on the same session are serialised; a second caller waits for the
// first turn's reply to be appended before its own begins.
func (b *Bot) HandleMessage(ctx context.Context, sess *session.Session, text string) string {
	sess.BeginTurn()
	defer sess.EndTurn()

	// History is captured before the current message is appended so the
	// model does not see the message twice.
	history := sess.Recent(b.deps.MaxHistory)
	sess.Append(models.RoleUser, text)

	var reply string
	switch it := intent.Classify(text).(type) {
	case intent.StoreMemory:
		reply = b.handleStore(ctx, sess, it, history)
	case intent.RecallMemory:
		reply = b.handleRecall(ctx, sess, it)
	case intent.CalendarToday:
		reply = b.handleCalendar(ctx, sess, intent.Today(sess.Now()))
	case intent.CalendarRange:
		reply = b.handleCalendarRange(ctx, sess, it)
	case intent.GeneralChat:
		reply = b.handleChat(ctx, sess, text, history)
	default:
		// Unreachable: the intent set is closed.
		reply = b.handleChat(ctx, sess, text, history)
	}

	sess.Append(models.RoleAssistant, reply)
	return reply
}

func (b *Bot) handleStore(ctx context.Context, sess *session.Session, it intent.StoreMemory, history []models.Message) string {
	if strings.TrimSpace(it.Fact) == "" {
		return emptyFactAsk
	}
	if b.deps.Memory == nil {
		return "Remembering things isn't set up right now, so this won't stick between sessions."
	}

	rec, err := b.deps.Memory.Add(ctx, sess.UserID, it.Fact)
	if err != nil {
		b.deps.Logger.Error("store memory failed", "user", sess.UserID, "error", err)
		return memoryApology
	}
	b.deps.Logger.Info("memory stored", "user", sess.UserID, "record", rec.ID)

	confirmation := fmt.Sprintf("Got it! I'll remember that: %s", it.Fact)

	// A conversational acknowledgement on top of the confirmation, when the
	// model is reachable. Its failure never spoils the stored fact.
	if b.deps.LLM != nil {
		if aiReply, err := b.deps.LLM.Reply(ctx, systemPrompt, history, it.Fact); err == nil && aiReply != "" {
			confirmation += "\n\n" + aiReply
		}
	}
	return confirmation
}

func (b *Bot) handleRecall(ctx context.Context, sess *session.Session, it intent.RecallMemory) string {
	if b.deps.Memory == nil {
		return NoMemoriesMessage
	}

	var (
		records []models.MemoryRecord
		err     error
	)
	if it.ListAll {
		records, err = b.deps.Memory.List(ctx, sess.UserID, b.deps.MaxMemoryResults)
	} else {
		records, err = b.deps.Memory.Search(ctx, sess.UserID, it.Query, b.deps.MaxMemoryResults)
	}
	if err != nil {
		b.deps.Logger.Error("recall memories failed", "user", sess.UserID, "error", err)
		return memoryApology
	}
	return FormatMemories(records)
}

func (b *Bot) handleCalendar(ctx context.Context, sess *session.Session, rng intent.Range) string {
	if b.deps.Calendar == nil {
		return authPrompt
	}

	events, err := b.deps.Calendar.Events(ctx, rng.Start, rng.End, b.deps.MaxEvents)
	if err != nil {
		return b.calendarFailure(sess, err)
	}

	reply := FormatEvents(events, rng.Label)
	if len(events) > 0 {
		if hint := b.preferenceHint(ctx, sess); hint != "" {
			reply += "\n\n" + hint
		}
	}
	return reply
}

func (b *Bot) handleCalendarRange(ctx context.Context, sess *session.Session, it intent.CalendarRange) string {
	now := sess.Now()

	rng, err := intent.ParseRange(it.Expr, now)
	if errors.Is(err, intent.ErrUnrecognizedRange) && b.deps.LLM != nil {
		start, end, llmErr := b.deps.LLM.InterpretRange(ctx, it.Expr, now)
		if llmErr == nil {
			rng, err = intent.Range{Start: start, End: end, Label: "that period"}, nil
		}
	}
	if err != nil {
		return rangeClarify
	}
	return b.handleCalendar(ctx, sess, rng)
}

// preferenceHint appends a stored study preference to calendar answers, as a
// small personalisation touch. Failures are silent.
func (b *Bot) preferenceHint(ctx context.Context, sess *session.Session) string {
	if b.deps.Memory == nil {
		return ""
	}
	records, err := b.deps.Memory.Search(ctx, sess.UserID, "study schedule preference", 1)
	if err != nil || len(records) == 0 {
		return ""
	}
	return "Based on your preferences: " + records[0].Text
}

func (b *Bot) handleChat(ctx context.Context, sess *session.Session, text string, history []models.Message) string {
	if b.deps.LLM == nil {
		return chatFallback
	}

	system := systemPrompt
	if b.deps.Memory != nil {
		if records, err := b.deps.Memory.Search(ctx, sess.UserID, text, 3); err == nil && len(records) > 0 {
			var sb strings.Builder
			sb.WriteString("\n\nRelevant information about the user:\n")
			for _, rec := range records {
				sb.WriteString("- " + rec.Text + "\n")
			}
			system += sb.String()
		}
	}

	reply, err := b.deps.LLM.Reply(ctx, system, history, text)
	if err != nil {
		b.deps.Logger.Error("chat reply failed", "user", sess.UserID, "error", err)
		return chatFallback
	}
	return reply
}

// calendarFailure maps a calendar error onto the user-facing taxonomy.
func (b *Bot) calendarFailure(sess *session.Session, err error) string {
	b.deps.Logger.Error("calendar lookup failed", "user", sess.UserID, "error", err)
	if errors.Is(err, calendar.ErrAuthRequired) {
		return authPrompt
	}
	return calendarApology
}

// compile-time interface checks against the real clients
var (
	_ LanguageModel  = (*llm.Model)(nil)
	_ CalendarClient = (*calendar.Client)(nil)
	_ MemoryClient   = (*memory.Client)(nil)
)
