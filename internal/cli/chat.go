package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/studymate/internal/bot"
	"github.com/raphaelgruber/studymate/internal/models"
	"github.com/raphaelgruber/studymate/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Start an interactive chat session. Tell the assistant things to
remember, ask what it knows about you, or ask about your calendar:

  > Remember that I prefer studying in the morning.
  > What are my meetings today?
  > What do you know about me?`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("chat needs an interactive terminal; use 'studymate serve' otherwise")
	}

	ctx := cmd.Context()
	m := newChatModel(ctx, newBot(ctx), session.New(cfg.UserID, cfg.Location()))

	_, err := tea.NewProgram(m).Run()
	return err
}

// chatTheme holds the color scheme for the chat display.
type chatTheme struct {
	User lipgloss.Color
	Bot  lipgloss.Color
	Hint lipgloss.Color
}

var defaultChatTheme = chatTheme{
	User: lipgloss.Color("#5FAFD7"), // light blue
	Bot:  lipgloss.Color("#00D787"), // green
	Hint: lipgloss.Color("#6C6C6C"), // dim gray
}

func (t chatTheme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.User).Bold(true)
}

func (t chatTheme) botStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Bot).Bold(true)
}

func (t chatTheme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// replyMsg carries the assistant's reply for one turn.
type replyMsg struct {
	text string
}

// chatModel is the bubbletea model for the interactive chat.
type chatModel struct {
	ctx     context.Context
	bot     *bot.Bot
	sess    *session.Session
	input   textinput.Model
	theme   chatTheme
	waiting bool
}

func newChatModel(ctx context.Context, b *bot.Bot, sess *session.Session) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your schedule, or tell me something to remember"
	ti.Focus()

	return chatModel{
		ctx:   ctx,
		bot:   b,
		sess:  sess,
		input: ti,
		theme: defaultChatTheme,
	}
}

// Init returns the initial command.
func (m chatModel) Init() tea.Cmd {
	return nil
}

// send dispatches one turn to the bot off the UI loop.
func (m chatModel) send(text string) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{text: m.bot.HandleMessage(m.ctx, m.sess, text)}
	}
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			m.waiting = true
			return m, m.send(text)
		}

	case replyMsg:
		m.waiting = false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the conversation and the input line.
func (m chatModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m chatModel) renderContent() string {
	var b strings.Builder

	b.WriteString(m.theme.hintStyle().Render("Studymate, your study assistant. Esc or Ctrl+C to quit."))
	b.WriteString("\n\n")

	for _, msg := range m.sess.Log() {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString(m.theme.userStyle().Render("You: "))
		case models.RoleAssistant:
			b.WriteString(m.theme.botStyle().Render("Studymate: "))
		}
		b.WriteString(msg.Text)
		b.WriteString("\n")
	}

	if m.waiting {
		b.WriteString(m.theme.hintStyle().Render("Studymate is thinking..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}
