// Package chatui is the terminal follow-up chat for a recorded attempt.
package chatui

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/render"
	"github.com/abhisek/olytutor/internal/tutor"
	"github.com/abhisek/olytutor/internal/ui/layout"
	"github.com/abhisek/olytutor/internal/ui/theme"
)

// AskFunc continues conv with query, returning the extended conversation
// and the tutor's reply.
type AskFunc func(ctx context.Context, conv tutor.Conversation, query string) (tutor.Conversation, tutor.Message, error)

// PersistFunc stores the messages of one completed exchange.
type PersistFunc func(ctx context.Context, msgs ...tutor.Message) error

// Options configures the chat.
type Options struct {
	// Question is shown above the conversation.
	Question string

	Conversation tutor.Conversation
	Ask          AskFunc
	Persist      PersistFunc

	// Streak is shown in the header.
	Streak int
}

// replyMsg carries the result of an async follow-up.
type replyMsg struct {
	conv  tutor.Conversation
	reply tutor.Message
	err   error
}

// Model is the chat's Bubble Tea model.
type Model struct {
	opts    Options
	conv    tutor.Conversation
	input   textinput.Model
	pending string
	waiting bool
	errMsg  string
	width   int
	height  int
}

// New creates a chat model.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a follow-up question..."
	ti.Focus()

	return Model{opts: opts, conv: opts.Conversation, input: ti}
}

// Conversation returns the conversation as currently known to the chat.
func (m Model) Conversation() tutor.Conversation {
	return m.conv
}

func (m Model) Init() tea.Cmd {
	return m.input.Focus()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case replyMsg:
		m.waiting = false
		m.pending = ""
		if msg.err != nil {
			m.errMsg = llm.UserMessage(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.conv = msg.conv
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.send()
		}
	}

	if m.waiting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) send() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if m.waiting || query == "" {
		return m, nil
	}
	m.waiting = true
	m.pending = query
	m.errMsg = ""
	m.input.Reset()

	conv, ask, persist := m.conv, m.opts.Ask, m.opts.Persist
	return m, func() tea.Msg {
		ctx := context.Background()
		next, reply, err := ask(ctx, conv, query)
		if err != nil {
			return replyMsg{err: err}
		}
		if persist != nil {
			added := next.Messages[conv.Len():]
			if err := persist(ctx, added...); err != nil {
				return replyMsg{err: err}
			}
		}
		return replyMsg{conv: next, reply: reply}
	}
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader("Follow-up: "+string(m.conv.Subject), m.opts.Streak, m.width)
	footer := layout.RenderFooter([]layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Quit"},
	}, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	v.SetContent(layout.RenderFrame(header, m.body(m.width, contentHeight), footer, m.width, m.height))
	return v
}

// body renders the question, the tail of the conversation that fits and
// the input line.
func (m Model) body(width, height int) string {
	wrap := lipgloss.NewStyle().Width(width - 2)

	var b strings.Builder
	for _, msg := range m.conv.Messages {
		b.WriteString(roleLabel(msg.Role))
		b.WriteString("\n")
		b.WriteString(wrap.Render(render.Terminal(msg.Text)))
		b.WriteString("\n\n")
	}
	if m.pending != "" {
		b.WriteString(roleLabel(tutor.RoleUser) + "\n" + wrap.Render(render.Terminal(m.pending)) + "\n\n")
		b.WriteString(theme.Hint.Render("Tutor is thinking...") + "\n")
	}
	if m.errMsg != "" {
		b.WriteString(theme.Incorrect.Render(m.errMsg) + "\n")
	}

	question := theme.Body.Bold(true).Render(wrap.Render(render.Terminal(m.opts.Question)))
	input := m.input.View()

	avail := height - lipgloss.Height(question) - lipgloss.Height(input) - 2
	history := tail(strings.TrimRight(b.String(), "\n"), avail)

	return question + "\n\n" + history + "\n" + input
}

func roleLabel(r tutor.Role) string {
	switch r {
	case tutor.RoleModel:
		return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Tutor")
	case tutor.RoleSystem:
		return lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("System")
	default:
		return lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("You")
	}
}

// tail keeps the last n lines of s.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

// Run starts the chat and returns the final conversation.
func Run(opts Options) (tutor.Conversation, error) {
	final, err := tea.NewProgram(New(opts)).Run()
	if err != nil {
		return opts.Conversation, err
	}
	if m, ok := final.(Model); ok {
		return m.conv, nil
	}
	return opts.Conversation, nil
}
