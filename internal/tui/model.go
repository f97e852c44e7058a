package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chatbot/internal/domain"
	"chatbot/internal/transcript"
)

// ChatPort is the TUI-facing subset of the chatbot service.
type ChatPort interface {
	Ask(ctx context.Context, text string) (domain.Reply, error)
	Record(ctx context.Context, t domain.Transcript) error
}

// Tokenizer normalizes text so reply words can be matched against the query.
type Tokenizer interface {
	Normalize(text string) []string
}

type exchange struct {
	user  string
	reply domain.Reply
	saved bool
}

type replyMsg struct {
	query string
	reply domain.Reply
	err   error
}

type savedMsg struct {
	index int
	err   error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx       context.Context
	service   ChatPort
	tokenizer Tokenizer
	input     textinput.Model
	viewport  viewport.Model
	history   []exchange
	summary   string
	status    string
	waiting   bool
	ready     bool
}

// New creates a new TUI model instance. tokenizer may be nil, which disables highlighting.
func New(ctx context.Context, service ChatPort, tokenizer Tokenizer, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:       ctx,
		service:   service,
		tokenizer: tokenizer,
		input:     ti,
		viewport:  vp,
		summary:   summary,
		status:    "Ready. Enter sends, ctrl+s saves the last exchange, ctrl+c quits.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around conversation and input boxes
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + ih + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ch)
		m.refresh()
		return m, nil
	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.history = append(m.history, exchange{user: msg.query, reply: msg.reply})
		if msg.reply.Matched {
			m.status = fmt.Sprintf("Matched sentence #%d  score=%.3f  (%s)", msg.reply.Index+1, msg.reply.Score, msg.reply.Duration.Round(time.Microsecond))
		} else {
			m.status = "No match."
		}
		m.refresh()
		return m, nil
	case savedMsg:
		if msg.err != nil {
			m.status = "Save failed: " + msg.err.Error()
			return m, nil
		}
		if msg.index >= 0 && msg.index < len(m.history) {
			m.history[msg.index].saved = true
		}
		m.status = "Exchange saved."
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			m.waiting = true
			m.status = "Thinking..."
			return m, m.ask(q)
		case "ctrl+s":
			if len(m.history) == 0 {
				m.status = "Nothing to save yet."
				return m, nil
			}
			return m, m.save(len(m.history) - 1)
		case "up", "pgup":
			m.viewport.LineUp(1)
			return m, nil
		case "down", "pgdown":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(q string) tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		reply, err := svc.Ask(ctx, q)
		return replyMsg{query: q, reply: reply, err: err}
	}
}

func (m Model) save(i int) tea.Cmd {
	ctx, svc, ex := m.ctx, m.service, m.history[i]
	return func() tea.Msg {
		err := svc.Record(ctx, domain.Transcript{
			Source:   transcript.SourceText,
			UserText: ex.user,
			BotText:  ex.reply.Text,
		})
		return savedMsg{index: i, err: err}
	}
}

// View renders the TUI layout and the conversation.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Chatbot")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	chat := chatBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + chat + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "Say something to start."
	}
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(userStyle.Render("You: "))
		b.WriteString(ex.user)
		b.WriteString("\n")
		b.WriteString(botStyle.Render("Bot: "))
		if ex.reply.Matched {
			b.WriteString(m.highlight(ex.reply.Text, ex.user))
		} else {
			b.WriteString(fallbackStyle.Render(ex.reply.Text))
		}
		if ex.saved {
			b.WriteString(savedStyle.Render("  [saved]"))
		}
	}
	return b.String()
}

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	fallbackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	savedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// highlight emphasizes the reply words whose normalized form also occurs in the query.
func (m Model) highlight(reply, query string) string {
	if m.tokenizer == nil {
		return reply
	}
	qTokens := make(map[string]struct{})
	for _, t := range m.tokenizer.Normalize(query) {
		qTokens[t] = struct{}{}
	}
	if len(qTokens) == 0 {
		return reply
	}
	words := strings.Fields(reply)
	for i, w := range words {
		for _, t := range m.tokenizer.Normalize(w) {
			if _, ok := qTokens[t]; ok {
				words[i] = highlightStyle.Render(w)
				break
			}
		}
	}
	return strings.Join(words, " ")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
