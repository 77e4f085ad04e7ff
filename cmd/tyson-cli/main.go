// Command tyson-cli is an interactive console for the agent.
//
// Usage:
//
//	export PERPLEXITY_API_KEY="your-api-key"
//	go run ./cmd/tyson-cli
//
// Commands:
//
//	/clear   - Clear conversation history
//	/history - Show the raw conversation history
//	/stream  - Toggle streaming mode (streaming turns skip tool calling)
//	/quit    - Exit
//	<text>   - Send a message to the agent
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Troyboy911/tyson/pkg/agent"
	"github.com/Troyboy911/tyson/pkg/config"
	"github.com/Troyboy911/tyson/pkg/model/perplexity"
	"github.com/Troyboy911/tyson/pkg/tool"
	"github.com/Troyboy911/tyson/pkg/tool/builtin"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	agentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Padding(0, 1)
)

type replyMsg struct {
	text string
	err  error
}

type model struct {
	ctx        context.Context
	ag         *agent.Agent
	streamMode bool
	waiting    bool

	width  int
	height int
	err    error

	viewport   viewport.Model
	textarea   textarea.Model
	renderer   *glamour.TermRenderer
	transcript []string
}

func initialModel(ctx context.Context, ag *agent.Agent) model {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)
	vp.SetContent("Welcome to Tyson. Type a message, or /clear, /history, /stream, /quit.")

	// Use "light" style to avoid terminal queries that leak into input
	r, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle("light"),
		glamour.WithWordWrap(80),
	)

	return model{
		ctx:      ctx,
		ag:       ag,
		viewport: vp,
		textarea: ta,
		renderer: r,
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	var tiCmd, vpCmd tea.Cmd
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, tiCmd, vpCmd)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.textarea.SetWidth(msg.Width)
		m.viewport.Height = msg.Height - m.textarea.Height() - 3
		if m.viewport.Height < 0 {
			m.viewport.Height = 0
		}
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithStandardStyle("light"),
			glamour.WithWordWrap(m.width-4),
		)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			m.err = nil
			return m.handleInput(input)
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.err = msg.err
		}
		m.appendLine(agentStyle.Render("Agent: ") + m.renderMarkdown(msg.text))
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleInput(input string) (tea.Model, tea.Cmd) {
	switch input {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/clear":
		m.ag.ClearHistory()
		m.appendLine(noticeStyle.Render("Conversation history cleared."))
		return m, nil
	case "/history":
		b, _ := json.MarshalIndent(m.ag.History(), "", "  ")
		m.appendLine(noticeStyle.Render("History:\n") + string(b))
		return m, nil
	case "/stream":
		m.streamMode = !m.streamMode
		state := "OFF"
		if m.streamMode {
			state = "ON"
		}
		m.appendLine(noticeStyle.Render("Streaming mode: " + state))
		return m, nil
	}

	m.appendLine(userStyle.Render("You: ") + input)
	m.waiting = true

	ag, ctx, streaming := m.ag, m.ctx, m.streamMode
	return m, func() tea.Msg {
		text, err := ag.Converse(ctx, input, streaming)
		return replyMsg{text: text, err: err}
	}
}

func (m *model) appendLine(line string) {
	m.transcript = append(m.transcript, line)
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}

func (m model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

func (m model) View() string {
	header := titleStyle.Render(fmt.Sprintf("Tyson — %s", m.ag.Model()))
	if m.waiting {
		header += noticeStyle.Render("  thinking...")
	}

	var errorView string
	if m.err != nil {
		errorView = errorStyle.Width(m.width).Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		m.textarea.View(),
		errorView,
	)
}

func main() {
	// Keep slog quiet on the TTY.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "\nPlease set your API key:")
		fmt.Fprintln(os.Stderr, "  export PERPLEXITY_API_KEY='your-api-key-here'")
		os.Exit(1)
	}

	provider := perplexity.New(cfg.APIKey, cfg.BaseURL)
	registry := tool.NewRegistry()
	builtin.RegisterDev(registry)

	var opts []agent.Option
	if cfg.MaxIterations > 0 {
		opts = append(opts, agent.WithMaxIterations(cfg.MaxIterations))
	}
	ag := agent.New(provider, registry, cfg.Model, opts...)

	p := tea.NewProgram(initialModel(context.Background(), ag), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
