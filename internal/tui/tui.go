// Package tui is a terminal front-end for the assessment chat. Its tea.Tick
// loop is the periodic trigger for the reveal engine.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ashureev/kneeoa/internal/chat"
	"github.com/ashureev/kneeoa/internal/domain"
	"github.com/ashureev/kneeoa/internal/reveal"
)

var (
	colorTitle     = lipgloss.Color("#7aa2f7")
	colorUser      = lipgloss.Color("#DCF8C6")
	colorAssistant = lipgloss.Color("#F2F2F2")
	colorInk       = lipgloss.Color("#1a1b26")
	colorDim       = lipgloss.Color("#565f89")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	dimStyle       = lipgloss.NewStyle().Foreground(colorDim)
	userStyle      = lipgloss.NewStyle().Background(colorUser).Foreground(colorInk).Padding(0, 1)
	assistantStyle = lipgloss.NewStyle().Background(colorAssistant).Foreground(colorInk).Padding(0, 1)
)

type keyMap struct {
	Send key.Binding
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Up, k.Down, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Send: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "send")),
	Up:   key.NewBinding(key.WithKeys("up", "pgup"), key.WithHelp("↑", "scroll up")),
	Down: key.NewBinding(key.WithKeys("down", "pgdown"), key.WithHelp("↓", "scroll down")),
	Quit: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

type tickMsg time.Time

// replyMsg carries a finished exchange back to the UI goroutine.
type replyMsg struct {
	text  string
	reply string
}

// Model is the bubbletea model of the chat screen.
type Model struct {
	handler  *chat.Handler
	state    reveal.State
	interval time.Duration

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model

	waiting bool
	width   int
	height  int
}

// New starts a session over script. The first turn is visible immediately.
func New(handler *chat.Handler, script []domain.Turn, interval time.Duration, now time.Time) Model {
	in := textinput.New()
	in.Placeholder = "Type your message here..."
	in.Prompt = "❯ "
	in.CharLimit = 2000
	in.Focus()

	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorTitle)

	m := Model{
		handler:  handler,
		interval: interval,
		viewport: vp,
		input:    in,
		spinner:  sp,
		help:     help.New(),
	}
	m.state.Initialize(script, now)
	return m
}

// State returns a copy of the reveal state.
func (m Model) State() reveal.State {
	return m.state
}

// tickCmd polls at half the reveal interval so a due turn is never late by
// more than half a period.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval/2, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) replyCmd(text string) tea.Cmd {
	h := m.handler
	return func() tea.Msg {
		return replyMsg{text: text, reply: h.Reply(context.Background(), text)}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, tickCmd(m.interval))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-5, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()
		return m, nil

	case tickMsg:
		before := m.state.Revealed()
		m.state.Tick(time.Time(msg), m.interval)
		if m.state.Revealed() != before {
			m.refresh()
		}
		return m, tickCmd(m.interval)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case replyMsg:
		chat.Record(&m.state, msg.text, msg.reply)
		m.waiting = false
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Send):
			text := m.input.Value()
			if m.waiting || strings.TrimSpace(text) == "" {
				return m, nil
			}
			m.waiting = true
			m.input.Reset()
			return m, m.replyCmd(text)
		case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) refresh() {
	m.viewport.SetContent(RenderTurns(m.state.Visible(), m.width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🦵 Knee OA assessment"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d", m.state.Revealed(), m.state.Len())))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.waiting {
		b.WriteString(m.spinner.View() + dimStyle.Render(" waiting for a reply..."))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

// RenderTurns lays turns out as chat bubbles: user turns on the right,
// assistant turns on the left. A width of zero renders without alignment.
func RenderTurns(turns []domain.Turn, width int) string {
	bubble := width * 4 / 5
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		style := assistantStyle
		pos := lipgloss.Left
		if t.IsUser() {
			style = userStyle
			pos = lipgloss.Right
		}
		if bubble > 0 {
			style = style.MaxWidth(bubble).Width(min(lipgloss.Width(t.Content)+2, bubble))
		}
		rendered := style.Render(t.Content)
		if width > 0 {
			rendered = lipgloss.PlaceHorizontal(width, pos, rendered)
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, "\n\n")
}

// Run starts the program on the alternate screen and blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
