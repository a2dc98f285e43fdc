package chatview

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/six78/xidach-cli/internal/view/messages"
)

const historySize = 5

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// Model keeps the last chat lines of the table and an input for a new one.
type Model struct {
	input textinput.Model
	lines []string
}

func New() Model {
	input := textinput.New()
	input.Placeholder = "Nhắn gì đó cho cả sòng..."
	input.Prompt = "┃ "
	input.CharLimit = 200
	input.Cursor.SetMode(cursor.CursorBlink)
	input.Cursor.Style = promptStyle

	return Model{
		input: input,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case messages.ChatModeChange:
		if msg.ChatMode {
			cmd = m.input.Focus()
			cmds = append(cmds, cmd)
		} else {
			m.input.Blur()
		}
	case messages.ChatMessage:
		line := nameStyle.Render(msg.Line.SenderName+":") + " " + msg.Line.Text
		m.lines = append(m.lines, line)
		if len(m.lines) > historySize {
			m.lines = m.lines[len(m.lines)-historySize:]
		}
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	rows := make([]string, 0, len(m.lines)+1)
	rows = append(rows, m.lines...)
	if m.input.Focused() {
		rows = append(rows, m.input.View())
	}
	return strings.Join(rows, "\n")
}

func (m *Model) Focused() bool {
	return m.input.Focused()
}

// Take returns the typed line and clears the input.
func (m *Model) Take() string {
	value := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	return value
}
