package shortcutsview

import (
	"fmt"

	bubblekey "github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/six78/xidach-cli/internal/view/commands"
	"github.com/six78/xidach-cli/internal/view/messages"
	"github.com/six78/xidach-cli/pkg/protocol"
)

const (
	smallSeparator = " "
	bigSeparator   = "  "
)

var (
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	textStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// Model lists the shortcuts that make sense in the current phase.
type Model struct {
	isHost   bool
	chatMode bool
	phase    protocol.Phase
}

func New() Model {
	return Model{
		phase: protocol.PhaseLobby,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) Model {
	switch msg := msg.(type) {
	case messages.RoomJoin:
		m.isHost = msg.IsHost
	case messages.ChatModeChange:
		m.chatMode = msg.ChatMode
	case messages.GameStateMessage:
		if msg.State != nil {
			m.phase = msg.State.Phase
		}
	}
	return m
}

func (m Model) View() string {
	keys := commands.DefaultKeyMap

	var rows []string

	if !m.chatMode {
		switch {
		case m.isHost && (m.phase == protocol.PhaseLobby || m.phase == protocol.PhaseResolution):
			rows = append(rows, keyHelp(keys.StartRound))
		case !m.isHost && m.phase == protocol.PhaseBetting:
			row := ""
			for i, binding := range keys.BetBindings() {
				if i > 0 {
					row += bigSeparator
				}
				row += keyHelp(binding)
			}
			rows = append(rows, row)
		case !m.isHost && m.phase == protocol.PhaseTurns:
			rows = append(rows, keyHelp(keys.Hit)+bigSeparator+keyHelp(keys.Stand))
		default:
			rows = append(rows, "")
		}
	}

	row := key(keys.ToggleChat)
	if m.chatMode {
		row += text(" Thoát chat")
	} else {
		row += text(" Chat") + bigSeparator + keyHelp(keys.Quit)
	}
	rows = append(rows, row)

	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

func key(key bubblekey.Binding) string {
	s := fmt.Sprintf("[%s]", key.Help().Key)
	return keyStyle.Render(s)
}

func text(text string) string {
	return textStyle.Render(text)
}

func help(key bubblekey.Binding) string {
	return text(key.Help().Desc)
}

func keyHelp(k bubblekey.Binding) string {
	return key(k) + smallSeparator + help(k)
}
