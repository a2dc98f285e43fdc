package statusview

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/six78/xidach-cli/internal/view/messages"
	"github.com/six78/xidach-cli/pkg/protocol"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00E676"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFEA00"))
	dangerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5722"))
	shadeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

// Model is the header line: connection marker, room code and role.
type Model struct {
	roomCode  protocol.RoomCode
	isHost    bool
	connected bool
	players   int
	round     int
}

func New() Model {
	return Model{}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) Model {
	switch msg := msg.(type) {
	case messages.RoomJoin:
		m.roomCode = msg.RoomCode
		m.isHost = msg.IsHost
	case messages.GameStateMessage:
		if msg.State == nil {
			m.connected = false
			m.players = 0
			break
		}
		m.connected = msg.State.Connected
		m.players = len(msg.State.Players)
		m.round = msg.State.Round
	}
	return m
}

func (m Model) View() string {
	if m.roomCode.Empty() {
		return dangerStyle.Render("●") + " Chưa vào sòng"
	}

	marker := "●"
	switch {
	case m.connected && m.players > 0:
		marker = okStyle.Render(marker)
	case m.connected:
		marker = warnStyle.Render(marker)
	default:
		marker = dangerStyle.Render(marker)
	}

	text := fmt.Sprintf(" Sòng %s", m.roomCode)
	if m.isHost {
		text += shadeStyle.Render(" (nhà cái)")
	}
	text += fmt.Sprintf("  %d người chơi", m.players)
	if m.round > 0 {
		text += fmt.Sprintf("  ván %d", m.round)
	}

	return lipgloss.JoinHorizontal(lipgloss.Left, marker, text)
}
