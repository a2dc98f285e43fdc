package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/six78/xidach-cli/internal/config"
	"github.com/six78/xidach-cli/internal/view/states"
	"github.com/six78/xidach-cli/pkg/game"
)

var (
	messageStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD54F"))
	commentaryStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#9E9E9E"))
	lostStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5722"))
)

func (m model) renderAppState() string {
	switch m.state {
	case states.Idle:
		return "Sòng đang nghỉ."
	case states.Initializing:
		return m.spinner.View() + " Đang khởi động..."
	case states.EnteringRoom:
		return m.spinner.View() + " Đang vào sòng..."
	case states.Playing:
		return m.renderGame()
	}

	return "unknown app state"
}

func (m model) renderGame() string {
	return lipgloss.JoinVertical(lipgloss.Top,
		m.statusView.View(),
		"",
		m.renderTable(),
		"",
		m.chatView.View(),
		m.shortcutsView.View(),
		m.errorView.View(),
	)
}

func (m model) renderTable() string {
	if m.gameState == nil {
		return m.spinner.View() + " Đang chờ bàn chơi..."
	}

	if !m.gameState.Connected {
		if m.gameState.Message == game.WelcomeMessage {
			return m.spinner.View() + " Đang kết nối với nhà cái..."
		}
		return lostStyle.Render(m.gameState.Message)
	}

	rows := []string{messageStyle.Render(m.gameState.Message)}
	if m.gameState.Commentary != "" {
		rows = append(rows, commentaryStyle.Render("“"+m.gameState.Commentary+"”"))
	}
	rows = append(rows, "", m.tableView.View())

	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

func renderLogPath() string {
	path := strings.Replace(config.LogFilePath, " ", "%20", -1)
	return fmt.Sprintf("Log: file:///%s", path)
}
