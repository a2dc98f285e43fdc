package tableview

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/six78/xidach-cli/internal/view/components/handview"
	"github.com/six78/xidach-cli/internal/view/messages"
	"github.com/six78/xidach-cli/pkg/cards"
	"github.com/six78/xidach-cli/pkg/protocol"
)

const textColor = lipgloss.Color("#FAFAFA")
const borderColor = lipgloss.Color("#555555")
const activeColor = lipgloss.Color("#FFEA00")

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)
	cellStyle   = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
	selfStyle   = cellStyle.Copy().Bold(true)
	activeStyle = cellStyle.Copy().Foreground(activeColor)
	borderStyle = lipgloss.NewStyle().Foreground(borderColor)
	dealerStyle = lipgloss.NewStyle().Bold(true)
)

var headers = []string{"Người chơi", "Chip", "Cược", "Bài", "Điểm", "Trạng thái", "Kết quả"}

var statusNames = map[protocol.PlayerStatus]string{
	protocol.StatusWaiting: "Chờ",
	protocol.StatusPlaying: "Đang chơi",
	protocol.StatusStay:    "Dằn",
	protocol.StatusQuac:    "Quắc",
	protocol.StatusDone:    "Xong",
}

var outcomeNames = map[cards.Result]string{
	cards.PlayerWins: "Thắng",
	cards.DealerWins: "Thua",
	cards.Push:       "Hòa",
}

// Model shows the dealer hand and one row per seated player.
type Model struct {
	playerID protocol.PlayerID
	state    *protocol.Session
}

func New() Model {
	return Model{}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) Model {
	switch msg := msg.(type) {
	case messages.PlayerIDMessage:
		m.playerID = msg.PlayerID
	case messages.GameStateMessage:
		m.state = msg.State
	}
	return m
}

func (m Model) View() string {
	if m.state == nil {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Top,
		m.renderDealer(),
		m.renderPlayers(),
	)
}

func (m Model) renderDealer() string {
	hand := m.state.DealerHand
	line := dealerStyle.Render("Nhà cái: ") + handview.Hand(hand)
	if score := handview.Score(hand); score != "" {
		line += fmt.Sprintf("  [%s]", score)
	}
	return line
}

func (m Model) renderPlayers() string {
	if len(m.state.Players) == 0 {
		return "Chưa có ai vào sòng..."
	}

	rows := make([][]string, 0, len(m.state.Players))
	for _, player := range m.state.Players {
		rows = append(rows, Row(player))
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			player := m.state.Players[row-1]
			switch {
			case m.state.Phase == protocol.PhaseTurns && m.state.IsActive(player.ID):
				return activeStyle
			case player.ID == m.playerID:
				return selfStyle
			default:
				return cellStyle
			}
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// Row lists the cells of a player, in the order of the table headers.
func Row(player protocol.Player) []string {
	bet := ""
	if player.IsReady {
		bet = fmt.Sprintf("%d", player.Bet)
	}
	return []string{
		player.Name,
		fmt.Sprintf("%d", player.Chips),
		bet,
		handview.Hand(player.Hand),
		handview.Score(player.Hand),
		statusNames[player.Status],
		outcomeNames[player.Outcome],
	}
}
