package errorview

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/six78/xidach-cli/internal/view/messages"
	"github.com/six78/xidach-cli/pkg/game"
)

const color = lipgloss.Color("#d78700")

// errorTexts replaces the errors a player can trigger from the keyboard
// with a line of the table.
var errorTexts = map[error]string{
	game.ErrWrongPhase:       "Chưa tới lúc đó đâu",
	game.ErrNotYourTurn:      "Chưa tới lượt bạn",
	game.ErrInvalidBet:       "Không đủ chip để cược",
	game.ErrAlreadyReady:     "Bạn đã đặt cược rồi",
	game.ErrNoPlayers:        "Sòng chưa có ai",
	game.ErrHandFull:         "Đủ năm lá rồi",
	game.ErrDealerCannotPlay: "Nhà cái không đặt cược",
	game.ErrNotHost:          "Chỉ nhà cái mới chia bài",
	game.ErrNotConnected:     "Chưa kết nối với nhà cái",
}

type Model struct {
	errorMessage string
	style        lipgloss.Style
}

func New() Model {
	return Model{
		errorMessage: "",
		style:        lipgloss.NewStyle().Foreground(color),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) Model {
	switch msg := msg.(type) {
	case messages.ErrorMessage:
		m.errorMessage = Text(msg.Err)
	case messages.GameStateMessage:
		m.errorMessage = ""
	}
	return m
}

func (m Model) View() string {
	return m.style.Render(m.errorMessage)
}

func Text(err error) string {
	if err == nil {
		return ""
	}
	for known, text := range errorTexts {
		if errors.Is(err, known) {
			return text
		}
	}
	return err.Error()
}
