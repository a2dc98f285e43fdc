package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/config"
	"github.com/six78/xidach-cli/pkg/game"
)

func NewProgram(game *game.Game, entry Entry, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(initialModel(game, entry), opts...)
}

func Run(game *game.Game, entry Entry) int {
	p := NewProgram(game, entry)
	if _, err := p.Run(); err != nil {
		config.Logger.Error("error running program", zap.Error(err))
		return 1
	}
	return 0
}
