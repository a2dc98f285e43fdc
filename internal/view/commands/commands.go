package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/six78/xidach-cli/internal/view/messages"
	"github.com/six78/xidach-cli/internal/view/states"
	"github.com/six78/xidach-cli/pkg/game"
	"github.com/six78/xidach-cli/pkg/protocol"
)

func InitializeApp(game *game.Game) tea.Cmd {
	return func() tea.Msg {
		err := game.Initialize()
		if err != nil {
			return messages.FatalErrorMessage{
				Err: errors.Wrap(err, "failed to initialize game"),
			}
		}
		return messages.AppStateFinishedMessage{State: states.Initializing}
	}
}

func CreateRoom(game *game.Game, code protocol.RoomCode) tea.Cmd {
	return func() tea.Msg {
		code, err := game.CreateRoom(code)
		if err != nil {
			return messages.FatalErrorMessage{Err: err}
		}
		return messages.RoomJoin{
			RoomCode: code,
			IsHost:   true,
		}
	}
}

func JoinRoom(game *game.Game, code protocol.RoomCode) tea.Cmd {
	return func() tea.Msg {
		err := game.JoinRoom(code)
		if err != nil {
			return messages.FatalErrorMessage{Err: err}
		}
		return messages.RoomJoin{
			RoomCode: game.RoomCode(),
			IsHost:   false,
		}
	}
}

func StartRound(game *game.Game) tea.Cmd {
	return func() tea.Msg {
		return messages.NewErrorMessage(game.StartRound())
	}
}

func PlaceBet(game *game.Game, amount int) tea.Cmd {
	return func() tea.Msg {
		return messages.NewErrorMessage(game.Bet(amount))
	}
}

func Hit(game *game.Game) tea.Cmd {
	return func() tea.Msg {
		return messages.NewErrorMessage(game.Hit())
	}
}

func Stand(game *game.Game) tea.Cmd {
	return func() tea.Msg {
		return messages.NewErrorMessage(game.Stand())
	}
}

func SendChat(game *game.Game, text string) tea.Cmd {
	return func() tea.Msg {
		return messages.NewErrorMessage(game.SendChat(text))
	}
}

func QuitApp(game *game.Game) tea.Cmd {
	return func() tea.Msg {
		if game != nil {
			game.LeaveRoom()
		}
		return tea.Quit()
	}
}
