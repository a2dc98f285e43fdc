package messages

import (
	"github.com/six78/xidach-cli/internal/view/states"
	"github.com/six78/xidach-cli/pkg/protocol"
)

type FatalErrorMessage struct {
	Err error
}

type AppStateFinishedMessage struct {
	State states.AppState
}

type AppStateMessage struct {
	State states.AppState
}

type GameStateMessage struct {
	State *protocol.Session
}

type ChatMessage struct {
	Line protocol.ChatLine
}

type ErrorMessage struct {
	Err error
}

func NewErrorMessage(err error) ErrorMessage {
	return ErrorMessage{Err: err}
}

type PlayerIDMessage struct {
	PlayerID protocol.PlayerID
}

type ChatModeChange struct {
	ChatMode bool
}

type RoomJoin struct {
	RoomCode protocol.RoomCode
	IsHost   bool
}
