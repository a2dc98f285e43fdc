package storage

import (
	"github.com/pkg/errors"

	"github.com/six78/xidach-cli/pkg/protocol"
)

//go:generate mockgen -source=service.go -destination=mock/service.go

var ErrRoomNotFound = errors.New("room not found in storage")

type Service interface {
	Initialize() error
	ProfileID() string
	PlayerName() string
	SetProfileID(id string) error
	SetPlayerName(name string) error
	LoadRoomState(code protocol.RoomCode) (*protocol.Session, error)
	SaveRoomState(code protocol.RoomCode, state *protocol.Session) error
}
