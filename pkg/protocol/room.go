package protocol

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	RoomCodeLength = 6

	hostPrefix   = "xd-host-"
	clientPrefix = "xd-client-"

	clientSuffixBytes = 6
)

var (
	ErrInvalidRoomCode  = errors.New("room code must be exactly 6 digits")
	ErrInvalidSessionID = errors.New("invalid session identifier")
)

// RoomCode is the human-shareable 6-digit code of a table.
type RoomCode string

func (c RoomCode) String() string {
	return string(c)
}

func (c RoomCode) Empty() bool {
	return c == ""
}

func ParseRoomCode(input string) (RoomCode, error) {
	input = strings.TrimSpace(input)
	if len(input) != RoomCodeLength {
		return "", ErrInvalidRoomCode
	}
	for _, r := range input {
		if r < '0' || r > '9' {
			return "", ErrInvalidRoomCode
		}
	}
	return RoomCode(input), nil
}

func NewRoomCode() (RoomCode, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate room code")
	}
	return RoomCode(fmt.Sprintf("%06d", n.Int64())), nil
}

type Role string

const (
	RoleHost   Role = "host"
	RoleClient Role = "client"
)

// SessionID addresses a participant on the peer transport.
// For the host Code is the room code, so peers can address the host
// knowing only the code. For clients Code is a random suffix.
type SessionID struct {
	Role Role
	Code string
}

func HostID(code RoomCode) SessionID {
	return SessionID{
		Role: RoleHost,
		Code: code.String(),
	}
}

func NewClientID() SessionID {
	id := uuid.New()
	return SessionID{
		Role: RoleClient,
		Code: base58.Encode(id[:clientSuffixBytes]),
	}
}

func (id SessionID) IsHost() bool {
	return id.Role == RoleHost
}

func (id SessionID) Empty() bool {
	return id.Code == ""
}

func (id SessionID) RoomCode() RoomCode {
	if !id.IsHost() {
		return ""
	}
	return RoomCode(id.Code)
}

func (id SessionID) PlayerID() PlayerID {
	return PlayerID(id.String())
}

func (id SessionID) String() string {
	switch id.Role {
	case RoleHost:
		return hostPrefix + id.Code
	case RoleClient:
		return clientPrefix + id.Code
	default:
		return ""
	}
}

func ParseSessionID(input string) (SessionID, error) {
	switch {
	case strings.HasPrefix(input, hostPrefix):
		code, err := ParseRoomCode(strings.TrimPrefix(input, hostPrefix))
		if err != nil {
			return SessionID{}, errors.Wrap(ErrInvalidSessionID, err.Error())
		}
		return HostID(code), nil
	case strings.HasPrefix(input, clientPrefix):
		suffix := strings.TrimPrefix(input, clientPrefix)
		if suffix == "" {
			return SessionID{}, ErrInvalidSessionID
		}
		return SessionID{Role: RoleClient, Code: suffix}, nil
	default:
		return SessionID{}, ErrInvalidSessionID
	}
}
