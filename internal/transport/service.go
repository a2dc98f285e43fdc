package transport

import "github.com/pkg/errors"

//go:generate mockgen -source=service.go -destination=mock/service.go

var (
	ErrIdentifierTaken = errors.New("identifier is taken")
	ErrLinkNotOpen     = errors.New("link is not open")
	ErrPeerUnavailable = errors.New("peer is unavailable")
	ErrNotOpened       = errors.New("identifier is not opened")
)

// Service is a connection-oriented peer transport. A participant opens
// an identifier, then connects to other identifiers. Every link reports
// open, data and close events on the Events channel.
type Service interface {
	Initialize() error
	Start() error
	Stop()

	Open(id string) (string, error)
	Connect(peer string) error
	Send(peer string, payload []byte) error
	Disconnect(peer string) error

	Events() <-chan Event
}

type EventType int

const (
	EventOpen EventType = iota
	EventData
	EventClose
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventOpen:
		return "open"
	case EventData:
		return "data"
	case EventClose:
		return "close"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

type Event struct {
	Type    EventType
	PeerID  string
	Payload []byte
	Err     error
}
