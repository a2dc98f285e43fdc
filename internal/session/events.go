package session

import "github.com/six78/xidach-cli/pkg/protocol"

type EventType int

const (
	// PeerJoined is emitted when a JOIN message arrives. The message
	// itself is also delivered as MessageReceived.
	PeerJoined EventType = iota
	MessageReceived
	PeerLeft
	// JoinFailed is emitted when the JOIN handshake ran out of attempts.
	JoinFailed
)

func (t EventType) String() string {
	switch t {
	case PeerJoined:
		return "peer-joined"
	case MessageReceived:
		return "message-received"
	case PeerLeft:
		return "peer-left"
	case JoinFailed:
		return "join-failed"
	default:
		return "unknown"
	}
}

type Event struct {
	Type    EventType
	PeerID  string
	Name    string
	Message *protocol.Message
	Err     error
}
