package protocol

import "encoding/json"

type MessageKind string

const (
	MessageKindJoin         MessageKind = "JOIN"
	MessageKindStateUpdate  MessageKind = "STATE_UPDATE"
	MessageKindPlayerAction MessageKind = "PLAYER_ACTION"
	MessageKindChat         MessageKind = "CHAT"
)

// Message is the envelope of everything sent over a link.
// Payload is decoded according to Kind.
type Message struct {
	Kind       MessageKind     `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	SenderID   string          `json:"senderId"`
	SenderName string          `json:"senderName,omitempty"`
}

// FromHost reports whether the message was sent by the host of the given room.
// Replicas drop every STATE_UPDATE for which this is false.
func (m *Message) FromHost(code RoomCode) bool {
	if code.Empty() {
		return false
	}
	return m.SenderID == HostID(code).String()
}

func (m *Message) Sender() PlayerID {
	return PlayerID(m.SenderID)
}

type JoinPayload struct {
	Name string `json:"name"`
}

type ActionType string

const (
	ActionBet   ActionType = "BET"
	ActionHit   ActionType = "HIT"
	ActionStand ActionType = "STAND"
)

type ActionData struct {
	Amount int `json:"amount,omitempty"`
}

type ActionPayload struct {
	Action ActionType  `json:"action"`
	Data   *ActionData `json:"data,omitempty"`
}

func (p ActionPayload) Amount() int {
	if p.Data == nil {
		return 0
	}
	return p.Data.Amount
}

type ChatPayload struct {
	Text string `json:"text"`

	// From is set by the host when it relays a line written by a peer.
	From PlayerID `json:"from,omitempty"`
}

// ChatLine is what chat subscribers receive.
type ChatLine struct {
	SenderID   PlayerID
	SenderName string
	Text       string
}
