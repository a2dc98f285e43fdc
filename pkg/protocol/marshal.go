package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"
)

var ErrUnexpectedKind = errors.New("unexpected message kind")

func NewMessage(kind MessageKind, sender SessionID, senderName string, payload any) (*Message, error) {
	message := &Message{
		Kind:       kind,
		SenderID:   sender.String(),
		SenderName: senderName,
	}
	if payload == nil {
		return message, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal payload")
	}
	message.Payload = raw
	return message, nil
}

func NewJoinMessage(sender SessionID, name string) (*Message, error) {
	return NewMessage(MessageKindJoin, sender, name, JoinPayload{Name: name})
}

func NewStateMessage(sender SessionID, session *Session) (*Message, error) {
	if session == nil {
		return nil, errors.New("no session to send")
	}
	return NewMessage(MessageKindStateUpdate, sender, "", session)
}

func NewActionMessage(sender SessionID, name string, action ActionPayload) (*Message, error) {
	return NewMessage(MessageKindPlayerAction, sender, name, action)
}

func NewChatMessage(sender SessionID, name string, text string) (*Message, error) {
	return NewMessage(MessageKindChat, sender, name, ChatPayload{Text: text})
}

// NewRelayedChatMessage is sent by the host on behalf of the author of the line.
func NewRelayedChatMessage(host SessionID, line ChatLine) (*Message, error) {
	return NewMessage(MessageKindChat, host, line.SenderName, ChatPayload{Text: line.Text, From: line.SenderID})
}

// ChatLine converts a received CHAT message. Relayed lines keep their author.
func (m *Message) ChatLine() (ChatLine, error) {
	payload, err := m.ChatPayload()
	if err != nil {
		return ChatLine{}, err
	}
	line := ChatLine{
		SenderID:   m.Sender(),
		SenderName: m.SenderName,
		Text:       payload.Text,
	}
	if payload.From != "" {
		line.SenderID = payload.From
	}
	return line, nil
}

func MarshalMessage(message *Message) ([]byte, error) {
	payload, err := json.Marshal(message)
	return payload, errors.Wrap(err, "failed to marshal message")
}

func UnmarshalMessage(payload []byte) (*Message, error) {
	message := Message{}
	err := json.Unmarshal(payload, &message)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal message")
	}
	if message.Kind == "" {
		return nil, errors.Wrap(ErrUnexpectedKind, "empty kind")
	}
	return &message, nil
}

func decodePayload[T any](message *Message, kind MessageKind) (*T, error) {
	if message.Kind != kind {
		return nil, errors.Wrapf(ErrUnexpectedKind, "expected %s, got %s", kind, message.Kind)
	}
	var result T
	err := json.Unmarshal(message.Payload, &result)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal %s payload", kind)
	}
	return &result, nil
}

func (m *Message) JoinPayload() (*JoinPayload, error) {
	return decodePayload[JoinPayload](m, MessageKindJoin)
}

func (m *Message) StatePayload() (*Session, error) {
	return decodePayload[Session](m, MessageKindStateUpdate)
}

func (m *Message) ActionPayload() (*ActionPayload, error) {
	return decodePayload[ActionPayload](m, MessageKindPlayerAction)
}

func (m *Message) ChatPayload() (*ChatPayload, error) {
	return decodePayload[ChatPayload](m, MessageKindChat)
}
