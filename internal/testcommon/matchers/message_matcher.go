package matchers

import (
	"fmt"
	"testing"

	"github.com/six78/xidach-cli/pkg/protocol"
)

// MessageMatcher matches wire payloads of the given kind.
// An empty kind matches any valid message.
type MessageMatcher struct {
	Matcher
	kind    protocol.MessageKind
	payload []byte
	message *protocol.Message
}

func NewMessageMatcher(t *testing.T, kind protocol.MessageKind) *MessageMatcher {
	return &MessageMatcher{
		Matcher: *NewMatcher(t),
		kind:    kind,
	}
}

func (m *MessageMatcher) Matches(x interface{}) bool {
	m.message = nil
	payload, ok := x.([]byte)
	if !ok || payload == nil {
		return false
	}
	m.payload = payload

	message, err := protocol.UnmarshalMessage(m.payload)
	if err != nil {
		return false
	}
	if m.kind != "" && message.Kind != m.kind {
		return false
	}

	m.message = message
	return true
}

func (m *MessageMatcher) String() string {
	if m.kind == "" {
		return "is protocol message"
	}
	return fmt.Sprintf("is %s protocol message", m.kind)
}

// Trigger matches and records the message, so that Wait returns it.
func (m *MessageMatcher) Trigger(x interface{}) bool {
	if !m.Matches(x) {
		return false
	}
	m.triggered <- m.message
	return true
}

func (m *MessageMatcher) WaitMessage() *protocol.Message {
	result := m.Wait()
	if result == nil {
		return nil
	}
	return result.(*protocol.Message)
}
