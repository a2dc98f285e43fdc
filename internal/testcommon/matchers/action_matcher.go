package matchers

import (
	"fmt"
	"testing"

	"github.com/six78/xidach-cli/pkg/protocol"
)

type ActionMatcher struct {
	MessageMatcher
	action protocol.ActionType
}

func NewActionMatcher(t *testing.T, action protocol.ActionType) *ActionMatcher {
	return &ActionMatcher{
		MessageMatcher: *NewMessageMatcher(t, protocol.MessageKindPlayerAction),
		action:         action,
	}
}

func (m *ActionMatcher) Matches(x interface{}) bool {
	if !m.MessageMatcher.Matches(x) {
		return false
	}

	action, err := m.message.ActionPayload()
	if err != nil || action.Action != m.action {
		return false
	}

	m.triggered <- *action
	return true
}

func (m *ActionMatcher) String() string {
	return fmt.Sprintf("is %s player action", m.action)
}

func (m *ActionMatcher) Wait() protocol.ActionPayload {
	result := m.Matcher.Wait()
	if result == nil {
		return protocol.ActionPayload{}
	}
	return result.(protocol.ActionPayload)
}
