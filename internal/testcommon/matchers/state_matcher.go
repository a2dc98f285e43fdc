package matchers

import (
	"testing"

	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/config"
	"github.com/six78/xidach-cli/pkg/protocol"
)

type StateCondition func(state *protocol.Session) bool

// StateMatcher matches STATE_UPDATE payloads whose snapshot satisfies
// the condition. A nil condition matches every snapshot.
type StateMatcher struct {
	MessageMatcher
	condition StateCondition
}

func NewStateMatcher(t *testing.T, condition StateCondition) *StateMatcher {
	return &StateMatcher{
		MessageMatcher: *NewMessageMatcher(t, protocol.MessageKindStateUpdate),
		condition:      condition,
	}
}

func (m *StateMatcher) Matches(x interface{}) bool {
	if !m.MessageMatcher.Matches(x) {
		return false
	}

	state, err := m.message.StatePayload()
	if err != nil {
		return false
	}

	if m.condition != nil && !m.condition(state) {
		return false
	}

	if config.Logger != nil {
		config.Logger.Debug("<<< StateMatcher.Matches",
			zap.String("phase", string(state.Phase)),
			zap.Int("round", state.Round),
		)
	}
	m.triggered <- state
	return true
}

func (m *StateMatcher) String() string {
	return "is state message matching custom condition"
}

func (m *StateMatcher) Wait() *protocol.Session {
	result := m.Matcher.Wait()
	if result == nil {
		return nil
	}
	return result.(*protocol.Session)
}
