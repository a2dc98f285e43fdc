package testcommon

import (
	"reflect"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/config"
	"github.com/six78/xidach-cli/pkg/protocol"
)

type Suite struct {
	suite.Suite
	Logger *zap.Logger
}

func (s *Suite) SetupSuite() {
	s.Logger = SetupConfigLogger(s.T())
}

func (s *Suite) TearDownSuite() {
	_ = config.Logger.Sync()
}

func (s *Suite) SplitBatch(batch tea.Cmd) []tea.Cmd {
	s.Require().Equal(reflect.Func, reflect.TypeOf(batch).Kind())

	result := batch()
	s.Require().NotNil(result)

	batchMessage := result.(tea.BatchMsg)
	s.Require().NotNil(batchMessage)

	return batchMessage
}

// Payload builds a wire payload of the given message.
func (s *Suite) Payload(kind protocol.MessageKind, sender protocol.SessionID, name string, payload any) []byte {
	message, err := protocol.NewMessage(kind, sender, name, payload)
	s.Require().NoError(err)

	raw, err := protocol.MarshalMessage(message)
	s.Require().NoError(err)
	return raw
}
