package view

import (
	"context"
	"reflect"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/suite"

	"github.com/six78/xidach-cli/internal/testcommon"
	"github.com/six78/xidach-cli/internal/transport/memory"
	"github.com/six78/xidach-cli/internal/view/messages"
	"github.com/six78/xidach-cli/internal/view/states"
	"github.com/six78/xidach-cli/pkg/game"
	"github.com/six78/xidach-cli/pkg/protocol"
)

func TestModel(t *testing.T) {
	suite.Run(t, new(ModelSuite))
}

type ModelSuite struct {
	testcommon.Suite
	ctx    context.Context
	cancel context.CancelFunc
	game   *game.Game
}

func (s *ModelSuite) SetupTest() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	options := []game.Option{
		game.WithContext(s.ctx),
		game.WithTransport(memory.NewNetwork(s.Logger).Endpoint()),
		game.WithLogger(s.Logger),
		game.WithPlayerName(gofakeit.Username()),
	}

	s.game = game.NewGame(options)
	s.Require().NotNil(s.game)

	err := s.game.Initialize()
	s.Require().NoError(err)
}

func (s *ModelSuite) TearDownTest() {
	s.game.Stop()
	s.game = nil
	s.cancel()
}

func keyPress(text string) tea.KeyMsg {
	switch text {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(text)}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

// playingModel creates a room as host and returns a model inside it.
func (s *ModelSuite) playingModel() model {
	code, err := s.game.CreateRoom("")
	s.Require().NoError(err)

	m := initialModel(s.game, Entry{Host: true})
	m2, _ := m.Update(messages.RoomJoin{RoomCode: code, IsHost: true})
	return m2.(model)
}

func (s *ModelSuite) TestInitialModel() {
	entry := Entry{Host: false, RoomCode: "123456"}
	m := initialModel(s.game, entry)

	s.Require().Equal(s.game, m.game)
	s.Require().Equal(entry, m.entry)
	s.Require().Equal(states.Initializing, m.state)
	s.Require().Nil(m.gameState)
	s.Require().Empty(m.roomCode)
	s.Require().False(m.chatMode)
	s.Require().False(m.chatView.Focused())
	s.Require().NotNil(m.Init())
}

func (s *ModelSuite) TestUpdateEmpty() {
	m := tea.Model(initialModel(s.game, Entry{Host: true}))

	m2, cmd := m.Update(nil)
	s.Require().Nil(cmd)
	s.Require().NotNil(m2.(model))

	eq := reflect.DeepEqual(m, m2)
	s.Require().True(eq)
}

func (s *ModelSuite) TestUpdateFatalErrorMessage() {
	m := initialModel(s.game, Entry{Host: true})

	err := gofakeit.Error()
	msg := messages.FatalErrorMessage{Err: err}

	m2, cmd := m.Update(msg)
	s.Require().Nil(cmd)
	s.Require().Equal(err, m2.(model).fatalError)
	s.Require().Contains(m2.View(), err.Error())
}

func (s *ModelSuite) TestInitializingFinished() {
	m := initialModel(s.game, Entry{Host: true})

	m2, cmd := m.Update(messages.AppStateFinishedMessage{State: states.Initializing})
	s.Require().Equal(states.EnteringRoom, m2.(model).state)
	s.Require().NotNil(cmd)

	batch := s.SplitBatch(cmd)
	s.Require().Len(batch, 2)
	s.Require().Equal(messages.AppStateMessage{State: states.EnteringRoom}, batch[0]())

	join, ok := batch[1]().(messages.RoomJoin)
	s.Require().True(ok)
	s.Require().True(join.IsHost)
	s.Require().Equal(s.game.RoomCode(), join.RoomCode)
}

func (s *ModelSuite) TestRoomJoin() {
	m := s.playingModel()

	s.Require().Equal(states.Playing, m.state)
	s.Require().Equal(s.game.RoomCode(), m.roomCode)

	m2, _ := m.Update(messages.GameStateMessage{State: s.game.CurrentState()})
	view := m2.View()
	s.Require().Contains(view, s.game.RoomCode().String())
	s.Require().Contains(view, game.WelcomeMessage)
}

func (s *ModelSuite) TestStartRoundWithoutPlayers() {
	m := s.playingModel()

	cmd := m.handleKey(keyPress("s"))
	s.Require().NotNil(cmd)

	msg, ok := cmd().(messages.ErrorMessage)
	s.Require().True(ok)
	s.Require().ErrorIs(msg.Err, game.ErrNoPlayers)
}

func (s *ModelSuite) TestDealerCannotBet() {
	m := s.playingModel()

	for _, k := range []string{"1", "2", "3", "h", " "} {
		cmd := m.handleKey(keyPress(k))
		s.Require().NotNil(cmd, k)
		msg, ok := cmd().(messages.ErrorMessage)
		s.Require().True(ok)
		s.Require().ErrorIs(msg.Err, game.ErrDealerCannotPlay)
	}
}

func (s *ModelSuite) TestKeysIgnoredBeforePlaying() {
	m := initialModel(s.game, Entry{Host: true})
	s.Require().Nil(m.handleKey(keyPress("s")))
	s.Require().Nil(m.handleKey(keyPress("tab")))
	s.Require().NotNil(m.handleKey(keyPress("q")))
}

func (s *ModelSuite) TestChatMode() {
	m := s.playingModel()
	lines := s.game.SubscribeToChat()

	cmd := m.handleKey(keyPress("tab"))
	s.Require().Equal(messages.ChatModeChange{ChatMode: true}, cmd())

	m2, _ := m.Update(messages.ChatModeChange{ChatMode: true})
	m = m2.(model)
	s.Require().True(m.chatMode)
	s.Require().True(m.chatView.Focused())

	// Shortcuts are typed into the chat input.
	s.Require().Nil(m.handleKey(keyPress("s")))

	for _, r := range "xin chào" {
		m2, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = m2.(model)
	}

	cmd = m.handleKey(keyPress("enter"))
	s.Require().NotNil(cmd)
	s.Require().Equal(messages.NewErrorMessage(nil), cmd())

	line := <-lines
	s.Require().Equal("xin chào", line.Text)
	s.Require().Equal(s.game.PlayerName(), line.SenderName)

	cmd = m.handleKey(keyPress("tab"))
	s.Require().Equal(messages.ChatModeChange{ChatMode: false}, cmd())
}

func (s *ModelSuite) TestHostLostRendering() {
	m := s.playingModel()

	state := protocol.NewSession(m.roomCode)
	state.Connected = false
	state.Message = game.HostLostMessage

	m2, _ := m.Update(messages.GameStateMessage{State: state})
	s.Require().Contains(m2.View(), game.HostLostMessage)
}
