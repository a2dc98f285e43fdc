package game

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/six78/xidach-cli/internal/testcommon"
	"github.com/six78/xidach-cli/internal/transport/memory"
	"github.com/six78/xidach-cli/pkg/cards"
	"github.com/six78/xidach-cli/pkg/commentary"
	"github.com/six78/xidach-cli/pkg/protocol"
	mockstorage "github.com/six78/xidach-cli/pkg/storage/mock"
)

const waitTimeout = 2 * time.Second

func TestGame(t *testing.T) {
	suite.Run(t, new(Suite))
}

type Suite struct {
	testcommon.Suite

	ctx     context.Context
	cancel  context.CancelFunc
	network *memory.Network
	clock   clockwork.FakeClock
}

func (s *Suite) SetupTest() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.network = memory.NewNetwork(s.Logger)
	s.clock = clockwork.NewFakeClock()
}

func (s *Suite) TearDownTest() {
	s.cancel()
}

func (s *Suite) newGame(extraOptions ...Option) *Game {
	options := []Option{
		WithContext(s.ctx),
		WithLogger(s.Logger),
		WithTransport(s.network.Endpoint()),
		WithClock(s.clock),
		WithPlayerName(gofakeit.Username()),
	}
	options = append(options, extraOptions...)

	g := NewGame(options)
	s.Require().NotNil(g)
	s.Require().False(g.Initialized())

	err := g.Initialize()
	s.Require().NoError(err)
	s.Require().True(g.Initialized())

	s.T().Cleanup(g.Stop)
	return g
}

func (s *Suite) newHost(extraOptions ...Option) (*Game, protocol.RoomCode) {
	host := s.newGame(extraOptions...)
	code, err := host.CreateRoom("")
	s.Require().NoError(err)
	return host, code
}

// newPlayer joins the room and waits until the host seated it.
func (s *Suite) newPlayer(code protocol.RoomCode, extraOptions ...Option) (*Game, StateSubscription) {
	player := s.newGame(extraOptions...)
	states := player.SubscribeToStateChanges()

	err := player.JoinRoom(code)
	s.Require().NoError(err)

	s.waitState(states, func(state *protocol.Session) bool {
		return state.Players.Contains(player.PlayerID())
	})
	return player, states
}

func (s *Suite) waitState(states StateSubscription, condition func(*protocol.Session) bool) *protocol.Session {
	timeout := time.After(waitTimeout)
	for {
		select {
		case state, more := <-states:
			s.Require().True(more, "state subscription closed")
			if state != nil && condition(state) {
				return state
			}
		case <-timeout:
			s.FailNow("timeout waiting for state")
			return nil
		}
	}
}

func inPhase(phase protocol.Phase) func(*protocol.Session) bool {
	return func(state *protocol.Session) bool {
		return state.Phase == phase
	}
}

func (s *Suite) stackedDeckBuilder(draws ...cards.Card) Option {
	return WithDeckBuilder(func() cards.Deck {
		return stackedDeck(s.T(), draws...)
	})
}

func (s *Suite) advance(d time.Duration) {
	s.clock.BlockUntil(1)
	s.clock.Advance(d)
}

func (s *Suite) TestCreateRoom() {
	host := s.newGame()

	code, err := host.CreateRoom("")
	s.Require().NoError(err)
	s.Require().Len(code.String(), protocol.RoomCodeLength)
	s.Require().Equal(code, host.RoomCode())
	s.Require().True(host.IsHost())
	s.Require().Equal(protocol.HostID(code), host.Self())

	state := host.CurrentState()
	s.Require().NotNil(state)
	s.Require().Equal(code, state.RoomCode)
	s.Require().Equal(protocol.PhaseLobby, state.Phase)
	s.Require().True(state.IsHost)
	s.Require().True(state.Connected)
	s.Require().Equal(WelcomeMessage, state.Message)
	s.Require().Equal(WelcomeCommentary, state.Commentary)
	s.Require().Empty(state.Players)

	_, err = host.CreateRoom("")
	s.Require().ErrorIs(err, ErrAlreadyInRoom)

	err = host.StartRound()
	s.Require().ErrorIs(err, ErrNoPlayers)

	err = host.Bet(100)
	s.Require().ErrorIs(err, ErrDealerCannotPlay)
}

func (s *Suite) TestCreateRoomCodeTaken() {
	first := s.newGame()
	code, err := first.CreateRoom("123456")
	s.Require().NoError(err)
	s.Require().Equal(protocol.RoomCode("123456"), code)

	second := s.newGame()
	other, err := second.CreateRoom("123456")
	s.Require().NoError(err)
	s.Require().NotEqual(code, other)
}

func (s *Suite) TestNotInitialized() {
	g := NewGame([]Option{WithTransport(s.network.Endpoint())})
	s.Require().NotNil(g)

	_, err := g.CreateRoom("")
	s.Require().ErrorIs(err, ErrNotInitialized)

	s.Require().Nil(NewGame(nil))
}

func (s *Suite) TestJoinRoom() {
	host, code := s.newHost()
	hostStates := host.SubscribeToStateChanges()

	player, states := s.newPlayer(code)

	state := player.CurrentState()
	s.Require().False(state.IsHost)
	s.Require().True(state.Connected)
	s.Require().Equal(code, state.RoomCode)
	s.Require().Len(state.Players, 1)

	seated := state.Players[0]
	s.Require().Equal(player.PlayerID(), seated.ID)
	s.Require().Equal(player.PlayerName(), seated.Name)
	s.Require().Equal(InitialChips, seated.Chips)
	s.Require().Equal(protocol.StatusWaiting, seated.Status)

	s.waitState(hostStates, func(state *protocol.Session) bool {
		return len(state.Players) == 1
	})

	s.Require().ErrorIs(player.StartRound(), ErrNotHost)
	s.Require().ErrorIs(player.JoinRoom(code), ErrAlreadyInRoom)

	// A second player shows up in the view of the first one.
	second, _ := s.newPlayer(code)
	s.waitState(states, func(state *protocol.Session) bool {
		return state.Players.Contains(second.PlayerID())
	})
}

func (s *Suite) TestFullRound() {
	host, code := s.newHost(s.stackedDeckBuilder(
		card(cards.Ten, cards.Hearts), card(cards.Eight, cards.Hearts),
		card(cards.Two, cards.Diamonds), card(cards.Three, cards.Diamonds),
		card(cards.Four, cards.Clubs), card(cards.Six, cards.Clubs),
	))
	hostStates := host.SubscribeToStateChanges()
	player, states := s.newPlayer(code)

	err := player.Bet(100)
	s.Require().NoError(err)

	err = host.StartRound()
	s.Require().NoError(err)
	s.waitState(states, inPhase(protocol.PhaseBetting))

	err = player.Bet(100)
	s.Require().NoError(err)

	s.waitState(hostStates, inPhase(protocol.PhaseInitialDeal))
	s.advance(defaultConfig.DealDelay)

	state := s.waitState(states, inPhase(protocol.PhaseTurns))
	s.Require().True(state.IsActive(player.PlayerID()))
	s.Require().Equal(18, state.Players[0].Score())
	s.Require().False(state.DealerHand[0].FaceUp)
	s.Require().Equal(3, cards.Score(state.DealerHand.FaceUp()))

	err = player.Stand()
	s.Require().NoError(err)

	state = s.waitState(hostStates, func(state *protocol.Session) bool {
		return state.Phase == protocol.PhaseDealerTurn && state.DealerHand[0].FaceUp
	})
	s.Require().Equal(5, cards.Score(state.DealerHand))

	s.advance(defaultConfig.DealerDrawInterval)
	s.waitState(hostStates, func(state *protocol.Session) bool {
		return len(state.DealerHand) == 3
	})
	s.advance(defaultConfig.DealerDrawInterval)

	state = s.waitState(states, inPhase(protocol.PhaseResolution))
	s.Require().Equal(15, cards.Score(state.DealerHand))
	s.Require().Equal(ResolutionMessage, state.Message)

	settled := state.Players[0]
	s.Require().Equal(cards.PlayerWins, settled.Outcome)
	s.Require().Equal(InitialChips+100, settled.Chips)
	s.Require().Equal(protocol.StatusDone, settled.Status)

	// The next round starts from the resolution.
	err = host.StartRound()
	s.Require().NoError(err)
	state = s.waitState(states, inPhase(protocol.PhaseBetting))
	s.Require().Equal(2, state.Round)
	s.Require().Equal(InitialChips+100, state.Players[0].Chips)
}

func (s *Suite) TestIllegalActionIgnored() {
	host, code := s.newHost()
	player, states := s.newPlayer(code)

	err := host.StartRound()
	s.Require().NoError(err)
	s.waitState(states, inPhase(protocol.PhaseBetting))

	s.Require().NoError(player.Hit())
	s.Require().NoError(player.Stand())
	s.Require().NoError(player.Bet(InitialChips * 2))
	s.Require().NoError(player.Bet(50))

	state := s.waitState(states, func(state *protocol.Session) bool {
		return state.Players[0].IsReady
	})
	s.Require().Equal(50, state.Players[0].Bet)
	s.Require().Empty(state.Players[0].Hand)
	s.Require().Equal(protocol.StatusWaiting, state.Players[0].Status)
}

func (s *Suite) TestPlayerLeavesMidRound() {
	name := gofakeit.Username()

	host, code := s.newHost()
	hostStates := host.SubscribeToStateChanges()
	first, _ := s.newPlayer(code, WithPlayerName(name))
	second, states := s.newPlayer(code)

	err := host.StartRound()
	s.Require().NoError(err)
	s.waitState(states, inPhase(protocol.PhaseBetting))

	s.Require().NoError(first.Bet(200))
	s.Require().NoError(second.Bet(100))

	s.waitState(hostStates, inPhase(protocol.PhaseInitialDeal))
	s.advance(defaultConfig.DealDelay)
	s.waitState(states, inPhase(protocol.PhaseTurns))

	first.LeaveRoom()
	s.Require().Nil(first.CurrentState())

	state := s.waitState(states, func(state *protocol.Session) bool {
		return len(state.Players) == 1
	})
	s.Require().Equal(protocol.PhaseTurns, state.Phase)
	s.Require().True(state.IsActive(second.PlayerID()))

	// The forfeited bet follows the player when they come back.
	back, _ := s.newPlayer(code, WithPlayerName(name))
	state = back.CurrentState()
	returned, ok := state.Players.Get(back.PlayerID())
	s.Require().True(ok)
	s.Require().Equal(InitialChips-200, returned.Chips)
	s.Require().Equal(protocol.StatusWaiting, returned.Status)

	s.Require().ErrorIs(first.JoinRoom(code), ErrRoomClosed)
}

func (s *Suite) TestHostLost() {
	host, code := s.newHost()
	player, states := s.newPlayer(code)

	host.LeaveRoom()

	state := s.waitState(states, func(state *protocol.Session) bool {
		return !state.Connected
	})
	s.Require().Equal(HostLostMessage, state.Message)
	s.Require().ErrorIs(player.Bet(100), ErrNotConnected)
}

func (s *Suite) TestSnapshotFromImpostorIgnored() {
	host, code := s.newHost()
	player, states := s.newPlayer(code)

	impostor := s.network.Endpoint()
	impostorID := protocol.NewClientID()
	_, err := impostor.Open(impostorID.String())
	s.Require().NoError(err)
	s.Require().NoError(impostor.Connect(player.Self().String()))

	fake := protocol.NewSession(code)
	fake.Phase = protocol.PhaseResolution
	payload := s.Payload(protocol.MessageKindStateUpdate, impostorID, "", fake)
	s.Require().NoError(impostor.Send(player.Self().String(), payload))

	err = host.StartRound()
	s.Require().NoError(err)

	s.waitState(states, func(state *protocol.Session) bool {
		s.Require().NotEqual(protocol.PhaseResolution, state.Phase)
		return state.Phase == protocol.PhaseBetting
	})
}

func (s *Suite) TestChat() {
	host, code := s.newHost()
	hostChat := host.SubscribeToChat()
	player, _ := s.newPlayer(code)
	playerChat := player.SubscribeToChat()

	text := gofakeit.Sentence(4)
	s.Require().NoError(player.SendChat(text))

	expected := protocol.ChatLine{
		SenderID:   player.PlayerID(),
		SenderName: player.PlayerName(),
		Text:       text,
	}
	s.Require().Equal(expected, s.waitChat(hostChat))
	s.Require().Equal(expected, s.waitChat(playerChat))

	s.Require().NoError(host.SendChat("chào cả sòng"))
	line := s.waitChat(playerChat)
	s.Require().Equal(host.PlayerID(), line.SenderID)
	s.Require().Equal("chào cả sòng", line.Text)

	// Chat never touches the table.
	s.Require().Equal(protocol.PhaseLobby, host.CurrentState().Phase)
}

func (s *Suite) waitChat(chat ChatSubscription) protocol.ChatLine {
	select {
	case line := <-chat:
		return line
	case <-time.After(waitTimeout):
		s.FailNow("timeout waiting for chat")
		return protocol.ChatLine{}
	}
}

type recordingCommentator struct {
	text     string
	requests chan commentary.Request
}

func (c *recordingCommentator) Comment(_ context.Context, request commentary.Request) string {
	c.requests <- request
	return c.text
}

func (s *Suite) TestCommentary() {
	commentator := &recordingCommentator{
		text:     gofakeit.Sentence(3),
		requests: make(chan commentary.Request, 10),
	}
	host, code := s.newHost(
		WithCommentator(commentator),
		s.stackedDeckBuilder(card(cards.Ace, cards.Hearts), card(cards.King, cards.Hearts)),
	)
	hostStates := host.SubscribeToStateChanges()
	player, states := s.newPlayer(code)

	s.Require().NoError(host.StartRound())
	s.waitState(states, inPhase(protocol.PhaseBetting))
	s.Require().NoError(player.Bet(100))

	s.waitState(hostStates, inPhase(protocol.PhaseInitialDeal))
	s.advance(defaultConfig.DealDelay)

	select {
	case request := <-commentator.requests:
		s.Require().Equal(protocol.PhaseTurns, request.Phase)
		s.Require().Equal(21, request.PlayerScore)
		s.Require().Len(request.PlayerHand, 2)
	case <-time.After(waitTimeout):
		s.FailNow("no commentary requested")
	}

	state := s.waitState(states, func(state *protocol.Session) bool {
		return state.Commentary == commentator.text
	})
	s.Require().Equal(protocol.PhaseTurns, state.Phase)
}

func (s *Suite) TestRestoreChipsFromStorage() {
	ctrl := gomock.NewController(s.T())
	storage := mockstorage.NewMockService(ctrl)

	name := gofakeit.Username()
	saved := protocol.NewSession("654321")
	saved.Players = protocol.PlayersList{{ID: "old", Name: name, Chips: 777}}

	storage.EXPECT().Initialize().Return(nil)
	storage.EXPECT().ProfileID().Return("")
	storage.EXPECT().SetProfileID(gomock.Any()).Return(nil)
	storage.EXPECT().PlayerName().Return("").AnyTimes()
	storage.EXPECT().SetPlayerName(gomock.Any()).Return(nil)
	storage.EXPECT().LoadRoomState(protocol.RoomCode("654321")).Return(saved, nil)
	storage.EXPECT().SaveRoomState(protocol.RoomCode("654321"), gomock.Any()).Return(nil).MinTimes(1)

	host := s.newGame(WithStorage(storage))
	code, err := host.CreateRoom("654321")
	s.Require().NoError(err)

	player, _ := s.newPlayer(code, WithPlayerName(name))
	seated, ok := player.CurrentState().Players.Get(player.PlayerID())
	s.Require().True(ok)
	s.Require().Equal(777, seated.Chips)
}

func (s *Suite) TestBots() {
	clock := clockwork.NewRealClock()
	host, code := s.newHost(
		WithClock(clock),
		WithDealDelay(10*time.Millisecond),
		WithDealerDrawInterval(10*time.Millisecond),
	)
	hostStates := host.SubscribeToStateChanges()

	for i := 0; i < 3; i++ {
		player, _ := s.newPlayer(code, WithClock(clock))
		go NewBot(player, clock).Run(s.ctx)
	}

	s.Require().NoError(host.StartRound())

	state := s.waitState(hostStates, inPhase(protocol.PhaseResolution))
	s.Require().Len(state.Players, 3)
	for _, player := range state.Players {
		s.Require().NotEmpty(player.Outcome)
		s.Require().Equal(100, player.Bet)
		s.Require().GreaterOrEqual(len(player.Hand), 2)
	}
	s.Require().False(DealerShouldDraw(state))
}
