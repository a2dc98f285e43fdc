package game

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/session"
	"github.com/six78/xidach-cli/internal/transport"
	"github.com/six78/xidach-cli/pkg/cards"
	"github.com/six78/xidach-cli/pkg/commentary"
	"github.com/six78/xidach-cli/pkg/protocol"
	"github.com/six78/xidach-cli/pkg/storage"
)

var (
	ErrNotInitialized   = errors.New("game is not initialized")
	ErrNoRoom           = errors.New("no room")
	ErrAlreadyInRoom    = errors.New("exit current room to join another one")
	ErrRoomClosed       = errors.New("room was left, start a new game to play again")
	ErrNotHost          = errors.New("only the host can do this")
	ErrDealerCannotPlay = errors.New("the dealer is not seated at the table")
	ErrNotConnected     = errors.New("not connected to the host")
	ErrUnknownAction    = errors.New("unknown action")
)

// command runs on the game loop. Intents of the local participant carry
// a reply channel, timers and commentary results do not.
type command struct {
	run   func() error
	reply chan error
}

// Game is one participant of a table. The host owns the authoritative
// session and mutates it only on its loop goroutine. A replica mirrors the
// snapshots it receives and forwards the intents of its player to the host.
type Game struct {
	ctx               context.Context
	cancel            context.CancelFunc
	logger            *zap.Logger
	clock             clockwork.Clock
	transport         transport.Service
	membership        *session.Membership
	membershipOptions []session.Option
	storage           storage.Service
	commentator       commentary.Service
	deckBuilder       func() cards.Deck
	config            configuration

	commands chan command
	states   *broadcaster[*protocol.Session]
	chat     *broadcaster[protocol.ChatLine]

	// Owned by the loop.
	returningChips map[string]int

	mutex       sync.RWMutex
	initialized bool
	left        bool
	isHost      bool
	self        protocol.SessionID
	roomCode    protocol.RoomCode
	playerName  string
	state       *protocol.Session
}

func NewGame(opts []Option) *Game {
	game := &Game{
		config:         defaultConfig,
		commands:       make(chan command),
		returningChips: make(map[string]int),
	}

	for _, opt := range opts {
		opt(game)
	}

	if game.ctx == nil {
		game.ctx = context.Background()
	}
	game.ctx, game.cancel = context.WithCancel(game.ctx)

	if game.logger == nil {
		game.logger = zap.NewNop()
	}

	if game.clock == nil {
		game.clock = clockwork.NewRealClock()
	}

	if game.deckBuilder == nil {
		game.deckBuilder = func() cards.Deck {
			return cards.BuildShuffledDeck(nil)
		}
	}

	if game.membership == nil {
		if game.transport == nil {
			game.logger.Error("transport is required")
			return nil
		}
		options := []session.Option{
			session.WithContext(game.ctx),
			session.WithLogger(game.logger),
		}
		options = append(options, game.membershipOptions...)
		game.membership = session.NewMembership(game.transport, options...)
	}

	game.states = newBroadcaster[*protocol.Session](game.config.SubscriptionBufferSize)
	game.chat = newBroadcaster[protocol.ChatLine](game.config.SubscriptionBufferSize)

	return game
}

func (g *Game) Initialize() error {
	if g.HasStorage() {
		err := g.storage.Initialize()
		if err != nil {
			return errors.Wrap(err, "failed to initialize storage")
		}
	}

	err := g.loadProfile()
	if err != nil {
		return err
	}

	err = g.membership.Initialize()
	if err != nil {
		return err
	}

	go g.loop()

	g.mutex.Lock()
	g.initialized = true
	g.mutex.Unlock()

	return nil
}

func (g *Game) Initialized() bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.initialized
}

// CreateRoom opens a table as its host. An empty code generates a new one.
// The returned code may differ from the requested one when it was taken.
func (g *Game) CreateRoom(code protocol.RoomCode) (protocol.RoomCode, error) {
	err := g.checkCanEnterRoom()
	if err != nil {
		return "", err
	}

	self, err := g.membership.AssignIdentity(g.ctx, true, code)
	if err != nil {
		return "", errors.Wrap(err, "failed to create a room")
	}
	code = self.RoomCode()

	g.mutex.Lock()
	g.isHost = true
	g.self = self
	g.roomCode = code
	g.mutex.Unlock()

	state := protocol.NewSession(code)
	state.Message = WelcomeMessage
	state.Commentary = WelcomeCommentary

	err = g.do(func() error {
		g.loadReturningChips(code)
		g.commit(state)
		return nil
	})
	if err != nil {
		return "", err
	}

	g.logger.Info("room created", zap.String("roomCode", code.String()))
	return code, nil
}

// JoinRoom connects to the host of the room. The view stays disconnected
// until the first snapshot of the host arrives.
func (g *Game) JoinRoom(code protocol.RoomCode) error {
	err := g.checkCanEnterRoom()
	if err != nil {
		return err
	}
	if code.Empty() {
		return protocol.ErrInvalidRoomCode
	}

	self, err := g.membership.AssignIdentity(g.ctx, false, "")
	if err != nil {
		return errors.Wrap(err, "failed to join a room")
	}

	g.mutex.Lock()
	g.isHost = false
	g.self = self
	g.roomCode = code
	if g.playerName == "" {
		g.playerName = self.Code
	}
	name := g.playerName
	g.mutex.Unlock()

	err = g.do(func() error {
		state := protocol.NewSession(code)
		state.Message = WelcomeMessage
		g.setState(state)
		g.states.Send(state.Clone())
		return nil
	})
	if err != nil {
		return err
	}

	err = g.membership.ConnectToHost(g.ctx, code, name)
	if err != nil {
		return errors.Wrap(err, "failed to connect to the host")
	}

	g.logger.Info("joining room", zap.String("roomCode", code.String()), zap.String("name", name))
	return nil
}

func (g *Game) checkCanEnterRoom() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if !g.initialized {
		return ErrNotInitialized
	}
	if g.left {
		return ErrRoomClosed
	}
	if !g.roomCode.Empty() {
		return ErrAlreadyInRoom
	}
	return nil
}

// LeaveRoom closes every link. Peers see the participant leave.
func (g *Game) LeaveRoom() {
	g.mutex.Lock()
	inRoom := !g.roomCode.Empty()
	code := g.roomCode
	g.left = g.left || inRoom
	g.mutex.Unlock()

	if !inRoom {
		return
	}

	g.membership.Close()

	err := g.do(func() error {
		g.mutex.Lock()
		g.roomCode = ""
		g.state = nil
		g.mutex.Unlock()
		g.states.Send(nil)
		return nil
	})
	if err != nil {
		g.logger.Warn("failed to reset the room", zap.Error(err))
	}

	g.logger.Info("left room", zap.String("roomCode", code.String()))
}

func (g *Game) Stop() {
	g.LeaveRoom()
	g.cancel()
	g.states.Close()
	g.chat.Close()
}

func (g *Game) SubscribeToStateChanges() StateSubscription {
	return g.states.Subscribe()
}

func (g *Game) SubscribeToChat() ChatSubscription {
	return g.chat.Subscribe()
}

// CurrentState returns a copy of the local view, nil outside of a room.
func (g *Game) CurrentState() *protocol.Session {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.state.Clone()
}

func (g *Game) IsHost() bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.isHost
}

func (g *Game) Self() protocol.SessionID {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.self
}

func (g *Game) PlayerID() protocol.PlayerID {
	return g.Self().PlayerID()
}

func (g *Game) PlayerName() string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.playerName
}

func (g *Game) RoomCode() protocol.RoomCode {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.roomCode
}

func (g *Game) RenamePlayer(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("empty name")
	}
	if g.HasStorage() {
		err := g.storage.SetPlayerName(name)
		if err != nil {
			return errors.Wrap(err, "failed to save player name")
		}
	}
	g.mutex.Lock()
	g.playerName = name
	g.mutex.Unlock()
	return nil
}

// StartRound deals a fresh deck and opens the bets. Host only.
func (g *Game) StartRound() error {
	if !g.IsHost() {
		return ErrNotHost
	}
	return g.do(func() error {
		next, err := StartRound(g.state, g.deckBuilder())
		if err != nil {
			return err
		}
		g.logger.Info("round started", zap.Int("round", next.Round), zap.Int("players", len(next.Players)))
		g.commit(next)
		return nil
	})
}

func (g *Game) Bet(amount int) error {
	return g.sendAction(protocol.ActionPayload{
		Action: protocol.ActionBet,
		Data:   &protocol.ActionData{Amount: amount},
	})
}

func (g *Game) Hit() error {
	return g.sendAction(protocol.ActionPayload{Action: protocol.ActionHit})
}

func (g *Game) Stand() error {
	return g.sendAction(protocol.ActionPayload{Action: protocol.ActionStand})
}

func (g *Game) sendAction(action protocol.ActionPayload) error {
	g.mutex.RLock()
	isHost := g.isHost
	code := g.roomCode
	self := g.self
	name := g.playerName
	g.mutex.RUnlock()

	if code.Empty() {
		return ErrNoRoom
	}
	if isHost {
		return ErrDealerCannotPlay
	}

	hostID := protocol.HostID(code).String()
	if !g.membership.IsLinked(hostID) {
		return ErrNotConnected
	}

	message, err := protocol.NewActionMessage(self, name, action)
	if err != nil {
		return err
	}

	g.logger.Debug("sending action", zap.Any("action", action))
	return g.membership.SendTo(hostID, message)
}

// SendChat delivers a line to the whole table. The host relays it to
// everyone, its author included.
func (g *Game) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	g.mutex.RLock()
	isHost := g.isHost
	code := g.roomCode
	self := g.self
	name := g.playerName
	g.mutex.RUnlock()

	if code.Empty() {
		return ErrNoRoom
	}

	if isHost {
		return g.do(func() error {
			g.relayChat(protocol.ChatLine{SenderID: self.PlayerID(), SenderName: name, Text: text})
			return nil
		})
	}

	message, err := protocol.NewChatMessage(self, name, text)
	if err != nil {
		return err
	}
	return g.membership.SendTo(protocol.HostID(code).String(), message)
}

// do runs fn on the loop and waits for its result.
func (g *Game) do(fn func() error) error {
	reply := make(chan error, 1)
	select {
	case g.commands <- command{run: fn, reply: reply}:
	case <-g.ctx.Done():
		return g.ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-g.ctx.Done():
		return g.ctx.Err()
	}
}

// enqueue schedules fn on the loop without waiting.
func (g *Game) enqueue(fn func()) {
	select {
	case g.commands <- command{run: func() error { fn(); return nil }}:
	case <-g.ctx.Done():
	}
}

func (g *Game) loop() {
	logger := g.logger.With(zap.String("source", "game loop"))
	logger.Debug("started")

	for {
		select {
		case <-g.ctx.Done():
			logger.Debug("finished: ctx done")
			return
		case cmd := <-g.commands:
			err := cmd.run()
			if cmd.reply != nil {
				cmd.reply <- err
			}
		case event := <-g.membership.Events():
			g.handleSessionEvent(event)
		}
	}
}

func (g *Game) handleSessionEvent(event session.Event) {
	if g.state == nil {
		g.logger.Debug("no room, session event ignored", zap.String("event", event.Type.String()))
		return
	}
	if g.IsHost() {
		g.handleHostEvent(event)
	} else {
		g.handleReplicaEvent(event)
	}
}

func (g *Game) setState(state *protocol.Session) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.state = state
}

func (g *Game) after(d time.Duration, fn func()) {
	g.clock.AfterFunc(d, func() {
		g.enqueue(fn)
	})
}

func (g *Game) loadProfile() error {
	var name string
	if g.config.PlayerName != "" {
		name = g.config.PlayerName
	} else if g.HasStorage() {
		name = g.storage.PlayerName()
	}

	if g.HasStorage() {
		profileID := g.storage.ProfileID()
		if profileID == "" {
			profileID = uuid.New().String()
			err := g.storage.SetProfileID(profileID)
			if err != nil {
				return errors.Wrap(err, "failed to save profile id")
			}
		}
		if g.config.PlayerName != "" && g.config.PlayerName != g.storage.PlayerName() {
			err := g.storage.SetPlayerName(g.config.PlayerName)
			if err != nil {
				return errors.Wrap(err, "failed to save player name")
			}
		}
		g.logger = g.logger.With(zap.String("profile", profileID))
	}

	g.mutex.Lock()
	g.playerName = name
	g.mutex.Unlock()
	return nil
}

func nilStorage(s storage.Service) bool {
	return s == nil || reflect.ValueOf(s).IsNil()
}

func (g *Game) HasStorage() bool {
	return !nilStorage(g.storage)
}

func nilCommentator(c commentary.Service) bool {
	if c == nil {
		return true
	}
	value := reflect.ValueOf(c)
	switch value.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Interface:
		return value.IsNil()
	default:
		return false
	}
}
