package session

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/transport"
	"github.com/six78/xidach-cli/pkg/protocol"
)

var (
	ErrNoIdentity      = errors.New("identity is not assigned")
	ErrJoinExhausted   = errors.New("host did not answer the join request")
	ErrAlreadyAssigned = errors.New("identity is already assigned")
)

// Membership tracks the open links of a participant and turns transport
// events into session events. It is the only user of transport.Service.
type Membership struct {
	ctx       context.Context
	logger    *zap.Logger
	clock     clockwork.Clock
	transport transport.Service
	config    configuration
	events    chan Event
	done      chan struct{}

	mutex sync.Mutex
	self  protocol.SessionID
	name  string
	links map[string]struct{}
	join  *joinState
}

// joinState is the handshake towards one host.
type joinState struct {
	hostID  string
	name    string
	cancel  context.CancelFunc
	running bool
	sent    bool
	acked   chan struct{}
	ackOnce sync.Once
	opened  chan struct{}
}

func NewMembership(t transport.Service, opts ...Option) *Membership {
	m := &Membership{
		transport: t,
		config:    defaultConfig,
		links:     make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}

	m.logger = m.logger.Named("membership")
	m.events = make(chan Event, m.config.EventsBufferSize)
	m.done = make(chan struct{})

	return m
}

func (m *Membership) Initialize() error {
	err := m.transport.Initialize()
	if err != nil {
		return errors.Wrap(err, "failed to initialize transport")
	}
	err = m.transport.Start()
	return errors.Wrap(err, "failed to start transport")
}

// Events is never closed. Done is closed once the transport stops.
func (m *Membership) Events() <-chan Event {
	return m.events
}

func (m *Membership) Done() <-chan struct{} {
	return m.done
}

func (m *Membership) Self() protocol.SessionID {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.self
}

// AssignIdentity opens the identifier of this participant on the transport.
// A taken identifier is retried once with a freshly generated one: a new room
// code for a host, a new suffix for a client.
func (m *Membership) AssignIdentity(ctx context.Context, isHost bool, code protocol.RoomCode) (protocol.SessionID, error) {
	m.mutex.Lock()
	if !m.self.Empty() {
		m.mutex.Unlock()
		return protocol.SessionID{}, ErrAlreadyAssigned
	}
	m.mutex.Unlock()

	id, err := newIdentity(isHost, code)
	if err != nil {
		return protocol.SessionID{}, err
	}

	_, err = m.transport.Open(id.String())
	if errors.Is(err, transport.ErrIdentifierTaken) {
		m.logger.Info("identifier taken, retrying with a new one", zap.String("id", id.String()))
		if ctx.Err() != nil {
			return protocol.SessionID{}, ctx.Err()
		}
		id, err = newIdentity(isHost, "")
		if err != nil {
			return protocol.SessionID{}, err
		}
		_, err = m.transport.Open(id.String())
	}
	if err != nil {
		return protocol.SessionID{}, errors.Wrap(err, "failed to open identifier")
	}

	m.mutex.Lock()
	m.self = id
	m.mutex.Unlock()

	go m.processTransportEvents()

	m.logger.Info("identity assigned", zap.String("id", id.String()))
	return id, nil
}

func newIdentity(isHost bool, code protocol.RoomCode) (protocol.SessionID, error) {
	if !isHost {
		return protocol.NewClientID(), nil
	}
	if code.Empty() {
		var err error
		code, err = protocol.NewRoomCode()
		if err != nil {
			return protocol.SessionID{}, err
		}
	}
	return protocol.HostID(code), nil
}

// ConnectToHost links to the host of the room and starts the JOIN handshake.
// The handshake runs in the background until a JOIN is sent, the host
// acknowledges the join, ctx is done or the attempts are exhausted. With
// ResendJoinUntilAck a sent JOIN does not stop it.
func (m *Membership) ConnectToHost(ctx context.Context, code protocol.RoomCode, name string) error {
	m.mutex.Lock()
	self := m.self
	m.mutex.Unlock()

	if self.Empty() {
		return ErrNoIdentity
	}

	hostID := protocol.HostID(code).String()

	joinCtx, cancel := context.WithCancel(ctx)
	join := &joinState{
		hostID:  hostID,
		name:    name,
		cancel:  cancel,
		running: true,
		acked:   make(chan struct{}),
		opened:  make(chan struct{}, 1),
	}

	m.mutex.Lock()
	if m.join != nil {
		m.join.cancel()
	}
	m.join = join
	m.name = name
	m.mutex.Unlock()

	err := m.transport.Connect(hostID)
	if err != nil && !errors.Is(err, transport.ErrPeerUnavailable) {
		cancel()
		return errors.Wrap(err, "failed to connect to host")
	}
	if err != nil {
		m.logger.Info("host is not reachable yet", zap.String("host", hostID), zap.Error(err))
	}

	go m.joinLoop(joinCtx, join)
	return nil
}

// AcknowledgeJoin stops the JOIN retries. Called once the host snapshot
// contains this participant.
func (m *Membership) AcknowledgeJoin() {
	m.mutex.Lock()
	join := m.join
	m.mutex.Unlock()

	if join == nil {
		return
	}
	join.ackOnce.Do(func() {
		close(join.acked)
	})
}

func (m *Membership) joinLoop(ctx context.Context, join *joinState) {
	logger := m.logger.With(zap.String("host", join.hostID))
	defer func() {
		m.mutex.Lock()
		join.running = false
		m.mutex.Unlock()
	}()

	for attempt := 1; ; attempt++ {
		err := m.sendJoin(join)
		if err == nil {
			logger.Debug("join sent", zap.Int("attempt", attempt))
			if !m.config.ResendJoinUntilAck {
				return
			}
		} else {
			logger.Debug("join attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		}

		if attempt >= m.config.MaxJoinAttempts {
			logger.Warn("giving up joining the host", zap.Int("attempts", attempt))
			m.emit(Event{Type: JoinFailed, PeerID: join.hostID, Err: ErrJoinExhausted})
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-join.acked:
			return
		case <-join.opened:
		case <-m.clock.After(m.config.JoinRetryInterval):
		}
	}
}

func (m *Membership) sendJoin(join *joinState) error {
	m.mutex.Lock()
	self := m.self
	m.mutex.Unlock()

	message, err := protocol.NewJoinMessage(self, join.name)
	if err != nil {
		return err
	}
	payload, err := protocol.MarshalMessage(message)
	if err != nil {
		return err
	}

	err = m.transport.Send(join.hostID, payload)
	if errors.Is(err, transport.ErrLinkNotOpen) {
		connectErr := m.transport.Connect(join.hostID)
		if connectErr != nil {
			m.logger.Debug("reconnect to host failed", zap.Error(connectErr))
		}
	}
	if err != nil {
		return err
	}

	m.mutex.Lock()
	join.sent = true
	m.mutex.Unlock()
	return nil
}

// Broadcast sends the message to every open link.
func (m *Membership) Broadcast(message *protocol.Message) error {
	payload, err := protocol.MarshalMessage(message)
	if err != nil {
		return err
	}

	for _, peer := range m.Peers() {
		err = m.transport.Send(peer, payload)
		if err != nil {
			m.logger.Warn("failed to send to peer",
				zap.String("peer", peer),
				zap.String("kind", string(message.Kind)),
				zap.Error(err),
			)
		}
	}
	return nil
}

// SendTo sends the message to one peer. Without an open link it does nothing.
func (m *Membership) SendTo(peer string, message *protocol.Message) error {
	m.mutex.Lock()
	_, open := m.links[peer]
	m.mutex.Unlock()

	if !open {
		m.logger.Debug("no open link, message dropped", zap.String("peer", peer))
		return nil
	}

	payload, err := protocol.MarshalMessage(message)
	if err != nil {
		return err
	}
	return m.transport.Send(peer, payload)
}

func (m *Membership) Peers() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	peers := make([]string, 0, len(m.links))
	for peer := range m.links {
		peers = append(peers, peer)
	}
	return peers
}

func (m *Membership) IsLinked(peer string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, ok := m.links[peer]
	return ok
}

// Close stops the handshake and the transport.
func (m *Membership) Close() {
	m.mutex.Lock()
	if m.join != nil {
		m.join.cancel()
	}
	m.mutex.Unlock()
	m.transport.Stop()
}

func (m *Membership) processTransportEvents() {
	defer close(m.done)

	for {
		select {
		case <-m.ctx.Done():
			return
		case event, more := <-m.transport.Events():
			if !more {
				m.logger.Debug("transport events closed")
				return
			}
			m.handleTransportEvent(event)
		}
	}
}

func (m *Membership) handleTransportEvent(event transport.Event) {
	logger := m.logger.With(
		zap.String("event", event.Type.String()),
		zap.String("peer", event.PeerID),
	)

	switch event.Type {
	case transport.EventOpen:
		m.mutex.Lock()
		m.links[event.PeerID] = struct{}{}
		join := m.join
		m.mutex.Unlock()
		logger.Info("link opened")
		m.onHostLinkOpened(join, event.PeerID)

	case transport.EventClose:
		m.mutex.Lock()
		_, existed := m.links[event.PeerID]
		delete(m.links, event.PeerID)
		if m.join != nil && m.join.hostID == event.PeerID {
			m.join.sent = false
		}
		m.mutex.Unlock()
		if existed {
			logger.Info("link closed")
			m.emit(Event{Type: PeerLeft, PeerID: event.PeerID})
		}

	case transport.EventData:
		m.handlePayload(event.PeerID, event.Payload)

	case transport.EventError:
		logger.Warn("transport error", zap.Error(event.Err))

	default:
		logger.Warn("unsupported transport event")
	}
}

// onHostLinkOpened sends a JOIN whenever the link to the host opens.
func (m *Membership) onHostLinkOpened(join *joinState, peer string) {
	if join == nil || join.hostID != peer {
		return
	}

	m.mutex.Lock()
	running := join.running
	sent := join.sent
	m.mutex.Unlock()

	if running {
		select {
		case join.opened <- struct{}{}:
		default:
		}
		return
	}
	if sent {
		return
	}

	err := m.sendJoin(join)
	if err != nil {
		m.logger.Warn("failed to send join on reopened link", zap.Error(err))
	}
}

func (m *Membership) handlePayload(peer string, payload []byte) {
	message, err := protocol.UnmarshalMessage(payload)
	if err != nil {
		m.logger.Warn("dropping malformed message", zap.String("peer", peer), zap.Error(err))
		return
	}

	if message.SenderID != peer {
		m.logger.Warn("dropping message with a spoofed sender",
			zap.String("peer", peer),
			zap.String("sender", message.SenderID),
		)
		return
	}

	if message.Kind == protocol.MessageKindJoin {
		join, err := message.JoinPayload()
		if err != nil {
			m.logger.Warn("dropping malformed join", zap.String("peer", peer), zap.Error(err))
			return
		}
		m.emit(Event{Type: PeerJoined, PeerID: peer, Name: join.Name})
	}

	m.emit(Event{Type: MessageReceived, PeerID: peer, Message: message})
}

func (m *Membership) emit(event Event) {
	select {
	case m.events <- event:
	case <-m.done:
	case <-m.ctx.Done():
	}
}
