package transport

import (
	"context"
	"encoding/hex"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/p2p/enode"
	"github.com/ethereum/go-ethereum/p2p/enr"
	"github.com/jonboulle/clockwork"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
	"github.com/pkg/errors"
	"github.com/waku-org/go-waku/waku/v2/dnsdisc"
	"github.com/waku-org/go-waku/waku/v2/node"
	wp "github.com/waku-org/go-waku/waku/v2/payload"
	"github.com/waku-org/go-waku/waku/v2/protocol"
	wakuenr "github.com/waku-org/go-waku/waku/v2/protocol/enr"
	"github.com/waku-org/go-waku/waku/v2/protocol/lightpush"
	"github.com/waku-org/go-waku/waku/v2/protocol/pb"
	"github.com/waku-org/go-waku/waku/v2/protocol/relay"
	"github.com/waku-org/go-waku/waku/v2/protocol/subscription"
	"github.com/waku-org/go-waku/waku/v2/utils"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/config"
)

const defaultConnectTimeout = 10 * time.Second

type linkState int

const (
	linkPending linkState = iota
	linkOpen
)

// Node carries links over Waku. Every identifier listens on its own content
// topic, frames for a peer are published to the peer's topic and encrypted
// with a key derived from the peer identifier.
//
// Waku has no registry, so Open never reports ErrIdentifierTaken.
type Node struct {
	waku   *node.WakuNode
	ctx    context.Context
	logger *zap.Logger
	clock  clockwork.Clock

	pubsubTopic    string
	peerConnection chan node.PeerConnection
	topics         *ContentTopicCache
	lightMode      bool
	connectTimeout time.Duration
	events         *EventQueue

	// publish is replaced in tests
	publish func(message *pb.WakuMessage) error

	mutex          sync.Mutex
	started        bool
	self           string
	links          map[string]linkState
	connectedPeers map[peer.ID]struct{}
	unsubscribe    func()
}

func NewNode(ctx context.Context, logger *zap.Logger, clock clockwork.Clock) *Node {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	n := &Node{
		waku:           nil,
		ctx:            ctx,
		logger:         logger.Named("waku"),
		clock:          clock,
		pubsubTopic:    FleetName(config.Fleet()).DefaultPubsubTopic(),
		peerConnection: nil,
		topics:         NewContentTopicCache(logger),
		lightMode:      config.WakuLightMode(),
		connectTimeout: defaultConnectTimeout,
		events:         NewEventQueue(),
		links:          make(map[string]linkState),
		connectedPeers: make(map[peer.ID]struct{}),
	}
	n.publish = n.publishWakuMessage
	return n
}

func (n *Node) Initialize() error {
	hostAddr, err := net.ResolveTCPAddr("tcp", "0.0.0.0:0")
	if err != nil {
		return errors.Wrap(err, "failed to resolve TCP address")
	}

	var discoveredNodes []dnsdisc.DiscoveredNode
	if config.WakuDnsDiscovery() {
		discoveredNodes, err = discoverNodes(n.ctx, n.logger.Named("dnsdiscovery"))
		if err != nil {
			return errors.Wrap(err, "failed to discover nodes")
		}
	}

	n.peerConnection = make(chan node.PeerConnection)

	options := []node.WakuNodeOption{
		node.WithLogger(n.logger),
		node.WithLogLevel(zap.DebugLevel),
		node.WithHostAddress(hostAddr),
		node.WithConnectionNotification(n.peerConnection),
	}

	if config.WakuDiscV5() {
		bootNodes := getBootNodes(discoveredNodes)
		options = append(options,
			node.WithDiscoveryV5(0, bootNodes, true),
			node.WithPeerExchange(),
		)
	}

	if n.lightMode {
		options = append(options,
			node.WithLightPush(),
			node.WithWakuFilterLightNode(),
		)
	} else {
		options = append(options,
			node.WithWakuRelay(),
		)
	}

	if FleetName(config.Fleet()).IsSharded() {
		options = append(options,
			node.WithClusterID(DefaultClusterID),
		)
	}

	options = append(options, node.DefaultWakuNodeOptions...)

	wakuNode, err := node.New(options...)
	if err != nil {
		return errors.Wrap(err, "failed to create waku node")
	}

	n.waku = wakuNode

	return nil
}

func (n *Node) Start() error {
	if n.waku == nil {
		return errors.New("not initialized")
	}

	go n.watchConnectionStatus()

	err := n.waku.Start(n.ctx)
	if err != nil {
		return errors.Wrap(err, "failed to start waku node")
	}

	n.mutex.Lock()
	n.started = true
	n.mutex.Unlock()

	n.logger.Info("waku started", zap.String("peerID", n.waku.ID()))

	if !n.lightMode {
		err = n.subscribeToPubsubTopic()
		if err != nil {
			return errors.Wrap(err, "failed to subscribe to pubsub topic")
		}
	}

	if config.WakuDiscV5() {
		n.logger.Debug("starting discoveryV5")
		err = n.waku.DiscV5().Start(context.Background())
		if err != nil {
			return errors.Wrap(err, "failed to start discoverV5")
		}
		n.logger.Debug("started discoveryV5")
	}

	if staticNodes := config.WakuStaticNodes(); len(staticNodes) != 0 {
		err = n.addStaticNodes(staticNodes)
		if err != nil {
			return errors.Wrap(err, "failed to add static nodes")
		}
	}

	n.logger.Info("waku node started")

	return nil
}

func (n *Node) Stop() {
	n.mutex.Lock()
	self := n.self
	peers := make([]string, 0, len(n.links))
	for id, state := range n.links {
		if state == linkOpen {
			peers = append(peers, id)
		}
	}
	n.links = make(map[string]linkState)
	unsubscribe := n.unsubscribe
	n.unsubscribe = nil
	started := n.started
	n.started = false
	n.mutex.Unlock()

	for _, id := range peers {
		err := n.publishFrame(&Frame{Type: FrameClose, From: self, To: id})
		if err != nil {
			n.logger.Warn("failed to send close frame", zap.String("peer", id), zap.Error(err))
		}
	}

	if unsubscribe != nil {
		unsubscribe()
	}
	if started {
		n.waku.Stop()
	}
	n.events.Close()
}

func (n *Node) Events() <-chan Event {
	return n.events.Events()
}

func (n *Node) Open(id string) (string, error) {
	n.mutex.Lock()
	if n.self != "" {
		n.mutex.Unlock()
		return "", errors.Errorf("already opened as %s", n.self)
	}
	n.mutex.Unlock()

	in, unsubscribe, err := n.subscribe(id)
	if err != nil {
		return "", err
	}

	n.mutex.Lock()
	n.self = id
	n.unsubscribe = unsubscribe
	n.mutex.Unlock()

	go n.processFrames(id, in)

	n.logger.Info("identifier opened", zap.String("id", id))
	return id, nil
}

func (n *Node) Connect(peerID string) error {
	n.mutex.Lock()
	self := n.self
	if self == "" {
		n.mutex.Unlock()
		return ErrNotOpened
	}
	if _, exists := n.links[peerID]; exists {
		n.mutex.Unlock()
		return nil
	}
	n.links[peerID] = linkPending
	n.mutex.Unlock()

	err := n.publishFrame(&Frame{Type: FrameConnect, From: self, To: peerID})
	if err != nil {
		n.dropLink(peerID)
		return errors.Wrap(err, "failed to send connect frame")
	}

	n.clock.AfterFunc(n.connectTimeout, func() {
		n.mutex.Lock()
		state, exists := n.links[peerID]
		if exists && state == linkPending {
			delete(n.links, peerID)
		}
		n.mutex.Unlock()

		if exists && state == linkPending {
			n.logger.Info("peer did not accept the link", zap.String("peer", peerID))
			n.events.Push(Event{Type: EventError, PeerID: peerID, Err: ErrPeerUnavailable})
		}
	})

	return nil
}

func (n *Node) Send(peerID string, payload []byte) error {
	n.mutex.Lock()
	self := n.self
	state, exists := n.links[peerID]
	n.mutex.Unlock()

	if !exists || state != linkOpen {
		return ErrLinkNotOpen
	}

	return n.publishFrame(&Frame{Type: FrameData, From: self, To: peerID, Payload: payload})
}

func (n *Node) Disconnect(peerID string) error {
	n.mutex.Lock()
	self := n.self
	_, exists := n.links[peerID]
	delete(n.links, peerID)
	n.mutex.Unlock()

	if !exists {
		return nil
	}

	n.events.Push(Event{Type: EventClose, PeerID: peerID})
	return n.publishFrame(&Frame{Type: FrameClose, From: self, To: peerID})
}

func (n *Node) dropLink(peerID string) {
	n.mutex.Lock()
	delete(n.links, peerID)
	n.mutex.Unlock()
}

func (n *Node) processFrames(self string, in <-chan []byte) {
	for {
		select {
		case <-n.ctx.Done():
			return
		case payload, more := <-in:
			if !more {
				return
			}
			frame, err := UnmarshalFrame(payload)
			if err != nil {
				n.logger.Warn("dropping malformed frame", zap.Error(err))
				continue
			}
			n.handleFrame(self, frame)
		}
	}
}

func (n *Node) handleFrame(self string, frame *Frame) {
	if frame.To != self {
		return
	}

	logger := n.logger.With(
		zap.String("frame", string(frame.Type)),
		zap.String("from", frame.From),
	)
	logger.Debug("frame received")

	n.mutex.Lock()
	state, exists := n.links[frame.From]
	switch frame.Type {
	case FrameConnect:
		n.links[frame.From] = linkOpen
	case FrameAccept:
		if exists {
			n.links[frame.From] = linkOpen
		}
	case FrameClose:
		delete(n.links, frame.From)
	case FrameError:
		if exists && state == linkPending {
			delete(n.links, frame.From)
		}
	}
	n.mutex.Unlock()

	switch frame.Type {
	case FrameConnect:
		err := n.publishFrame(&Frame{Type: FrameAccept, From: self, To: frame.From})
		if err != nil {
			logger.Warn("failed to accept link", zap.Error(err))
		}
		if !exists || state != linkOpen {
			n.events.Push(Event{Type: EventOpen, PeerID: frame.From})
		}
	case FrameAccept:
		if exists && state == linkPending {
			n.events.Push(Event{Type: EventOpen, PeerID: frame.From})
		}
	case FrameData:
		if !exists || state != linkOpen {
			logger.Debug("data frame on a closed link")
			return
		}
		n.events.Push(Event{Type: EventData, PeerID: frame.From, Payload: frame.Payload})
	case FrameClose:
		if exists {
			n.events.Push(Event{Type: EventClose, PeerID: frame.From})
		}
	case FrameError:
		n.events.Push(Event{Type: EventError, PeerID: frame.From, Err: frame.Err()})
	default:
		logger.Warn("unsupported frame type")
	}
}

func (n *Node) publishFrame(frame *Frame) error {
	payload, err := frame.Marshal()
	if err != nil {
		return err
	}

	message, err := n.buildWakuMessage(frame.To, payload)
	if err != nil {
		return errors.Wrap(err, "failed to build waku message")
	}

	err = encryptPayload(frame.To, message)
	if err != nil {
		return errors.Wrap(err, "failed to encrypt message")
	}

	return n.publish(message)
}

func getBootNodes(discoveredNodes []dnsdisc.DiscoveredNode) []*enode.Node {
	var bootNodes []*enode.Node
	for _, n := range discoveredNodes {
		if n.ENR != nil {
			bootNodes = append(bootNodes, n.ENR)
		}
	}
	return bootNodes
}

func parseEnrProtocols(v wakuenr.WakuEnrBitfield) string {
	var out []string
	if v&(1<<3) == 8 {
		out = append(out, "lightpush")
	}
	if v&(1<<2) == 4 {
		out = append(out, "filter")
	}
	if v&(1<<1) == 2 {
		out = append(out, "store")
	}
	if v&(1<<0) == 1 {
		out = append(out, "relay")
	}
	return strings.Join(out, ",")
}

func discoverNodes(ctx context.Context, logger *zap.Logger) ([]dnsdisc.DiscoveredNode, error) {
	enrTree, ok := FleetENRTree(FleetName(config.Fleet()))
	if !ok {
		return nil, errors.Errorf("unknown fleet %s", config.Fleet())
	}

	var options []dnsdisc.DNSDiscoveryOption
	if nameserver := config.Nameserver(); nameserver != "" {
		options = append(options, dnsdisc.WithNameserver(nameserver))
	}

	discoveredNodes, err := dnsdisc.RetrieveNodes(ctx, enrTree, options...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to retrieve nodes from enr tree")
	}

	logger.Debug("discovered nodes", zap.String("entree", enrTree))

	for _, d := range discoveredNodes {
		enrField := new(wakuenr.WakuEnrBitfield)
		err = d.ENR.Record().Load(enr.WithEntry(wakuenr.WakuENRField, &enrField))
		if err != nil {
			return nil, errors.Wrap(err, "failed to load waku enr field")
		}

		logger.Debug("discover node",
			zap.String("peerID", d.PeerID.String()),
			zap.Any("peerInfo", d.PeerInfo),
			zap.Any("protocols", parseEnrProtocols(*enrField)),
		)
	}

	return discoveredNodes, nil
}

func (n *Node) addStaticNodes(staticNodes []string) error {
	for _, staticNode := range staticNodes {
		n.logger.Info("connecting to a static node",
			zap.String("address", staticNode),
		)
		addr, err := multiaddr.NewMultiaddr(staticNode)
		if err != nil {
			return errors.Wrap(err, "failed to parse multiaddr")
		}

		err = n.DialPeer(addr)
		if err != nil {
			return errors.Wrap(err, "failed to dial static peer")
		}
	}

	return nil
}

func (n *Node) DialPeer(address multiaddr.Multiaddr) error {
	const dialTimeout = 10 * time.Second

	ctx, cancel := context.WithTimeout(n.ctx, dialTimeout)
	defer cancel()

	err := n.waku.DialPeerWithMultiAddress(ctx, address)
	return errors.Wrap(err, "failed to dial peer")
}

func encryptPayload(id string, message *pb.WakuMessage) error {
	keyInfo := &wp.KeyInfo{
		Kind:   wp.Symmetric,
		SymKey: SymmetricKey(id),
	}

	err := wp.EncodeWakuMessage(message, keyInfo)
	return errors.Wrap(err, "failed to encode waku message")
}

func decryptMessage(id string, message *pb.WakuMessage) ([]byte, error) {
	keyInfo := &wp.KeyInfo{
		Kind:   wp.Symmetric,
		SymKey: SymmetricKey(id),
	}

	err := wp.DecodeWakuMessage(message, keyInfo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode waku message")
	}

	return message.Payload, nil
}

func (n *Node) buildWakuMessage(to string, payload []byte) (*pb.WakuMessage, error) {
	version := uint32(1)

	contentTopic, err := n.topics.Get(to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build content topic")
	}

	return &pb.WakuMessage{
		Payload:      payload,
		Version:      &version,
		ContentTopic: contentTopic,
		Timestamp:    utils.GetUnixEpoch(),
	}, nil
}

func (n *Node) publishWakuMessage(message *pb.WakuMessage) error {
	if n.waku == nil {
		return errors.New("not initialized")
	}

	var err error
	var messageID pb.MessageHash

	if n.lightMode {
		publishOptions := []lightpush.RequestOption{
			lightpush.WithPubSubTopic(n.pubsubTopic),
		}
		messageID, err = n.waku.Lightpush().Publish(n.ctx, message, publishOptions...)
	} else {
		publishOptions := []relay.PublishOption{
			relay.WithPubSubTopic(n.pubsubTopic),
		}
		messageID, err = n.waku.Relay().Publish(n.ctx, message, publishOptions...)
	}

	if err != nil {
		n.logger.Error("failed to publish message", zap.Error(err))
		return errors.Wrap(err, "failed to publish message")
	}

	n.logger.Debug("message sent",
		zap.String("messageID", hex.EncodeToString(messageID.Bytes())))

	return nil
}

func (n *Node) watchConnectionStatus() {
	for {
		select {
		case <-n.ctx.Done():
			return
		case status, more := <-n.peerConnection:
			if !more {
				return
			}
			n.mutex.Lock()
			if status.Connected {
				n.connectedPeers[status.PeerID] = struct{}{}
			} else {
				delete(n.connectedPeers, status.PeerID)
			}
			count := len(n.connectedPeers)
			n.mutex.Unlock()

			n.logger.Debug("peer connection",
				zap.Any("status", status),
				zap.Int("peersCount", count),
			)
		}
	}
}

func (n *Node) PeersCount() int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return len(n.connectedPeers)
}

func (n *Node) subscribeToPubsubTopic() error {
	filter := protocol.NewContentFilter(n.pubsubTopic)
	_, err := n.waku.Relay().Subscribe(n.ctx, filter)
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to pubsub topic")
	}

	go func() {
		<-n.ctx.Done()

		err := n.waku.Relay().Unsubscribe(n.ctx, filter)
		if err != nil {
			n.logger.Warn("failed to unsubscribe from relay", zap.Error(err))
		}
	}()

	return nil
}

// subscribe listens on the content topic of id and returns decrypted payloads.
func (n *Node) subscribe(id string) (<-chan []byte, func(), error) {
	if n.waku == nil {
		return nil, nil, errors.New("not initialized")
	}

	contentTopic, err := n.topics.Get(id)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build content topic")
	}

	contentFilter := protocol.NewContentFilter(n.pubsubTopic, contentTopic)

	var in chan *protocol.Envelope
	var unsubscribe func()

	if n.lightMode {
		var subs []*subscription.SubscriptionDetails
		subs, err = n.waku.FilterLightnode().Subscribe(n.ctx, contentFilter)

		unsubscribe = func() {
			response, err := n.waku.FilterLightnode().Unsubscribe(n.ctx, contentFilter)
			if err != nil {
				n.logger.Warn("failed to unsubscribe from lightnode", zap.Error(err))
				return
			}
			for _, err := range response.Errors() {
				n.logger.Warn("lightnode unsubscribe response error", zap.Error(err.Err))
			}
		}

		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to subscribe to content topic")
		}
		if len(subs) != 1 {
			if len(subs) > 0 {
				unsubscribe()
			}
			return nil, nil, errors.Errorf("unexpected number of subscriptions: %d", len(subs))
		}

		in = subs[0].C
	} else {
		var subs []*relay.Subscription
		subs, err = n.waku.Relay().Subscribe(n.ctx, contentFilter)

		unsubscribe = func() {
			err := n.waku.Relay().Unsubscribe(n.ctx, contentFilter)
			if err != nil {
				n.logger.Warn("failed to unsubscribe from relay", zap.Error(err))
			}
		}

		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to subscribe to content topic")
		}
		if len(subs) != 1 {
			if len(subs) > 0 {
				unsubscribe()
			}
			return nil, nil, errors.Errorf("unexpected number of subscriptions: %d", len(subs))
		}

		in = subs[0].Ch
	}

	out := make(chan []byte, 10)
	leave := make(chan struct{})
	var once sync.Once

	go func() {
		defer func() {
			unsubscribe()
			close(out)
			n.logger.Debug("subscription channel closed", zap.String("id", id))
		}()

		for {
			select {
			case <-leave:
				return
			case <-n.ctx.Done():
				return
			case value, more := <-in:
				if !more {
					return
				}
				payload, err := decryptMessage(id, value.Message())
				if err != nil {
					n.logger.Warn("failed to decrypt message payload", zap.Error(err))
					continue
				}
				select {
				case out <- payload:
				case <-leave:
					return
				}
			}
		}
	}()

	return out, func() { once.Do(func() { close(leave) }) }, nil
}
