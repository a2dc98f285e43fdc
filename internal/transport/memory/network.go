// Package memory is an in-process peer transport. Every Endpoint created
// from the same Network can reach the others by identifier.
package memory

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/transport"
)

type Network struct {
	logger    *zap.Logger
	mutex     sync.Mutex
	endpoints map[string]*Endpoint
}

func NewNetwork(logger *zap.Logger) *Network {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Network{
		logger:    logger.Named("memory"),
		endpoints: make(map[string]*Endpoint),
	}
}

// Endpoint creates a new participant on the network.
func (n *Network) Endpoint() *Endpoint {
	return &Endpoint{
		network: n,
		events:  transport.NewEventQueue(),
		links:   make(map[string]struct{}),
	}
}

// Identifiers lists the identifiers currently opened on the network.
func (n *Network) Identifiers() []string {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	result := make([]string, 0, len(n.endpoints))
	for id := range n.endpoints {
		result = append(result, id)
	}
	return result
}

func (n *Network) register(id string, endpoint *Endpoint) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if _, exists := n.endpoints[id]; exists {
		return transport.ErrIdentifierTaken
	}
	n.endpoints[id] = endpoint
	return nil
}

func (n *Network) unregister(id string, endpoint *Endpoint) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.endpoints[id] == endpoint {
		delete(n.endpoints, id)
	}
}

func (n *Network) lookup(id string) *Endpoint {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.endpoints[id]
}

// Endpoint implements transport.Service on top of a Network.
type Endpoint struct {
	network *Network
	events  *transport.EventQueue

	mutex   sync.Mutex
	id      string
	stopped bool
	links   map[string]struct{}
}

func (e *Endpoint) Initialize() error {
	return nil
}

func (e *Endpoint) Start() error {
	return nil
}

func (e *Endpoint) Stop() {
	e.mutex.Lock()
	if e.stopped {
		e.mutex.Unlock()
		return
	}
	e.stopped = true
	id := e.id
	peers := make([]string, 0, len(e.links))
	for peer := range e.links {
		peers = append(peers, peer)
	}
	e.links = make(map[string]struct{})
	e.mutex.Unlock()

	for _, peer := range peers {
		if remote := e.network.lookup(peer); remote != nil {
			remote.closeLink(id)
		}
	}
	if id != "" {
		e.network.unregister(id, e)
	}
	e.events.Close()
}

func (e *Endpoint) Open(id string) (string, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.stopped {
		return "", errors.New("endpoint stopped")
	}
	if e.id != "" {
		return "", errors.Errorf("already opened as %s", e.id)
	}
	if err := e.network.register(id, e); err != nil {
		return "", err
	}
	e.id = id
	e.network.logger.Debug("identifier opened", zap.String("id", id))
	return id, nil
}

func (e *Endpoint) Connect(peer string) error {
	e.mutex.Lock()
	id := e.id
	_, linked := e.links[peer]
	e.mutex.Unlock()

	if id == "" {
		return transport.ErrNotOpened
	}
	if linked {
		return nil
	}

	remote := e.network.lookup(peer)
	if remote == nil || remote == e {
		return transport.ErrPeerUnavailable
	}

	e.openLink(peer)
	remote.openLink(id)
	return nil
}

func (e *Endpoint) Send(peer string, payload []byte) error {
	e.mutex.Lock()
	id := e.id
	_, linked := e.links[peer]
	e.mutex.Unlock()

	if !linked {
		return transport.ErrLinkNotOpen
	}

	remote := e.network.lookup(peer)
	if remote == nil {
		return transport.ErrPeerUnavailable
	}

	return remote.deliver(id, append([]byte(nil), payload...))
}

func (e *Endpoint) Disconnect(peer string) error {
	e.mutex.Lock()
	id := e.id
	e.mutex.Unlock()

	e.closeLink(peer)
	if remote := e.network.lookup(peer); remote != nil {
		remote.closeLink(id)
	}
	return nil
}

func (e *Endpoint) Events() <-chan transport.Event {
	return e.events.Events()
}

func (e *Endpoint) ID() string {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.id
}

func (e *Endpoint) openLink(peer string) {
	e.mutex.Lock()
	if e.stopped {
		e.mutex.Unlock()
		return
	}
	_, exists := e.links[peer]
	e.links[peer] = struct{}{}
	e.mutex.Unlock()

	if !exists {
		e.events.Push(transport.Event{Type: transport.EventOpen, PeerID: peer})
	}
}

func (e *Endpoint) closeLink(peer string) {
	e.mutex.Lock()
	_, exists := e.links[peer]
	delete(e.links, peer)
	e.mutex.Unlock()

	if exists {
		e.events.Push(transport.Event{Type: transport.EventClose, PeerID: peer})
	}
}

func (e *Endpoint) deliver(from string, payload []byte) error {
	e.mutex.Lock()
	_, linked := e.links[from]
	e.mutex.Unlock()

	if !linked {
		return transport.ErrLinkNotOpen
	}
	e.events.Push(transport.Event{Type: transport.EventData, PeerID: from, Payload: payload})
	return nil
}
