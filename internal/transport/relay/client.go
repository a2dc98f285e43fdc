package relay

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/transport"
)

const dialTimeout = 10 * time.Second

type linkState int

const (
	linkPending linkState = iota
	linkOpen
)

// Client implements transport.Service through a Broker.
type Client struct {
	ctx    context.Context
	logger *zap.Logger
	url    *url.URL
	events *transport.EventQueue

	mutex  sync.Mutex
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	id     string
	links  map[string]linkState
	closed bool
}

func NewClient(ctx context.Context, logger *zap.Logger, brokerURL string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		ctx:    ctx,
		logger: logger.Named("relay"),
		events: transport.NewEventQueue(),
		links:  make(map[string]linkState),
	}
	c.url, _ = url.Parse(brokerURL)
	return c
}

func (c *Client) Initialize() error {
	if c.url == nil || c.url.Host == "" {
		return errors.New("invalid broker url")
	}
	switch c.url.Scheme {
	case "ws", "wss":
	case "http":
		c.url.Scheme = "ws"
	case "https":
		c.url.Scheme = "wss"
	default:
		return errors.Errorf("unsupported broker url scheme '%s'", c.url.Scheme)
	}
	if c.url.Path == "" || c.url.Path == "/" {
		c.url.Path = Path
	}
	return nil
}

// Start is a no-op, the broker connection is made by Open,
// because the identifier is part of the handshake.
func (c *Client) Start() error {
	return nil
}

func (c *Client) Stop() {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	done := c.done
	c.links = make(map[string]linkState)
	c.mutex.Unlock()

	if conn != nil {
		close(done)
		_ = conn.Close()
	}
	c.events.Close()
}

func (c *Client) Events() <-chan transport.Event {
	return c.events.Events()
}

func (c *Client) Open(id string) (string, error) {
	c.mutex.Lock()
	if c.id != "" {
		c.mutex.Unlock()
		return "", errors.Errorf("already opened as %s", c.id)
	}
	c.mutex.Unlock()

	if c.url == nil {
		return "", errors.New("not initialized")
	}

	target := *c.url
	query := target.Query()
	query.Set(QueryID, id)
	target.RawQuery = query.Encode()

	ctx, cancel := context.WithTimeout(c.ctx, dialTimeout)
	defer cancel()

	conn, response, err := websocket.DefaultDialer.DialContext(ctx, target.String(), nil)
	if response != nil && response.Body != nil {
		_ = response.Body.Close()
	}
	if err != nil {
		if response != nil && response.StatusCode == http.StatusConflict {
			return "", transport.ErrIdentifierTaken
		}
		return "", errors.Wrap(err, "failed to connect to broker")
	}

	c.mutex.Lock()
	c.id = id
	c.conn = conn
	c.send = make(chan []byte, sendBufferSize)
	c.done = make(chan struct{})
	c.mutex.Unlock()

	go c.writePump(conn, c.send, c.done)
	go c.readPump(conn)

	c.logger.Info("identifier opened", zap.String("id", id))
	return id, nil
}

func (c *Client) Connect(peer string) error {
	c.mutex.Lock()
	id := c.id
	if id == "" {
		c.mutex.Unlock()
		return transport.ErrNotOpened
	}
	if _, exists := c.links[peer]; exists {
		c.mutex.Unlock()
		return nil
	}
	c.links[peer] = linkPending
	c.mutex.Unlock()

	return c.write(&transport.Frame{Type: transport.FrameConnect, From: id, To: peer})
}

func (c *Client) Send(peer string, payload []byte) error {
	c.mutex.Lock()
	id := c.id
	state, exists := c.links[peer]
	c.mutex.Unlock()

	if !exists || state != linkOpen {
		return transport.ErrLinkNotOpen
	}

	return c.write(&transport.Frame{Type: transport.FrameData, From: id, To: peer, Payload: payload})
}

func (c *Client) Disconnect(peer string) error {
	c.mutex.Lock()
	id := c.id
	_, exists := c.links[peer]
	delete(c.links, peer)
	c.mutex.Unlock()

	if !exists {
		return nil
	}

	c.events.Push(transport.Event{Type: transport.EventClose, PeerID: peer})
	return c.write(&transport.Frame{Type: transport.FrameClose, From: id, To: peer})
}

func (c *Client) write(frame *transport.Frame) error {
	payload, err := frame.Marshal()
	if err != nil {
		return err
	}

	c.mutex.Lock()
	send := c.send
	done := c.done
	closed := c.closed
	c.mutex.Unlock()

	if closed || send == nil {
		return transport.ErrNotOpened
	}

	select {
	case send <- payload:
		return nil
	case <-done:
		return transport.ErrNotOpened
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

func (c *Client) writePump(conn *websocket.Conn, send chan []byte, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-c.ctx.Done():
			_ = conn.Close()
			return
		case message := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.TextMessage, message)
			if err != nil {
				c.logger.Warn("failed to write frame", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) readPump(conn *websocket.Conn) {
	defer c.dropAllLinks()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.logger.Debug("broker connection finished", zap.Error(err))
			return
		}

		frame, err := transport.UnmarshalFrame(payload)
		if err != nil {
			c.logger.Warn("dropping malformed frame", zap.Error(err))
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame *transport.Frame) {
	logger := c.logger.With(
		zap.String("frame", string(frame.Type)),
		zap.String("from", frame.From),
	)
	logger.Debug("frame received")

	c.mutex.Lock()
	id := c.id
	state, exists := c.links[frame.From]
	switch frame.Type {
	case transport.FrameConnect:
		c.links[frame.From] = linkOpen
	case transport.FrameAccept:
		if exists {
			c.links[frame.From] = linkOpen
		}
	case transport.FrameClose:
		delete(c.links, frame.From)
	case transport.FrameError:
		if exists && state == linkPending {
			delete(c.links, frame.From)
		}
	}
	c.mutex.Unlock()

	switch frame.Type {
	case transport.FrameConnect:
		err := c.write(&transport.Frame{Type: transport.FrameAccept, From: id, To: frame.From})
		if err != nil {
			logger.Warn("failed to accept link", zap.Error(err))
		}
		if !exists || state != linkOpen {
			c.events.Push(transport.Event{Type: transport.EventOpen, PeerID: frame.From})
		}
	case transport.FrameAccept:
		if exists && state == linkPending {
			c.events.Push(transport.Event{Type: transport.EventOpen, PeerID: frame.From})
		}
	case transport.FrameData:
		if !exists || state != linkOpen {
			logger.Debug("data frame on a closed link")
			return
		}
		c.events.Push(transport.Event{Type: transport.EventData, PeerID: frame.From, Payload: frame.Payload})
	case transport.FrameClose:
		if exists {
			c.events.Push(transport.Event{Type: transport.EventClose, PeerID: frame.From})
		}
	case transport.FrameError:
		c.events.Push(transport.Event{Type: transport.EventError, PeerID: frame.From, Err: frame.Err()})
	}
}

// dropAllLinks closes every link when the broker connection is lost.
func (c *Client) dropAllLinks() {
	c.mutex.Lock()
	peers := make([]string, 0, len(c.links))
	for peer := range c.links {
		peers = append(peers, peer)
	}
	c.links = make(map[string]linkState)
	c.mutex.Unlock()

	for _, peer := range peers {
		c.events.Push(transport.Event{Type: transport.EventClose, PeerID: peer})
	}
}
