// Package relay carries peer links through a websocket broker. The broker
// owns the identifier registry and forwards frames between its clients.
package relay

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/transport"
)

const (
	QueryID = "id"
	Path    = "/ws"

	sendBufferSize = 256
	writeWait      = 10 * time.Second
)

type Broker struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mutex   sync.Mutex
	clients map[string]*brokerConn
}

type brokerConn struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	closed bool
	links  map[string]struct{}
}

func NewBroker(logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		logger: logger.Named("broker"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*brokerConn),
	}
}

func (b *Broker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, b.serveWebsocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// ListenAndServe blocks until ctx is done or the server fails.
func (b *Broker) ListenAndServe(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           b.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	b.logger.Info("broker listening", zap.String("address", address))
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "broker stopped")
}

func (b *Broker) ClientsCount() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.clients)
}

func (b *Broker) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(QueryID)
	if id == "" {
		http.Error(w, "missing identifier", http.StatusBadRequest)
		return
	}

	client := &brokerConn{
		id:    id,
		send:  make(chan []byte, sendBufferSize),
		links: make(map[string]struct{}),
	}

	b.mutex.Lock()
	if _, exists := b.clients[id]; exists {
		b.mutex.Unlock()
		b.logger.Info("identifier taken", zap.String("id", id))
		http.Error(w, transport.ErrIdentifierTaken.Error(), http.StatusConflict)
		return
	}
	b.clients[id] = client
	b.mutex.Unlock()

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", zap.Error(err))
		b.mutex.Lock()
		delete(b.clients, id)
		b.mutex.Unlock()
		return
	}
	client.conn = conn

	b.logger.Debug("client registered", zap.String("id", id))

	go b.writePump(client)
	b.readPump(client)
}

func (b *Broker) readPump(client *brokerConn) {
	defer b.unregister(client)

	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			b.logger.Debug("client read finished", zap.String("id", client.id), zap.Error(err))
			return
		}

		frame, err := transport.UnmarshalFrame(payload)
		if err != nil {
			b.logger.Warn("dropping malformed frame", zap.String("id", client.id), zap.Error(err))
			continue
		}

		// The sender cannot be spoofed.
		frame.From = client.id
		b.route(client, frame)
	}
}

func (b *Broker) writePump(client *brokerConn) {
	defer client.conn.Close()

	for message := range client.send {
		_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := client.conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			b.logger.Debug("client write failed", zap.String("id", client.id), zap.Error(err))
			return
		}
	}

	_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (b *Broker) route(sender *brokerConn, frame *transport.Frame) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	target := b.clients[frame.To]

	switch frame.Type {
	case transport.FrameConnect:
		if target == nil || target == sender {
			b.replyError(sender, frame.To, transport.ErrPeerUnavailable)
			return
		}
		sender.links[target.id] = struct{}{}
		target.links[sender.id] = struct{}{}
		b.enqueue(target, frame)

	case transport.FrameAccept:
		if target != nil {
			b.enqueue(target, frame)
		}

	case transport.FrameData:
		_, linked := sender.links[frame.To]
		if target == nil || !linked {
			b.replyError(sender, frame.To, transport.ErrLinkNotOpen)
			return
		}
		b.enqueue(target, frame)

	case transport.FrameClose:
		delete(sender.links, frame.To)
		if target != nil {
			delete(target.links, sender.id)
			b.enqueue(target, frame)
		}

	default:
		b.logger.Warn("unsupported frame type", zap.String("type", string(frame.Type)))
	}
}

func (b *Broker) unregister(client *brokerConn) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.clients[client.id] == client {
		delete(b.clients, client.id)
	}

	for peer := range client.links {
		target := b.clients[peer]
		if target == nil {
			continue
		}
		delete(target.links, client.id)
		b.enqueue(target, &transport.Frame{
			Type: transport.FrameClose,
			From: client.id,
			To:   peer,
		})
	}

	client.links = nil
	client.closed = true
	close(client.send)

	b.logger.Debug("client unregistered", zap.String("id", client.id))
}

// replyError and enqueue must be called with the mutex held.
func (b *Broker) replyError(client *brokerConn, peer string, err error) {
	b.enqueue(client, &transport.Frame{
		Type:    transport.FrameError,
		From:    peer,
		To:      client.id,
		Payload: []byte(err.Error()),
	})
}

func (b *Broker) enqueue(client *brokerConn, frame *transport.Frame) {
	if client.closed {
		return
	}
	payload, err := frame.Marshal()
	if err != nil {
		b.logger.Error("failed to marshal frame", zap.Error(err))
		return
	}
	select {
	case client.send <- payload:
	default:
		b.logger.Warn("client send buffer full, dropping frame", zap.String("id", client.id))
	}
}
