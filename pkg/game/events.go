package game

import (
	"sync"

	"github.com/six78/xidach-cli/pkg/protocol"
)

type StateSubscription chan *protocol.Session

type ChatSubscription chan protocol.ChatLine

// broadcaster fans values out to subscribers without ever blocking the
// sender. A subscriber that does not keep up loses its oldest value.
type broadcaster[T any] struct {
	mutex         sync.Mutex
	bufferSize    int
	subscriptions []chan T
	closed        bool
}

func newBroadcaster[T any](bufferSize int) *broadcaster[T] {
	return &broadcaster[T]{
		bufferSize:    bufferSize,
		subscriptions: make([]chan T, 0, 1),
	}
}

func (b *broadcaster[T]) Subscribe() chan T {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	channel := make(chan T, b.bufferSize)
	if b.closed {
		close(channel)
		return channel
	}
	b.subscriptions = append(b.subscriptions, channel)
	return channel
}

func (b *broadcaster[T]) Send(value T) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return
	}

	for _, channel := range b.subscriptions {
		select {
		case channel <- value:
			continue
		default:
		}
		select {
		case <-channel:
		default:
		}
		select {
		case channel <- value:
		default:
		}
	}
}

func (b *broadcaster[T]) Count() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.subscriptions)
}

func (b *broadcaster[T]) Close() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, channel := range b.subscriptions {
		close(channel)
	}
	b.subscriptions = nil
}
