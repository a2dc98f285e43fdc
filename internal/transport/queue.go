package transport

import "sync"

// EventQueue is an unbounded FIFO in front of an events channel, so that
// pushing never blocks the producer on a slow consumer.
type EventQueue struct {
	mu     sync.Mutex
	items  []Event
	closed bool
	signal chan struct{}
	done   chan struct{}
	out    chan Event
}

func NewEventQueue() *EventQueue {
	q := &EventQueue{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan Event),
	}
	go q.run()
	return q
}

func (q *EventQueue) Push(event Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, event)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *EventQueue) Events() <-chan Event {
	return q.out
}

func (q *EventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

func (q *EventQueue) run() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			select {
			case <-q.signal:
				continue
			case <-q.done:
				return
			}
		}
		event := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case q.out <- event:
		case <-q.done:
			return
		}
	}
}
