package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type configuration struct {
	JoinRetryInterval time.Duration
	MaxJoinAttempts   int
	EventsBufferSize  int
	// ResendJoinUntilAck keeps resending JOIN after a successful send,
	// for transports that do not confirm delivery.
	ResendJoinUntilAck bool
}

var defaultConfig = configuration{
	JoinRetryInterval: 1 * time.Second,
	MaxJoinAttempts:   10,
	EventsBufferSize:  64,
}

type Option func(*Membership)

func WithContext(ctx context.Context) Option {
	return func(m *Membership) {
		m.ctx = ctx
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Membership) {
		m.logger = l
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(m *Membership) {
		m.clock = c
	}
}

func WithJoinRetryInterval(d time.Duration) Option {
	return func(m *Membership) {
		m.config.JoinRetryInterval = d
	}
}

func WithMaxJoinAttempts(n int) Option {
	return func(m *Membership) {
		m.config.MaxJoinAttempts = n
	}
}

func WithResendJoinUntilAck() Option {
	return func(m *Membership) {
		m.config.ResendJoinUntilAck = true
	}
}
