package game

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/session"
	"github.com/six78/xidach-cli/internal/transport"
	"github.com/six78/xidach-cli/pkg/cards"
	"github.com/six78/xidach-cli/pkg/commentary"
	"github.com/six78/xidach-cli/pkg/storage"
)

type Option func(*Game)

func WithContext(ctx context.Context) Option {
	return func(g *Game) {
		g.ctx = ctx
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Game) {
		g.logger = l
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(g *Game) {
		g.clock = c
	}
}

// WithTransport builds the membership layer on top of the given transport.
func WithTransport(t transport.Service) Option {
	return func(g *Game) {
		g.transport = t
	}
}

func WithMembership(m *session.Membership) Option {
	return func(g *Game) {
		g.membership = m
	}
}

func WithMembershipOptions(opts ...session.Option) Option {
	return func(g *Game) {
		g.membershipOptions = append(g.membershipOptions, opts...)
	}
}

func WithStorage(s storage.Service) Option {
	return func(g *Game) {
		g.storage = s
	}
}

func WithCommentator(c commentary.Service) Option {
	return func(g *Game) {
		g.commentator = c
	}
}

// WithDeckBuilder replaces the shuffled deck used for every new round.
func WithDeckBuilder(builder func() cards.Deck) Option {
	return func(g *Game) {
		g.deckBuilder = builder
	}
}

func WithPlayerName(name string) Option {
	return func(g *Game) {
		g.config.PlayerName = name
	}
}

func WithDealDelay(d time.Duration) Option {
	return func(g *Game) {
		g.config.DealDelay = d
	}
}

func WithDealerDrawInterval(d time.Duration) Option {
	return func(g *Game) {
		g.config.DealerDrawInterval = d
	}
}

func WithCommentaryTimeout(d time.Duration) Option {
	return func(g *Game) {
		g.config.CommentaryTimeout = d
	}
}
