package game

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/pkg/cards"
	"github.com/six78/xidach-cli/pkg/protocol"
)

// Bot plays the seat of a replica on its own: it bets a fixed amount
// and keeps drawing below StayScore.
type Bot struct {
	game      *Game
	states    StateSubscription
	logger    *zap.Logger
	clock     clockwork.Clock
	Bet       int
	StayScore int
	ThinkTime time.Duration
}

// botMove identifies a decision, so that repeated snapshots of the same
// table do not trigger the same action twice.
type botMove struct {
	round int
	phase protocol.Phase
	cards int
}

func NewBot(game *Game, clock clockwork.Clock) *Bot {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Bot{
		game:      game,
		states:    game.SubscribeToStateChanges(),
		logger:    game.logger.Named("bot"),
		clock:     clock,
		Bet:       100,
		StayScore: cards.MinPlayerScore + 1,
		ThinkTime: 0,
	}
}

func (b *Bot) Run(ctx context.Context) {
	var last botMove

	for {
		select {
		case <-ctx.Done():
			return
		case state, more := <-b.states:
			if !more {
				return
			}
			if state == nil {
				continue
			}
			move, action, ok := b.decide(state)
			if !ok || move == last {
				continue
			}
			last = move
			b.think(ctx)
			err := action()
			if err != nil {
				b.logger.Debug("bot action failed", zap.Error(err))
			}
		}
	}
}

func (b *Bot) decide(state *protocol.Session) (botMove, func() error, bool) {
	player, seated := state.Players.Get(b.game.PlayerID())
	if !seated {
		return botMove{}, nil, false
	}

	move := botMove{
		round: state.Round,
		phase: state.Phase,
		cards: len(player.Hand),
	}

	switch state.Phase {
	case protocol.PhaseBetting:
		if player.IsReady || player.Chips <= 0 {
			return move, nil, false
		}
		amount := b.Bet
		if amount > player.Chips {
			amount = player.Chips
		}
		return move, func() error { return b.game.Bet(amount) }, true

	case protocol.PhaseTurns:
		if !state.IsActive(player.ID) {
			return move, nil, false
		}
		if player.Score() < b.StayScore && len(player.Hand) < cards.MaxHandSize {
			return move, b.game.Hit, true
		}
		return move, b.game.Stand, true
	}

	return move, nil, false
}

func (b *Bot) think(ctx context.Context) {
	if b.ThinkTime <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-b.clock.After(b.ThinkTime):
	}
}
