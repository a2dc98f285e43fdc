package game

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/session"
	"github.com/six78/xidach-cli/pkg/commentary"
	"github.com/six78/xidach-cli/pkg/protocol"
)

func (g *Game) handleHostEvent(event session.Event) {
	logger := g.logger.With(
		zap.String("event", event.Type.String()),
		zap.String("peer", event.PeerID),
	)

	switch event.Type {
	case session.PeerJoined:
		g.onPeerJoined(event.PeerID, event.Name)
	case session.MessageReceived:
		g.handleHostMessage(event.Message)
	case session.PeerLeft:
		g.onPeerLeft(event.PeerID)
	default:
		logger.Debug("session event ignored by the host")
	}
}

func (g *Game) onPeerJoined(peer string, name string) {
	logger := g.logger.With(zap.String("peer", peer))

	id, err := protocol.ParseSessionID(peer)
	if err != nil || id.IsHost() {
		logger.Warn("join from an invalid identifier", zap.Error(err))
		return
	}

	playerID := id.PlayerID()
	if g.state.Players.Contains(playerID) {
		// Repeated JOIN: the peer still has not seen itself.
		g.sendSnapshot(peer, g.state)
		return
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = id.Code
	}

	next, err := AddPlayer(g.state, playerID, name, g.returningChips[name])
	if err != nil {
		logger.Warn("player not seated", zap.String("name", name), zap.Error(err))
		g.sendSnapshot(peer, g.state)
		return
	}
	delete(g.returningChips, name)

	logger.Info("player seated", zap.String("name", name), zap.Int("players", len(next.Players)))

	g.sendSnapshot(peer, next)
	g.commit(next)
}

func (g *Game) onPeerLeft(peer string) {
	playerID := protocol.PlayerID(peer)
	player, seated := g.state.Players.Get(playerID)
	if !seated {
		return
	}

	chips := player.Chips
	if g.state.Phase.RoundInProgress() {
		chips -= player.Bet
	}
	g.returningChips[player.Name] = chips

	next, err := RemovePlayer(g.state, playerID)
	if err != nil {
		g.logger.Warn("failed to remove player", zap.String("peer", peer), zap.Error(err))
		return
	}

	g.logger.Info("player left the table",
		zap.String("name", player.Name),
		zap.String("phase", string(g.state.Phase)),
	)
	g.commit(next)
}

func (g *Game) handleHostMessage(message *protocol.Message) {
	logger := g.logger.With(
		zap.String("kind", string(message.Kind)),
		zap.String("sender", message.SenderID),
	)

	switch message.Kind {
	case protocol.MessageKindJoin:
		// Seating is driven by the PeerJoined event.

	case protocol.MessageKindPlayerAction:
		action, err := message.ActionPayload()
		if err != nil {
			logger.Warn("malformed action", zap.Error(err))
			return
		}
		g.handleAction(message.Sender(), *action)

	case protocol.MessageKindChat:
		chat, err := message.ChatPayload()
		if err != nil {
			logger.Warn("malformed chat", zap.Error(err))
			return
		}
		g.relayChat(protocol.ChatLine{
			SenderID:   message.Sender(),
			SenderName: message.SenderName,
			Text:       chat.Text,
		})

	default:
		logger.Warn("unsupported message kind")
	}
}

// handleAction applies an intent of a seated player. Illegal intents are
// dropped without touching the session.
func (g *Game) handleAction(sender protocol.PlayerID, action protocol.ActionPayload) {
	var next *protocol.Session
	var err error

	switch action.Action {
	case protocol.ActionBet:
		next, err = PlaceBet(g.state, sender, action.Amount())
	case protocol.ActionHit:
		next, err = Hit(g.state, sender)
	case protocol.ActionStand:
		next, err = Stand(g.state, sender)
	default:
		err = ErrUnknownAction
	}

	if err != nil {
		g.logger.Debug("action dropped",
			zap.String("sender", string(sender)),
			zap.String("action", string(action.Action)),
			zap.Error(err),
		)
		return
	}

	g.commit(next)
}

func (g *Game) relayChat(line protocol.ChatLine) {
	g.chat.Send(line)

	message, err := protocol.NewRelayedChatMessage(g.Self(), line)
	if err != nil {
		g.logger.Error("failed to build chat message", zap.Error(err))
		return
	}
	err = g.membership.Broadcast(message)
	if err != nil {
		g.logger.Error("failed to relay chat", zap.Error(err))
	}
}

// commit makes next the authoritative session, publishes it and runs
// whatever the transition requires next.
func (g *Game) commit(next *protocol.Session) {
	previous := g.state

	next.IsHost = true
	next.Connected = true
	g.setState(next)
	g.publish(next)

	g.afterTransition(previous, next)
}

func (g *Game) publish(state *protocol.Session) {
	g.states.Send(state.Clone())

	message, err := protocol.NewStateMessage(g.Self(), state)
	if err != nil {
		g.logger.Error("failed to build state message", zap.Error(err))
		return
	}

	g.logger.Debug("publishing state",
		zap.String("phase", string(state.Phase)),
		zap.Int("round", state.Round),
		zap.Int("activePlayerIndex", state.ActivePlayerIndex),
	)

	err = g.membership.Broadcast(message)
	if err != nil {
		g.logger.Error("failed to publish state", zap.Error(err))
	}

	if g.HasStorage() {
		err = g.storage.SaveRoomState(state.RoomCode, state)
		if err != nil {
			g.logger.Error("failed to save room state", zap.Error(err))
		}
	}
}

func (g *Game) sendSnapshot(peer string, state *protocol.Session) {
	message, err := protocol.NewStateMessage(g.Self(), state)
	if err != nil {
		g.logger.Error("failed to build state message", zap.Error(err))
		return
	}
	err = g.membership.SendTo(peer, message)
	if err != nil {
		g.logger.Warn("failed to send snapshot", zap.String("peer", peer), zap.Error(err))
	}
}

func (g *Game) afterTransition(previous, next *protocol.Session) {
	if previous == nil {
		return
	}

	entered := func(phase protocol.Phase) bool {
		return next.Phase == phase && (previous.Phase != phase || previous.Round != next.Round)
	}

	switch {
	case entered(protocol.PhaseInitialDeal):
		g.scheduleInitialDeal(next.Round)
	case entered(protocol.PhaseDealerTurn):
		g.playDealerTurn()
		return
	}

	if shouldComment(previous, next) {
		g.requestCommentary(next)
	}
}

func shouldComment(previous, next *protocol.Session) bool {
	if previous.Phase == next.Phase && previous.Round == next.Round &&
		previous.ActivePlayerIndex == next.ActivePlayerIndex {
		return false
	}
	switch next.Phase {
	case protocol.PhaseTurns, protocol.PhaseResolution:
		return true
	default:
		return false
	}
}

func (g *Game) scheduleInitialDeal(round int) {
	g.after(g.config.DealDelay, func() {
		if g.state == nil || g.state.Round != round || g.state.Phase != protocol.PhaseInitialDeal {
			return
		}
		next, err := DealInitialCards(g.state)
		if err != nil {
			g.logger.Error("failed to deal initial cards", zap.Error(err))
			return
		}
		g.commit(next)
	})
}

// playDealerTurn reveals the hole card, then the dealer draws one card per
// interval until the hand stands, and the round is resolved.
func (g *Game) playDealerTurn() {
	next, err := RevealDealerHand(g.state)
	if err != nil {
		g.logger.Error("failed to reveal dealer hand", zap.Error(err))
		return
	}
	g.commit(next)
	g.continueDealerTurn()
}

func (g *Game) continueDealerTurn() {
	if DealerShouldDraw(g.state) {
		round := g.state.Round
		g.after(g.config.DealerDrawInterval, func() {
			if g.state == nil || g.state.Round != round || g.state.Phase != protocol.PhaseDealerTurn {
				return
			}
			next, err := DealerDraw(g.state)
			if err != nil {
				g.logger.Error("dealer failed to draw", zap.Error(err))
				return
			}
			g.commit(next)
			g.continueDealerTurn()
		})
		return
	}

	next, err := Resolve(g.state)
	if err != nil {
		g.logger.Error("failed to resolve the round", zap.Error(err))
		return
	}
	g.logResolution(next)
	g.commit(next)
}

func (g *Game) logResolution(state *protocol.Session) {
	for _, player := range state.Players {
		if player.Outcome == "" {
			continue
		}
		g.logger.Info("player settled",
			zap.String("name", player.Name),
			zap.String("outcome", string(player.Outcome)),
			zap.Int("chips", player.Chips),
		)
	}
}

// requestCommentary asks for a remark in the background. The result is
// dropped when the round is over by the time it arrives.
func (g *Game) requestCommentary(state *protocol.Session) {
	if nilCommentator(g.commentator) {
		return
	}

	round := state.Round
	request := commentary.NewRequest(state)

	go func() {
		ctx, cancel := context.WithTimeout(g.ctx, g.config.CommentaryTimeout)
		defer cancel()

		text := g.commentator.Comment(ctx, request)

		g.enqueue(func() {
			if g.state == nil || g.state.Round != round {
				g.logger.Debug("stale commentary dropped", zap.Int("round", round))
				return
			}
			next := g.state.Clone()
			next.Commentary = text
			g.commit(next)
		})
	}()
}

// loadReturningChips restores the chip counts of the last session of the room,
// keyed by player name.
func (g *Game) loadReturningChips(code protocol.RoomCode) {
	if !g.HasStorage() {
		return
	}
	state, err := g.storage.LoadRoomState(code)
	if err != nil {
		g.logger.Info("room not found in storage", zap.Error(err))
		return
	}
	for _, player := range state.Players {
		if player.Chips > 0 {
			g.returningChips[player.Name] = player.Chips
		}
	}
	g.logger.Info("loaded room from storage",
		zap.String("roomCode", code.String()),
		zap.Int("players", len(g.returningChips)),
	)
}
