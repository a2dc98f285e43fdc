package game

import (
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/session"
	"github.com/six78/xidach-cli/pkg/protocol"
)

const (
	HostLostMessage   = "Mất kết nối với nhà cái"
	JoinFailedMessage = "Không vào được sòng"
)

func (g *Game) handleReplicaEvent(event session.Event) {
	switch event.Type {
	case session.MessageReceived:
		g.handleReplicaMessage(event.Message)
	case session.PeerLeft:
		if event.PeerID == protocol.HostID(g.state.RoomCode).String() {
			g.logger.Warn("host link closed")
			g.disconnect(HostLostMessage)
		}
	case session.JoinFailed:
		g.logger.Warn("failed to join the room", zap.Error(event.Err))
		g.disconnect(JoinFailedMessage)
	default:
		g.logger.Debug("session event ignored by a replica", zap.String("event", event.Type.String()))
	}
}

func (g *Game) handleReplicaMessage(message *protocol.Message) {
	logger := g.logger.With(
		zap.String("kind", string(message.Kind)),
		zap.String("sender", message.SenderID),
	)

	if !message.FromHost(g.RoomCode()) {
		logger.Warn("message not from the host dropped")
		return
	}

	switch message.Kind {
	case protocol.MessageKindStateUpdate:
		snapshot, err := message.StatePayload()
		if err != nil {
			logger.Warn("malformed snapshot", zap.Error(err))
			return
		}
		g.applySnapshot(snapshot)

	case protocol.MessageKindChat:
		line, err := message.ChatLine()
		if err != nil {
			logger.Warn("malformed chat", zap.Error(err))
			return
		}
		g.chat.Send(line)

	default:
		logger.Warn("unsupported message kind")
	}
}

func (g *Game) applySnapshot(snapshot *protocol.Session) {
	next := protocol.ApplySnapshot(g.state, *snapshot)
	next.Connected = true

	if next.Players.Contains(g.PlayerID()) {
		g.membership.AcknowledgeJoin()
	}

	g.logger.Debug("snapshot applied",
		zap.String("phase", string(next.Phase)),
		zap.Int("round", next.Round),
	)

	g.setState(next)
	g.states.Send(next.Clone())
}

func (g *Game) disconnect(message string) {
	next := g.state.Clone()
	next.Connected = false
	next.Message = message
	g.setState(next)
	g.states.Send(next.Clone())
}
