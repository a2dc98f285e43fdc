package demo

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/config"
	"github.com/six78/xidach-cli/internal/transport/memory"
	"github.com/six78/xidach-cli/internal/view/commands"
	"github.com/six78/xidach-cli/pkg/game"
	"github.com/six78/xidach-cli/pkg/protocol"
)

var playersNames = []string{"Lan", "Minh", "Tuấn"}

// Demo seats bot players at the table of the host and drives the host
// program through a few rounds.
type Demo struct {
	ctx     context.Context
	dealer  *game.Game
	state   game.StateSubscription
	network *memory.Network
	program *tea.Program
	logger  *zap.Logger

	Rounds    int
	ThinkTime time.Duration

	players []*game.Game
}

func New(ctx context.Context, dealer *game.Game, network *memory.Network, program *tea.Program) *Demo {
	return &Demo{
		ctx:       ctx,
		dealer:    dealer,
		state:     dealer.SubscribeToStateChanges(),
		network:   network,
		program:   program,
		logger:    config.Logger.Named("demo"),
		Rounds:    3,
		ThinkTime: 800 * time.Millisecond,
	}
}

func (d *Demo) Stop() {
	d.logger.Info("stopping")

	for _, player := range d.players {
		player.Stop()
	}
}

func (d *Demo) Routine() {
	defer d.Stop()

	d.logger.Info("started")

	err := d.waitForStateCondition(d.state, func(state *protocol.Session) bool {
		return state != nil && state.Connected
	})
	if err != nil {
		d.logger.Error("room was not created", zap.Error(err))
		return
	}
	d.logger.Info("room created", zap.String("roomCode", d.dealer.RoomCode().String()))

	d.players = make([]*game.Game, 0, len(playersNames))
	for _, name := range playersNames {
		player, err := d.createPlayer(name)
		if err != nil {
			d.logger.Error("failed to create player", zap.Error(err))
			return
		}
		d.players = append(d.players, player)
	}

	err = d.waitForPlayers(len(d.players))
	if err != nil {
		d.logger.Error("failed to wait for players", zap.Error(err))
		return
	}
	d.logger.Info("players joined")

	for round := 1; round <= d.Rounds; round++ {
		d.pause(2 * time.Second)
		d.sendShortcut(commands.DefaultKeyMap.StartRound)

		err = d.waitForResolution(round)
		if err != nil {
			d.logger.Error("round did not finish", zap.Int("round", round), zap.Error(err))
			return
		}
		d.logger.Info("round finished", zap.Int("round", round))
	}

	d.pause(3 * time.Second)
	d.logger.Info("finished")
	d.program.Quit()
}

func (d *Demo) sendShortcut(key key.Binding) {
	keyMsg := tea.KeyMsg{
		Type:  tea.KeyRunes,
		Runes: []rune(key.Keys()[0]),
	}
	d.program.Send(keyMsg)
}

func (d *Demo) createPlayer(name string) (*game.Game, error) {
	logger := config.Logger.Named(strings.ToLower(name))

	player := game.NewGame([]game.Option{
		game.WithContext(d.ctx),
		game.WithTransport(d.network.Endpoint()),
		game.WithPlayerName(name),
		game.WithClock(clockwork.NewRealClock()),
		game.WithLogger(logger),
	})
	if player == nil {
		return nil, errors.New("failed to create player")
	}

	err := player.Initialize()
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize player")
	}

	bot := game.NewBot(player, nil)
	bot.ThinkTime = d.ThinkTime
	go bot.Run(d.ctx)

	err = player.JoinRoom(d.dealer.RoomCode())
	if err != nil {
		return nil, errors.Wrap(err, "failed to join room")
	}

	return player, nil
}

func (d *Demo) pause(duration time.Duration) {
	select {
	case <-time.After(duration):
	case <-d.ctx.Done():
	}
}

func (d *Demo) waitForStateCondition(sub game.StateSubscription, condition func(state *protocol.Session) bool) error {
	timeout := time.After(30 * time.Second)
	for {
		select {
		case state, more := <-sub:
			if !more {
				return errors.New("state subscription closed")
			}
			if condition(state) {
				return nil
			}
		case <-timeout:
			return errors.New("timeout waiting for state condition")
		case <-d.ctx.Done():
			return d.ctx.Err()
		}
	}
}

func (d *Demo) waitForPlayers(count int) error {
	return d.waitForStateCondition(d.state, func(state *protocol.Session) bool {
		return state != nil && len(state.Players) == count
	})
}

func (d *Demo) waitForResolution(round int) error {
	return d.waitForStateCondition(d.state, func(state *protocol.Session) bool {
		return state != nil && state.Round == round && state.Phase == protocol.PhaseResolution
	})
}
