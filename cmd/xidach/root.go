package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/config"
	"github.com/six78/xidach-cli/internal/session"
	"github.com/six78/xidach-cli/internal/transport"
	"github.com/six78/xidach-cli/internal/transport/relay"
	"github.com/six78/xidach-cli/internal/version"
	"github.com/six78/xidach-cli/pkg/commentary"
	"github.com/six78/xidach-cli/pkg/game"
	"github.com/six78/xidach-cli/pkg/storage"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           config.ApplicationName,
	Short:         "Xì Dách for the terminal, peer to peer",
	Version:       version.Version(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.SetupLogger()
		env, err := config.LoadEnv()
		if err != nil {
			return err
		}
		environment = env
		config.Logger.Info("starting",
			zap.String("version", version.Version()),
			zap.String("command", cmd.Name()),
		)
		return nil
	},
}

var environment config.Env

func Execute() int {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	config.BindFlags(rootCmd)
	rootCmd.AddCommand(hostCmd, joinCmd, brokerCmd, demoCmd)
}

func createTransport(ctx context.Context, logger *zap.Logger) (transport.Service, error) {
	switch strings.ToLower(config.Transport()) {
	case config.TransportRelay:
		return relay.NewClient(ctx, logger, config.BrokerURL(environment)), nil
	case config.TransportWaku:
		return transport.NewNode(ctx, logger, clockwork.NewRealClock()), nil
	default:
		return nil, errors.Errorf("unknown transport '%s'", config.Transport())
	}
}

func createStorage() storage.Service {
	if config.Anonymous() {
		return nil
	}
	return storage.NewLocalStorage("")
}

func createCommentator(logger *zap.Logger) commentary.Service {
	if environment.OpenAIAPIKey == "" {
		return commentary.NewStatic()
	}
	return commentary.NewOpenAI(commentary.OpenAIConfig{
		APIKey:       environment.OpenAIAPIKey,
		Model:        environment.OpenAIModel,
		ResponsesURL: environment.OpenAIURL,
	}, logger)
}

// createGame builds a game with the stack selected by the flags.
// The transport is stopped by the returned cleanup.
func createGame(ctx context.Context) (*game.Game, func(), error) {
	logger := config.Logger

	tr, err := createTransport(ctx, logger)
	if err != nil {
		return nil, nil, err
	}

	options := []game.Option{
		game.WithContext(ctx),
		game.WithLogger(logger),
		game.WithTransport(tr),
		game.WithStorage(createStorage()),
		game.WithCommentator(createCommentator(logger)),
		game.WithCommentaryTimeout(environment.CommentaryTimeout),
		game.WithPlayerName(config.PlayerName()),
	}

	// A waku publish does not mean the host received the JOIN.
	if strings.ToLower(config.Transport()) == config.TransportWaku {
		options = append(options, game.WithMembershipOptions(session.WithResendJoinUntilAck()))
	}

	g := game.NewGame(options)
	if g == nil {
		return nil, nil, errors.New("failed to create game")
	}

	cleanup := func() {
		g.Stop()
		tr.Stop()
	}
	return g, cleanup, nil
}
