package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/six78/xidach-cli/cmd/xidach/demo"
	"github.com/six78/xidach-cli/internal/config"
	"github.com/six78/xidach-cli/internal/transport/memory"
	"github.com/six78/xidach-cli/internal/view"
	"github.com/six78/xidach-cli/pkg/commentary"
	"github.com/six78/xidach-cli/pkg/game"
)

var demoRounds int

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Deal a few rounds to bot players in-process",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, quit := context.WithCancel(cmd.Context())
		defer quit()

		network := memory.NewNetwork(config.Logger)

		host := game.NewGame([]game.Option{
			game.WithContext(ctx),
			game.WithLogger(config.Logger.Named("host")),
			game.WithTransport(network.Endpoint()),
			game.WithCommentator(commentary.NewStatic()),
			game.WithPlayerName("Nhà cái"),
		})
		if host == nil {
			return errors.New("failed to create game")
		}
		defer host.Stop()

		program := view.NewProgram(host, view.Entry{Host: true})

		d := demo.New(ctx, host, network, program)
		d.Rounds = demoRounds
		go d.Routine()

		_, err := program.Run()
		return err
	},
}

func init() {
	demoCmd.Flags().IntVar(&demoRounds, "rounds", 3, "Rounds to deal before quitting")
}
