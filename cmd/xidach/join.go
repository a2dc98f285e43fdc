package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/six78/xidach-cli/internal/view"
	"github.com/six78/xidach-cli/pkg/protocol"
)

var joinCmd = &cobra.Command{
	Use:   "join <code>",
	Short: "Sit at the table of a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := protocol.ParseRoomCode(args[0])
		if err != nil {
			return err
		}

		ctx, quit := context.WithCancel(cmd.Context())
		defer quit()

		g, cleanup, err := createGame(ctx)
		if err != nil {
			return err
		}

		exitCode := view.Run(g, view.Entry{Host: false, RoomCode: code})
		cleanup()
		if exitCode != 0 {
			return errors.Errorf("terminal ui exited with code %d", exitCode)
		}
		return nil
	},
}
