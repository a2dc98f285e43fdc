package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/six78/xidach-cli/internal/view"
	"github.com/six78/xidach-cli/pkg/protocol"
)

var roomCode string

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Open a table and deal as the host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var code protocol.RoomCode
		if roomCode != "" {
			parsed, err := protocol.ParseRoomCode(roomCode)
			if err != nil {
				return err
			}
			code = parsed
		}

		ctx, quit := context.WithCancel(cmd.Context())
		defer quit()

		g, cleanup, err := createGame(ctx)
		if err != nil {
			return err
		}

		exitCode := view.Run(g, view.Entry{Host: true, RoomCode: code})
		cleanup()
		if exitCode != 0 {
			return errors.Errorf("terminal ui exited with code %d", exitCode)
		}
		return nil
	},
}

func init() {
	hostCmd.Flags().StringVar(&roomCode, "code", "", "Room code to open, generated when empty")
}
