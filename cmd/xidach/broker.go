package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/six78/xidach-cli/internal/config"
	"github.com/six78/xidach-cli/internal/transport/relay"
)

var listenAddress string

var brokerCmd = &cobra.Command{
	Use:   "broker",
	Short: "Run the relay broker the players connect through",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cmd.Printf("broker listening on %s%s\n", listenAddress, relay.Path)
		broker := relay.NewBroker(config.Logger)
		return broker.ListenAndServe(ctx, listenAddress)
	},
}

func init() {
	brokerCmd.Flags().StringVar(&listenAddress, "listen", ":8787", "Address to listen on")
}
