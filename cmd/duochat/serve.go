package main

import (
	"context"

	"github.com/danmuck/duochat/internal/config"
	"github.com/danmuck/duochat/internal/console"
	"github.com/danmuck/duochat/internal/peer"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <port> <display-name>",
		Short: "Listen for one peer and chat with it (responder role)",
		Args:  positional(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				port, err := config.ValidatePort(args[0])
				if err != nil {
					return err
				}
				a.cfg.Port = port
				a.cfg.Name = args[1]
			}
			if err := config.ValidateResponder(a.cfg); err != nil {
				return err
			}
			sessCfg, err := a.sessionConfig()
			if err != nil {
				return err
			}
			return a.runSession(cmd, func(ctx context.Context, con *console.Console) error {
				return peer.RunResponder(ctx, peer.ResponderConfig{
					BindHost: a.cfg.BindHost,
					Port:     a.cfg.Port,
					Name:     a.cfg.Name,
					Session:  sessCfg,
				}, con, con)
			})
		},
	}
	cmd.Flags().StringVar(&a.bindHost, "bind", "", "interface to listen on (default all)")
	return cmd
}
