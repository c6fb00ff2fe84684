package main

import (
	"context"
	"fmt"

	"github.com/danmuck/duochat/internal/config"
	"github.com/danmuck/duochat/internal/console"
	"github.com/danmuck/duochat/internal/peer"
	"github.com/spf13/cobra"
)

func (a *app) connectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <host> <port> <display-name>",
		Short: "Connect to a listening peer and chat with it (initiator role)",
		Args:  positional(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 3 {
				port, err := config.ValidatePort(args[1])
				if err != nil {
					return err
				}
				a.cfg.Host = args[0]
				a.cfg.Port = port
				a.cfg.Name = args[2]
			}
			if err := config.ValidateInitiator(a.cfg); err != nil {
				return err
			}
			sessCfg, err := a.sessionConfig()
			if err != nil {
				return err
			}
			return a.runSession(cmd, func(ctx context.Context, con *console.Console) error {
				return peer.RunInitiator(ctx, peer.InitiatorConfig{
					Host:    a.cfg.Host,
					Port:    a.cfg.Port,
					Name:    a.cfg.Name,
					Session: sessCfg,
				}, con, con)
			})
		},
	}
}

// positional accepts either no arguments (everything from --config) or exactly n.
func positional(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args) == n {
			return nil
		}
		return fmt.Errorf("invalid amount of arguments: expected %d, got %d\nUsage: %s", n, len(args), cmd.UseLine())
	}
}
