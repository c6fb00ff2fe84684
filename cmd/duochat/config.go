package main

import (
	"fmt"

	"github.com/danmuck/duochat/internal/config"
	"github.com/spf13/cobra"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate duochat config files",
	}

	var kind, output string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config template for the serve or connect role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := output
			if target == "" {
				target = fmt.Sprintf("duochat.%s.toml", kind)
			}
			if err := config.WriteTemplate(target, kind, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s config to %s\n", kind, target)
			return err
		},
	}
	initCmd.Flags().StringVar(&kind, "kind", "serve", "config kind: serve|connect")
	initCmd.Flags().StringVar(&output, "output", "", "output path (default duochat.<kind>.toml)")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Check that a config file parses and holds valid values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Validated config at %s\n", args[0])
			return err
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
