package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the pergola daemon is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			var health struct {
				Status string `json:"status"`
			}
			if err := client.get("/api/health", &health); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:  %s (%s)\n", health.Status, client.base)
			if cfg, err := ctx.ensureConfig(); err == nil && cfg != nil {
				fmt.Fprintf(out, "Database: %s\n", cfg.DatabasePath())
			}
			return nil
		},
	}
}
