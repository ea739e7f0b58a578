package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"asset-server/internal/client"
	appsync "asset-server/internal/sync"
)

// newSyncCmd runs the long-lived agent: push everything under the export
// root, then keep watching it and following the server change feed.
func newSyncCmd() *cobra.Command {
	var (
		server   string
		apiKey   string
		root     string
		interval time.Duration
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "watch an export root and keep the server in sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			agent := appsync.NewAgent(client.New(server, apiKey), appsync.Options{
				Root:         root,
				PollInterval: interval,
				DryRun:       dryRun,
			})
			if err := agent.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://127.0.0.1:5000", "asset server base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key with editor role")
	cmd.Flags().StringVar(&root, "root", "export_root", "export root directory to watch")
	cmd.Flags().DurationVar(&interval, "poll-interval", 30*time.Second, "change feed poll interval")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "scan and watch without pushing")
	return cmd
}
