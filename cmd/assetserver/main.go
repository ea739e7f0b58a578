package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "assetserver",
		Short: "versioned asset server for the studio publish pipeline",
	}
	rootCmd.AddCommand(newRunCmd(), newPublishCmd(), newSyncCmd())

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}
