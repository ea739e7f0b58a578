package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"asset-server/internal/auth"
	"asset-server/internal/config"
	"asset-server/internal/db"
	"asset-server/internal/handler"
	"asset-server/internal/job"
	"asset-server/internal/middleware"
	"asset-server/internal/repo"
	"asset-server/internal/schedule"
	"asset-server/internal/service"
	"asset-server/internal/storage"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the asset server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded",
				zap.String("config", configPath),
				zap.String("db_path", cfg.DBPath),
				zap.String("store", cfg.Store.Type))
			return runServer(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.json (optional, env vars apply on top)")
	return cmd
}

func runServer(cfg *config.Config) error {
	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	store, err := storage.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	assetRepo := repo.NewAssetRepo(conn)
	versionRepo := repo.NewVersionRepo(conn)
	fileRepo := repo.NewFileRepo(conn)
	commentRepo := repo.NewCommentRepo(conn)
	changeRepo := repo.NewChangeRepo(conn)

	assetService := service.NewAssetService(assetRepo, versionRepo, fileRepo, commentRepo, changeRepo, store)
	fileService := service.NewFileService(assetRepo, versionRepo, fileRepo, changeRepo, store)

	keys := auth.NewKeystore(cfg.APIKeysFile, 0)
	if cfg.AdminAPIKey != "" {
		keys.SetStatic(cfg.AdminAPIKey, auth.RoleAdmin)
	}

	uiHandler, err := handler.NewUIHandler(assetService)
	if err != nil {
		return fmt.Errorf("init ui: %w", err)
	}
	deps := handler.RouterDeps{
		Stats:    handler.NewStatsHandler(),
		Assets:   handler.NewAssetHandler(assetService),
		Versions: handler.NewVersionHandler(assetService),
		Files:    handler.NewFileHandler(fileService, cfg.MaxUploadBytes),
		Changes:  handler.NewChangeHandler(assetService),
		UI:       uiHandler,
		Keys:     keys,
	}

	engine, err := webapi.NewEngine(
		"/",
		cfg.ListenAddr(),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewScheduler()
	retention := time.Duration(cfg.ChangeRetentionDays) * 24 * time.Hour
	if err := scheduler.AddJob(job.NewChangeRetentionJob(changeRepo, retention), "30 3 * * *"); err != nil {
		return err
	}
	if err := scheduler.AddJob(job.NewOrphanSweepJob(assetRepo, store), "0 4 * * 0"); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", cfg.ListenAddr()))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
