package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "asset-server/internal/pkg/errors"
	"asset-server/internal/repo"
	"asset-server/internal/storage"
)

// OrphanSweepJob removes storage directories whose asset row is gone.
// Crashes between a storage write and the row delete can leave these behind.
type OrphanSweepJob struct {
	assets *repo.AssetRepo
	store  storage.Store
}

func NewOrphanSweepJob(assets *repo.AssetRepo, store storage.Store) *OrphanSweepJob {
	return &OrphanSweepJob{assets: assets, store: store}
}

func (j *OrphanSweepJob) Name() string {
	return "orphan_sweep"
}

func (j *OrphanSweepJob) Run(ctx context.Context) error {
	dirs, err := j.store.ListDirs(ctx, "assets")
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	swept := 0
	for _, assetID := range dirs {
		_, err := j.assets.GetByID(ctx, assetID)
		if err == nil {
			continue
		}
		if !appErr.IsNotFound(err) {
			return err
		}
		if err := j.store.DeletePrefix(ctx, storage.AssetPrefix(assetID)); err != nil {
			logger.Warn("sweep asset dir failed", zap.String("asset_id", assetID), zap.Error(err))
			continue
		}
		if err := j.store.DeletePrefix(ctx, storage.ThumbPrefix(assetID)); err != nil {
			logger.Warn("sweep thumbnails failed", zap.String("asset_id", assetID), zap.Error(err))
		}
		swept++
	}
	if swept > 0 {
		logger.Info("swept orphaned storage", zap.Int("assets", swept))
	}
	return nil
}
