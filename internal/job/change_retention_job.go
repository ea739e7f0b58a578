package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"asset-server/internal/repo"
)

// ChangeRetentionJob prunes old change-feed rows. Sync agents only ever
// read forward from a cursor, so rows older than the retention window are
// dead weight.
type ChangeRetentionJob struct {
	changes *repo.ChangeRepo
	maxAge  time.Duration
}

func NewChangeRetentionJob(changes *repo.ChangeRepo, maxAge time.Duration) *ChangeRetentionJob {
	return &ChangeRetentionJob{changes: changes, maxAge: maxAge}
}

func (j *ChangeRetentionJob) Name() string {
	return "change_retention"
}

func (j *ChangeRetentionJob) Run(ctx context.Context) error {
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge).Unix()
	deleted, err := j.changes.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("pruned change feed", zap.Int64("deleted", deleted))
	}
	return nil
}
