package repo

import (
	"context"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"asset-server/internal/model"
	"asset-server/internal/pkg/dbutil"
)

var fileColumns = []string{"id", "asset_id", "version", "filename", "rel_path", "format", "size_bytes"}

type FileRepo struct {
	db *sqlx.DB
}

func NewFileRepo(db *sqlx.DB) *FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) Add(ctx context.Context, f *model.File) error {
	data := map[string]interface{}{
		"asset_id":   f.AssetID,
		"version":    f.Version,
		"filename":   f.Filename,
		"rel_path":   f.RelPath,
		"format":     f.Format,
		"size_bytes": f.SizeBytes,
	}
	sqlStr, args, err := builder.BuildInsert("files", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *FileRepo) ListByAsset(ctx context.Context, assetID string) ([]model.File, error) {
	return r.list(ctx, map[string]interface{}{"asset_id": assetID, "_orderby": "version desc, filename asc"})
}

func (r *FileRepo) ListByVersion(ctx context.Context, assetID string, version int) ([]model.File, error) {
	return r.list(ctx, map[string]interface{}{"asset_id": assetID, "version": version, "_orderby": "filename asc"})
}

func (r *FileRepo) list(ctx context.Context, where map[string]interface{}) ([]model.File, error) {
	sqlStr, args, err := builder.BuildSelect("files", where, fileColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	files := make([]model.File, 0)
	if err := r.db.SelectContext(ctx, &files, sqlStr, args...); err != nil {
		return nil, err
	}
	return files, nil
}

func (r *FileRepo) DeleteByVersion(ctx context.Context, assetID string, version int) error {
	return r.delete(ctx, map[string]interface{}{"asset_id": assetID, "version": version})
}

func (r *FileRepo) DeleteByAsset(ctx context.Context, assetID string) error {
	return r.delete(ctx, map[string]interface{}{"asset_id": assetID})
}

func (r *FileRepo) delete(ctx context.Context, where map[string]interface{}) error {
	sqlStr, args, err := builder.BuildDelete("files", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
