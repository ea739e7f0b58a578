package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"asset-server/internal/model"
	"asset-server/internal/pkg/dbutil"
	appErr "asset-server/internal/pkg/errors"
	"asset-server/internal/pkg/timeutil"
)

var versionColumns = []string{"id", "asset_id", "version", "metadata_json", "thumbnail_path", "archived", "created_at", "updated_at"}

type VersionRepo struct {
	db *sqlx.DB
}

func NewVersionRepo(db *sqlx.DB) *VersionRepo {
	return &VersionRepo{db: db}
}

func (r *VersionRepo) Create(ctx context.Context, v *model.Version) error {
	now := timeutil.NowUnix()
	v.CreatedAt = now
	v.UpdatedAt = now
	if len(v.Metadata) == 0 {
		v.Metadata = []byte("{}")
	}
	data := map[string]interface{}{
		"asset_id":       v.AssetID,
		"version":        v.Version,
		"metadata_json":  string(v.Metadata),
		"thumbnail_path": v.ThumbnailPath,
		"archived":       0,
		"created_at":     v.CreatedAt,
		"updated_at":     v.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("versions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *VersionRepo) ListByAsset(ctx context.Context, assetID string) ([]model.Version, error) {
	where := map[string]interface{}{
		"asset_id": assetID,
		"_orderby": "version desc",
	}
	sqlStr, args, err := builder.BuildSelect("versions", where, versionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	versions := make([]model.Version, 0)
	if err := r.db.SelectContext(ctx, &versions, sqlStr, args...); err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *VersionRepo) Get(ctx context.Context, assetID string, version int) (*model.Version, error) {
	where := map[string]interface{}{
		"asset_id": assetID,
		"version":  version,
	}
	sqlStr, args, err := builder.BuildSelect("versions", where, versionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var v model.Version
	if err := r.db.GetContext(ctx, &v, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VersionRepo) SetThumbnail(ctx context.Context, assetID string, version int, thumbnailPath string) error {
	return r.update(ctx, assetID, version, map[string]interface{}{"thumbnail_path": thumbnailPath})
}

func (r *VersionRepo) Archive(ctx context.Context, assetID string, version int) error {
	return r.update(ctx, assetID, version, map[string]interface{}{"archived": 1})
}

func (r *VersionRepo) update(ctx context.Context, assetID string, version int, fields map[string]interface{}) error {
	fields["updated_at"] = timeutil.NowUnix()
	where := map[string]interface{}{
		"asset_id": assetID,
		"version":  version,
	}
	sqlStr, args, err := builder.BuildUpdate("versions", where, fields)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *VersionRepo) Delete(ctx context.Context, assetID string, version int) error {
	where := map[string]interface{}{
		"asset_id": assetID,
		"version":  version,
	}
	sqlStr, args, err := builder.BuildDelete("versions", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *VersionRepo) DeleteByAsset(ctx context.Context, assetID string) error {
	sqlStr, args, err := builder.BuildDelete("versions", map[string]interface{}{"asset_id": assetID})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
