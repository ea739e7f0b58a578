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

var assetColumns = []string{"id", "name", "family", "description", "tags", "status", "version_seq", "created_at", "updated_at"}

type AssetRepo struct {
	db *sqlx.DB
}

func NewAssetRepo(db *sqlx.DB) *AssetRepo {
	return &AssetRepo{db: db}
}

// Upsert creates the asset row, or refreshes name/family on an existing one.
func (r *AssetRepo) Upsert(ctx context.Context, asset *model.Asset) error {
	now := timeutil.NowUnix()
	existing, err := r.GetByID(ctx, asset.ID)
	if err != nil && !appErr.IsNotFound(err) {
		return err
	}
	if existing != nil {
		update := map[string]interface{}{
			"name":       asset.Name,
			"family":     asset.Family,
			"updated_at": now,
		}
		sqlStr, args, err := builder.BuildUpdate("assets", map[string]interface{}{"id": asset.ID}, update)
		if err != nil {
			return err
		}
		sqlStr, args = dbutil.Finalize(sqlStr, args)
		_, err = r.db.ExecContext(ctx, sqlStr, args...)
		return err
	}
	asset.CreatedAt = now
	asset.UpdatedAt = now
	if asset.Status == "" {
		asset.Status = "published"
	}
	data := map[string]interface{}{
		"id":          asset.ID,
		"name":        asset.Name,
		"family":      asset.Family,
		"description": asset.Description,
		"tags":        asset.Tags,
		"status":      asset.Status,
		"version_seq": 0,
		"created_at":  asset.CreatedAt,
		"updated_at":  asset.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("assets", []map[string]interface{}{data})
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

func (r *AssetRepo) GetByID(ctx context.Context, id string) (*model.Asset, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("assets", where, assetColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var asset model.Asset
	if err := r.db.GetContext(ctx, &asset, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

func (r *AssetRepo) List(ctx context.Context, family, status string, limit, offset uint) ([]model.Asset, error) {
	where := map[string]interface{}{
		"_orderby": "updated_at desc",
		"_limit":   []uint{offset, limit},
	}
	if family != "" {
		where["family"] = family
	}
	if status != "" {
		where["status"] = status
	}
	sqlStr, args, err := builder.BuildSelect("assets", where, assetColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	assets := make([]model.Asset, 0)
	if err := r.db.SelectContext(ctx, &assets, sqlStr, args...); err != nil {
		return nil, err
	}
	return assets, nil
}

// UpdateFields applies a caller-filtered field map and bumps updated_at.
func (r *AssetRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	update := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		update[k] = v
	}
	update["updated_at"] = timeutil.NowUnix()
	sqlStr, args, err := builder.BuildUpdate("assets", map[string]interface{}{"id": id}, update)
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

// NextVersion advances the asset's version counter and returns the new
// value. The counter never moves backwards, so deleted version numbers are
// not handed out again.
func (r *AssetRepo) NextVersion(ctx context.Context, id string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE assets SET version_seq = version_seq + 1, updated_at = ? WHERE id = ?",
		timeutil.NowUnix(), id)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, appErr.ErrNotFound
	}
	var seq int
	if err := tx.GetContext(ctx, &seq, "SELECT version_seq FROM assets WHERE id = ?", id); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *AssetRepo) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := builder.BuildDelete("assets", map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
