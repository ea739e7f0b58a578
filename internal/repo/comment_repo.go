package repo

import (
	"context"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"asset-server/internal/model"
	"asset-server/internal/pkg/dbutil"
	"asset-server/internal/pkg/timeutil"
)

type CommentRepo struct {
	db *sqlx.DB
}

func NewCommentRepo(db *sqlx.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) Add(ctx context.Context, c *model.Comment) error {
	c.CreatedAt = timeutil.NowUnix()
	data := map[string]interface{}{
		"asset_id":   c.AssetID,
		"author":     c.Author,
		"body":       c.Body,
		"created_at": c.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("comments", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *CommentRepo) ListByAsset(ctx context.Context, assetID string) ([]model.Comment, error) {
	where := map[string]interface{}{
		"asset_id": assetID,
		"_orderby": "created_at asc",
	}
	sqlStr, args, err := builder.BuildSelect("comments", where, []string{"id", "asset_id", "author", "body", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	comments := make([]model.Comment, 0)
	if err := r.db.SelectContext(ctx, &comments, sqlStr, args...); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepo) DeleteByAsset(ctx context.Context, assetID string) error {
	sqlStr, args, err := builder.BuildDelete("comments", map[string]interface{}{"asset_id": assetID})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
