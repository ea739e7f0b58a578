package repo

import (
	"context"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"asset-server/internal/model"
	"asset-server/internal/pkg/dbutil"
	"asset-server/internal/pkg/timeutil"
)

var changeColumns = []string{"id", "change_type", "asset_id", "payload_json", "created_at"}

type ChangeRepo struct {
	db *sqlx.DB
}

func NewChangeRepo(db *sqlx.DB) *ChangeRepo {
	return &ChangeRepo{db: db}
}

func (r *ChangeRepo) Append(ctx context.Context, ch *model.Change) error {
	ch.CreatedAt = timeutil.NowUnix()
	if len(ch.Payload) == 0 {
		ch.Payload = []byte("{}")
	}
	data := map[string]interface{}{
		"change_type":  ch.ChangeType,
		"asset_id":     ch.AssetID,
		"payload_json": string(ch.Payload),
		"created_at":   ch.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("changes", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListSince returns changes with id greater than sinceID, oldest first.
func (r *ChangeRepo) ListSince(ctx context.Context, sinceID int64, limit uint) ([]model.Change, error) {
	where := map[string]interface{}{
		"id >":     sinceID,
		"_orderby": "id asc",
		"_limit":   []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("changes", where, changeColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	changes := make([]model.Change, 0)
	if err := r.db.SelectContext(ctx, &changes, sqlStr, args...); err != nil {
		return nil, err
	}
	return changes, nil
}

func (r *ChangeRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	sqlStr, args, err := builder.BuildDelete("changes", map[string]interface{}{"created_at <": cutoff})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
