package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"asset-server/internal/model"
	appErr "asset-server/internal/pkg/errors"
	"asset-server/internal/repo"
	"asset-server/internal/testutil"
)

func TestAssetRepoUpsertAndGet(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	assets := repo.NewAssetRepo(db)
	ctx := context.Background()

	require.NoError(t, assets.Upsert(ctx, &model.Asset{
		ID:     "Hero_model_v001",
		Name:   "Hero",
		Family: "model",
	}))

	fetched, err := assets.GetByID(ctx, "Hero_model_v001")
	require.NoError(t, err)
	require.Equal(t, "Hero", fetched.Name)
	require.Equal(t, "model", fetched.Family)
	require.Equal(t, "published", fetched.Status)
	require.Equal(t, 0, fetched.VersionSeq)

	// A second upsert refreshes the row instead of failing.
	require.NoError(t, assets.Upsert(ctx, &model.Asset{
		ID:     "Hero_model_v001",
		Name:   "Hero Updated",
		Family: "model",
	}))
	fetched, err = assets.GetByID(ctx, "Hero_model_v001")
	require.NoError(t, err)
	require.Equal(t, "Hero Updated", fetched.Name)

	_, err = assets.GetByID(ctx, "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestAssetRepoNextVersionNeverReuses(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	assets := repo.NewAssetRepo(db)
	versions := repo.NewVersionRepo(db)
	ctx := context.Background()

	require.NoError(t, assets.Upsert(ctx, &model.Asset{ID: "a1", Name: "a1", Family: "rig"}))

	v1, err := assets.NextVersion(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 1, v1)

	v2, err := assets.NextVersion(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 2, v2)

	require.NoError(t, versions.Create(ctx, &model.Version{AssetID: "a1", Version: v2}))
	require.NoError(t, versions.Delete(ctx, "a1", v2))

	// The counter does not roll back when a version is removed.
	v3, err := assets.NextVersion(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 3, v3)

	_, err = assets.NextVersion(ctx, "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestAssetRepoListFilters(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	assets := repo.NewAssetRepo(db)
	ctx := context.Background()

	require.NoError(t, assets.Upsert(ctx, &model.Asset{ID: "m1", Name: "m1", Family: "model"}))
	require.NoError(t, assets.Upsert(ctx, &model.Asset{ID: "m2", Name: "m2", Family: "model"}))
	require.NoError(t, assets.Upsert(ctx, &model.Asset{ID: "r1", Name: "r1", Family: "rig"}))

	all, err := assets.List(ctx, "", "", 50, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	models, err := assets.List(ctx, "model", "", 50, 0)
	require.NoError(t, err)
	require.Len(t, models, 2)

	require.NoError(t, assets.UpdateFields(ctx, "m1", map[string]interface{}{"status": "archived"}))
	archived, err := assets.List(ctx, "model", "archived", 50, 0)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	require.Equal(t, "m1", archived[0].ID)

	paged, err := assets.List(ctx, "", "", 2, 0)
	require.NoError(t, err)
	require.Len(t, paged, 2)
}

func TestAssetRepoUpdateAndDelete(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	assets := repo.NewAssetRepo(db)
	ctx := context.Background()

	require.NoError(t, assets.Upsert(ctx, &model.Asset{ID: "a1", Name: "a1", Family: "texture"}))
	require.NoError(t, assets.UpdateFields(ctx, "a1", map[string]interface{}{"description": "wood planks"}))

	fetched, err := assets.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, "wood planks", fetched.Description)

	require.ErrorIs(t, assets.UpdateFields(ctx, "missing", map[string]interface{}{"name": "x"}), appErr.ErrNotFound)

	require.NoError(t, assets.Delete(ctx, "a1"))
	_, err = assets.GetByID(ctx, "a1")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
