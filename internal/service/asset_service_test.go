package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"asset-server/internal/model"
	appErr "asset-server/internal/pkg/errors"
	"asset-server/internal/service"
	"asset-server/internal/storage"
)

func TestUpsertValidatesFamily(t *testing.T) {
	env, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	asset, err := env.assets.Upsert(ctx, service.UpsertAssetInput{ID: "Hero_model_v001", Family: "model"})
	require.NoError(t, err)
	require.Equal(t, "Hero_model_v001", asset.Name)

	_, err = env.assets.Upsert(ctx, service.UpsertAssetInput{ID: "x", Family: "blueprint"})
	require.ErrorIs(t, err, appErr.ErrBadFamily)

	_, err = env.assets.Upsert(ctx, service.UpsertAssetInput{Family: "model"})
	require.ErrorIs(t, err, appErr.ErrInvalid)

	// Family names are normalized to lower case.
	asset, err = env.assets.Upsert(ctx, service.UpsertAssetInput{ID: "r1", Family: "RIG"})
	require.NoError(t, err)
	require.Equal(t, "rig", asset.Family)
}

func TestPublishAssignsSequentialVersions(t *testing.T) {
	env, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.assets.Upsert(ctx, service.UpsertAssetInput{ID: "a1", Family: "model"})
	require.NoError(t, err)

	v1, err := env.assets.Publish(ctx, "a1", nil)
	require.NoError(t, err)
	require.Equal(t, 1, v1.Version)

	v2, err := env.assets.Publish(ctx, "a1", []byte(`{"artist":"kim"}`))
	require.NoError(t, err)
	require.Equal(t, 2, v2.Version)

	_, err = env.assets.Publish(ctx, "missing", nil)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDeleteVersionLeavesSiblings(t *testing.T) {
	env, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.assets.Upsert(ctx, service.UpsertAssetInput{ID: "a1", Family: "model"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := env.assets.Publish(ctx, "a1", nil)
		require.NoError(t, err)
	}
	_, err = env.files.Upload(ctx, "a1", 1, "old.fbx", strings.NewReader("v1"), 2)
	require.NoError(t, err)
	_, err = env.files.Upload(ctx, "a1", 2, "new.fbx", strings.NewReader("v2"), 2)
	require.NoError(t, err)

	require.NoError(t, env.assets.DeleteVersion(ctx, "a1", 1))

	detail, err := env.assets.Get(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, detail.Versions, 1)
	require.Equal(t, 2, detail.Versions[0].Version)
	require.Len(t, detail.Files, 1)
	require.Equal(t, "new.fbx", detail.Files[0].Filename)

	// Stored bytes of the surviving version are intact.
	rc, err := env.store.Open(ctx, storage.FileKey("a1", 2, "new.fbx"))
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	_, err = env.store.Open(ctx, storage.FileKey("a1", 1, "old.fbx"))
	require.Error(t, err)

	require.ErrorIs(t, env.assets.DeleteVersion(ctx, "a1", 1), appErr.ErrNotFound)

	// The deleted number is never assigned again.
	v3, err := env.assets.Publish(ctx, "a1", nil)
	require.NoError(t, err)
	require.Equal(t, 3, v3.Version)
}

func TestDeleteAssetCascades(t *testing.T) {
	env, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.assets.Upsert(ctx, service.UpsertAssetInput{ID: "a1", Family: "model"})
	require.NoError(t, err)
	_, err = env.assets.Publish(ctx, "a1", nil)
	require.NoError(t, err)
	_, err = env.files.Upload(ctx, "a1", 1, "mesh.obj", strings.NewReader("obj"), 3)
	require.NoError(t, err)
	require.NoError(t, env.assets.AddComment(ctx, "a1", "", "looks good"))

	require.NoError(t, env.assets.Delete(ctx, "a1"))

	_, err = env.assets.Get(ctx, "a1")
	require.ErrorIs(t, err, appErr.ErrNotFound)
	require.ErrorIs(t, env.assets.Delete(ctx, "a1"), appErr.ErrNotFound)
	_, err = env.store.Open(ctx, storage.FileKey("a1", 1, "mesh.obj"))
	require.Error(t, err)
}

func TestUpdateFiltersFields(t *testing.T) {
	env, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.assets.Upsert(ctx, service.UpsertAssetInput{ID: "a1", Family: "model"})
	require.NoError(t, err)

	require.NoError(t, env.assets.Update(ctx, "a1", map[string]interface{}{
		"description": "updated",
		"version_seq": 99, // not updatable
		"id":          "evil",
	}))

	detail, err := env.assets.Get(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, "updated", detail.Description)
	require.Equal(t, "a1", detail.ID)

	v, err := env.assets.Publish(ctx, "a1", nil)
	require.NoError(t, err)
	require.Equal(t, 1, v.Version)
}

func TestCommentsAndChanges(t *testing.T) {
	env, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.assets.Upsert(ctx, service.UpsertAssetInput{ID: "a1", Family: "model"})
	require.NoError(t, err)
	require.NoError(t, env.assets.AddComment(ctx, "a1", "sam", "first"))
	require.ErrorIs(t, env.assets.AddComment(ctx, "missing", "sam", "x"), appErr.ErrNotFound)

	comments, err := env.assets.Comments(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "sam", comments[0].Author)

	changes, err := env.assets.Changes(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Equal(t, model.ChangeAssetUpsert, changes[0].ChangeType)
	require.Equal(t, model.ChangeComment, changes[1].ChangeType)
}

func TestArchiveVersion(t *testing.T) {
	env, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.assets.Upsert(ctx, service.UpsertAssetInput{ID: "a1", Family: "model"})
	require.NoError(t, err)
	_, err = env.assets.Publish(ctx, "a1", nil)
	require.NoError(t, err)

	require.NoError(t, env.assets.ArchiveVersion(ctx, "a1", 1))
	detail, err := env.assets.Get(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 1, detail.Versions[0].Archived)

	require.ErrorIs(t, env.assets.ArchiveVersion(ctx, "a1", 9), appErr.ErrNotFound)
}
