package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"asset-server/internal/config"
	"asset-server/internal/repo"
	"asset-server/internal/service"
	"asset-server/internal/storage"
	"asset-server/internal/testutil"
)

type env struct {
	assets *service.AssetService
	files  *service.FileService
	store  storage.Store
}

func setup(t *testing.T) (*env, func()) {
	t.Helper()

	db, cleanup := testutil.OpenTestDB(t)
	store, err := storage.New(config.StoreConfig{Type: "local", Dir: t.TempDir()})
	require.NoError(t, err)

	assetRepo := repo.NewAssetRepo(db)
	versionRepo := repo.NewVersionRepo(db)
	fileRepo := repo.NewFileRepo(db)
	commentRepo := repo.NewCommentRepo(db)
	changeRepo := repo.NewChangeRepo(db)

	return &env{
		assets: service.NewAssetService(assetRepo, versionRepo, fileRepo, commentRepo, changeRepo, store),
		files:  service.NewFileService(assetRepo, versionRepo, fileRepo, changeRepo, store),
		store:  store,
	}, cleanup
}
