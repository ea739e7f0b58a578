package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"asset-server/internal/auth"
	"asset-server/internal/config"
	"asset-server/internal/handler"
	"asset-server/internal/middleware"
	"asset-server/internal/repo"
	"asset-server/internal/service"
	"asset-server/internal/storage"
	"asset-server/internal/testutil"
)

func setupRouter(t *testing.T) (http.Handler, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	store, err := storage.New(config.StoreConfig{Type: "local", Dir: t.TempDir()})
	require.NoError(t, err)

	assetRepo := repo.NewAssetRepo(db)
	versionRepo := repo.NewVersionRepo(db)
	fileRepo := repo.NewFileRepo(db)
	commentRepo := repo.NewCommentRepo(db)
	changeRepo := repo.NewChangeRepo(db)

	assetService := service.NewAssetService(assetRepo, versionRepo, fileRepo, commentRepo, changeRepo, store)
	fileService := service.NewFileService(assetRepo, versionRepo, fileRepo, changeRepo, store)

	uiHandler, err := handler.NewUIHandler(assetService)
	require.NoError(t, err)

	deps := handler.RouterDeps{
		Stats:    handler.NewStatsHandler(),
		Assets:   handler.NewAssetHandler(assetService),
		Versions: handler.NewVersionHandler(assetService),
		Files:    handler.NewFileHandler(fileService, 20*1024*1024),
		Changes:  handler.NewChangeHandler(assetService),
		UI:       uiHandler,
		Keys:     auth.NewKeystore("", time.Minute),
	}

	engine, err := webapi.NewEngine(
		"/",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(),
		),
	)
	require.NoError(t, err)

	return engine, cleanup
}

func doRequest(t *testing.T, router http.Handler, method, path, apiKey string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if apiKey != "" {
		req.Header.Set(middleware.HeaderAPIKey, apiKey)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}
