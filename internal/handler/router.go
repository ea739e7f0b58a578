package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"asset-server/internal/auth"
	"asset-server/internal/middleware"
)

type RouterDeps struct {
	Stats    *StatsHandler
	Assets   *AssetHandler
	Versions *VersionHandler
	Files    *FileHandler
	Changes  *ChangeHandler
	UI       *UIHandler
	Keys     *auth.Keystore
}

func RegisterRoutes(root *gin.RouterGroup, deps RouterDeps) {
	api := root.Group("/api")

	// Public surface: liveness plus the download paths render farms and
	// review tools hit without credentials.
	api.GET("/stats", deps.Stats.Stats)
	api.GET("/assets/:id/download", deps.Files.Download)
	api.GET("/assets/:id/package", deps.Files.Package)
	api.GET("/assets/:id/thumbnail", deps.Files.Thumbnail)

	viewer := api.Group("")
	viewer.Use(middleware.RequireRole(deps.Keys, auth.RoleViewer))
	viewer.GET("/assets", deps.Assets.List)
	viewer.GET("/assets/:id", deps.Assets.Get)
	viewer.GET("/changes", deps.Changes.List)
	viewer.POST("/assets/:id/comment", middleware.RateLimit(time.Second, 0), deps.Assets.AddComment)

	editor := api.Group("")
	editor.Use(middleware.RequireRole(deps.Keys, auth.RoleEditor))
	editor.POST("/assets", deps.Assets.Upsert)
	editor.POST("/assets/:id/publish", deps.Assets.Publish)
	editor.POST("/upload", deps.Files.Upload)
	editor.PATCH("/assets/:id", deps.Assets.Update)
	editor.POST("/assets/:id/status", deps.Assets.SetStatus)
	editor.POST("/assets/:id/thumbnail", deps.Files.UploadThumbnail)
	editor.POST("/assets/:id/versions/:version/archive", deps.Versions.Archive)

	admin := api.Group("")
	admin.Use(middleware.RequireRole(deps.Keys, auth.RoleAdmin))
	admin.DELETE("/assets/:id", deps.Assets.Delete)
	admin.DELETE("/assets/:id/versions/:version", deps.Versions.Delete)

	root.GET("/", middleware.RequireRole(deps.Keys, auth.RoleViewer), deps.Stats.Home)
	if deps.UI != nil {
		root.GET("/ui", deps.UI.Index)
		root.GET("/ui/assets/:id", deps.UI.Detail)
	}
}
