package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"asset-server/internal/pkg/response"
	"asset-server/internal/service"
)

type FileHandler struct {
	files          *service.FileService
	maxUploadBytes int64
}

func NewFileHandler(files *service.FileService, maxUploadBytes int64) *FileHandler {
	return &FileHandler{files: files, maxUploadBytes: maxUploadBytes}
}

// Upload accepts one multipart file bound to an asset_id and a previously
// published version number.
func (h *FileHandler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "file field missing")
		return
	}
	assetID := c.PostForm("asset_id")
	if assetID == "" {
		response.Error(c, http.StatusBadRequest, "asset_id required")
		return
	}
	version, ok := versionParam(c.PostForm("version"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid version")
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to open file")
		return
	}
	defer src.Close()

	file, err := h.files.Upload(c.Request.Context(), assetID, version, fileHeader.Filename, src, fileHeader.Size)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"ok":       true,
		"asset_id": assetID,
		"version":  version,
		"rel_path": file.RelPath,
	})
}

// Download streams a single file of the requested version; format picks the
// first file with that extension, empty format means any.
func (h *FileHandler) Download(c *gin.Context) {
	version, ok := versionParam(c.Query("version"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid version")
		return
	}
	file, err := h.files.ResolveDownload(c.Request.Context(), c.Param("id"), version, c.Query("format"))
	if err != nil {
		handleError(c, err)
		return
	}
	src, err := h.files.OpenFile(c.Request.Context(), file)
	if err != nil {
		handleError(c, err)
		return
	}
	defer src.Close()

	contentType := mime.TypeByExtension(filepath.Ext(file.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	if file.SizeBytes > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", file.SizeBytes))
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, src)
}

// Package streams a zip of every file in the version plus metadata.json.
func (h *FileHandler) Package(c *gin.Context) {
	version, ok := versionParam(c.Query("version"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid version")
		return
	}
	assetID := c.Param("id")
	// Resolve before writing headers so a missing asset still yields 404.
	if err := h.files.CheckVersion(c.Request.Context(), assetID, version); err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s_v%d.zip", assetID, version)))
	c.Status(http.StatusOK)
	if err := h.files.WritePackage(c.Request.Context(), assetID, version, c.Writer); err != nil {
		// Headers are gone; nothing to do but drop the connection.
		c.Abort()
	}
}

func (h *FileHandler) UploadThumbnail(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "file field missing")
		return
	}
	version, ok := versionParam(c.PostForm("version"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid version")
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to open file")
		return
	}
	defer src.Close()

	key, err := h.files.SaveThumbnail(c.Request.Context(), c.Param("id"), version, src, fileHeader.Size)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true, "thumbnail_path": key})
}

func (h *FileHandler) Thumbnail(c *gin.Context) {
	version, ok := versionParam(c.Query("version"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid version")
		return
	}
	src, err := h.files.OpenThumbnail(c.Request.Context(), c.Param("id"), version)
	if err != nil {
		handleError(c, err)
		return
	}
	defer src.Close()
	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, src)
}
