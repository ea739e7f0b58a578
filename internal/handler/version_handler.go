package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"asset-server/internal/pkg/response"
	"asset-server/internal/service"
)

type VersionHandler struct {
	assets *service.AssetService
}

func NewVersionHandler(assets *service.AssetService) *VersionHandler {
	return &VersionHandler{assets: assets}
}

func (h *VersionHandler) Archive(c *gin.Context) {
	version, ok := versionParam(c.Param("version"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid version")
		return
	}
	if err := h.assets.ArchiveVersion(c.Request.Context(), c.Param("id"), version); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c)
}

func (h *VersionHandler) Delete(c *gin.Context) {
	version, ok := versionParam(c.Param("version"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid version")
		return
	}
	if err := h.assets.DeleteVersion(c.Request.Context(), c.Param("id"), version); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c)
}
