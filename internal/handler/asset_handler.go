package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"asset-server/internal/pkg/response"
	"asset-server/internal/service"
)

type AssetHandler struct {
	assets *service.AssetService
}

func NewAssetHandler(assets *service.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

type upsertAssetRequest struct {
	AssetID     string          `json:"asset_id"`
	Name        string          `json:"name"`
	Family      string          `json:"family"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
	Metadata    json.RawMessage `json:"metadata"`
}

func (h *AssetHandler) Upsert(c *gin.Context) {
	var req upsertAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AssetID == "" {
		response.Error(c, http.StatusBadRequest, "asset_id required")
		return
	}
	asset, err := h.assets.Upsert(c.Request.Context(), service.UpsertAssetInput{
		ID:          req.AssetID,
		Name:        req.Name,
		Family:      req.Family,
		Description: req.Description,
		Tags:        joinTags(req.Tags),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, asset)
}

type publishRequest struct {
	Metadata json.RawMessage `json:"metadata"`
}

func (h *AssetHandler) Publish(c *gin.Context) {
	var req publishRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	version, err := h.assets.Publish(c.Request.Context(), c.Param("id"), req.Metadata)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"asset_id": version.AssetID, "version": version.Version})
}

func (h *AssetHandler) List(c *gin.Context) {
	limit := queryUint(c, "limit", 50)
	offset := queryUint(c, "offset", 0)
	items, err := h.assets.List(c.Request.Context(), c.Query("family"), c.Query("status"), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items, "count": len(items)})
}

func (h *AssetHandler) Get(c *gin.Context) {
	detail, err := h.assets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *AssetHandler) Update(c *gin.Context) {
	fields := map[string]interface{}{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.assets.Update(c.Request.Context(), c.Param("id"), fields); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *AssetHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.assets.SetStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c)
}

type commentRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

func (h *AssetHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.assets.AddComment(c.Request.Context(), c.Param("id"), req.Author, req.Body); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c)
}

func (h *AssetHandler) Delete(c *gin.Context) {
	if err := h.assets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c)
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}
