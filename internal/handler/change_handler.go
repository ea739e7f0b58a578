package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"asset-server/internal/pkg/response"
	"asset-server/internal/service"
)

type ChangeHandler struct {
	assets *service.AssetService
}

func NewChangeHandler(assets *service.AssetService) *ChangeHandler {
	return &ChangeHandler{assets: assets}
}

// List returns change feed rows after the `since` cursor (a change id),
// oldest first. Clients resume from the id of the last row they saw.
func (h *ChangeHandler) List(c *gin.Context) {
	var sinceID int64
	if raw := c.Query("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			response.Error(c, http.StatusBadRequest, "invalid since cursor")
			return
		}
		sinceID = parsed
	}
	limit := queryUint(c, "limit", 100)
	items, err := h.assets.Changes(c.Request.Context(), sinceID, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}
