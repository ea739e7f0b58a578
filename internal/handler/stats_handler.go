package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"asset-server/internal/pkg/response"
)

const serverVersion = "2.0.0"

type StatsHandler struct{}

func NewStatsHandler() *StatsHandler {
	return &StatsHandler{}
}

func (h *StatsHandler) Stats(c *gin.Context) {
	response.Success(c, gin.H{
		"ok":      true,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": serverVersion,
	})
}

func (h *StatsHandler) Home(c *gin.Context) {
	response.Success(c, gin.H{
		"message": "Web Asset Server running",
		"browse":  "/api/assets",
		"ui":      "/ui",
	})
}
