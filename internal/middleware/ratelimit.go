package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"asset-server/internal/pkg/response"
)

type rateLimiter struct {
	window time.Duration
	seen   *expirable.LRU[string, time.Time]
}

// RateLimit rejects a second request for the same (ip, key, path) inside
// the window. Entries age out of the LRU on their own, so the tracking set
// stays bounded.
func RateLimit(window time.Duration, maxKeys int) gin.HandlerFunc {
	if maxKeys <= 0 {
		maxKeys = 4096
	}
	limiter := &rateLimiter{
		window: window,
		seen:   expirable.NewLRU[string, time.Time](maxKeys, nil, window),
	}
	return limiter.handle
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 {
		c.Next()
		return
	}
	ip := c.ClientIP()
	apiKey := c.GetHeader(HeaderAPIKey)
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{ip, apiKey, path}, "|")

	now := time.Now()
	if last, ok := l.seen.Get(key); ok && now.Sub(last) < l.window {
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("path", path),
		)
		response.Error(c, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
		return
	}
	l.seen.Add(key, now)
	c.Next()
}
