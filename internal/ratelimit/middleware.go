package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/response"
)

// Middleware limits requests per client IP within scope. Limiter errors are
// logged and the request is let through.
func Middleware(l Limiter, scope string, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()
		allowed, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Errorf("[request_id=%s] rate limiter error: %v", c.GetString("request_id"), err)
			c.Next()
			return
		}
		if !allowed {
			logger.Warnf("[request_id=%s] rate limit exceeded for %s", c.GetString("request_id"), key)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Fail("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
