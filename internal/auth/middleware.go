package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/response"
)

const (
	msgNoToken     = "Not authorized to access this route (no token)"
	// msgTokenFailed also covers a valid token whose user no longer exists,
	// so the reply never tells the caller which check failed.
	msgTokenFailed = "Not authorized to access this route (token failed)"
	userKey        = "user"
)

func AuthMiddleware(provider Provider, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if !strings.HasPrefix(header, "Bearer ") || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Fail(msgNoToken))
			return
		}

		user, err := provider.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Warnf("[request_id=%s] authentication failed: %v", c.GetString("request_id"), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Fail(msgTokenFailed))
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) *internal.User {
	return c.MustGet(userKey).(*internal.User)
}
