package middlewares

import (
	"net/http"
	"strconv"

	"bitbucket.org/harborworks/salvage_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionMiddleware copies the identity headers set by the API gateway into
// the request context. Requests without a business id can only reach the
// health probe; everything else requires tenant scoping.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId := c.Request.Header.Get("X-Business-Id")
		if businessId == "" {
			c.Next()
			return
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		if v := c.Request.Header.Get("X-User-Id"); v != "" {
			if userId, err := strconv.Atoi(v); err == nil {
				ctx = utils.SetUserIdInContext(ctx, userId)
			}
		}
		if v := c.Request.Header.Get("X-User-Name"); v != "" {
			ctx = utils.SetUserNameInContext(ctx, v)
		}
		if v := c.Request.Header.Get("X-Role-Id"); v != "" {
			if roleId, err := strconv.Atoi(v); err == nil {
				ctx = utils.SetRoleIdInContext(ctx, roleId)
			}
		}
		correlationId := c.Request.Header.Get("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
		c.Header("X-Correlation-Id", correlationId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireBusiness rejects requests that skipped the identity headers.
func RequireBusiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		if businessId, ok := utils.GetBusinessIdFromContext(c.Request.Context()); !ok || businessId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing business id"})
			c.Abort()
			return
		}
		c.Next()
	}
}
