package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finstok/finstok_backend/internal/middleware"
)

// callerScope pulls the tenant and caller identity the auth middleware placed
// in the request context. Responds 401 and returns ok=false when either is
// missing.
func callerScope(c *gin.Context) (tenantID string, userID string, ok bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, ok = middleware.GetTenantID(c.Request.Context())
	if !ok {
		logger.Error("Tenant ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}

	userID, ok = middleware.GetUserID(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}

	return tenantID, userID, true
}
