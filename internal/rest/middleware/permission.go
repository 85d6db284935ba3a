package middleware

import (
	"fmt"
	"net/http"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/rbac"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/gin-gonic/gin"
)

// PermissionMiddleware handles RBAC permission checks
type PermissionMiddleware struct {
	rbacService *rbac.RBACService
	logger      *logger.Logger
}

// NewPermissionMiddleware creates a new permission middleware instance
func NewPermissionMiddleware(rbacService *rbac.RBACService, logger *logger.Logger) *PermissionMiddleware {
	return &PermissionMiddleware{
		rbacService: rbacService,
		logger:      logger,
	}
}

// RequirePermission returns a middleware that checks the caller's role grants
// action on entity. It must run after AuthenticateMiddleware.
func (pm *PermissionMiddleware) RequirePermission(entity string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		role := types.GetRole(ctx)

		if !pm.rbacService.HasPermission(role, entity, action) {
			pm.logger.Infow("permission denied",
				"user_id", types.GetUserID(ctx),
				"role", role,
				"entity", entity,
				"action", action,
				"path", c.Request.URL.Path,
			)

			c.AbortWithStatusJSON(http.StatusForbidden, ierr.ErrorResponse{
				Error: ierr.ErrorDetail{
					Code:    ierr.ErrCodePermissionDenied,
					Display: fmt.Sprintf("Insufficient permissions to %s %s", action, entity),
				},
			})
			return
		}

		c.Next()
	}
}
