package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/flexprice/partnerbilling/internal/auth"
	"github.com/flexprice/partnerbilling/internal/config"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/gin-gonic/gin"
)

// AuthenticateMiddleware authenticates requests based on either:
// 1. API key in the configured header (x-api-key by default)
// 2. JWT token in the Authorization header as a Bearer token
// It sets the user ID, email and role in the request context for downstream handlers
func AuthenticateMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	tokens := auth.NewTokenProvider(cfg)

	header := cfg.Auth.APIKey.Header
	if header == "" {
		header = types.HeaderAPIKey
	}

	return func(c *gin.Context) {
		if apiKey := c.GetHeader(header); apiKey != "" {
			details, valid := auth.ValidateAPIKey(cfg, apiKey)
			if !valid {
				logger.Debugw("invalid api key")
				abortUnauthorized(c, "Invalid API key")
				return
			}

			c.Request = c.Request.WithContext(withCaller(c.Request.Context(), details.UserID, details.Name, details.Role))
			c.Next()
			return
		}

		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			abortUnauthorized(c, "Unauthorized")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := tokens.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Debugw("failed to validate token", "error", err)
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Request = c.Request.WithContext(withCaller(c.Request.Context(), claims.UserID, claims.Email, claims.Role))
		c.Next()
	}
}

func withCaller(ctx context.Context, userID, email string, role types.Role) context.Context {
	ctx = types.SetUserID(ctx, userID)
	ctx = context.WithValue(ctx, types.CtxUserEmail, email)
	return types.SetRole(ctx, role)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ierr.ErrorResponse{
		Error: ierr.ErrorDetail{
			Code:    ierr.ErrCodeUnauthorized,
			Display: message,
		},
	})
}
