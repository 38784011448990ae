package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/jwt"
	"propcare/internal/pkg/response"
)

// JWTAuth validates the bearer token and stores the caller identity on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be: Bearer <token>")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(actor.KeyUserID, claims.UserID)
		c.Set(actor.KeyRole, claims.Role)
		c.Set(actor.KeyOrgID, claims.OrgID)
		c.Set(actor.KeyContractorID, claims.ContractorID)
		c.Next()
	}
}

// RequireOrg rejects callers whose token carries no organization scope.
func RequireOrg() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(actor.KeyOrgID) == "" {
			response.Error(c, http.StatusForbidden, "AUTHORIZATION", "No organization context for caller")
			c.Abort()
			return
		}
		c.Next()
	}
}
