package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/requestdata"
	"github.com/dhg/hub-backend/internal/services"
	"github.com/dhg/hub-backend/internal/ssedata"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(baseLog *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		log:         baseLog.With("middleware", "AuthMiddleware"),
		authService: authService,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		ctx = ssedata.WithSSEData(ctx)
		c.Request = c.Request.WithContext(ctx)

		rd := requestdata.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// extractTokenFromAll accepts the token from the Authorization header, the
// access_token cookie, or a ?token= query param. The query form exists for
// EventSource, which cannot set headers.
func extractTokenFromAll(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie
	}
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	return ""
}
