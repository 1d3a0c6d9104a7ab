package middleware

import (
	"errors"
	"net/http"
	"strings"

	"library-backend/internal/models"
	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set for downstream handlers.
const (
	ClaimsKey    = "claims"
	TokenPairKey = "token_pair"
)

// RefreshHeader carries the refresh-token value on every protected request.
const RefreshHeader = "Refresh-Token"

// Authenticate verifies the bearer access token: 401 when no credential
// is presented, 403 when one is presented but fails verification.
func Authenticate(tokens service.TokenAuthority, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token>"})
			return
		}

		claims, err := tokens.VerifyAccess(parts[1])
		if err != nil {
			logger.Debug("Access token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RotateRefresh exchanges the request's refresh token for a fresh token
// pair and stashes it for the handler to include in the response. Runs
// after Authenticate on every protected route.
func RotateRefresh(tokens service.TokenAuthority, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshValue := c.GetHeader(RefreshHeader)
		if refreshValue == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Refresh token required"})
			return
		}

		pair, _, err := tokens.Rotate(refreshValue)
		if err != nil {
			if errors.Is(err, service.ErrForbidden) || errors.Is(err, service.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid refresh token"})
				return
			}
			logger.Error("Refresh token rotation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
			return
		}

		c.Set(TokenPairKey, pair)
		c.Next()
	}
}

// CurrentClaims returns the authenticated subject's claims.
func CurrentClaims(c *gin.Context) *models.Claims {
	return c.MustGet(ClaimsKey).(*models.Claims)
}

// RotatedPair returns the token pair minted for this request.
func RotatedPair(c *gin.Context) *models.TokenPair {
	return c.MustGet(TokenPairKey).(*models.TokenPair)
}
