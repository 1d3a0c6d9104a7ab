package handler

import (
	"errors"
	"net/http"

	"library-backend/internal/middleware"
	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// withTokens merges the rotated token pair into a protected response so
// the caller can persist it for the next request.
func withTokens(c *gin.Context, payload gin.H) gin.H {
	pair := middleware.RotatedPair(c)
	payload["access_token"] = pair.AccessToken
	payload["refresh_token"] = pair.RefreshToken
	return payload
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a storage/infrastructure failure and
// comes back as a 500.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Errorf("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
