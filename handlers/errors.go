package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solarena/lifecycle"
)

// respondError maps lifecycle errors onto HTTP statuses. Unknown
// errors become 500 with a generic body; the detail goes to the log.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case lifecycle.IsIllegalMove(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrInvalidWager),
		errors.Is(err, lifecycle.ErrUnknownGameKind),
		errors.Is(err, lifecycle.ErrTransferUnconfirmed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrOpponentUnavailable),
		errors.Is(err, lifecycle.ErrStaleSessionState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
