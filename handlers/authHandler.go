package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solarena/auth"
	"solarena/models"
)

// GenerateToken issues a session token for a wallet address. When the
// request carries an existing token it is validated instead and
// refreshed near expiry, so clients call one endpoint for both cases.
func GenerateToken(c *gin.Context, logger *zap.Logger) {
	var request models.TokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("token request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if request.Token != "" {
		refreshed, err := auth.RefreshIfExpiring(request.Token, time.Hour)
		if err != nil {
			logger.Warn("token validation failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if refreshed != "" {
			c.JSON(http.StatusOK, gin.H{"token": refreshed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Token is valid"})
		return
	}

	if request.WalletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress is required"})
		return
	}
	token, err := auth.GenerateToken(request.WalletAddress)
	if err != nil {
		logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
