package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solarena/auth"
)

const refreshThreshold = 3 * time.Hour

// AuthMiddleware validates the bearer token and puts the wallet
// address on the request context. Tokens close to expiry are
// re-issued through the X-Refresh-Token response header.
func AuthMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization token"})
			return
		}

		wallet, err := auth.GetWalletFromToken(tokenString, logger)
		if err != nil {
			logger.Warn("authentication failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if refreshed, err := auth.RefreshIfExpiring(tokenString, refreshThreshold); err == nil && refreshed != "" {
			c.Header("X-Refresh-Token", refreshed)
		}

		c.Set("walletAddress", wallet)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

// WalletFromContext reads the wallet address AuthMiddleware stored.
func WalletFromContext(c *gin.Context) string {
	wallet, _ := c.Get("walletAddress")
	s, _ := wallet.(string)
	return s
}
