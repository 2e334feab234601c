package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solarena/lifecycle"
)

const defaultLeaderboardSize = 20

// Leaderboard ranks players by wins, then lifetime earnings.
func Leaderboard(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	limit := defaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	users, err := orch.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	entries := make([]gin.H, 0, len(users))
	for i, user := range users {
		entries = append(entries, gin.H{
			"rank":        i + 1,
			"username":    user.Username,
			"wallet":      user.WalletAddress,
			"gamesPlayed": user.TotalGamesPlayed,
			"gamesWon":    user.TotalGamesWon,
			"earnings":    user.TotalEarnings,
		})
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
