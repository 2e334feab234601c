package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solarena/lifecycle"
	"solarena/middlewares"
	"solarena/models"
)

// JoinMatch enters matchmaking. The reply is one of three shapes:
// matched (paired into an existing session), candidates (lower-wager
// sessions to accept explicitly), or waiting (a fresh session others
// can find).
func JoinMatch(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	var request models.JoinRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("join request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet := middlewares.WalletFromContext(c)
	result, err := orch.Intake(c.Request.Context(), request.GameKind, wallet, models.SolToLamports(request.WagerSol))
	if err != nil {
		respondError(c, logger, err)
		return
	}

	switch {
	case result.Matched:
		c.JSON(http.StatusOK, gin.H{
			"status":  "matched",
			"session": result.Session,
		})
	case len(result.Candidates) > 0:
		c.JSON(http.StatusOK, gin.H{
			"status":     "candidates",
			"candidates": result.Candidates,
		})
	default:
		c.JSON(http.StatusCreated, gin.H{
			"status":  "waiting",
			"session": result.Session,
		})
	}
}

// AcceptMatch joins one of the candidate sessions by ID. A lost race
// against another joiner comes back as 409.
func AcceptMatch(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	var request models.AcceptRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet := middlewares.WalletFromContext(c)
	session, err := orch.Accept(c.Request.Context(), request.SessionID, wallet)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "matched", "session": session})
}

// CheckMatch polls a session's matchmaking state.
func CheckMatch(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	id, err := sessionIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	session, err := orch.CheckMatch(c.Request.Context(), id)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// CancelMatch withdraws a still-waiting session the caller created.
func CancelMatch(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	id, err := sessionIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	wallet := middlewares.WalletFromContext(c)
	if err := orch.Withdraw(c.Request.Context(), id, wallet); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// MatchStats reports queue depth for an optional kind/wager filter.
func MatchStats(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	kind := c.Query("gameKind")
	var wager int64
	if raw := c.Query("wagerAmount"); raw != "" {
		sol, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wagerAmount"})
			return
		}
		wager = models.SolToLamports(sol)
	}

	stats, err := orch.QueueStats(c.Request.Context(), kind, wager)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func sessionIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err
}
