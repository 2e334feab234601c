package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solarena/lifecycle"
	"solarena/middlewares"
	"solarena/models"
)

// ConfirmDeposit verifies a reported escrow transfer and marks the
// caller's stake as deposited. Confirming twice is a no-op.
func ConfirmDeposit(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	var request models.DepositRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet := middlewares.WalletFromContext(c)
	session, err := orch.ConfirmDeposit(c.Request.Context(), request.SessionID, wallet, request.TxRef)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// GetGame returns the authoritative session record. Clients poll this
// as the source of truth; the websocket channel only shaves latency.
func GetGame(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	id, err := sessionIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	session, err := orch.GetSession(c.Request.Context(), id)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	if !session.HasParticipant(middlewares.WalletFromContext(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// SubmitMove applies a move to the session's rule engine and returns
// the new state. Terminal moves settle the session in the same call.
func SubmitMove(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	id, err := sessionIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}
	var request models.MoveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet := middlewares.WalletFromContext(c)
	state, err := orch.SubmitMove(c.Request.Context(), id, wallet, request.MoveData)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// FinishGame records a client-reported terminal result. The winner
// must be a participant; an empty winner records a draw.
func FinishGame(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	id, err := sessionIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}
	var request models.FinishRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet := middlewares.WalletFromContext(c)
	session, err := orch.GetSession(c.Request.Context(), id)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	if !session.HasParticipant(wallet) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant"})
		return
	}
	if request.WinnerWallet != "" && !session.HasParticipant(request.WinnerWallet) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Winner is not a participant"})
		return
	}

	settled, err := orch.RecordResult(c.Request.Context(), id, request.WinnerWallet, request.Result)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": settled})
}

// ForfeitGame resigns an active session; the opponent takes the pot.
func ForfeitGame(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	id, err := sessionIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	wallet := middlewares.WalletFromContext(c)
	session, err := orch.Forfeit(c.Request.Context(), id, wallet)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// FlipCoin settles an active coin-flip session in a single call.
func FlipCoin(c *gin.Context, orch *lifecycle.Orchestrator, logger *zap.Logger) {
	var request models.FlipRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet := middlewares.WalletFromContext(c)
	session, err := orch.GetSession(c.Request.Context(), request.SessionID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	if !session.HasParticipant(wallet) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant"})
		return
	}

	result, err := orch.FlipCoin(c.Request.Context(), request.SessionID, request.CallA, request.CallB)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
