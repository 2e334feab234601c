package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solarena/lifecycle"
	"solarena/middlewares"
	"solarena/models"
)

// WalletBalance returns the caller's on-chain balance.
func WalletBalance(c *gin.Context, ledger lifecycle.Ledger, logger *zap.Logger) {
	wallet := middlewares.WalletFromContext(c)
	lamports, err := ledger.GetBalance(c.Request.Context(), wallet)
	if err != nil {
		logger.Error("balance lookup failed", zap.String("wallet", wallet), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch balance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lamports": lamports,
		"sol":      models.LamportsToSol(lamports),
	})
}

// DepositTransaction builds the unsigned escrow transfer for the
// caller's stake. The client wallet signs it and either submits it
// directly or posts it back through SubmitDeposit.
func DepositTransaction(c *gin.Context, orch *lifecycle.Orchestrator, ledger lifecycle.Ledger, escrowWallet string, logger *zap.Logger) {
	var request models.DepositTransactionRequest
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

	tx, err := ledger.CreateTransfer(c.Request.Context(), wallet, escrowWallet, session.WagerLamports)
	if err != nil {
		logger.Error("deposit transaction build failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to build deposit transaction"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transaction": tx,
		"lamports":    session.WagerLamports,
	})
}

// SubmitDeposit broadcasts a signed escrow transfer, waits for
// confirmation and then marks the deposit on the session.
func SubmitDeposit(c *gin.Context, orch *lifecycle.Orchestrator, ledger lifecycle.Ledger, logger *zap.Logger) {
	var request models.SubmitDepositRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet := middlewares.WalletFromContext(c)
	reference, err := ledger.SubmitAndConfirm(c.Request.Context(), request.SignedTransaction)
	if err != nil {
		logger.Warn("deposit submission failed",
			zap.Uint("sessionID", request.SessionID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Transaction not confirmed", "signature": reference})
		return
	}

	session, err := orch.ConfirmDeposit(c.Request.Context(), request.SessionID, wallet, reference)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "signature": reference})
}

// Faucet airdrops test funds on dev networks.
func Faucet(c *gin.Context, ledger lifecycle.Ledger, logger *zap.Logger) {
	var request models.FaucetRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.AmountSol <= 0 || request.AmountSol > 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be between 0 and 2 SOL"})
		return
	}

	sig, err := ledger.RequestTestFunds(c.Request.Context(), request.WalletAddress, models.SolToLamports(request.AmountSol))
	if err != nil {
		logger.Warn("airdrop failed", zap.String("wallet", request.WalletAddress), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Airdrop failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": sig})
}
