package models

import "encoding/json"

// TokenRequest asks for a JWT for the given wallet. When a token is
// already held it is revalidated and refreshed near expiry.
type TokenRequest struct {
	Token         string `json:"token,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
	Username      string `json:"username,omitempty"`
}

// JoinRequest enters matchmaking for one game kind at a wager.
type JoinRequest struct {
	GameKind string  `json:"gameKind"`
	WagerSol float64 `json:"wagerAmount"`
}

// AcceptRequest explicitly joins one of the candidate sessions offered
// when no exact-wager match existed.
type AcceptRequest struct {
	SessionID uint `json:"sessionId"`
}

// DepositRequest reports a submitted escrow transfer for confirmation.
type DepositRequest struct {
	SessionID uint   `json:"sessionId"`
	TxRef     string `json:"signature"`
}

// DepositTransactionRequest asks for an unsigned escrow transfer to
// sign client-side.
type DepositTransactionRequest struct {
	SessionID uint `json:"sessionId"`
}

// SubmitDepositRequest broadcasts a signed escrow transfer through the
// server, which confirms it and marks the deposit.
type SubmitDepositRequest struct {
	SessionID         uint   `json:"sessionId"`
	SignedTransaction string `json:"signedTransaction"`
}

// FinishRequest records the terminal result of an active session.
type FinishRequest struct {
	WinnerWallet string          `json:"winner"`
	Result       json.RawMessage `json:"result"`
}

// MoveRequest appends a move to the session log and relays it.
type MoveRequest struct {
	MoveData json.RawMessage `json:"moveData"`
}

// FlipRequest resolves an active coin-flip session. Calls are
// "heads" or "tails", pre-committed by each side.
type FlipRequest struct {
	SessionID uint   `json:"sessionId"`
	CallA     string `json:"player1Choice"`
	CallB     string `json:"player2Choice"`
}

// FaucetRequest asks the test network for funds.
type FaucetRequest struct {
	WalletAddress string  `json:"walletAddress"`
	AmountSol     float64 `json:"amount"`
}
