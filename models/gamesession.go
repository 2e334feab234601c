package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Supported game kinds.
const (
	KindChess       = "chess"
	KindCheckers    = "checkers"
	KindConnectFour = "connect-four"
	KindCoinFlip    = "coin-flip"
)

// ValidGameKind reports whether kind names a playable game.
func ValidGameKind(kind string) bool {
	switch kind {
	case KindChess, KindCheckers, KindConnectFour, KindCoinFlip:
		return true
	}
	return false
}

// Session lifecycle statuses. The only legal transitions are
// waiting→matched→active→completed and waiting→cancelled.
const (
	StatusWaiting   = "waiting"
	StatusMatched   = "matched"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// GameSession is one wagered game between two wallets, tracked through
// its lifecycle. PlayerB stays empty while the session is waiting and is
// only ever assigned by a conditional bind (first writer wins).
type GameSession struct {
	gorm.Model
	GameKind         string `gorm:"index;not null"`
	PlayerA          string `gorm:"index;not null"` // wallet address of the creator
	PlayerB          string `gorm:"index"`          // empty until matched
	WagerLamports    int64  `gorm:"not null"`
	HouseFeeLamports int64  `gorm:"not null"` // fee on the pot, fixed at intake
	Status           string `gorm:"index;not null;default:'waiting'"`

	// Game-specific state blob; opaque to the store.
	State json.RawMessage `gorm:"type:jsonb"`

	PlayerADeposited bool `gorm:"not null;default:false"`
	PlayerBDeposited bool `gorm:"not null;default:false"`
	PlayerATxRef     string
	PlayerBTxRef     string

	WinnerWallet string
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// Opponent returns the other participant's wallet, or "" if wallet is
// not in the session.
func (s *GameSession) Opponent(wallet string) string {
	switch wallet {
	case s.PlayerA:
		return s.PlayerB
	case s.PlayerB:
		return s.PlayerA
	}
	return ""
}

// HasParticipant reports whether wallet is one of the two players.
func (s *GameSession) HasParticipant(wallet string) bool {
	return wallet != "" && (wallet == s.PlayerA || wallet == s.PlayerB)
}

// PotLamports is the total wagered amount once both sides are bound.
func (s *GameSession) PotLamports() int64 {
	return 2 * s.WagerLamports
}

// MoveRecord is the per-session move log, kept for replay and audit.
// The payload is opaque to the store.
type MoveRecord struct {
	gorm.Model
	GameSessionID uint            `gorm:"not null;uniqueIndex:idx_session_move"`
	PlayerWallet  string          `gorm:"not null"`
	MoveNumber    int             `gorm:"not null;uniqueIndex:idx_session_move"`
	MoveData      json.RawMessage `gorm:"type:jsonb"`
}
