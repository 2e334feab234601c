package lifecycle

import (
	"context"
	"encoding/json"
	"time"

	"solarena/models"
)

// StatsDelta is one participant's bookkeeping after settlement.
// Earnings are signed lamports.
type StatsDelta struct {
	GamesPlayed int
	GamesWon    int
	Earnings    int64
}

// QueueStats summarizes matchmaking pressure for the stats endpoint.
type QueueStats struct {
	PlayersWaiting  int64   `json:"playersInQueue"`
	GamesInProgress int64   `json:"gamesInProgress"`
	AvgWaitSeconds  float64 `json:"averageWaitTime"`
}

// Store is the record-store collaborator. The session table is the only
// shared mutable resource, so every transition method is conditional on
// the expected status and reports ErrStaleSessionState (or
// ErrOpponentUnavailable for binds) when the precondition fails,
// without mutating anything.
type Store interface {
	CreateSession(ctx context.Context, session *models.GameSession) error
	GetSession(ctx context.Context, id uint) (*models.GameSession, error)

	// FindExactWaiting returns the oldest waiting session of kind at
	// exactly wager whose creator differs from excludeWallet, or nil.
	FindExactWaiting(ctx context.Context, kind string, wager int64, excludeWallet string) (*models.GameSession, error)

	// FindCompatibleWaiting lists waiting sessions of kind with wager
	// <= maxWager (creator != excludeWallet), ranked by highest wager
	// then oldest, capped at limit.
	FindCompatibleWaiting(ctx context.Context, kind string, maxWager int64, excludeWallet string, limit int) ([]models.GameSession, error)

	// BindOpponent atomically assigns wallet as player B while the
	// session is still waiting with no player B. Exactly one of two
	// concurrent binds can succeed; the loser gets
	// ErrOpponentUnavailable.
	BindOpponent(ctx context.Context, id uint, wallet string) (*models.GameSession, error)

	// MarkDeposit sets one participant's deposit flag and transfer
	// reference while the session is matched or active.
	MarkDeposit(ctx context.Context, id uint, asPlayerA bool, txRef string) error

	// ActivateSession transitions matched→active once both deposit
	// flags are set, stamping the start time. Returns false without
	// error when the precondition no longer holds (e.g. the other
	// confirmer won the race).
	ActivateSession(ctx context.Context, id uint, startedAt time.Time) (bool, error)

	// CompleteSession transitions active→completed, fixing the winner
	// and result blob and applying both participants' stats deltas in
	// one transaction. Nothing is applied when the session is not
	// active anymore.
	CompleteSession(ctx context.Context, id uint, winnerWallet string, state json.RawMessage, completedAt time.Time,
		deltas map[string]StatsDelta) error

	// UpdateSessionState swaps the opaque game-state blob while the
	// session still has the expected status.
	UpdateSessionState(ctx context.Context, id uint, expectedStatus string, state json.RawMessage) error

	// DeleteWaiting removes a session while it is still waiting and
	// owned by owner.
	DeleteWaiting(ctx context.Context, id uint, owner string) error

	EnsureUser(ctx context.Context, wallet string) error
	RecordMove(ctx context.Context, move *models.MoveRecord) error
	Leaderboard(ctx context.Context, limit int) ([]models.User, error)
	QueueStats(ctx context.Context, kind string, wager int64) (*QueueStats, error)
}
